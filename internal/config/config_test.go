// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joomcode/errorx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "kmodctl.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestInitialize_Defaults(t *testing.T) {
	require.NoError(t, Initialize(""))

	cfg := Get()
	assert.Equal(t, Defaults(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestInitialize_FromFile(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  consoleLogging: false
kernel:
  backend: native
  timeout: 5s
  strictCheck: true
  persistDir: /run/modules-load.d
  lockFile: /run/kmodctl.lock
`)
	require.NoError(t, Initialize(path))

	cfg := Get()
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Log.ConsoleLogging)
	assert.Equal(t, "native", cfg.Kernel.Backend)
	assert.Equal(t, 5*time.Second, cfg.Kernel.Timeout)
	assert.True(t, cfg.Kernel.StrictCheck)
	assert.Equal(t, "/run/modules-load.d", cfg.Kernel.PersistDir)
	assert.Equal(t, "/run/kmodctl.lock", cfg.Kernel.LockFile)

	// keys missing from the file keep their defaults
	assert.Equal(t, Defaults().Kernel.ListCommand, cfg.Kernel.ListCommand)
	assert.Equal(t, Defaults().Kernel.ProbeCommand, cfg.Kernel.ProbeCommand)
}

func TestInitialize_EnvOverride(t *testing.T) {
	path := writeConfig(t, `
kernel:
  strictCheck: false
  probeCommand: /sbin/modprobe
`)
	t.Setenv("KMODCTL_KERNEL_STRICTCHECK", "true")
	t.Setenv("KMODCTL_KERNEL_PROBECOMMAND", "/usr/local/sbin/modprobe")
	t.Setenv("KMODCTL_KERNEL_TIMEOUT", "1m")

	require.NoError(t, Initialize(path))

	cfg := Get()
	assert.True(t, cfg.Kernel.StrictCheck)
	assert.Equal(t, "/usr/local/sbin/modprobe", cfg.Kernel.ProbeCommand)
	assert.Equal(t, time.Minute, cfg.Kernel.Timeout)
}

func TestInitialize_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	err := Initialize(path)
	require.Error(t, err)
	assert.True(t, errorx.IsOfType(err, NotFoundError))
	p, ok := errorx.ExtractProperty(err, errorx.PropertyPayload())
	require.True(t, ok)
	assert.Equal(t, path, p)
}

func TestInitialize_InvalidFormat(t *testing.T) {
	path := writeConfig(t, `
kernel:
  timeout: soon
`)
	err := Initialize(path)
	require.Error(t, err)
	assert.True(t, errorx.IsOfType(err, errorx.IllegalFormat))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(c *Config)
		errorMsg string
	}{
		{
			name:   "defaults",
			mutate: func(c *Config) {},
		},
		{
			name:   "zero timeout disables the bound",
			mutate: func(c *Config) { c.Kernel.Timeout = 0 },
		},
		{
			name:     "unknown backend",
			mutate:   func(c *Config) { c.Kernel.Backend = "kmod" },
			errorMsg: "invalid kernel backend",
		},
		{
			name:     "negative timeout",
			mutate:   func(c *Config) { c.Kernel.Timeout = -time.Second },
			errorMsg: "cannot be negative",
		},
		{
			name:     "relative probe command",
			mutate:   func(c *Config) { c.Kernel.ProbeCommand = "modprobe" },
			errorMsg: "invalid kernel probeCommand",
		},
		{
			name:     "list command with shell metacharacters",
			mutate:   func(c *Config) { c.Kernel.ListCommand = "/usr/sbin/lsmod;id" },
			errorMsg: "invalid kernel listCommand",
		},
		{
			name:     "persist dir traversal",
			mutate:   func(c *Config) { c.Kernel.PersistDir = "/etc/../root" },
			errorMsg: "invalid kernel persistDir",
		},
		{
			name: "file logging without directory",
			mutate: func(c *Config) {
				c.Log.FileLogging = true
				c.Log.Directory = ""
			},
			errorMsg: "invalid log directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Defaults()
			tt.mutate(&c)

			err := c.Validate()
			if tt.errorMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errorx.IsOfType(err, errorx.IllegalArgument))
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}
