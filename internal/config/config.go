// SPDX-License-Identifier: Apache-2.0

package config

import (
	"strings"
	"time"

	"github.com/hashgraph/kmodctl/pkg/kernel"
	"github.com/hashgraph/kmodctl/pkg/logx"
	"github.com/hashgraph/kmodctl/pkg/sanity"
	"github.com/joomcode/errorx"
	"github.com/spf13/viper"
)

const EnvPrefix = "KMODCTL"

// Config holds the global configuration for the application.
type Config struct {
	Log    logx.LoggingConfig `yaml:"log" json:"log"`
	Kernel KernelConfig       `yaml:"kernel" json:"kernel"`
}

// KernelConfig represents the `kernel` configuration block.
type KernelConfig struct {
	Backend      string        `yaml:"backend" json:"backend"` // exec or native
	ListCommand  string        `yaml:"listCommand" json:"listCommand"`
	ProbeCommand string        `yaml:"probeCommand" json:"probeCommand"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout"` // zero disables the bound
	StrictCheck  bool          `yaml:"strictCheck" json:"strictCheck"`
	PersistDir   string        `yaml:"persistDir" json:"persistDir"`
	LockFile     string        `yaml:"lockFile" json:"lockFile"` // empty disables the host lock
}

// Validate validates all configuration fields to ensure they are safe and secure.
func (c Config) Validate() error {
	if c.Log.FileLogging {
		if _, err := sanity.SanitizePath(c.Log.Directory); err != nil {
			return errorx.IllegalArgument.Wrap(err, "invalid log directory: %s", c.Log.Directory)
		}
		if c.Log.Filename == "" {
			return errorx.IllegalArgument.New("log filename is required when file logging is enabled")
		}
	}

	return c.Kernel.Validate()
}

// Validate validates the kernel configuration block.
func (c KernelConfig) Validate() error {
	valid := false
	for _, b := range kernel.AllBackends() {
		if c.Backend == b {
			valid = true
			break
		}
	}
	if !valid {
		return errorx.IllegalArgument.New("invalid kernel backend %q, must be one of %v", c.Backend, kernel.AllBackends())
	}

	if c.Timeout < 0 {
		return errorx.IllegalArgument.New("kernel timeout cannot be negative: %s", c.Timeout)
	}

	paths := []struct {
		field string
		value string
	}{
		{"listCommand", c.ListCommand},
		{"probeCommand", c.ProbeCommand},
		{"persistDir", c.PersistDir},
		{"lockFile", c.LockFile},
	}
	for _, p := range paths {
		if p.value == "" {
			continue
		}
		if _, err := sanity.SanitizePath(p.value); err != nil {
			return errorx.IllegalArgument.Wrap(err, "invalid kernel %s: %s", p.field, p.value)
		}
	}

	return nil
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Log: logx.LoggingConfig{
			Level:          "info",
			ConsoleLogging: true,
			FileLogging:    false,
			Directory:      "/var/log/kmodctl",
			Filename:       "kmodctl.log",
			MaxSize:        10,
			MaxBackups:     3,
			MaxAge:         30,
		},
		Kernel: KernelConfig{
			Backend:      kernel.BackendExec,
			ListCommand:  kernel.DefaultListCommand,
			ProbeCommand: kernel.DefaultProbeCommand,
			Timeout:      kernel.DefaultTimeout,
			StrictCheck:  false,
			PersistDir:   kernel.DefaultPersistDir,
			LockFile:     "",
		},
	}
}

var globalConfig = Defaults()

// Initialize loads the configuration from the specified file, if any, and applies
// KMODCTL_* environment overrides on top of the defaults.
//
// Parameters:
//   - path: The path to the configuration file. Empty means defaults and environment only.
//
// Returns:
//   - An error if the configuration cannot be loaded.
func Initialize(path string) error {
	viper.Reset()
	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// AutomaticEnv only resolves keys viper already knows about
	setDefaults(Defaults())

	if path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return NotFoundError.Wrap(err, "failed to read config file: %s", path).
				WithProperty(errorx.PropertyPayload(), path)
		}
	}

	cfg := Defaults()
	if err := viper.Unmarshal(&cfg); err != nil {
		return errorx.IllegalFormat.Wrap(err, "failed to parse configuration").
			WithProperty(errorx.PropertyPayload(), path)
	}

	globalConfig = cfg
	return nil
}

func setDefaults(c Config) {
	viper.SetDefault("log.level", c.Log.Level)
	viper.SetDefault("log.consoleLogging", c.Log.ConsoleLogging)
	viper.SetDefault("log.fileLogging", c.Log.FileLogging)
	viper.SetDefault("log.directory", c.Log.Directory)
	viper.SetDefault("log.filename", c.Log.Filename)
	viper.SetDefault("log.maxSize", c.Log.MaxSize)
	viper.SetDefault("log.maxBackups", c.Log.MaxBackups)
	viper.SetDefault("log.maxAge", c.Log.MaxAge)
	viper.SetDefault("log.compress", c.Log.Compress)

	viper.SetDefault("kernel.backend", c.Kernel.Backend)
	viper.SetDefault("kernel.listCommand", c.Kernel.ListCommand)
	viper.SetDefault("kernel.probeCommand", c.Kernel.ProbeCommand)
	viper.SetDefault("kernel.timeout", c.Kernel.Timeout)
	viper.SetDefault("kernel.strictCheck", c.Kernel.StrictCheck)
	viper.SetDefault("kernel.persistDir", c.Kernel.PersistDir)
	viper.SetDefault("kernel.lockFile", c.Kernel.LockFile)
}

// Get returns the loaded configuration.
func Get() Config {
	return globalConfig
}

func Set(c *Config) error {
	globalConfig = *c
	return nil
}
