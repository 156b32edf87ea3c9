// SPDX-License-Identifier: Apache-2.0

package kernel

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashgraph/kmodctl/pkg/sanity"
)

const (
	// DefaultPersistDir is read by systemd-modules-load.service at boot
	DefaultPersistDir = "/etc/modules-load.d"

	persistFileMode = 0o644
	persistDirMode  = 0o755
)

// persister manages the modules-load.d entry of a module.
type persister struct {
	dir string
}

func (p persister) confPath(name string) string {
	return filepath.Join(p.dir, name+".conf")
}

// isPersisted returns true if the module's conf file lists the module.
func (p persister) isPersisted(name string) (bool, error) {
	b, err := os.ReadFile(p.confPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	want := sanity.NormalizeModuleName(name)
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if sanity.NormalizeModuleName(line) == want {
			return true, nil
		}
	}

	return false, sc.Err()
}

func (p persister) persist(name string) error {
	if err := os.MkdirAll(p.dir, persistDirMode); err != nil {
		return err
	}

	return os.WriteFile(p.confPath(name), []byte(name+"\n"), persistFileMode)
}

func (p persister) unpersist(name string) error {
	err := os.Remove(p.confPath(name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}
