// SPDX-License-Identifier: Apache-2.0

//go:build linux

package kernel

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
	"pault.ag/go/modprobe"
)

// modprobeLoader resolves the module (and its dependencies) from modules.dep and loads them with finit_module.
type modprobeLoader struct {
	release string
}

func newSyscallLoader() syscallLoader {
	return &modprobeLoader{release: kernelRelease()}
}

func (m *modprobeLoader) Load(name string) error {
	return modprobe.Load(name, "")
}

func (m *modprobeLoader) Remove(name string) error {
	return modprobe.Remove(name)
}

func (m *modprobeLoader) Describe(op string, name string) string {
	switch op {
	case "load":
		return fmt.Sprintf("finit_module(%s) [kernel %s]", name, m.release)
	default:
		return fmt.Sprintf("delete_module(%s) [kernel %s]", name, m.release)
	}
}

func errnoOf(err error) int {
	var errno unix.Errno
	if errors.As(err, &errno) {
		return int(errno)
	}

	return 0
}

func kernelRelease() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return "unknown"
	}

	return unix.ByteSliceToString(uts.Release[:])
}
