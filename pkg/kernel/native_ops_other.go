// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package kernel

import "github.com/joomcode/errorx"

type unsupportedLoader struct{}

func newSyscallLoader() syscallLoader {
	return unsupportedLoader{}
}

func (unsupportedLoader) Load(name string) error {
	return errorx.UnsupportedOperation.New("loading kernel module %s is only supported on linux", name)
}

func (unsupportedLoader) Remove(name string) error {
	return errorx.UnsupportedOperation.New("removing kernel module %s is only supported on linux", name)
}

func (unsupportedLoader) Describe(op string, name string) string {
	return op + "(" + name + ")"
}

func errnoOf(error) int {
	return 0
}
