// SPDX-License-Identifier: Apache-2.0

package kernel

import (
	"context"
	"os"
	"strings"

	"github.com/joomcode/errorx"
)

const DefaultProcModules = "/proc/modules"

// syscallLoader loads and removes modules without external utilities.
type syscallLoader interface {
	Load(name string) error
	Remove(name string) error
	Describe(op string, name string) string
}

// nativeOperations reads /proc/modules and uses the finit_module/delete_module syscalls.
type nativeOperations struct {
	procModules string
	loader      syscallLoader
}

func newNativeOperations(procModules string, loader syscallLoader) *nativeOperations {
	if procModules == "" {
		procModules = DefaultProcModules
	}
	if loader == nil {
		loader = newSyscallLoader()
	}

	return &nativeOperations{procModules: procModules, loader: loader}
}

func (n *nativeOperations) isLoaded(ctx context.Context, name string) (bool, CommandResult, error) {
	cr := CommandResult{CommandLine: "read " + n.procModules}
	if err := ctx.Err(); err != nil {
		return false, cr, errorx.Decorate(err, "module check was cancelled")
	}

	b, err := os.ReadFile(n.procModules)
	if err != nil {
		cr.ExitCode = 1
		cr.Stderr = err.Error()
		return false, cr, withCommand(ErrStateUnknown.Wrap(err, "failed to read %s", n.procModules), name, cr)
	}

	matches := matchModuleLines(string(b), name)
	if len(matches) > 0 {
		cr.Stdout = strings.Join(matches, "\n") + "\n"
	}

	return len(matches) > 0, cr, nil
}

func (n *nativeOperations) load(ctx context.Context, name string) (CommandResult, error) {
	return n.invoke(ctx, "load", name, n.loader.Load)
}

func (n *nativeOperations) unload(ctx context.Context, name string) (CommandResult, error) {
	return n.invoke(ctx, "remove", name, n.loader.Remove)
}

func (n *nativeOperations) invoke(ctx context.Context, op string, name string, fn func(string) error) (CommandResult, error) {
	cr := CommandResult{CommandLine: n.loader.Describe(op, name)}
	if err := ctx.Err(); err != nil {
		cr.ExitCode = -1
		return cr, errorx.Decorate(err, "%s of module %s was cancelled", op, name)
	}

	if err := fn(name); err != nil {
		cr.ExitCode = exitCodeOf(err)
		cr.Stderr = err.Error()
	}

	return cr, nil
}

// exitCodeOf maps a syscall error to an exit code the same way a failing C utility would report errno.
func exitCodeOf(err error) int {
	if code := errnoOf(err); code != 0 {
		return code
	}

	return 1
}
