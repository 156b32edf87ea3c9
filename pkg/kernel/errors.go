// SPDX-License-Identifier: Apache-2.0

package kernel

import "github.com/joomcode/errorx"

var (
	ErrNamespace = errorx.NewNamespace("kernel")

	ModuleErrTrait = errorx.RegisterTrait("kernel_module_error")

	ErrStateUnknown   = ErrNamespace.NewType("state_unknown", ModuleErrTrait)
	ErrLoadFailed     = ErrNamespace.NewType("load_failed", ModuleErrTrait)
	ErrUnloadFailed   = ErrNamespace.NewType("unload_failed", ModuleErrTrait)
	ErrPersistFailed  = ErrNamespace.NewType("persist_failed", ModuleErrTrait)
	ErrCommandTimeout = ErrNamespace.NewType("command_timeout", ModuleErrTrait, errorx.Timeout())
	ErrLockFailed     = ErrNamespace.NewType("lock_failed", errorx.Temporary())

	ModuleProperty      = errorx.RegisterProperty("module")
	CommandLineProperty = errorx.RegisterProperty("cmdline")
	StdoutProperty      = errorx.RegisterProperty("stdout")
	StderrProperty      = errorx.RegisterProperty("stderr")
	ExitCodeProperty    = errorx.RegisterProperty("exit_code")
)

// withCommand attaches the diagnostics of an external invocation to err.
func withCommand(err *errorx.Error, name string, cr CommandResult) *errorx.Error {
	return err.
		WithProperty(ModuleProperty, name).
		WithProperty(CommandLineProperty, cr.CommandLine).
		WithProperty(StdoutProperty, cr.Stdout).
		WithProperty(StderrProperty, cr.Stderr).
		WithProperty(ExitCodeProperty, cr.ExitCode)
}

// CommandResultFromError extracts the diagnostics attached by the operator, if any.
func CommandResultFromError(err error) (CommandResult, bool) {
	v, ok := errorx.ExtractProperty(err, CommandLineProperty)
	if !ok {
		return CommandResult{}, false
	}

	cr := CommandResult{CommandLine: v.(string)}
	if v, ok := errorx.ExtractProperty(err, StdoutProperty); ok {
		cr.Stdout = v.(string)
	}
	if v, ok := errorx.ExtractProperty(err, StderrProperty); ok {
		cr.Stderr = v.(string)
	}
	if v, ok := errorx.ExtractProperty(err, ExitCodeProperty); ok {
		cr.ExitCode = v.(int)
	}

	return cr, true
}
