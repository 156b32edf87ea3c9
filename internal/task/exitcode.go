// SPDX-License-Identifier: Apache-2.0

package task

import (
	"github.com/hashgraph/kmodctl/internal/config"
	"github.com/hashgraph/kmodctl/pkg/exit"
	"github.com/hashgraph/kmodctl/pkg/kernel"
	"github.com/joomcode/errorx"
)

// ExitCode maps the outcome of a command to the process exit code.
func ExitCode(err error) exit.Code {
	switch {
	case err == nil:
		return exit.NormalTermination
	case errorx.IsOfType(err, errorx.IllegalArgument):
		return exit.UsageError
	case errorx.IsOfType(err, errorx.IllegalFormat):
		return exit.DataFormatError
	case errorx.IsOfType(err, ArgsNotFoundError):
		return exit.MissingInputError
	case errorx.IsOfType(err, config.NotFoundError):
		return exit.ConfigurationError
	case errorx.IsTimeout(err), errorx.IsOfType(err, kernel.ErrLockFailed):
		return exit.TemporaryFailure
	case errorx.IsOfType(err, kernel.ErrStateUnknown):
		return exit.ModuleStateUnknown
	case errorx.IsOfType(err, kernel.ErrLoadFailed),
		errorx.IsOfType(err, kernel.ErrUnloadFailed),
		errorx.IsOfType(err, kernel.ErrPersistFailed):
		return exit.ModuleActionFailed
	case errorx.IsOfType(err, errorx.UnsupportedOperation):
		return exit.SystemError
	default:
		return exit.GeneralError
	}
}
