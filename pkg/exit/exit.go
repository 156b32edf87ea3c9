// SPDX-License-Identifier: Apache-2.0

package exit

import (
	"fmt"
	"os"
)

// Code is a process exit code.
type Code int

func (ec Code) String() string {
	return fmt.Sprintf("%d", ec)
}

func (ec Code) Int() int {
	return int(ec)
}

func (ec Code) TerminateProcess() {
	os.Exit(int(ec))
}

func (ec Code) Is(other int) bool {
	return int(ec) == other
}

// Valid returns true if the code can be reported to the parent process as-is.
func (ec Code) Valid() bool {
	return ec >= MinValidExitCode && ec <= MaxValidExitCode
}

const (
	MinValidExitCode Code = 0
	MaxValidExitCode Code = 255
)

// POSIX standard exit code definitions (sysexits.h).
const (
	NormalTermination  Code = 0
	GeneralError       Code = 1
	UsageError         Code = 64
	DataFormatError    Code = 65
	MissingInputError  Code = 66
	ServiceUnavailable Code = 69
	InternalError      Code = 70
	SystemError        Code = 71
	TemporaryFailure   Code = 75
	PermissionDenied   Code = 77
	ConfigurationError Code = 78
)

// Application specific exit code definitions.
const (
	// ModuleActionFailed is returned when modprobe (or the native syscall) failed to load or unload a module.
	ModuleActionFailed Code = 80
	// ModuleStateUnknown is returned when the loaded state of a module could not be determined.
	ModuleStateUnknown Code = 81
)
