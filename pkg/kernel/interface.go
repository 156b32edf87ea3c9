// SPDX-License-Identifier: Apache-2.0

package kernel

import "context"

// Operator converges the loaded state of a kernel module to a requested state.
type Operator interface {
	// CheckLoaded reports whether the named module is currently loaded in the running kernel.
	CheckLoaded(ctx context.Context, name string) (bool, CommandResult, error)
	// ApplyState loads (shouldLoad=true) or unloads the named module.
	ApplyState(ctx context.Context, name string, shouldLoad bool) (CommandResult, error)
	// Run checks the current state and, unless dryRun is set, performs the action required to reach req.State.
	Run(ctx context.Context, req Request, dryRun bool) (Result, error)
}

// moduleOperations defines the low-level operations for kernel module management
// This interface can be easily mocked for testing
type moduleOperations interface {
	// isLoaded returns an error only if the state could not be determined at all.
	isLoaded(ctx context.Context, name string) (bool, CommandResult, error)
	// load and unload return an error only if the action could not be started;
	// a failed action is reported through CommandResult.ExitCode.
	load(ctx context.Context, name string) (CommandResult, error)
	unload(ctx context.Context, name string) (CommandResult, error)
}

// commandRunner runs an external program with an argument vector, never through a shell.
type commandRunner interface {
	// Run returns an error only if the program could not be started or did not finish;
	// a non-zero exit status is reported through CommandResult.ExitCode.
	Run(ctx context.Context, name string, args ...string) (CommandResult, error)
}
