// SPDX-License-Identifier: Apache-2.0

package kernel

import (
	"bufio"
	"context"
	"strings"

	"github.com/hashgraph/kmodctl/pkg/sanity"
	"github.com/joomcode/errorx"
)

const (
	DefaultListCommand  = "/usr/sbin/lsmod"
	DefaultProbeCommand = "/usr/sbin/modprobe"

	// lsmod prints this header as the first line
	lsmodHeader = "Module"
)

// execOperations shells out (without a shell) to lsmod and modprobe.
type execOperations struct {
	runner   commandRunner
	listCmd  string
	probeCmd string
}

func newExecOperations(runner commandRunner, listCmd, probeCmd string) *execOperations {
	if runner == nil {
		runner = execRunner{}
	}
	if listCmd == "" {
		listCmd = DefaultListCommand
	}
	if probeCmd == "" {
		probeCmd = DefaultProbeCommand
	}

	return &execOperations{runner: runner, listCmd: listCmd, probeCmd: probeCmd}
}

// isLoaded runs lsmod and looks for a line whose first column is the module name.
// Stdout of the returned CommandResult only holds the matching lines.
func (e *execOperations) isLoaded(ctx context.Context, name string) (bool, CommandResult, error) {
	cr, err := e.runner.Run(ctx, e.listCmd)
	if err != nil {
		if errorx.IsTimeout(err) {
			return false, cr, err
		}
		return false, cr, withCommand(ErrStateUnknown.Wrap(err, "failed to list loaded kernel modules"), name, cr)
	}

	if !cr.Success() {
		return false, cr, withCommand(
			ErrStateUnknown.New("%s exited with code %d", e.listCmd, cr.ExitCode), name, cr)
	}

	matches := matchModuleLines(cr.Stdout, name)
	cr.Stdout = strings.Join(matches, "\n")
	if len(matches) > 0 {
		cr.Stdout += "\n"
	}

	return len(matches) > 0, cr, nil
}

func (e *execOperations) load(ctx context.Context, name string) (CommandResult, error) {
	return e.runner.Run(ctx, e.probeCmd, name)
}

func (e *execOperations) unload(ctx context.Context, name string) (CommandResult, error) {
	return e.runner.Run(ctx, e.probeCmd, "-r", name)
}

// matchModuleLines returns the lines of an lsmod or /proc/modules listing whose first column is the module.
func matchModuleLines(listing string, name string) []string {
	want := sanity.NormalizeModuleName(name)

	var matches []string
	sc := bufio.NewScanner(strings.NewReader(listing))
	for sc.Scan() {
		line := sc.Text()
		fields := strings.Fields(line)
		if len(fields) == 0 || fields[0] == lsmodHeader {
			continue
		}

		if sanity.NormalizeModuleName(fields[0]) == want {
			matches = append(matches, line)
		}
	}

	return matches
}
