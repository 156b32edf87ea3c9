// SPDX-License-Identifier: Apache-2.0

package kernel

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/joomcode/errorx"
)

// execRunner is the default commandRunner backed by os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (CommandResult, error) {
	cr := CommandResult{CommandLine: commandLine(name, args...)}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	cr.Stdout = stdout.String()
	cr.Stderr = stderr.String()

	if ctxErr := ctx.Err(); ctxErr != nil {
		cr.ExitCode = -1
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return cr, ErrCommandTimeout.New("command %q timed out", cr.CommandLine).
				WithProperty(CommandLineProperty, cr.CommandLine)
		}
		return cr, errorx.Decorate(ctxErr, "command %q was cancelled", cr.CommandLine)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cr.ExitCode = exitErr.ExitCode()
			return cr, nil
		}

		// could not be started, e.g. the binary does not exist
		cr.ExitCode = -1
		if cr.Stderr == "" {
			cr.Stderr = err.Error()
		}
		return cr, errorx.ExternalError.Wrap(err, "failed to execute %q", cr.CommandLine).
			WithProperty(CommandLineProperty, cr.CommandLine)
	}

	return cr, nil
}

// commandLine renders an argument vector for diagnostics only; it is never passed to a shell.
func commandLine(name string, args ...string) string {
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}
