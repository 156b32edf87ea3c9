// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/hashgraph/kmodctl/internal/config"
	"github.com/hashgraph/kmodctl/internal/task"
	"github.com/hashgraph/kmodctl/internal/version"
	"github.com/hashgraph/kmodctl/pkg/kernel"
	"github.com/hashgraph/kmodctl/pkg/logx"
	"github.com/joomcode/errorx"
)

// output and exit are replaced in tests
var (
	output io.Writer = os.Stderr
	exitFn           = os.Exit
)

type ErrorDiagnosis struct {
	Error      error    `yaml:"error" json:"error"`
	Message    string   `yaml:"message" json:"message"`
	Cause      string   `yaml:"cause" json:"cause"`
	ErrorType  string   `yaml:"errorType" json:"errorType"`
	TraceId    string   `yaml:"traceId" json:"traceId"`
	Commit     string   `yaml:"commit" json:"commit"`
	Version    string   `yaml:"version" json:"version"`
	Pid        int      `yaml:"pid" json:"pid"`
	Code       int      `yaml:"code" json:"code"`
	ExitCode   int      `yaml:"exitCode" json:"exitCode"`
	Logfile    string   `yaml:"log" json:"log"`
	Resolution []string `yaml:"steps" json:"steps"`
}

func toErrorCode(err error) int {
	switch {
	case errorx.IsOfType(err, errorx.IllegalArgument):
		return 10400
	case errorx.IsOfType(err, kernel.ErrLockFailed):
		return 10409
	case errorx.IsTimeout(err):
		return 10408
	case errorx.IsOfType(err, kernel.ErrStateUnknown):
		return 10503
	default:
		if errorx.HasTrait(err, errorx.NotFound()) {
			return 10404
		}
		return 10500
	}
}

func toErrorMessage(err error) (string, string) {
	e := errorx.Cast(err)
	if e == nil {
		return err.Error(), ""
	}

	if e.Cause() == nil {
		return e.Message(), ""
	}

	return e.Message(), fmt.Sprintf("%s", e.Cause())
}

func findResolution(err error) []string {
	switch {
	case errorx.IsOfType(err, errorx.IllegalArgument):
		if arg, ok := errorx.ExtractProperty(err, errorx.PropertyPayload()); ok {
			return []string{fmt.Sprintf("Ensure a valid %q is provided.", arg)}
		}
		return []string{"Ensure all required arguments are provided."}
	case errorx.IsOfType(err, errorx.IllegalFormat):
		return []string{"Ensure provided data is in correct format."}
	case errorx.IsOfType(err, config.NotFoundError):
		if arg, ok := errorx.ExtractProperty(err, errorx.PropertyPayload()); ok {
			return []string{fmt.Sprintf("Ensure configuration file %q exists, is correctly formatted and accessible", arg)}
		}
		return []string{"Ensure configuration file exists and is accessible."}
	case errorx.IsOfType(err, kernel.ErrLockFailed):
		return []string{
			"Another kmodctl invocation holds the host lock; retry once it completes.",
			fmt.Sprintf("Check kernel.lockFile (currently %q).", config.Get().Kernel.LockFile),
		}
	case errorx.IsTimeout(err):
		return []string{
			"The module utility did not finish in time.",
			fmt.Sprintf("Increase kernel.timeout (currently %s) or check the host for hung module operations.", config.Get().Kernel.Timeout),
		}
	case errorx.IsOfType(err, kernel.ErrStateUnknown):
		return []string{
			fmt.Sprintf("Ensure %q is installed and /proc is mounted.", config.Get().Kernel.ListCommand),
			"Disable kernel.strictCheck to treat an unreadable module list as not loaded.",
		}
	case errorx.IsOfType(err, kernel.ErrLoadFailed), errorx.IsOfType(err, kernel.ErrUnloadFailed):
		return []string{
			"Check cmd_stderr of the result for the modprobe diagnostics.",
			"Ensure the module exists for the running kernel (modinfo <name>) and the process runs as root.",
			"A module that is in use cannot be unloaded; remove its dependants first.",
		}
	case errorx.IsOfType(err, kernel.ErrPersistFailed):
		return []string{
			fmt.Sprintf("Ensure %q exists and is writable.", config.Get().Kernel.PersistDir),
		}
	default:
		return []string{"Check error message for details or contact support"}
	}
}

func logfile() string {
	c := config.Get().Log
	if !c.FileLogging {
		return ""
	}

	return path.Join(c.Directory, c.Filename)
}

// Diagnose attempts to find a resolution and provide a human friendly error response
func Diagnose(ctx context.Context, ex error) *ErrorDiagnosis {
	msg, cause := toErrorMessage(ex)
	return &ErrorDiagnosis{
		Error:      ex,
		ErrorType:  errorx.GetTypeName(ex),
		Message:    msg,
		Cause:      cause,
		TraceId:    logx.TraceId(ctx),
		Code:       toErrorCode(ex),
		ExitCode:   task.ExitCode(ex).Int(),
		Commit:     version.Commit(),
		Version:    version.Number(),
		Pid:        logx.GetPid(),
		Logfile:    logfile(),
		Resolution: findResolution(ex),
	}
}

// Render writes the diagnosis block to w.
// Optional instructions are printed ahead of the default resolution steps.
func Render(w io.Writer, resp *ErrorDiagnosis, instructions ...string) {
	_, _ = fmt.Fprintf(w, "\n%s%s************************************** Error Diagnostics ******************************************%s\n", Bold, Red, Reset)
	_, _ = fmt.Fprintf(w, "%s*%s\t%sError:%s %s\n", Red, Reset, Bold+White, Reset, resp.Message)
	if resp.Cause != "" {
		_, _ = fmt.Fprintf(w, "%s*%s\t%sCause:%s %s\n", Red, Reset, Bold+White, Reset, resp.Cause)
	}
	_, _ = fmt.Fprintf(w, "%s*%s\t%sError Type:%s %s\n", Red, Reset, Bold+White, Reset, resp.ErrorType)
	_, _ = fmt.Fprintf(w, "%s*%s\t%sError Code:%s %d\n", Red, Reset, Bold+White, Reset, resp.Code)
	_, _ = fmt.Fprintf(w, "%s*%s\t%sCommit:%s %s\n", Red, Reset, Gray, Reset, resp.Commit)
	_, _ = fmt.Fprintf(w, "%s*%s\t%sPid:%s %d\n", Red, Reset, Gray, Reset, resp.Pid)
	_, _ = fmt.Fprintf(w, "%s*%s\t%sTraceId:%s %s\n", Red, Reset, Gray, Reset, resp.TraceId)
	_, _ = fmt.Fprintf(w, "%s*%s\t%sVersion:%s %s\n", Red, Reset, Gray, Reset, resp.Version)
	if resp.Logfile != "" {
		_, _ = fmt.Fprintf(w, "%s*%s\t%sLogfile:%s %s\n", Red, Reset, Cyan, Reset, resp.Logfile)
	}
	_, _ = fmt.Fprintf(w, "%s%s***************************************************************************************************%s\n", Bold, Red, Reset)
	_, _ = fmt.Fprintf(w, "\n%s%s****************************************** Resolution *********************************************%s\n", Bold, Yellow, Reset)

	if len(instructions) > 0 && instructions[0] != "" {
		for _, line := range strings.Split(instructions[0], "\n") {
			if line == "" {
				_, _ = fmt.Fprintf(w, "%s*%s\n", Yellow, Reset)
			} else {
				_, _ = fmt.Fprintf(w, "%s*%s\t%s\n", Yellow, Reset, Bold+White+line+Reset)
			}
		}
		if len(resp.Resolution) > 0 {
			_, _ = fmt.Fprintf(w, "%s*%s\n", Yellow, Reset)
		}
	}

	for _, r := range resp.Resolution {
		_, _ = fmt.Fprintf(w, "%s*%s\t%s\n", Yellow, Reset, White+r+Reset)
	}

	_, _ = fmt.Fprintf(w, "%s%s***************************************************************************************************%s\n", Bold, Yellow, Reset)
}

// CheckErr prints the diagnosis to stderr and exits with the code mapped from err.
// It is a no-op for a nil error.
func CheckErr(ctx context.Context, err error, instructions ...string) {
	if err == nil {
		return
	}

	logx.WithContext(ctx, nil).Error().Err(err).Msg("error occurred")
	resp := Diagnose(ctx, err)
	Render(output, resp, instructions...)

	exitFn(resp.ExitCode)
}
