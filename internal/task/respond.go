// SPDX-License-Identifier: Apache-2.0

package task

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/hashgraph/kmodctl/pkg/kernel"
	"github.com/joomcode/errorx"
	"gopkg.in/yaml.v3"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Envelope is the result document read back by the host.
type Envelope struct {
	Changed     bool   `json:"changed" yaml:"changed"`
	Failed      bool   `json:"failed" yaml:"failed"`
	Msg         string `json:"msg" yaml:"msg"`
	Message     string `json:"message" yaml:"message"`
	CommandLine string `json:"cmdline" yaml:"cmdline"`
	Stdout      string `json:"cmd_stdout" yaml:"cmd_stdout"`
	Stderr      string `json:"cmd_stderr" yaml:"cmd_stderr"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewEnvelope builds the envelope for the outcome of a run.
// A failure never reports a change.
func NewEnvelope(result kernel.Result, err error) Envelope {
	env := Envelope{
		Changed:     result.Changed,
		Msg:         result.Message,
		Message:     result.Message,
		CommandLine: result.CommandLine,
		Stdout:      result.Stdout,
		Stderr:      result.Stderr,
	}

	if err == nil {
		return env
	}

	env.Changed = false
	env.Failed = true
	env.Error = err.Error()
	if env.Msg == "" {
		env.Msg = errorMessage(err)
		env.Message = env.Msg
	}

	if env.CommandLine == "" {
		if cr, ok := kernel.CommandResultFromError(err); ok {
			env.CommandLine = cr.CommandLine
			env.Stdout = cr.Stdout
			env.Stderr = cr.Stderr
		}
	}

	return env
}

func errorMessage(err error) string {
	if e := errorx.Cast(err); e != nil {
		return e.Message()
	}

	return err.Error()
}

// Respond writes the envelope for result and err to w in the given format.
func Respond(w io.Writer, result kernel.Result, err error, format string) error {
	return Write(w, NewEnvelope(result, err), format)
}

// Status is the read-only report of the status command.
type Status struct {
	Name        string `json:"name" yaml:"name"`
	Loaded      bool   `json:"loaded" yaml:"loaded"`
	CommandLine string `json:"cmdline" yaml:"cmdline"`
	Stdout      string `json:"cmd_stdout" yaml:"cmd_stdout"`
	Stderr      string `json:"cmd_stderr" yaml:"cmd_stderr"`
}

func NewStatus(name string, loaded bool, cr kernel.CommandResult) Status {
	return Status{
		Name:        name,
		Loaded:      loaded,
		CommandLine: cr.CommandLine,
		Stdout:      cr.Stdout,
		Stderr:      cr.Stderr,
	}
}

// Write renders v to w as JSON (the default) or YAML.
func Write(w io.Writer, v any, format string) error {
	switch strings.ToLower(format) {
	case "", FormatJSON:
		if err := json.NewEncoder(w).Encode(v); err != nil {
			return errorx.IllegalFormat.Wrap(err, "failed to write result as JSON")
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(v); err != nil {
			return errorx.IllegalFormat.Wrap(err, "failed to write result as YAML")
		}
		if err := enc.Close(); err != nil {
			return errorx.IllegalFormat.Wrap(err, "failed to write result as YAML")
		}
	default:
		return errorx.IllegalArgument.New("unsupported output format %q", format).
			WithProperty(errorx.PropertyPayload(), "output")
	}

	return nil
}
