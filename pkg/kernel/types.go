// SPDX-License-Identifier: Apache-2.0

package kernel

import (
	"fmt"
	"strings"

	"github.com/hashgraph/kmodctl/pkg/sanity"
	"github.com/joomcode/errorx"
)

// State is the desired state of a kernel module.
type State string

const (
	StatePresent State = "present"
	StateAbsent  State = "absent"
)

// state synonyms accepted from the host
const (
	stateInstalled = "installed"
	stateRemoved   = "removed"
)

// AllStates returns every accepted state value, synonyms included.
func AllStates() []string {
	return []string{string(StatePresent), stateInstalled, string(StateAbsent), stateRemoved}
}

// ParseState maps a host-provided state to a State.
// An empty string defaults to StatePresent.
func ParseState(s string) (State, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(StatePresent), stateInstalled:
		return StatePresent, nil
	case string(StateAbsent), stateRemoved:
		return StateAbsent, nil
	default:
		return "", errorx.IllegalArgument.New("invalid state %q, must be one of %v", s, AllStates()).
			WithProperty(errorx.PropertyPayload(), "state")
	}
}

func (s State) String() string {
	return string(s)
}

// Request is a single, validated invocation of the operator.
type Request struct {
	Name  string
	State State
	// Persist also manages the modules-load.d entry of the module.
	Persist bool
}

// NewRequest validates the module name and the state and returns a Request.
func NewRequest(name string, state string, persist bool) (Request, error) {
	n, err := sanity.ModuleName(name)
	if err != nil {
		return Request{}, errorx.IllegalArgument.Wrap(err, "invalid module name").
			WithProperty(errorx.PropertyPayload(), "name")
	}

	st, err := ParseState(state)
	if err != nil {
		return Request{}, err
	}

	return Request{Name: n, State: st, Persist: persist}, nil
}

// Validate checks a Request that was not built with NewRequest.
func (r Request) Validate() error {
	if _, err := sanity.ModuleName(r.Name); err != nil {
		return errorx.IllegalArgument.Wrap(err, "invalid module name").
			WithProperty(errorx.PropertyPayload(), "name")
	}

	if r.State != StatePresent && r.State != StateAbsent {
		return errorx.IllegalArgument.New("invalid state %q", r.State).
			WithProperty(errorx.PropertyPayload(), "state")
	}

	return nil
}

// CommandResult captures a single external invocation.
type CommandResult struct {
	CommandLine string
	Stdout      string
	Stderr      string
	ExitCode    int
}

// Success returns true if the command exited with status 0.
func (c CommandResult) Success() bool {
	return c.ExitCode == 0
}

// Result is the outcome of Operator.Run.
type Result struct {
	Changed     bool   `json:"changed" yaml:"changed"`
	Message     string `json:"message" yaml:"message"`
	CommandLine string `json:"cmdline" yaml:"cmdline"`
	Stdout      string `json:"cmd_stdout" yaml:"cmd_stdout"`
	Stderr      string `json:"cmd_stderr" yaml:"cmd_stderr"`
}

func newResult(changed bool, msg string, cr CommandResult) Result {
	return Result{
		Changed:     changed,
		Message:     msg,
		CommandLine: cr.CommandLine,
		Stdout:      cr.Stdout,
		Stderr:      cr.Stderr,
	}
}

func stateMessage(name string, loaded bool) string {
	if loaded {
		return fmt.Sprintf("module %s is already loaded.", name)
	}

	return fmt.Sprintf("module %s is not loaded.", name)
}

func failureMessage(shouldLoad bool) string {
	if shouldLoad {
		return "Kernel module loading failed."
	}

	return "Kernel module unloading failed."
}
