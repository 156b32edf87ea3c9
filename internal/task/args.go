// SPDX-License-Identifier: Apache-2.0

package task

import (
	"os"

	"github.com/hashgraph/kmodctl/pkg/kernel"
	"github.com/joomcode/errorx"
	"gopkg.in/yaml.v3"
)

var (
	ErrNamespace      = errorx.NewNamespace("task")
	ArgsNotFoundError = ErrNamespace.NewType("args_not_found", errorx.NotFound())
)

// Args are the arguments a configuration-management host passes to the module task.
type Args struct {
	Name    string `yaml:"name" json:"name"`
	State   string `yaml:"state" json:"state"`
	Check   bool   `yaml:"check" json:"check"`
	Persist bool   `yaml:"persist" json:"persist"`
}

// argsFile accepts the host's check-mode key alongside the plain one.
type argsFile struct {
	Args      `yaml:",inline"`
	CheckMode bool `yaml:"_ansible_check_mode"`
}

// LoadArgs reads an args file. JSON is valid YAML, so both formats are accepted.
// Unknown keys are ignored since hosts add their own bookkeeping keys.
func LoadArgs(path string) (Args, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Args{}, ArgsNotFoundError.Wrap(err, "failed to read args file: %s", path).
			WithProperty(errorx.PropertyPayload(), path)
	}

	var f argsFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return Args{}, errorx.IllegalFormat.Wrap(err, "failed to parse args file").
			WithProperty(errorx.PropertyPayload(), path)
	}

	a := f.Args
	a.Check = a.Check || f.CheckMode
	return a, nil
}

// Request validates the arguments and builds the operator request.
func (a Args) Request() (kernel.Request, error) {
	if a.Name == "" {
		return kernel.Request{}, errorx.IllegalArgument.New("module name is required").
			WithProperty(errorx.PropertyPayload(), "name")
	}

	return kernel.NewRequest(a.Name, a.State, a.Persist)
}
