// SPDX-License-Identifier: Apache-2.0

package version

import (
	"encoding/json"
	"runtime"
	"strings"

	"github.com/joomcode/errorx"
	"gopkg.in/yaml.v3"
)

type Info struct {
	Number    string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildMode string `json:"buildMode" yaml:"buildMode"`
	GoVersion string `json:"go" yaml:"go"`
}

const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

func (v Info) Format(format string) (string, error) {
	var output []byte
	var err error
	switch strings.ToLower(format) {
	case FormatJSON:
		output, err = json.Marshal(v)
		if err != nil {
			return "", errorx.IllegalFormat.Wrap(err, "Error marshaling version info to JSON")
		}
	case FormatYAML:
		output, err = yaml.Marshal(v)
		if err != nil {
			return "", errorx.IllegalFormat.Wrap(err, "Error marshaling version info to YAML")
		}
	default:
		return "", errorx.IllegalArgument.New("unsupported format: %s", format).
			WithProperty(errorx.PropertyPayload(), "output")
	}

	return string(output), nil
}

func Get() Info {
	return Info{
		Number:    Number(),
		Commit:    Commit(),
		BuildMode: BuildMode(),
		GoVersion: runtime.Version(),
	}
}
