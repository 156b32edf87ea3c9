// SPDX-License-Identifier: Apache-2.0

package version

import (
	_ "embed"
	"strings"
)

//go:embed COMMIT
var commit string

//go:embed VERSION
var number string

// buildMode is set at build time via ldflags for release builds
// -ldflags="-X 'github.com/hashgraph/kmodctl/internal/version.buildMode=release'"
var buildMode string

func Commit() string {
	return strings.TrimSpace(commit)
}

func Number() string {
	return strings.TrimSpace(number)
}

// IsReleaseBuild returns true if the binary was built with buildMode=release.
func IsReleaseBuild() bool {
	return strings.TrimSpace(buildMode) == "release"
}

// BuildMode returns the current build mode ("release" or "dev")
func BuildMode() string {
	if IsReleaseBuild() {
		return "release"
	}
	return "dev"
}
