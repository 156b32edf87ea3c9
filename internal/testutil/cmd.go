// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"bytes"
	"context"

	"github.com/spf13/cobra"
)

// PrepareSubCmdForTest creates a root command with the given subcommand added.
// Use this from tests in other packages to avoid duplicating the helper.
func PrepareSubCmdForTest(sub *cobra.Command) *cobra.Command {
	root := &cobra.Command{Use: "root", SilenceUsage: true, SilenceErrors: true}
	root.AddCommand(sub)
	return root
}

// ExecuteCommand runs root with args and returns what it wrote to stdout and stderr.
func ExecuteCommand(ctx context.Context, root *cobra.Command, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}
