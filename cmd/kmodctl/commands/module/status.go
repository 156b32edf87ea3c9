// SPDX-License-Identifier: Apache-2.0

package module

import (
	"github.com/hashgraph/kmodctl/cmd/kmodctl/commands/common"
	"github.com/hashgraph/kmodctl/internal/config"
	"github.com/hashgraph/kmodctl/internal/task"
	"github.com/hashgraph/kmodctl/pkg/sanity"
	"github.com/joomcode/errorx"
	"github.com/spf13/cobra"
)

func newStatusCmd(factory operatorFactory) *cobra.Command {
	var name, output string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether a kernel module is loaded",
		Long:  "Show whether a kernel module is loaded. Never loads or unloads anything.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := sanity.ModuleName(name); err != nil {
				return errorx.IllegalArgument.Wrap(err, "invalid module name").
					WithProperty(errorx.PropertyPayload(), "name")
			}

			op, err := factory(cmd.Context(), config.Get().Kernel)
			if err != nil {
				return err
			}

			loaded, cr, err := op.CheckLoaded(cmd.Context(), name)
			if err != nil {
				return err
			}

			return task.Write(cmd.OutOrStdout(), task.NewStatus(name, loaded, cr), output)
		},
	}

	common.FlagName.SetVar(cmd, &name, true)
	common.FlagOutput.SetVar(cmd, &output, false)

	return cmd
}
