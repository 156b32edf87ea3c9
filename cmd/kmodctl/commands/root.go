// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"

	"github.com/hashgraph/kmodctl/cmd/kmodctl/commands/module"
	"github.com/hashgraph/kmodctl/cmd/kmodctl/commands/version"
	"github.com/hashgraph/kmodctl/internal/config"
	"github.com/hashgraph/kmodctl/internal/doctor"
	"github.com/hashgraph/kmodctl/pkg/logx"
	"github.com/joomcode/errorx"
	"github.com/spf13/cobra"
)

// examples:
// ./kmodctl module apply --name vxlan --state present
// ./kmodctl module apply --args-file /tmp/ansible_args.json
// ./kmodctl module status --name br_netfilter -o yaml
// ./kmodctl version -o json

// rootCmd represents the base command when called without any subcommands
var (
	// Used for flags.
	flagConfig       string
	flagVersion      bool
	flagOutputFormat string

	rootCmd = &cobra.Command{
		Use:   "kmodctl",
		Short: "Converge the loaded state of Linux kernel modules",
		Long:  "kmodctl - checks whether a kernel module is loaded and loads or unloads it to reach the desired state",
		// errors are reported by the result envelope and doctor
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagVersion {
				return version.PrintVersion(cmd, flagOutputFormat)
			}

			return cmd.Help()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "config file path")

	// support '--version', '-v' to show version information
	rootCmd.Flags().BoolVarP(&flagVersion, "version", "v", false, "Show version")
	rootCmd.Flags().StringVarP(&flagOutputFormat, "output", "o", "yaml", "Output format (yaml|json)")

	// disable command sorting to keep the order of commands as added
	cobra.EnableCommandSorting = false

	// add subcommands
	rootCmd.AddCommand(module.GetCmd())
	rootCmd.AddCommand(version.GetCmd())
}

// Execute executes the root command.
func Execute(ctx context.Context) error {
	if ctx == nil {
		return errorx.IllegalArgument.New("context is required")
	}

	cobra.OnInitialize(func() {
		initConfig(ctx)
	})

	_, err := rootCmd.ExecuteContextC(ctx)
	if err != nil {
		// cobra's own flag and argument errors are usage errors
		if errorx.Cast(err) == nil {
			return errorx.IllegalArgument.Wrap(err, "failed to execute command")
		}
		return err
	}

	return nil
}

func initConfig(ctx context.Context) {
	err := config.Initialize(flagConfig)
	if err != nil {
		doctor.CheckErr(ctx, err)
	}

	cfg := config.Get()
	if err = cfg.Validate(); err != nil {
		doctor.CheckErr(ctx, err)
	}

	err = logx.WithConfig(&cfg.Log, map[string]string{
		string(logx.TraceIdKey): logx.TraceId(ctx),
	})
	if err != nil {
		doctor.CheckErr(ctx, errorx.IllegalArgument.Wrap(err, "invalid logging configuration").
			WithProperty(errorx.PropertyPayload(), "log.level"))
	}
}
