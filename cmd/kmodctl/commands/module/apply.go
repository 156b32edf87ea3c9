// SPDX-License-Identifier: Apache-2.0

package module

import (
	"time"

	"github.com/hashgraph/kmodctl/cmd/kmodctl/commands/common"
	"github.com/hashgraph/kmodctl/internal/config"
	"github.com/hashgraph/kmodctl/internal/task"
	"github.com/hashgraph/kmodctl/pkg/kernel"
	"github.com/hashgraph/kmodctl/pkg/logx"
	"github.com/spf13/cobra"
)

type applyFlags struct {
	name     string
	state    string
	check    bool
	persist  bool
	argsFile string
	output   string
	timeout  time.Duration
}

func newApplyCmd(factory operatorFactory) *cobra.Command {
	f := &applyFlags{}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Converge a kernel module to the desired state",
		Long: "Check whether the kernel module is loaded and, unless in check mode, load or unload it. " +
			"The result is written to stdout as a JSON (or YAML) document with changed, failed, msg, " +
			"cmdline, cmd_stdout and cmd_stderr.",
		Example: "  kmodctl module apply --name vxlan\n" +
			"  kmodctl module apply --name br_netfilter --state absent --check\n" +
			"  kmodctl module apply --args-file /tmp/args.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, f, factory)
		},
	}

	common.FlagName.SetVar(cmd, &f.name, false)
	common.FlagState.SetVar(cmd, &f.state, false)
	common.FlagCheck.SetVar(cmd, &f.check, false)
	common.FlagPersist.SetVar(cmd, &f.persist, false)
	common.FlagArgsFile.SetVar(cmd, &f.argsFile, false)
	common.FlagOutput.SetVar(cmd, &f.output, false)
	common.FlagTimeout.SetVar(cmd, &f.timeout, false)

	return cmd
}

// resolveArgs merges the args file with the flags; an explicitly set flag wins.
func resolveArgs(cmd *cobra.Command, f *applyFlags) (task.Args, error) {
	a := task.Args{Name: f.name, State: f.state, Check: f.check, Persist: f.persist}
	if f.argsFile == "" {
		return a, nil
	}

	fromFile, err := task.LoadArgs(f.argsFile)
	if err != nil {
		return task.Args{}, err
	}

	if common.FlagName.Changed(cmd) {
		fromFile.Name = f.name
	}
	if common.FlagState.Changed(cmd) {
		fromFile.State = f.state
	}
	if common.FlagCheck.Changed(cmd) {
		fromFile.Check = f.check
	}
	if common.FlagPersist.Changed(cmd) {
		fromFile.Persist = f.persist
	}

	return fromFile, nil
}

func runApply(cmd *cobra.Command, f *applyFlags, factory operatorFactory) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, err := resolveArgs(cmd, f)
	if err != nil {
		_ = task.Respond(out, kernel.Result{}, err, f.output)
		return err
	}

	req, err := a.Request()
	if err != nil {
		_ = task.Respond(out, kernel.Result{}, err, f.output)
		return err
	}

	cfg := config.Get().Kernel
	if f.timeout > 0 {
		cfg.Timeout = f.timeout
	}

	op, err := factory(ctx, cfg)
	if err != nil {
		_ = task.Respond(out, kernel.Result{}, err, f.output)
		return err
	}

	logx.WithContext(ctx, nil).Debug().
		Str("module", req.Name).
		Str("state", req.State.String()).
		Bool("check", a.Check).
		Bool("persist", req.Persist).
		Str("backend", cfg.Backend).
		Msg("Applying kernel module state")

	result, runErr := op.Run(ctx, req, a.Check)
	if err := task.Respond(out, result, runErr, f.output); err != nil {
		return err
	}

	return runErr
}
