// SPDX-License-Identifier: Apache-2.0

package common

import (
	"context"
	"fmt"
	"time"

	"github.com/hashgraph/kmodctl/internal/doctor"
	"github.com/hashgraph/kmodctl/internal/task"
	"github.com/hashgraph/kmodctl/pkg/kernel"
	"github.com/joomcode/errorx"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	FlagName = FlagDefinition[string]{
		Name:        "name",
		ShortName:   "n",
		Description: "Name of the kernel module",
		Default:     "",
	}

	FlagState = FlagDefinition[string]{
		Name:        "state",
		ShortName:   "s",
		Description: fmt.Sprintf("Desired state of the module %v", kernel.AllStates()),
		Default:     string(kernel.StatePresent),
	}

	FlagCheck = FlagDefinition[bool]{
		Name:        "check",
		ShortName:   "",
		Description: "Check mode: report whether a change is needed without making it",
		Default:     false,
	}

	FlagPersist = FlagDefinition[bool]{
		Name:        "persist",
		ShortName:   "",
		Description: "Also manage the modules-load.d entry so the state survives a reboot",
		Default:     false,
	}

	FlagArgsFile = FlagDefinition[string]{
		Name:        "args-file",
		ShortName:   "a",
		Description: "Path to a JSON or YAML file with the task arguments; flags take precedence",
		Default:     "",
	}

	FlagOutput = FlagDefinition[string]{
		Name:        "output",
		ShortName:   "o",
		Description: fmt.Sprintf("Output format %v", []string{task.FormatJSON, task.FormatYAML}),
		Default:     task.FormatJSON,
	}

	FlagTimeout = FlagDefinition[time.Duration]{
		Name:        "timeout",
		ShortName:   "t",
		Description: "Bound for each external invocation, overrides kernel.timeout (0 keeps the configured value)",
		Default:     0,
	}
)

// FlagDefinition defines a command-line flag typed by T.
type FlagDefinition[T any] struct {
	Name        string
	ShortName   string
	Description string
	Default     T
}

// valueFrom contains the common type-switch logic to extract a value
// from the provided pflag.FlagSet.
func (fp *FlagDefinition[T]) valueFrom(flags *pflag.FlagSet) (T, error) {
	var zero T
	switch any(zero).(type) {
	case string:
		v, err := flags.GetString(fp.Name)
		if err != nil {
			return zero, err
		}
		return any(v).(T), nil
	case bool:
		v, err := flags.GetBool(fp.Name)
		if err != nil {
			return zero, err
		}
		return any(v).(T), nil
	case time.Duration:
		v, err := flags.GetDuration(fp.Name)
		if err != nil {
			return zero, err
		}
		return any(v).(T), nil
	default:
		return zero, errorx.IllegalArgument.New("unsupported flag type: %T", zero)
	}
}

// Value extracts the flag value (from the full flag set: persistent, non-persistent or from parent) of the provided cobra command.
func (fp *FlagDefinition[T]) Value(cmd *cobra.Command, args []string) (T, error) {
	if args == nil {
		args = []string{}
	}

	err := cmd.ParseFlags(args)
	if err != nil {
		var zero T
		return zero, errorx.IllegalArgument.Wrap(err, "failed to parse flags for command %s", cmd.Name())
	}

	return fp.valueFrom(cmd.Flags())
}

// Changed returns true if the flag was set explicitly on the command line.
func (fp *FlagDefinition[T]) Changed(cmd *cobra.Command) bool {
	return cmd.Flags().Changed(fp.Name)
}

// SetVarP sets up the persistent flag and exits on error.
func (fp *FlagDefinition[T]) SetVarP(cmd *cobra.Command, p *T, required bool) {
	if err := fp.varP(cmd, p, required); err != nil {
		doctor.CheckErr(context.Background(), err, fmt.Sprintf("failed to set flag %s", fp.Name))
	}
}

// SetVar sets up the non-persistent flag and exits on error.
func (fp *FlagDefinition[T]) SetVar(cmd *cobra.Command, p *T, required bool) {
	if err := fp.varNP(cmd, p, required); err != nil {
		doctor.CheckErr(context.Background(), err, fmt.Sprintf("failed to set flag %s", fp.Name))
	}
}

func (fp *FlagDefinition[T]) varP(cmd *cobra.Command, p *T, required bool) error {
	if cmd == nil {
		return errorx.IllegalArgument.New("command for flag %s is nil", fp.Name)
	}

	if err := fp.setFlagVar(cmd.PersistentFlags(), p); err != nil {
		return err
	}

	if required {
		if err := cmd.MarkPersistentFlagRequired(fp.Name); err != nil {
			return errorx.InternalError.Wrap(err, "failed to mark persistent flag %s as required", fp.Name)
		}
	}

	return nil
}

func (fp *FlagDefinition[T]) varNP(cmd *cobra.Command, p *T, required bool) error {
	if cmd == nil {
		return errorx.IllegalArgument.New("command for flag %s is nil", fp.Name)
	}

	if err := fp.setFlagVar(cmd.Flags(), p); err != nil {
		return err
	}

	if required {
		if err := cmd.MarkFlagRequired(fp.Name); err != nil {
			return errorx.InternalError.Wrap(err, "failed to mark flag %s as required", fp.Name)
		}
	}

	return nil
}

// setFlagVar registers the flag on flags bound to p.
func (fp *FlagDefinition[T]) setFlagVar(flags *pflag.FlagSet, p *T) error {
	if p == nil {
		return errorx.IllegalArgument.New("pointer for flag %s is nil", fp.Name)
	}

	switch v := any(p).(type) {
	case *string:
		flags.StringVarP(v, fp.Name, fp.ShortName, any(fp.Default).(string), fp.Description)
	case *bool:
		flags.BoolVarP(v, fp.Name, fp.ShortName, any(fp.Default).(bool), fp.Description)
	case *time.Duration:
		flags.DurationVarP(v, fp.Name, fp.ShortName, any(fp.Default).(time.Duration), fp.Description)
	default:
		return errorx.IllegalArgument.New("unsupported flag type %T for flag %s", p, fp.Name)
	}

	return nil
}
