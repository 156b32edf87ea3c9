// SPDX-License-Identifier: Apache-2.0

package module

import (
	"context"

	"github.com/hashgraph/kmodctl/internal/config"
	"github.com/hashgraph/kmodctl/pkg/kernel"
	"github.com/hashgraph/kmodctl/pkg/logx"
	"github.com/spf13/cobra"
)

// operatorFactory builds the operator from the loaded configuration; replaced in tests.
type operatorFactory func(ctx context.Context, cfg config.KernelConfig) (kernel.Operator, error)

var moduleCmd = newCmd(newOperator)

func GetCmd() *cobra.Command {
	return moduleCmd
}

func newCmd(factory operatorFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "module",
		Aliases: []string{"modprobe", "kmod"},
		Short:   "Manage the loaded state of a Linux kernel module",
		Long:    "Check whether a Linux kernel module is loaded and load or unload it to reach the desired state",
	}

	cmd.AddCommand(newApplyCmd(factory), newStatusCmd(factory))
	return cmd
}

func newOperator(ctx context.Context, cfg config.KernelConfig) (kernel.Operator, error) {
	return kernel.NewOperator(
		kernel.WithBackend(cfg.Backend),
		kernel.WithCommands(cfg.ListCommand, cfg.ProbeCommand),
		kernel.WithTimeout(cfg.Timeout),
		kernel.WithStrictCheck(cfg.StrictCheck),
		kernel.WithPersistDir(cfg.PersistDir),
		kernel.WithLockFile(cfg.LockFile),
		kernel.WithLogger(*logx.WithContext(ctx, nil)),
	)
}
