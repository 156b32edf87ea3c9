// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/hashgraph/kmodctl/cmd/kmodctl/commands"
	"github.com/hashgraph/kmodctl/internal/doctor"
	"github.com/hashgraph/kmodctl/pkg/logx"
)

func main() {
	ctx := logx.WithTraceId(context.Background(), uuid.NewString())
	err := commands.Execute(ctx)
	if err != nil {
		doctor.CheckErr(ctx, err)
	}
}
