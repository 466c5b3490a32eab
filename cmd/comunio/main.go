package main

import (
	"context"

	"comunio-manager/cmd/comunio/commands"
	"comunio-manager/internal/components/serviceutil"
)

func main() {
	ctx, stop := serviceutil.SignalContext(context.Background())
	defer stop()
	commands.ExecuteContext(ctx)
}
