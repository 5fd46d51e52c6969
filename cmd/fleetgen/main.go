package main

import (
	"context"
	"os"

	"github.com/gitopslab/fleetgen/internal/logging"
	fleetos "github.com/gitopslab/fleetgen/internal/os"
)

func main() {
	ctx, cancel := fleetos.NotifyOnShutdown(context.Background())
	defer cancel()

	if err := Execute(ctx); err != nil {
		logging.LoggerFromContext(ctx).Error(err, "")
		os.Exit(1)
	}
}
