package main

import (
	"context"
	_ "embed"
	"os"
	"os/signal"
	"syscall"

	"github.com/tigerroll/graphload/internal/app"
	"github.com/tigerroll/graphload/pkg/batch/support/util/logger"
)

// embeddedConfig is the default configuration; --config replaces it.
//
//go:embed resources/application.yaml
var embeddedConfig []byte

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.NewRootCommand(embeddedConfig).ExecuteContext(ctx); err != nil {
		logger.Errorf("graphload: %v", err)
		stop()
		os.Exit(1)
	}
}
