package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/skilllink/marketplace/internal/app"
	"github.com/skilllink/marketplace/internal/cli"
	"github.com/skilllink/marketplace/internal/config"
	"github.com/skilllink/marketplace/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	// Command output goes to stdout, so logs stay quiet and on stderr.
	if os.Getenv("LOG_LEVEL") == "" {
		cfg.Logger.Level = "warn"
	}
	cfg.Logger.Format = "console"

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var built *app.App
	root := cli.NewRootCommand(func(ctx context.Context) (*app.App, error) {
		a, err := app.Build(ctx, cfg, logger)
		built = a
		return a, err
	})
	err = root.ExecuteContext(ctx)
	if built != nil {
		built.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", cli.Describe(err))
		stop()
		os.Exit(1)
	}
}
