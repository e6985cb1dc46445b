package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/skilllink/marketplace/internal/api/http"
	"github.com/skilllink/marketplace/internal/api/http/handlers"
	"github.com/skilllink/marketplace/internal/app"
	"github.com/skilllink/marketplace/internal/auth"
	"github.com/skilllink/marketplace/internal/config"
	"github.com/skilllink/marketplace/internal/observability"
	"github.com/skilllink/marketplace/internal/repository"
	"github.com/skilllink/marketplace/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to build application", zap.Error(err))
	}
	defer deps.Close()

	// Other processes (the CLI) write the same tables, so the server polls
	// for their changes and republishes them as events.
	poller := worker.NewJobPoller(deps.Store, repository.JobFilter{}, cfg.Poll.Interval(), logger,
		worker.EventPublisher(deps.Dispatcher, logger))
	worker.StartNotificationWorker(ctx, deps.Notifications, poller)

	metrics := observability.NewMetrics()
	server := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(server, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(server, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.Store.Backend, deps.Store, deps.Redis, deps.Classifier),
		Users:          handlers.NewUsersHandler(deps.Auth),
		Workers:        handlers.NewWorkersHandler(deps.Jobs),
		Jobs:           handlers.NewJobsHandler(deps.Jobs, deps.Settlement),
		Classify:       handlers.NewClassifyHandler(deps.Classifier),
		AuthMiddleware: auth.NewAuthMiddleware(deps.Tokens, deps.UserRepo),
	})

	go func() {
		if err := server.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = server.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
