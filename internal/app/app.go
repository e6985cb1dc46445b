// Package app assembles the store, services and collaborators shared by the
// HTTP server and the CLI.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/skilllink/marketplace/internal/auth"
	"github.com/skilllink/marketplace/internal/classifier"
	"github.com/skilllink/marketplace/internal/config"
	"github.com/skilllink/marketplace/internal/events"
	"github.com/skilllink/marketplace/internal/mq"
	"github.com/skilllink/marketplace/internal/persistence"
	"github.com/skilllink/marketplace/internal/repository"
	"github.com/skilllink/marketplace/internal/service"
)

// App holds the wired components. Close releases them in reverse order.
type App struct {
	Config *config.Config
	Logger *zap.Logger

	Store *persistence.Store
	Redis *persistence.Redis
	Queue *mq.MQ

	Dispatcher events.Dispatcher
	Tokens     *auth.TokenManager
	UserRepo   repository.UserRepository
	JobRepo    repository.JobRepository

	Auth          *service.AuthService
	Jobs          *service.JobService
	Settlement    *service.SettlementService
	Notifications *service.NotificationService
	Classifier    *classifier.Classifier

	closers []func()
}

// Build connects the configured backend, seeds demo data when enabled and
// constructs every service.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: cfg, Logger: logger}

	backend, err := a.openBackend(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Store = persistence.NewStore(backend, logger)
	a.closers = append(a.closers, func() { _ = a.Store.Close() })

	if cfg.Store.SeedDemo {
		if err := a.Seed(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}

	if err := a.openQueue(); err != nil {
		a.Close()
		return nil, err
	}

	a.Dispatcher = events.NewInMemoryDispatcher()
	a.Tokens = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	a.UserRepo = repository.NewUserRepository(a.Store)
	a.JobRepo = repository.NewJobRepository(a.Store)

	a.Auth = service.NewAuthService(*cfg, service.AuthDependencies{
		Store:      a.Store,
		UserRepo:   a.UserRepo,
		Tokens:     a.Tokens,
		Dispatcher: a.Dispatcher,
		Logger:     logger,
	})
	a.Jobs = service.NewJobService(service.JobDependencies{
		Store:      a.Store,
		JobRepo:    a.JobRepo,
		UserRepo:   a.UserRepo,
		Dispatcher: a.Dispatcher,
		Logger:     logger,
	})
	a.Settlement = service.NewSettlementService(service.SettlementDependencies{
		Store:      a.Store,
		LedgerRepo: repository.NewLedgerRepository(a.Store),
		Dispatcher: a.Dispatcher,
		Logger:     logger,
	})
	a.Notifications = service.NewNotificationService(a.Dispatcher, logger, a.Queue)

	a.Classifier, err = classifier.NewFromConfig(ctx, cfg.Classifier, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init classifier: %w", err)
	}
	return a, nil
}

// Seed writes the demo workers if the user table is empty.
func (a *App) Seed(ctx context.Context) error {
	workers, err := service.DemoWorkers(a.Config.Auth.BcryptCost)
	if err != nil {
		return fmt.Errorf("build demo workers: %w", err)
	}
	if err := a.Store.EnsureSeeded(ctx, workers); err != nil {
		return fmt.Errorf("seed store: %w", err)
	}
	return nil
}

// Reseed wipes every table and seeds again.
func (a *App) Reseed(ctx context.Context) error {
	if err := a.Store.Reset(ctx); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	return a.Seed(ctx)
}

// Close releases everything Build opened.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) redis() *persistence.Redis {
	if a.Redis == nil {
		a.Redis = persistence.NewRedis(a.Config.Redis, a.Logger)
		a.closers = append(a.closers, a.Redis.Close)
	}
	return a.Redis
}

func (a *App) openBackend(ctx context.Context) (persistence.Backend, error) {
	switch a.Config.Store.Backend {
	case config.StoreBackendRedis:
		return persistence.NewRedisBackend(a.redis().Client, a.Config.Store.MaxTxRetries), nil
	case config.StoreBackendPostgres:
		pg, err := persistence.NewPostgres(ctx, a.Config.Postgres, a.Logger)
		if err != nil {
			return nil, err
		}
		if a.Config.Postgres.RunMigrations {
			if err := persistence.RunMigrations(a.Config.Postgres.DSN, a.Config.Postgres.MigrationsDir, a.Logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		return persistence.NewPostgresBackend(pg.Pool), nil
	default:
		return persistence.NewMemoryBackend(), nil
	}
}

func (a *App) openQueue() error {
	switch a.Config.Events.Sink {
	case config.EventsSinkRedis:
		a.Queue = mq.New(mq.NewRedisPubSub(a.redis().Client))
	case config.EventsSinkRabbitMQ:
		client, err := mq.NewRabbitMQClient(a.Config.Events.RabbitMQURL, a.Config.Events.RabbitMQPrefetch)
		if err != nil {
			return fmt.Errorf("connect rabbitmq: %w", err)
		}
		a.Queue = mq.New(client)
	default:
		return nil
	}
	a.closers = append(a.closers, func() { _ = a.Queue.Close() })
	return nil
}
