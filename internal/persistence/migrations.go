package persistence

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// RunMigrations applies every pending up migration in dir to the database
// named by dsn. Applied versions are tracked by golang-migrate.
func RunMigrations(dsn, dir string, logger *zap.Logger) error {
	databaseURL, err := migrateDatabaseURL(dsn)
	if err != nil {
		return err
	}
	sourceURL, err := migrateSourceURL(dir)
	if err != nil {
		return err
	}

	migrator, err := migrate.New(sourceURL, databaseURL)
	if err != nil {
		return fmt.Errorf("init migrator failed: %w", err)
	}
	defer func() {
		_, _ = migrator.Close()
	}()

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("migrations up to date")
			return nil
		}
		return fmt.Errorf("migrate up failed: %w", err)
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}
	logger.Info("migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// migrateDatabaseURL rewrites a postgres URL onto the pgx v5 driver's scheme.
// Keyword/value DSNs carry no scheme and are rejected.
func migrateDatabaseURL(dsn string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse POSTGRES_DSN: %w", err)
	}
	switch u.Scheme {
	case "postgres", "postgresql", "pgx5":
	default:
		return "", fmt.Errorf("POSTGRES_DSN must be a postgres:// URL to run migrations, got scheme %q", u.Scheme)
	}
	u.Scheme = "pgx5"
	return u.String(), nil
}

func migrateSourceURL(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve migrations dir: %w", err)
	}
	return "file://" + filepath.ToSlash(abs), nil
}
