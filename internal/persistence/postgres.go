package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/skilllink/marketplace/internal/config"
)

// Postgres wraps access to a pgx connection pool.
type Postgres struct {
	Pool *pgxpool.Pool
}

// NewPostgres establishes a connection pool. Unlike the optional Redis
// client, a missing DSN is an error because the postgres backend has no
// fallback.
func NewPostgres(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*Postgres, error) {
	if cfg.DSN == "" {
		return nil, errors.New("POSTGRES_DSN is required for the postgres store backend")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxIdleSec > 0 {
		poolCfg.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleSec) * time.Second
	}
	if cfg.ConnMaxLifeSec > 0 {
		poolCfg.MaxConnLifetime = time.Duration(cfg.ConnMaxLifeSec) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("connected to postgres")
	return &Postgres{Pool: pool}, nil
}

// Close releases pool resources.
func (p *Postgres) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}

// storeLockID serialises Atomic calls across processes, including the first
// write of a key that has no row to lock yet.
const storeLockID int64 = 0x736b6c6c

// PostgresBackend keeps every key as a row of the kv_store table.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// NewPostgresBackend builds a backend on an open pool.
func NewPostgresBackend(pool *pgxpool.Pool) *PostgresBackend {
	return &PostgresBackend{pool: pool}
}

const upsertKV = `
	INSERT INTO kv_store (key, value, updated_at)
	VALUES ($1, $2, NOW())
	ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

func (b *PostgresBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var val []byte
	err := b.pool.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&val)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	return val, err
}

func (b *PostgresBackend) Set(ctx context.Context, key string, value []byte) error {
	_, err := b.pool.Exec(ctx, upsertKV, key, value)
	return err
}

func (b *PostgresBackend) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := b.pool.Exec(ctx, `DELETE FROM kv_store WHERE key = ANY($1)`, keys)
	return err
}

func (b *PostgresBackend) Atomic(ctx context.Context, keys []string, fn AtomicFunc) error {
	tx, err := b.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, storeLockID); err != nil {
		return err
	}

	rows, err := tx.Query(ctx, `SELECT key, value FROM kv_store WHERE key = ANY($1) FOR UPDATE`, keys)
	if err != nil {
		return err
	}
	current := make(map[string][]byte, len(keys))
	for rows.Next() {
		var (
			key string
			val []byte
		)
		if err := rows.Scan(&key, &val); err != nil {
			rows.Close()
			return err
		}
		current[key] = val
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	writes, err := fn(current)
	if err != nil {
		return err
	}
	for key, val := range writes {
		if _, err := tx.Exec(ctx, upsertKV, key, val); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (b *PostgresBackend) Ping(ctx context.Context) error {
	return b.pool.Ping(ctx)
}

func (b *PostgresBackend) Close() error {
	b.pool.Close()
	return nil
}
