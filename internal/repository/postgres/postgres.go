package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/garnizeh/studybuddy/pkg/repository"
)

// PoolOptions tunes the connection pool opened by Open.
type PoolOptions struct {
	MaxConns int32
	// SimpleProtocol is required when connecting through a transaction pooler such as
	// PgBouncer, which cannot hold prepared statements.
	SimpleProtocol  bool
	ApplicationName string
}

// Open parses dsn, applies opts and pings the database.
func Open(ctx context.Context, dsn string, opts PoolOptions) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if opts.SimpleProtocol {
		cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	}
	if opts.ApplicationName != "" {
		cfg.ConnConfig.RuntimeParams["application_name"] = opts.ApplicationName
	}
	cfg.ConnConfig.RuntimeParams["statement_timeout"] = "30000"
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	cfg.MinConns = 0
	cfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return pool, nil
}

// PostgresRepo implements repository interfaces on a pgx pool.
type PostgresRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

var _ repository.Store = (*PostgresRepo)(nil)

func New(pool *pgxpool.Pool, logger *slog.Logger) *PostgresRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRepo{pool: pool, logger: logger}
}

func now() time.Time {
	return time.Now().UTC()
}

func orNow(t time.Time) time.Time {
	if t.IsZero() {
		return now()
	}
	return t.UTC()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
