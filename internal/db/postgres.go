package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"crypto-insight/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	newPool = pgxpool.New
	ping    = func(ctx context.Context, pool *pgxpool.Pool) error {
		return pool.Ping(ctx)
	}
)

// ErrNoDatabase is returned when DATABASE_URL is not configured.
var ErrNoDatabase = errors.New("DATABASE_URL not set")

// InitPostgres opens a pgx pool against DATABASE_URL and verifies it with a
// ping. The caller owns the returned pool.
func InitPostgres(ctx context.Context) (*pgxpool.Pool, error) {
	dsn := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dsn == "" {
		return nil, ErrNoDatabase
	}

	pool, err := newPool(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := ping(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.WithComponent("db").Info("connected to Postgres")
	return pool, nil
}
