// Package database opens pgx connection pools from configuration.
package database

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/JonMunkholm/nightnice-admin/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Open parses dsn, applies pool settings from cfg, connects and pings.
// The connect and ping share cfg.ConnectTimeout.
func Open(ctx context.Context, dsn string, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return pool, nil
}

// Describe returns "host/dbname" for dsn without credentials, for logs.
func Describe(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Host == "" {
		return "database"
	}
	return u.Host + "/" + strings.TrimPrefix(u.Path, "/")
}
