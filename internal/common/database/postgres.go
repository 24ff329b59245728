// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"travel-workers/internal/common/config"
)

// PostgresClient is one pool shared by the postgres key-value store and the
// postgres catalog source.
type PostgresClient struct {
	DB   *sql.DB
	host string
}

// NewPostgres opens the pool without dialing.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	configurePool(db, cfg)
	return &PostgresClient{DB: db, host: fmt.Sprintf("%s:%d/%s", cfg.Host, cfg.Port, cfg.Database)}, nil
}

// WrapPostgres adopts an already opened handle, e.g. a sqlmock connection.
func WrapPostgres(db *sql.DB, cfg config.PostgresConfig) *PostgresClient {
	configurePool(db, cfg)
	return &PostgresClient{DB: db, host: cfg.Host}
}

func configurePool(db *sql.DB, cfg config.PostgresConfig) {
	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
	}
	if cfg.MaxIdle > 0 {
		db.SetMaxIdleConns(cfg.MaxIdle)
	}
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
}

func (c *PostgresClient) Name() string { return "postgres" }

func (c *PostgresClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := c.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres %s: %w", c.host, err)
	}
	return nil
}

func (c *PostgresClient) Close() error {
	return c.DB.Close()
}
