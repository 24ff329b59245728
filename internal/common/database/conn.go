// Package database opens the pooled clients behind the key-value store and
// the product catalog.
package database

import (
	"context"
	"time"
)

// Conn is a backing service connection the service assembly can health-check
// and release.
type Conn interface {
	Name() string
	Ping(ctx context.Context) error
	Close() error
}

const pingTimeout = 5 * time.Second
