// Package kvstore is the persistence seam for custom location aliases, the
// "my location" fallback and loyalty accounts. Values are opaque JSON blobs
// written whole; there is no transactional guarantee across processes and
// concurrent writers to the same key resolve as last write wins.
package kvstore

import "context"

// Store is a minimal key-value interface. Get reports ok=false for absent keys;
// err is reserved for backend failures.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}

// Prefixed namespaces every key of an underlying store.
type Prefixed struct {
	Store  Store
	Prefix string
}

func (p Prefixed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return p.Store.Get(ctx, p.Prefix+key)
}

func (p Prefixed) Set(ctx context.Context, key string, value []byte) error {
	return p.Store.Set(ctx, p.Prefix+key, value)
}

// WithPrefix returns s unchanged when prefix is empty.
func WithPrefix(s Store, prefix string) Store {
	if prefix == "" {
		return s
	}
	return Prefixed{Store: s, Prefix: prefix}
}
