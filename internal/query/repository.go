package query

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"travel-workers/internal/common/kvstore"
	"travel-workers/internal/common/logger"
)

// Storage keys kept compatible with existing data.
const (
	CustomAliasesKey = "travel:aliases:custom:v1"
	MyLocationKey    = "travel:mylocation:v1"
)

// Alias edit failures.
var (
	ErrInvalidAlias = errors.New("invalid alias")
	ErrStorageWrite = errors.New("storage write failed")
)

// Repository persists the custom alias list and the "my location" fallback.
// Reads never fail: absent or corrupt data degrades to empty values.
type Repository struct {
	store  kvstore.Store
	logger logger.Logger

	mu        sync.Mutex
	cachedRaw []byte
	cached    AliasMap
}

func NewRepository(store kvstore.Store, log logger.Logger) *Repository {
	return &Repository{
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "query-repository"}),
	}
}

func (r *Repository) loadRaw(ctx context.Context, key string) []byte {
	raw, ok, err := r.store.Get(ctx, key)
	if err != nil {
		r.logger.Warn("storage read failed", map[string]interface{}{
			"key":   key,
			"error": err,
		})
		return nil
	}
	if !ok {
		return nil
	}
	return raw
}

func decodeAliases(raw []byte) ([]LocationAlias, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var list []LocationAlias
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	return sanitizeAliases(list), nil
}

// LoadCustomAliases returns the user-defined aliases, or an empty list.
func (r *Repository) LoadCustomAliases(ctx context.Context) []LocationAlias {
	raw := r.loadRaw(ctx, CustomAliasesKey)
	list, err := decodeAliases(raw)
	if err != nil {
		r.logger.Warn("discarding malformed custom aliases", map[string]interface{}{
			"error": err,
		})
		return []LocationAlias{}
	}
	if list == nil {
		return []LocationAlias{}
	}
	return list
}

// SaveCustomAliases replaces the stored list. It reports false when the write
// failed.
func (r *Repository) SaveCustomAliases(ctx context.Context, list []LocationAlias) bool {
	clean := sanitizeAliases(list)
	raw, err := json.Marshal(clean)
	if err != nil {
		r.logger.Error("encode custom aliases", map[string]interface{}{"error": err})
		return false
	}
	if err := r.store.Set(ctx, CustomAliasesKey, raw); err != nil {
		r.logger.Error("storage write failed", map[string]interface{}{
			"key":   CustomAliasesKey,
			"error": err,
		})
		return false
	}
	r.logger.Debug("custom aliases saved", map[string]interface{}{"count": len(clean)})
	return true
}

// GetAliasMap returns nil when aliases are disabled, otherwise the built-in
// table with the custom list merged over it.
func (r *Repository) GetAliasMap(ctx context.Context, enableAliases bool) AliasMap {
	if !enableAliases {
		return nil
	}
	raw := r.loadRaw(ctx, CustomAliasesKey)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cached != nil && bytes.Equal(raw, r.cachedRaw) {
		return r.cached
	}

	custom, err := decodeAliases(raw)
	if err != nil {
		r.logger.Warn("discarding malformed custom aliases", map[string]interface{}{
			"error": err,
		})
		custom = nil
	}
	r.cached = MergeAliases(builtinAliases, custom)
	r.cachedRaw = append([]byte(nil), raw...)
	return r.cached
}

// AddCustomAlias stores key -> target, replacing any custom alias with the
// same key. It reports whether the key shadows a built-in alias.
func (r *Repository) AddCustomAlias(ctx context.Context, key string, target LocationRef) (bool, error) {
	k := NormalizeAliasKey(key)
	if k == "" {
		return false, fmt.Errorf("%w: key is empty", ErrInvalidAlias)
	}
	t := target.Normalize()
	if t.IsEmpty() {
		return false, fmt.Errorf("%w: %q has no target location", ErrInvalidAlias, k)
	}

	list := append(r.LoadCustomAliases(ctx), LocationAlias{Key: k, Target: t})
	if !r.SaveCustomAliases(ctx, list) {
		return false, fmt.Errorf("save custom aliases: %w", ErrStorageWrite)
	}
	return isBuiltinKey(k), nil
}

// RemoveCustomAlias deletes key from the custom list. Built-in aliases cannot
// be removed. It reports whether anything was removed.
func (r *Repository) RemoveCustomAlias(ctx context.Context, key string) (bool, error) {
	k := NormalizeAliasKey(key)
	list := r.LoadCustomAliases(ctx)
	kept := list[:0]
	removed := false
	for _, a := range list {
		if a.Key == k {
			removed = true
			continue
		}
		kept = append(kept, a)
	}
	if !removed {
		return false, nil
	}
	if !r.SaveCustomAliases(ctx, kept) {
		return false, fmt.Errorf("save custom aliases: %w", ErrStorageWrite)
	}
	return true, nil
}

// LoadMyLocation returns the saved fallback location, or an empty ref.
func (r *Repository) LoadMyLocation(ctx context.Context) LocationRef {
	raw := r.loadRaw(ctx, MyLocationKey)
	if len(raw) == 0 {
		return LocationRef{}
	}
	var loc LocationRef
	if err := json.Unmarshal(raw, &loc); err != nil {
		r.logger.Warn("discarding malformed my-location", map[string]interface{}{
			"error": err,
		})
		return LocationRef{}
	}
	return loc
}

// SaveMyLocation stores loc as the "near me" fallback.
func (r *Repository) SaveMyLocation(ctx context.Context, loc LocationRef) bool {
	raw, err := json.Marshal(loc)
	if err != nil {
		return false
	}
	if err := r.store.Set(ctx, MyLocationKey, raw); err != nil {
		r.logger.Error("storage write failed", map[string]interface{}{
			"key":   MyLocationKey,
			"error": err,
		})
		return false
	}
	return true
}
