// Package events is a small typed publish/subscribe hub for ledger events.
package events

import (
	"context"
	"fmt"
	"sync"

	"travel-workers/internal/common/logger"
)

type Kind string

const (
	PointsEarned   Kind = "points_earned"
	PointsRedeemed Kind = "points_redeemed"
	TierUpgraded   Kind = "tier_upgraded"
	BadgeEarned    Kind = "badge_earned"
)

// Event is delivered to every subscriber. Only the fields relevant to Kind
// are populated.
type Event struct {
	Kind     Kind
	UserID   string
	Points   int
	Balance  int
	Reason   string
	FromTier string
	ToTier   string
	BadgeID  string
	Badge    string
}

// Handler receives published events. A returned error is logged only.
type Handler func(ctx context.Context, e Event) error

// Bus delivers events synchronously in subscription order. A failing or
// panicking handler does not affect the publisher or other handlers.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscription
	logger logger.Logger
}

type subscription struct {
	id int
	fn Handler
}

func NewBus(log logger.Logger) *Bus {
	return &Bus{logger: log.WithFields(map[string]interface{}{"component": "events"})}
}

// Subscribe registers fn and returns a function that removes it. Calling the
// returned function more than once is harmless.
func (b *Bus) Subscribe(fn Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.subs {
				if s.id == id {
					b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (b *Bus) Publish(ctx context.Context, e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		if err := b.deliver(ctx, s.fn, e); err != nil {
			b.logger.Warn("event handler failed", map[string]interface{}{
				"kind":   string(e.Kind),
				"userId": e.UserID,
				"error":  err,
			})
		}
	}
}

func (b *Bus) deliver(ctx context.Context, fn Handler, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return fn(ctx, e)
}
