package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"travel-workers/internal/common/logger"
	"travel-workers/internal/events"
	"travel-workers/internal/models"
)

// Default delivery settings for NewDispatcher.
const (
	DefaultQueueSize   = 256
	DefaultSendTimeout = 10 * time.Second
)

// Dispatcher turns ledger events into user-facing notifications. Delivery
// happens on a background goroutine; Handle only enqueues.
type Dispatcher struct {
	notifier    Notifier
	logger      logger.Logger
	now         func() time.Time
	sendTimeout time.Duration

	queue chan queued
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

type queued struct {
	ctx context.Context
	n   models.Notification
}

type DispatcherOption func(*Dispatcher)

// WithQueueSize sets how many notifications may wait for delivery. Further
// notifications are dropped and logged.
func WithQueueSize(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queue = make(chan queued, n)
		}
	}
}

// WithSendTimeout bounds each delivery attempt.
func WithSendTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.sendTimeout = timeout
		}
	}
}

// NewDispatcher starts the delivery goroutine. Call Close to drain it.
func NewDispatcher(notifier Notifier, log logger.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		notifier:    notifier,
		logger:      log.WithFields(map[string]interface{}{"component": "notify-dispatcher"}),
		now:         time.Now,
		sendTimeout: DefaultSendTimeout,
		queue:       make(chan queued, DefaultQueueSize),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	go d.run()
	return d
}

// Attach subscribes the dispatcher to bus and returns the unsubscribe handle.
func (d *Dispatcher) Attach(bus *events.Bus) func() {
	return bus.Subscribe(d.Handle)
}

// Handle enqueues the notification for e and returns at once. It never
// returns an error; a full queue or a closed dispatcher drops the
// notification with a warning.
func (d *Dispatcher) Handle(ctx context.Context, e events.Event) error {
	n, ok := d.build(e)
	if !ok {
		return nil
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(n, "dispatcher closed")
		return nil
	}
	select {
	case d.queue <- queued{ctx: context.WithoutCancel(ctx), n: n}:
	default:
		d.drop(n, "queue full")
	}
	return nil
}

// Close stops accepting notifications and waits until the queued ones
// have been delivered or ctx is done.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for q := range d.queue {
		d.send(q)
	}
}

func (d *Dispatcher) send(q queued) {
	ctx, cancel := context.WithTimeout(q.ctx, d.sendTimeout)
	defer cancel()
	if err := d.notifier.Notify(ctx, q.n); err != nil {
		d.logger.Warn("notification delivery failed", map[string]interface{}{
			"userId": q.n.UserID,
			"type":   q.n.Type,
			"error":  err,
		})
	}
}

func (d *Dispatcher) drop(n models.Notification, reason string) {
	d.logger.Warn("notification dropped", map[string]interface{}{
		"userId": n.UserID,
		"type":   n.Type,
		"reason": reason,
	})
}

func (d *Dispatcher) build(e events.Event) (models.Notification, bool) {
	n := models.Notification{
		ID:        uuid.New().String(),
		UserID:    e.UserID,
		CreatedAt: d.now().UTC().Format(time.RFC3339),
	}
	switch e.Kind {
	case events.PointsEarned:
		n.Type = models.NotificationPointsEarned
		n.Title = fmt.Sprintf("You earned %d points", e.Points)
		n.Body = fmt.Sprintf("%s. Your balance is now %d points.", e.Reason, e.Balance)
		n.Payload = map[string]interface{}{"points": e.Points, "balance": e.Balance}
	case events.TierUpgraded:
		n.Type = models.NotificationTierUpgrade
		n.Title = fmt.Sprintf("Welcome to %s tier", titleCase(e.ToTier))
		n.Body = fmt.Sprintf("You moved up from %s to %s. Enjoy your new benefits.", titleCase(e.FromTier), titleCase(e.ToTier))
		n.Payload = map[string]interface{}{"from": e.FromTier, "to": e.ToTier}
	case events.BadgeEarned:
		n.Type = models.NotificationBadgeEarned
		n.Title = fmt.Sprintf("Badge unlocked: %s", e.Badge)
		n.Body = fmt.Sprintf("You earned the %s badge and %d bonus points.", e.Badge, e.Points)
		n.Payload = map[string]interface{}{"badgeId": e.BadgeID}
	default:
		return models.Notification{}, false
	}
	return n, true
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 'a' - 'A'
	}
	return string(r)
}
