// Package notify delivers loyalty notifications. Delivery is fire-and-forget
// from the ledger's point of view: failures are logged, never propagated.
package notify

import (
	"context"
	"errors"

	"travel-workers/internal/common/logger"
	"travel-workers/internal/models"
)

type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// LogNotifier writes notifications to the log. It is the fallback when no
// delivery channel is configured.
type LogNotifier struct {
	logger logger.Logger
}

func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{logger: log.WithFields(map[string]interface{}{"channel": "log"})}
}

func (l *LogNotifier) Notify(_ context.Context, n models.Notification) error {
	l.logger.Info("notification", map[string]interface{}{
		"notificationId": n.ID,
		"userId":         n.UserID,
		"type":           n.Type,
		"title":          n.Title,
		"body":           n.Body,
	})
	return nil
}

// Multi sends to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n models.Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
