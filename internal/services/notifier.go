package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/example/retailadmin/internal/models"
)

// Event types published after state changes are committed.
const (
	EventOrderCreated       = "order.created"
	EventOrderEdited        = "order.edited"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderDeleted       = "order.deleted"
	EventPointsPosted       = "loyalty.points_posted"
)

// Event describes a committed change. Only the fields relevant to Type are set.
type Event struct {
	Type           string                     `json:"type"`
	OccurredAt     time.Time                  `json:"occurred_at"`
	Order          *models.Order              `json:"order,omitempty"`
	PreviousStatus string                     `json:"previous_status,omitempty"`
	Loyalty        *models.LoyaltyTransaction `json:"loyalty_transaction,omitempty"`
}

// Notifier receives committed events. Delivery is best effort: failures are
// logged by the caller and never undo the change.
type Notifier interface {
	Notify(ctx context.Context, evt Event) error
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Event) error { return nil }

// MultiNotifier fans an event out to every notifier and joins their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, evt Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func deliver(ctx context.Context, n Notifier, log *slog.Logger, evt Event) {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	if err := n.Notify(ctx, evt); err != nil {
		log.Warn("event delivery failed", "type", evt.Type, "error", err)
	}
}
