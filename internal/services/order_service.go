package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/retailadmin/internal/models"
)

// OrderService covers the order operations outside settlement: status
// changes, delivery details, notes and deletion. These are single-document
// updates with last-write-wins semantics.
type OrderService struct {
	store    Store
	loyalty  *LoyaltyService
	notifier Notifier
	log      *slog.Logger
}

// NewOrderService constructs OrderService.
func NewOrderService(store Store, loyalty *LoyaltyService, notifier Notifier, log *slog.Logger) *OrderService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &OrderService{store: store, loyalty: loyalty, notifier: notifier, log: log}
}

// GetOrder loads one order.
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.store.GetOrder(ctx, id)
}

// ListOrders returns a page of orders, newest first, and the total count.
func (s *OrderService) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	if filter.Status != "" && !models.IsValidOrderStatus(filter.Status) {
		return nil, 0, invalid("status", "unknown order status")
	}
	return s.store.ListOrders(ctx, filter)
}

// StatusChange is the outcome of ChangeStatus.
type StatusChange struct {
	Order          *models.Order
	PreviousStatus string
	PointsPosted   *models.LoyaltyTransaction
}

// ChangeStatus writes the new status and, when the order has just moved into
// completed, posts loyalty points in a separate step. A failure to post points
// is returned together with the already-updated order.
func (s *OrderService) ChangeStatus(ctx context.Context, id uuid.UUID, status string) (*StatusChange, error) {
	if !models.IsValidOrderStatus(status) {
		return nil, invalid("status", "must be one of pending, processing, completed, canceled")
	}

	previous, order, err := s.store.SetOrderStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	change := &StatusChange{Order: order, PreviousStatus: previous}
	s.log.Info("order status changed", "order_id", id, "from", previous, "to", status)
	deliver(ctx, s.notifier, s.log, Event{Type: EventOrderStatusChanged, Order: order, PreviousStatus: previous})

	if status == models.OrderStatusCompleted && previous != models.OrderStatusCompleted {
		entry, err := s.loyalty.PostOrderCompletion(ctx, order)
		if err != nil {
			s.log.Error("order completed but loyalty points were not posted",
				"order_id", id, "customer_id", order.CustomerID, "error", err)
			return change, err
		}
		change.PointsPosted = entry
	}
	return change, nil
}

// DeliveryUpdate changes the payment and delivery fields of an order. Nil
// fields are left as they are; an empty RiderID clears the assignment.
type DeliveryUpdate struct {
	PaymentStatus  *string
	PaymentMethod  *string
	DeliveryStatus *string
	RiderID        *string
}

// UpdateDelivery applies a DeliveryUpdate, snapshotting the rider name.
func (s *OrderService) UpdateDelivery(ctx context.Context, id uuid.UUID, in DeliveryUpdate) (*models.Order, error) {
	patch := OrderPatch{
		PaymentStatus:  trimmed(in.PaymentStatus),
		PaymentMethod:  trimmed(in.PaymentMethod),
		DeliveryStatus: trimmed(in.DeliveryStatus),
	}

	if in.RiderID != nil {
		raw := strings.TrimSpace(*in.RiderID)
		if raw == "" {
			patch.Rider = &RiderAssignment{}
		} else {
			riderID, err := uuid.Parse(raw)
			if err != nil {
				return nil, invalid("assigned_rider_id", "invalid id")
			}
			rider, err := s.store.GetRider(ctx, riderID)
			if errors.Is(err, ErrNotFound) {
				return nil, invalid("assigned_rider_id", "rider not found")
			}
			if err != nil {
				return nil, err
			}
			patch.Rider = &RiderAssignment{ID: &rider.ID, Name: rider.Name}
		}
	}

	if patch.PaymentStatus == nil && patch.PaymentMethod == nil && patch.DeliveryStatus == nil && patch.Rider == nil {
		return nil, invalid("", "no fields to update")
	}

	return s.store.PatchOrder(ctx, id, patch)
}

// AddNote appends a timestamped note to the internal or delivery notes.
func (s *OrderService) AddNote(ctx context.Context, id uuid.UUID, kind NoteKind, text string) (*models.Note, error) {
	if kind != NoteKindInternal && kind != NoteKindDelivery {
		return nil, invalid("kind", "must be notes or delivery_notes")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("text", "note cannot be empty")
	}

	note := models.Note{ID: uuid.New(), Text: text, Timestamp: time.Now().UTC()}
	if err := s.store.AppendOrderNote(ctx, id, kind, note); err != nil {
		return nil, err
	}
	return &note, nil
}

// RemoveNote deletes one note by id.
func (s *OrderService) RemoveNote(ctx context.Context, id uuid.UUID, kind NoteKind, noteID uuid.UUID) error {
	if kind != NoteKindInternal && kind != NoteKindDelivery {
		return invalid("kind", "must be notes or delivery_notes")
	}
	return s.store.RemoveOrderNote(ctx, id, kind, noteID)
}

// DeleteOrder removes the order document only. Stock, customer aggregates and
// posted points are left as they are.
func (s *OrderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteOrder(ctx, id); err != nil {
		return err
	}
	s.log.Info("order deleted", "order_id", id, "customer_id", order.CustomerID)
	deliver(ctx, s.notifier, s.log, Event{Type: EventOrderDeleted, Order: order})
	return nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
