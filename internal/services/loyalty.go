package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/retailadmin/internal/models"
)

// LoyaltyService posts loyalty points and keeps the points ledger.
type LoyaltyService struct {
	store    Store
	settings *SettingsService
	notifier Notifier
	log      *slog.Logger
}

// NewLoyaltyService constructs LoyaltyService.
func NewLoyaltyService(store Store, settings *SettingsService, notifier Notifier, log *slog.Logger) *LoyaltyService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &LoyaltyService{store: store, settings: settings, notifier: notifier, log: log}
}

// PointsForAmount converts a spend into whole points. A non-positive divisor
// earns nothing.
func PointsForAmount(amount, pointsPerCurrency decimal.Decimal) int {
	if !pointsPerCurrency.IsPositive() || !amount.IsPositive() {
		return 0
	}
	return int(amount.Div(pointsPerCurrency).Floor().IntPart())
}

// PostOrderCompletion credits the customer for a completed order and appends
// an earn entry to the ledger. It returns nil when no points are due.
//
// The caller decides whether the order just transitioned into completed;
// this runs as its own transaction after the status write.
func (s *LoyaltyService) PostOrderCompletion(ctx context.Context, order *models.Order) (*models.LoyaltyTransaction, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	points := PointsForAmount(order.TotalAmount, settings.PointsPerCurrency)
	if points <= 0 {
		return nil, nil
	}

	var entry *models.LoyaltyTransaction
	err = s.store.RunInTransaction(ctx, func(tx Tx) error {
		customer, err := tx.GetCustomer(order.CustomerID)
		if err != nil {
			return err
		}

		customer.LoyaltyPoints += points
		if err := tx.PutCustomer(customer); err != nil {
			return err
		}

		orderID := order.ID
		entry = &models.LoyaltyTransaction{
			CustomerID:   customer.ID,
			CustomerName: customer.Name,
			OrderID:      &orderID,
			Points:       points,
			Type:         models.LoyaltyTypeEarn,
			Reason:       fmt.Sprintf("Order #%s completed", shortID(order.ID)),
			ReasonCode:   models.ReasonCodeOrderCompleted,
			BalanceAfter: customer.LoyaltyPoints,
		}
		return tx.AddLoyaltyTransaction(entry)
	})
	if errors.Is(err, ErrNotFound) {
		s.log.Warn("points not posted, customer no longer exists",
			"order_id", order.ID, "customer_id", order.CustomerID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("loyalty points posted",
		"order_id", order.ID, "customer_id", order.CustomerID,
		"points", points, "balance_after", entry.BalanceAfter)
	s.publish(ctx, Event{Type: EventPointsPosted, Order: order, Loyalty: entry})
	return entry, nil
}

// AdjustPointsInput is a manual, operator-initiated points change.
type AdjustPointsInput struct {
	CustomerID uuid.UUID
	Adjustment int
	Reason     string
	Actor      string
}

// AdjustPoints applies a signed manual adjustment and records it in the ledger.
// Balances are allowed to go below zero.
func (s *LoyaltyService) AdjustPoints(ctx context.Context, in AdjustPointsInput) (*models.LoyaltyTransaction, error) {
	reason := strings.TrimSpace(in.Reason)
	if in.Adjustment == 0 || reason == "" {
		return nil, ErrInvalidAdjustment
	}

	var entry *models.LoyaltyTransaction
	err := s.store.RunInTransaction(ctx, func(tx Tx) error {
		customer, err := tx.GetCustomer(in.CustomerID)
		if err != nil {
			return err
		}

		customer.LoyaltyPoints += in.Adjustment
		if err := tx.PutCustomer(customer); err != nil {
			return err
		}

		entryType := models.LoyaltyTypeEarn
		if in.Adjustment < 0 {
			entryType = models.LoyaltyTypeRedeem
		}
		entry = &models.LoyaltyTransaction{
			CustomerID:   customer.ID,
			CustomerName: customer.Name,
			Points:       in.Adjustment,
			Type:         entryType,
			Reason:       reason,
			ReasonCode:   models.ReasonCodeManualAdjustment,
			BalanceAfter: customer.LoyaltyPoints,
			CreatedBy:    in.Actor,
		}
		return tx.AddLoyaltyTransaction(entry)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("loyalty points adjusted",
		"customer_id", in.CustomerID, "points", in.Adjustment,
		"balance_after", entry.BalanceAfter, "actor", in.Actor)
	s.publish(ctx, Event{Type: EventPointsPosted, Loyalty: entry})
	return entry, nil
}

// ListTransactions returns a customer's ledger, newest first.
func (s *LoyaltyService) ListTransactions(ctx context.Context, customerID uuid.UUID) ([]models.LoyaltyTransaction, error) {
	if _, err := s.store.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	return s.store.ListLoyaltyTransactions(ctx, customerID)
}

func (s *LoyaltyService) publish(ctx context.Context, evt Event) {
	deliver(ctx, s.notifier, s.log, evt)
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
