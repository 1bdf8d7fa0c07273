package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/example/retailadmin/internal/models"
)

// SettingsService reads and updates the loyalty settings singleton.
type SettingsService struct {
	store                    Store
	defaultPointsPerCurrency decimal.Decimal
}

// NewSettingsService constructs SettingsService. defaultPointsPerCurrency is
// used until an operator saves a value.
func NewSettingsService(store Store, defaultPointsPerCurrency decimal.Decimal) *SettingsService {
	return &SettingsService{store: store, defaultPointsPerCurrency: defaultPointsPerCurrency}
}

// Get returns the stored settings or the defaults when none were saved yet.
func (s *SettingsService) Get(ctx context.Context) (*models.Settings, error) {
	settings, err := s.store.GetSettings(ctx)
	if errors.Is(err, ErrNotFound) {
		return &models.Settings{
			ID:                models.SettingsLoyaltyID,
			PointsPerCurrency: s.defaultPointsPerCurrency,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// UpdatePointsPerCurrency sets how much must be spent to earn one point.
func (s *SettingsService) UpdatePointsPerCurrency(ctx context.Context, value decimal.Decimal) (*models.Settings, error) {
	if !value.IsPositive() {
		return nil, invalid("points_per_currency", "must be greater than zero")
	}

	settings := &models.Settings{
		ID:                models.SettingsLoyaltyID,
		PointsPerCurrency: value,
	}
	if err := s.store.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}
