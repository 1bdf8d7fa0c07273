package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/example/retailadmin/internal/models"
)

// RiderService manages delivery riders.
type RiderService struct {
	store Store
}

func NewRiderService(store Store) *RiderService {
	return &RiderService{store: store}
}

func (s *RiderService) ListRiders(ctx context.Context) ([]models.Rider, error) {
	return s.store.ListRiders(ctx)
}

// SaveRider creates the rider when id is uuid.Nil, otherwise replaces it.
func (s *RiderService) SaveRider(ctx context.Context, id uuid.UUID, name, phone, status string) (*models.Rider, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "required")
	}
	if status == "" {
		status = models.RiderStatusAvailable
	}
	if !validRiderStatus(status) {
		return nil, invalid("status", "must be available or busy")
	}

	rider := &models.Rider{Name: name, Phone: strings.TrimSpace(phone), Status: status}
	if id != uuid.Nil {
		existing, err := s.store.GetRider(ctx, id)
		if err != nil {
			return nil, err
		}
		rider.BaseModel = existing.BaseModel
	}
	if err := s.store.SaveRider(ctx, rider); err != nil {
		return nil, err
	}
	return rider, nil
}

// SetStatus flips a rider between available and busy.
func (s *RiderService) SetStatus(ctx context.Context, id uuid.UUID, status string) (*models.Rider, error) {
	if !validRiderStatus(status) {
		return nil, invalid("status", "must be available or busy")
	}
	rider, err := s.store.GetRider(ctx, id)
	if err != nil {
		return nil, err
	}
	rider.Status = status
	if err := s.store.SaveRider(ctx, rider); err != nil {
		return nil, err
	}
	return rider, nil
}

func (s *RiderService) DeleteRider(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteRider(ctx, id)
}

func validRiderStatus(status string) bool {
	return status == models.RiderStatusAvailable || status == models.RiderStatusBusy
}
