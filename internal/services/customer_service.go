package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/retailadmin/internal/models"
)

// CustomerService manages customer profiles and notes. It never writes the
// spend, order count or points aggregates.
type CustomerService struct {
	store Store
}

// NewCustomerService constructs CustomerService.
func NewCustomerService(store Store) *CustomerService {
	return &CustomerService{store: store}
}

func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	return s.store.GetCustomer(ctx, id)
}

func (s *CustomerService) ListCustomers(ctx context.Context, filter CustomerFilter) ([]models.Customer, int64, error) {
	return s.store.ListCustomers(ctx, filter)
}

// CustomerProfile is the operator-editable part of a customer.
type CustomerProfile struct {
	Name      string
	Phone     string
	Addresses []models.Address
	Tags      []string
}

func (p *CustomerProfile) normalize() error {
	p.Name = strings.TrimSpace(p.Name)
	p.Phone = strings.TrimSpace(p.Phone)
	if p.Name == "" {
		return invalid("name", "required")
	}
	if p.Phone == "" {
		return invalid("phone", "required")
	}
	tags := make([]string, 0, len(p.Tags))
	for _, tag := range p.Tags {
		if t := strings.TrimSpace(tag); t != "" {
			tags = append(tags, t)
		}
	}
	p.Tags = tags
	if p.Addresses == nil {
		p.Addresses = []models.Address{}
	}
	return nil
}

// CreateCustomer stores a new customer with zeroed aggregates.
func (s *CustomerService) CreateCustomer(ctx context.Context, in CustomerProfile) (*models.Customer, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	customer := &models.Customer{
		Name:       in.Name,
		Phone:      in.Phone,
		Addresses:  in.Addresses,
		Tags:       in.Tags,
		TotalSpent: decimal.Zero,
		Notes:      []models.Note{},
	}
	if err := s.store.CreateCustomer(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// UpdateProfile changes name, phone, addresses and tags only.
func (s *CustomerService) UpdateProfile(ctx context.Context, id uuid.UUID, in CustomerProfile) (*models.Customer, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	customer := &models.Customer{
		Name:      in.Name,
		Phone:     in.Phone,
		Addresses: in.Addresses,
		Tags:      in.Tags,
	}
	customer.ID = id
	if err := s.store.UpdateCustomerProfile(ctx, customer); err != nil {
		return nil, err
	}
	return s.store.GetCustomer(ctx, id)
}

// DeleteCustomer removes the customer. Their orders and ledger entries stay.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteCustomer(ctx, id)
}

func (s *CustomerService) AddNote(ctx context.Context, id uuid.UUID, text string) (*models.Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("text", "note cannot be empty")
	}
	note := models.Note{ID: uuid.New(), Text: text, Timestamp: time.Now().UTC()}
	if err := s.store.AppendCustomerNote(ctx, id, note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (s *CustomerService) RemoveNote(ctx context.Context, id, noteID uuid.UUID) error {
	return s.store.RemoveCustomerNote(ctx, id, noteID)
}
