package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/example/retailadmin/internal/models"
)

// Store is the document store the services run against.
//
// RunInTransaction is an optimistic read-modify-write unit: reads record the
// version of each document, writes are applied only if nothing they depend
// on changed, and the whole function is re-run on conflict. fn may therefore
// run more than once and must not have side effects outside tx. After the
// store's retry budget is spent it returns ErrStoreConflict.
//
// Methods outside a transaction are single-document, last-write-wins
// updates. Field-level order updates bump the order version so that a
// concurrent settlement re-reads instead of overwriting them.
type Store interface {
	RunInTransaction(ctx context.Context, fn func(tx Tx) error) error

	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
	FindProductsBySKU(ctx context.Context, skus []string) ([]models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	SaveCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	ListCustomers(ctx context.Context, filter CustomerFilter) ([]models.Customer, int64, error)
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	UpdateCustomerProfile(ctx context.Context, customer *models.Customer) error
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
	AppendCustomerNote(ctx context.Context, id uuid.UUID, note models.Note) error
	RemoveCustomerNote(ctx context.Context, id, noteID uuid.UUID) error

	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error)
	SetOrderStatus(ctx context.Context, id uuid.UUID, status string) (previous string, order *models.Order, err error)
	PatchOrder(ctx context.Context, id uuid.UUID, patch OrderPatch) (*models.Order, error)
	AppendOrderNote(ctx context.Context, id uuid.UUID, kind NoteKind, note models.Note) error
	RemoveOrderNote(ctx context.Context, id uuid.UUID, kind NoteKind, noteID uuid.UUID) error
	DeleteOrder(ctx context.Context, id uuid.UUID) error

	ListLoyaltyTransactions(ctx context.Context, customerID uuid.UUID) ([]models.LoyaltyTransaction, error)

	GetRider(ctx context.Context, id uuid.UUID) (*models.Rider, error)
	ListRiders(ctx context.Context) ([]models.Rider, error)
	SaveRider(ctx context.Context, rider *models.Rider) error
	DeleteRider(ctx context.Context, id uuid.UUID) error

	GetSettings(ctx context.Context) (*models.Settings, error)
	SaveSettings(ctx context.Context, settings *models.Settings) error
}

// Tx is the document view inside a transaction. Reads see the transaction's
// own pending writes.
type Tx interface {
	GetProduct(id uuid.UUID) (*models.Product, error)
	GetCustomer(id uuid.UUID) (*models.Customer, error)
	GetOrder(id uuid.UUID) (*models.Order, error)

	PutProduct(product *models.Product) error
	PutCustomer(customer *models.Customer) error
	PutOrder(order *models.Order) error
	CreateProduct(product *models.Product) error
	CreateOrder(order *models.Order) error
	AddLoyaltyTransaction(entry *models.LoyaltyTransaction) error
}

// NoteKind selects which note list of an order is touched.
type NoteKind string

const (
	NoteKindInternal NoteKind = "notes"
	NoteKindDelivery NoteKind = "delivery_notes"
)

// OrderFilter narrows ListOrders. Zero values mean no filter.
type OrderFilter struct {
	Status     string
	CustomerID *uuid.UUID
	Search     string
	Created    TimeRange
	Limit      int
	Offset     int
}

// TimeRange bounds created_at inclusively. A zero bound is open.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the range.
func (r TimeRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

type ProductFilter struct {
	CategoryID string
	Search     string
	Limit      int
	Offset     int
}

type CustomerFilter struct {
	Search  string
	Created TimeRange
	Limit   int
	Offset  int
}

// OrderPatch carries the delivery/payment fields of an order. Nil fields are
// left untouched.
type OrderPatch struct {
	PaymentStatus  *string
	PaymentMethod  *string
	DeliveryStatus *string
	Rider          *RiderAssignment
}

// RiderAssignment sets or (with a nil ID) clears the assigned rider.
type RiderAssignment struct {
	ID   *uuid.UUID
	Name string
}
