package database

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/retailadmin/internal/models"
	"github.com/example/retailadmin/internal/services"
)

// GormStore implements services.Store on PostgreSQL. Transactional writes are
// conditional on the version column, so two settlements racing on the same
// product cannot both commit.
type GormStore struct {
	db          *gorm.DB
	log         *slog.Logger
	maxAttempts int
}

// NewGormStore wraps an initialized connection.
func NewGormStore(db *gorm.DB, maxAttempts int, log *slog.Logger) *GormStore {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &GormStore{db: db, log: log, maxAttempts: maxAttempts}
}

var _ services.Store = (*GormStore)(nil)

// RunInTransaction runs fn in a database transaction and re-runs it when a
// conditional write lost a race or postgres reported a serialization failure.
func (s *GormStore) RunInTransaction(ctx context.Context, fn func(tx services.Tx) error) error {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(&gormTx{db: tx})
		})
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		s.log.Debug("transaction conflict, retrying", "attempt", attempt, "error", err)
	}
	return services.ErrStoreConflict
}

func retryable(err error) bool {
	if errors.Is(err, services.ErrConflict) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// serialization_failure, deadlock_detected
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return services.ErrNotFound
	}
	return err
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) GetProduct(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := t.db.First(&product, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &product, nil
}

func (t *gormTx) GetCustomer(id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := t.db.First(&customer, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &customer, nil
}

func (t *gormTx) GetOrder(id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := t.db.First(&order, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

func (t *gormTx) PutProduct(product *models.Product) error {
	next := *product
	next.Version = product.Version + 1
	if err := t.conditionalUpdate(&next, product.Version); err != nil {
		return err
	}
	product.Version, product.UpdatedAt = next.Version, next.UpdatedAt
	return nil
}

func (t *gormTx) PutCustomer(customer *models.Customer) error {
	next := *customer
	next.Version = customer.Version + 1
	if err := t.conditionalUpdate(&next, customer.Version); err != nil {
		return err
	}
	customer.Version, customer.UpdatedAt = next.Version, next.UpdatedAt
	return nil
}

func (t *gormTx) PutOrder(order *models.Order) error {
	next := *order
	next.Version = order.Version + 1
	if err := t.conditionalUpdate(&next, order.Version); err != nil {
		return err
	}
	order.Version, order.UpdatedAt = next.Version, next.UpdatedAt
	return nil
}

// conditionalUpdate writes every column of doc if the stored row is still at
// version expected.
func (t *gormTx) conditionalUpdate(doc interface{}, expected int64) error {
	res := versionedUpdate(t.db, doc, expected)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return services.ErrConflict
	}
	return nil
}

func versionedUpdate(db *gorm.DB, doc interface{}, expected int64) *gorm.DB {
	return db.Model(doc).
		Where("version = ?", expected).
		Select("*").
		Omit("id", "created_at").
		Updates(doc)
}

func (t *gormTx) CreateProduct(product *models.Product) error {
	product.Version = 1
	return t.db.Create(product).Error
}

func (t *gormTx) CreateOrder(order *models.Order) error {
	order.Version = 1
	return t.db.Create(order).Error
}

func (t *gormTx) AddLoyaltyTransaction(entry *models.LoyaltyTransaction) error {
	return t.db.Create(entry).Error
}

// Products

func (s *GormStore) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &product, nil
}

func (s *GormStore) ListProducts(ctx context.Context, filter services.ProductFilter) ([]models.Product, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Product{})
	if filter.CategoryID != "" {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	if err := paginate(query, filter.Limit, filter.Offset).Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (s *GormStore) FindProductsBySKU(ctx context.Context, skus []string) ([]models.Product, error) {
	var products []models.Product
	if len(skus) == 0 {
		return products, nil
	}
	err := s.db.WithContext(ctx).
		Where("EXISTS (SELECT 1 FROM jsonb_array_elements(variations) AS v WHERE v->>'sku' = ANY(?))", pq.Array(skus)).
		Find(&products).Error
	return products, err
}

func (s *GormStore) CreateProduct(ctx context.Context, product *models.Product) error {
	product.Version = 1
	return s.db.WithContext(ctx).Create(product).Error
}

func (s *GormStore) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return deleteByID(s.db.WithContext(ctx), &models.Product{}, id)
}

// Categories

func (s *GormStore) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &category, nil
}

func (s *GormStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (s *GormStore) SaveCategory(ctx context.Context, category *models.Category) error {
	if category.ID == uuid.Nil {
		return s.db.WithContext(ctx).Create(category).Error
	}
	res := s.db.WithContext(ctx).Model(category).
		Select("name", "slug", "description", "image").
		Updates(category)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (s *GormStore) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return deleteByID(s.db.WithContext(ctx), &models.Category{}, id)
}

// Customers

func (s *GormStore) GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &customer, nil
}

func (s *GormStore) ListCustomers(ctx context.Context, filter services.CustomerFilter) ([]models.Customer, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Customer{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("name ILIKE ? OR phone ILIKE ?", like, like)
	}
	query = createdWithin(query, filter.Created)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customers []models.Customer
	if err := paginate(query, filter.Limit, filter.Offset).Order("created_at DESC").Find(&customers).Error; err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

func (s *GormStore) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	customer.Version = 1
	return s.db.WithContext(ctx).Create(customer).Error
}

func (s *GormStore) UpdateCustomerProfile(ctx context.Context, customer *models.Customer) error {
	return s.updateCustomer(ctx, customer.ID, func(c *models.Customer) error {
		c.Name = customer.Name
		c.Phone = customer.Phone
		c.Addresses = customer.Addresses
		c.Tags = customer.Tags
		return nil
	})
}

func (s *GormStore) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	return deleteByID(s.db.WithContext(ctx), &models.Customer{}, id)
}

func (s *GormStore) AppendCustomerNote(ctx context.Context, id uuid.UUID, note models.Note) error {
	return s.updateCustomer(ctx, id, func(c *models.Customer) error {
		c.Notes = append(c.Notes, note)
		return nil
	})
}

func (s *GormStore) RemoveCustomerNote(ctx context.Context, id, noteID uuid.UUID) error {
	return s.updateCustomer(ctx, id, func(c *models.Customer) error {
		notes, ok := removeNote(c.Notes, noteID)
		if !ok {
			return services.ErrNotFound
		}
		c.Notes = notes
		return nil
	})
}

// updateCustomer locks the row, applies mutate and saves with a new version.
func (s *GormStore) updateCustomer(ctx context.Context, id uuid.UUID, mutate func(*models.Customer) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&customer, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if err := mutate(&customer); err != nil {
			return err
		}
		customer.Version++
		return tx.Save(&customer).Error
	})
}

// Orders

func (s *GormStore) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

func (s *GormStore) ListOrders(ctx context.Context, filter services.OrderFilter) ([]models.Order, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("customer_name ILIKE ? OR customer_phone ILIKE ? OR CAST(id AS text) ILIKE ?", like, like, like)
	}
	query = createdWithin(query, filter.Created)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := paginate(query, filter.Limit, filter.Offset).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// SetOrderStatus swaps the status under a row lock so exactly one caller
// observes any given transition.
func (s *GormStore) SetOrderStatus(ctx context.Context, id uuid.UUID, status string) (string, *models.Order, error) {
	var previous string
	order, err := s.updateOrder(ctx, id, func(o *models.Order) error {
		previous = o.Status
		o.Status = status
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	return previous, order, nil
}

func (s *GormStore) PatchOrder(ctx context.Context, id uuid.UUID, patch services.OrderPatch) (*models.Order, error) {
	return s.updateOrder(ctx, id, func(o *models.Order) error {
		applyOrderPatch(o, patch)
		return nil
	})
}

func (s *GormStore) AppendOrderNote(ctx context.Context, id uuid.UUID, kind services.NoteKind, note models.Note) error {
	_, err := s.updateOrder(ctx, id, func(o *models.Order) error {
		notes := orderNotes(o, kind)
		*notes = append(*notes, note)
		return nil
	})
	return err
}

func (s *GormStore) RemoveOrderNote(ctx context.Context, id uuid.UUID, kind services.NoteKind, noteID uuid.UUID) error {
	_, err := s.updateOrder(ctx, id, func(o *models.Order) error {
		notes := orderNotes(o, kind)
		kept, ok := removeNote(*notes, noteID)
		if !ok {
			return services.ErrNotFound
		}
		*notes = kept
		return nil
	})
	return err
}

func (s *GormStore) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	return deleteByID(s.db.WithContext(ctx), &models.Order{}, id)
}

func (s *GormStore) updateOrder(ctx context.Context, id uuid.UUID, mutate func(*models.Order) error) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if err := mutate(&order); err != nil {
			return err
		}
		order.Version++
		return tx.Save(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Loyalty

func (s *GormStore) ListLoyaltyTransactions(ctx context.Context, customerID uuid.UUID) ([]models.LoyaltyTransaction, error) {
	var entries []models.LoyaltyTransaction
	err := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}

// Riders

func (s *GormStore) GetRider(ctx context.Context, id uuid.UUID) (*models.Rider, error) {
	var rider models.Rider
	if err := s.db.WithContext(ctx).First(&rider, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &rider, nil
}

func (s *GormStore) ListRiders(ctx context.Context) ([]models.Rider, error) {
	var riders []models.Rider
	err := s.db.WithContext(ctx).Order("name ASC").Find(&riders).Error
	return riders, err
}

func (s *GormStore) SaveRider(ctx context.Context, rider *models.Rider) error {
	if rider.ID == uuid.Nil {
		return s.db.WithContext(ctx).Create(rider).Error
	}
	return s.db.WithContext(ctx).Save(rider).Error
}

func (s *GormStore) DeleteRider(ctx context.Context, id uuid.UUID) error {
	return deleteByID(s.db.WithContext(ctx), &models.Rider{}, id)
}

// Settings

func (s *GormStore) GetSettings(ctx context.Context) (*models.Settings, error) {
	var settings models.Settings
	if err := s.db.WithContext(ctx).First(&settings, "id = ?", models.SettingsLoyaltyID).Error; err != nil {
		return nil, notFound(err)
	}
	return &settings, nil
}

func (s *GormStore) SaveSettings(ctx context.Context, settings *models.Settings) error {
	settings.UpdatedAt = time.Now().UTC()
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(settings).Error
}

func deleteByID(db *gorm.DB, model interface{}, id uuid.UUID) error {
	res := db.Delete(model, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return services.ErrNotFound
	}
	return nil
}

func createdWithin(query *gorm.DB, r services.TimeRange) *gorm.DB {
	if !r.From.IsZero() {
		query = query.Where("created_at >= ?", r.From)
	}
	if !r.To.IsZero() {
		query = query.Where("created_at <= ?", r.To)
	}
	return query
}

func paginate(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
