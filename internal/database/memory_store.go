package database

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/retailadmin/internal/models"
	"github.com/example/retailadmin/internal/services"
)

// MemoryStore is an in-process services.Store. It keeps the same optimistic
// transaction semantics as GormStore: transactions buffer their writes and
// commit only if every written document is still at the version it was read
// at. It backs tests and the STORE_DRIVER=memory mode.
type MemoryStore struct {
	mu          sync.RWMutex
	maxAttempts int
	now         func() time.Time

	products   map[uuid.UUID]*models.Product
	categories map[uuid.UUID]*models.Category
	customers  map[uuid.UUID]*models.Customer
	orders     map[uuid.UUID]*models.Order
	riders     map[uuid.UUID]*models.Rider
	loyalty    []*models.LoyaltyTransaction
	settings   *models.Settings
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(maxAttempts int) *MemoryStore {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &MemoryStore{
		maxAttempts: maxAttempts,
		now:         func() time.Time { return time.Now().UTC() },
		products:    make(map[uuid.UUID]*models.Product),
		categories:  make(map[uuid.UUID]*models.Category),
		customers:   make(map[uuid.UUID]*models.Customer),
		orders:      make(map[uuid.UUID]*models.Order),
		riders:      make(map[uuid.UUID]*models.Rider),
	}
}

var _ services.Store = (*MemoryStore)(nil)

// RunInTransaction runs fn against a fresh snapshot and commits its writes.
// A version mismatch at commit re-runs fn, up to maxAttempts times.
func (s *MemoryStore) RunInTransaction(ctx context.Context, fn func(tx services.Tx) error) error {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		tx := &memTx{
			s:         s,
			products:  make(map[uuid.UUID]productWrite),
			customers: make(map[uuid.UUID]customerWrite),
			orders:    make(map[uuid.UUID]orderWrite),
		}
		err := fn(tx)
		if err == nil {
			err = s.commit(tx)
		}
		if err == nil {
			return nil
		}
		if !errors.Is(err, services.ErrConflict) {
			return err
		}
	}
	return services.ErrStoreConflict
}

type productWrite struct {
	doc    *models.Product
	caller *models.Product
}

type customerWrite struct {
	doc    *models.Customer
	caller *models.Customer
}

type orderWrite struct {
	doc    *models.Order
	caller *models.Order
}

type memTx struct {
	s               *MemoryStore
	products        map[uuid.UUID]productWrite
	customers       map[uuid.UUID]customerWrite
	orders          map[uuid.UUID]orderWrite
	createdProducts []productWrite
	created         []orderWrite
	entries         []*models.LoyaltyTransaction
}

func (t *memTx) GetProduct(id uuid.UUID) (*models.Product, error) {
	if w, ok := t.products[id]; ok {
		return cloneProduct(w.doc), nil
	}
	for _, w := range t.createdProducts {
		if w.doc.ID == id {
			return cloneProduct(w.doc), nil
		}
	}
	return t.s.GetProduct(context.Background(), id)
}

func (t *memTx) GetCustomer(id uuid.UUID) (*models.Customer, error) {
	if w, ok := t.customers[id]; ok {
		return cloneCustomer(w.doc), nil
	}
	return t.s.GetCustomer(context.Background(), id)
}

func (t *memTx) GetOrder(id uuid.UUID) (*models.Order, error) {
	if w, ok := t.orders[id]; ok {
		return cloneOrder(w.doc), nil
	}
	for _, w := range t.created {
		if w.doc.ID == id {
			return cloneOrder(w.doc), nil
		}
	}
	return t.s.GetOrder(context.Background(), id)
}

func (t *memTx) PutProduct(product *models.Product) error {
	t.products[product.ID] = productWrite{doc: cloneProduct(product), caller: product}
	return nil
}

func (t *memTx) PutCustomer(customer *models.Customer) error {
	t.customers[customer.ID] = customerWrite{doc: cloneCustomer(customer), caller: customer}
	return nil
}

func (t *memTx) PutOrder(order *models.Order) error {
	t.orders[order.ID] = orderWrite{doc: cloneOrder(order), caller: order}
	return nil
}

func (t *memTx) CreateProduct(product *models.Product) error {
	product.EnsureID()
	t.createdProducts = append(t.createdProducts, productWrite{doc: cloneProduct(product), caller: product})
	return nil
}

func (t *memTx) CreateOrder(order *models.Order) error {
	order.EnsureID()
	t.created = append(t.created, orderWrite{doc: cloneOrder(order), caller: order})
	return nil
}

func (t *memTx) AddLoyaltyTransaction(entry *models.LoyaltyTransaction) error {
	entry.EnsureID()
	t.entries = append(t.entries, entry)
	return nil
}

func (s *MemoryStore) commit(tx *memTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, w := range tx.products {
		if cur, ok := s.products[id]; !ok || cur.Version != w.doc.Version {
			return services.ErrConflict
		}
	}
	for id, w := range tx.customers {
		if cur, ok := s.customers[id]; !ok || cur.Version != w.doc.Version {
			return services.ErrConflict
		}
	}
	for id, w := range tx.orders {
		if cur, ok := s.orders[id]; !ok || cur.Version != w.doc.Version {
			return services.ErrConflict
		}
	}
	for _, w := range tx.createdProducts {
		if _, exists := s.products[w.doc.ID]; exists {
			return services.ErrConflict
		}
	}
	for _, w := range tx.created {
		if _, exists := s.orders[w.doc.ID]; exists {
			return services.ErrConflict
		}
	}

	now := s.now()
	for id, w := range tx.products {
		w.doc.Version++
		w.doc.UpdatedAt = now
		s.products[id] = w.doc
		w.caller.Version, w.caller.UpdatedAt = w.doc.Version, now
	}
	for id, w := range tx.customers {
		w.doc.Version++
		w.doc.UpdatedAt = now
		s.customers[id] = w.doc
		w.caller.Version, w.caller.UpdatedAt = w.doc.Version, now
	}
	for id, w := range tx.orders {
		w.doc.Version++
		w.doc.UpdatedAt = now
		s.orders[id] = w.doc
		w.caller.Version, w.caller.UpdatedAt = w.doc.Version, now
	}
	for _, w := range tx.createdProducts {
		w.doc.Version = 1
		w.doc.CreatedAt, w.doc.UpdatedAt = now, now
		s.products[w.doc.ID] = w.doc
		w.caller.Version, w.caller.CreatedAt, w.caller.UpdatedAt = 1, now, now
	}
	for _, w := range tx.created {
		w.doc.Version = 1
		if w.doc.CreatedAt.IsZero() {
			w.doc.CreatedAt = now
		}
		w.doc.UpdatedAt = now
		s.orders[w.doc.ID] = w.doc
		w.caller.Version, w.caller.CreatedAt, w.caller.UpdatedAt = 1, w.doc.CreatedAt, now
	}
	for _, entry := range tx.entries {
		entry.CreatedAt, entry.UpdatedAt = now, now
		stored := *entry
		s.loyalty = append(s.loyalty, &stored)
	}
	return nil
}

// Products

func (s *MemoryStore) GetProduct(_ context.Context, id uuid.UUID) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	return cloneProduct(p), nil
}

func (s *MemoryStore) ListProducts(_ context.Context, filter services.ProductFilter) ([]models.Product, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var matched []models.Product
	for _, p := range s.products {
		if filter.CategoryID != "" && p.CategoryID != filter.CategoryID {
			continue
		}
		if search != "" && !containsFold(search, p.Name, p.Description) {
			continue
		}
		matched = append(matched, *cloneProduct(p))
	}
	sort.Slice(matched, func(i, j int) bool {
		return newer(matched[i].BaseModel, matched[j].BaseModel)
	})
	return page(matched, filter.Limit, filter.Offset), int64(len(matched)), nil
}

func (s *MemoryStore) FindProductsBySKU(_ context.Context, skus []string) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]struct{}, len(skus))
	for _, sku := range skus {
		wanted[sku] = struct{}{}
	}
	var found []models.Product
	for _, p := range s.products {
		for _, v := range p.Variations {
			if _, ok := wanted[v.SKU]; ok {
				found = append(found, *cloneProduct(p))
				break
			}
		}
	}
	return found, nil
}

func (s *MemoryStore) CreateProduct(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	product.EnsureID()
	product.Version = 1
	product.CreatedAt, product.UpdatedAt = s.now(), s.now()
	s.products[product.ID] = cloneProduct(product)
	return nil
}

func (s *MemoryStore) DeleteProduct(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return services.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

// Categories

func (s *MemoryStore) GetCategory(_ context.Context, id uuid.UUID) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	category := *c
	return &category, nil
}

func (s *MemoryStore) ListCategories(_ context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	categories := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		categories = append(categories, *c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (s *MemoryStore) SaveCategory(_ context.Context, category *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if category.ID == uuid.Nil {
		category.EnsureID()
		category.CreatedAt = now
	} else if _, ok := s.categories[category.ID]; !ok {
		return services.ErrNotFound
	}
	category.UpdatedAt = now
	stored := *category
	s.categories[category.ID] = &stored
	return nil
}

func (s *MemoryStore) DeleteCategory(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return services.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

// Customers

func (s *MemoryStore) GetCustomer(_ context.Context, id uuid.UUID) (*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	return cloneCustomer(c), nil
}

func (s *MemoryStore) ListCustomers(_ context.Context, filter services.CustomerFilter) ([]models.Customer, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var matched []models.Customer
	for _, c := range s.customers {
		if search != "" && !containsFold(search, c.Name, c.Phone) {
			continue
		}
		if !filter.Created.Contains(c.CreatedAt) {
			continue
		}
		matched = append(matched, *cloneCustomer(c))
	}
	sort.Slice(matched, func(i, j int) bool {
		return newer(matched[i].BaseModel, matched[j].BaseModel)
	})
	return page(matched, filter.Limit, filter.Offset), int64(len(matched)), nil
}

func (s *MemoryStore) CreateCustomer(_ context.Context, customer *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	customer.EnsureID()
	customer.Version = 1
	customer.CreatedAt, customer.UpdatedAt = s.now(), s.now()
	s.customers[customer.ID] = cloneCustomer(customer)
	return nil
}

func (s *MemoryStore) UpdateCustomerProfile(_ context.Context, customer *models.Customer) error {
	return s.updateCustomer(customer.ID, func(c *models.Customer) error {
		c.Name = customer.Name
		c.Phone = customer.Phone
		c.Addresses = customer.Addresses
		c.Tags = customer.Tags
		return nil
	})
}

func (s *MemoryStore) DeleteCustomer(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[id]; !ok {
		return services.ErrNotFound
	}
	delete(s.customers, id)
	return nil
}

func (s *MemoryStore) AppendCustomerNote(_ context.Context, id uuid.UUID, note models.Note) error {
	return s.updateCustomer(id, func(c *models.Customer) error {
		c.Notes = append(c.Notes, note)
		return nil
	})
}

func (s *MemoryStore) RemoveCustomerNote(_ context.Context, id, noteID uuid.UUID) error {
	return s.updateCustomer(id, func(c *models.Customer) error {
		notes, ok := removeNote(c.Notes, noteID)
		if !ok {
			return services.ErrNotFound
		}
		c.Notes = notes
		return nil
	})
}

func (s *MemoryStore) updateCustomer(id uuid.UUID, mutate func(*models.Customer) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.customers[id]
	if !ok {
		return services.ErrNotFound
	}
	next := cloneCustomer(cur)
	if err := mutate(next); err != nil {
		return err
	}
	next.Version++
	next.UpdatedAt = s.now()
	s.customers[id] = next
	return nil
}

// Orders

func (s *MemoryStore) GetOrder(_ context.Context, id uuid.UUID) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (s *MemoryStore) ListOrders(_ context.Context, filter services.OrderFilter) ([]models.Order, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var matched []models.Order
	for _, o := range s.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.CustomerID != nil && o.CustomerID != *filter.CustomerID {
			continue
		}
		if search != "" && !containsFold(search, o.CustomerName, o.CustomerPhone, o.ID.String()) {
			continue
		}
		if !filter.Created.Contains(o.CreatedAt) {
			continue
		}
		matched = append(matched, *cloneOrder(o))
	}
	sort.Slice(matched, func(i, j int) bool {
		return newer(matched[i].BaseModel, matched[j].BaseModel)
	})
	return page(matched, filter.Limit, filter.Offset), int64(len(matched)), nil
}

func (s *MemoryStore) SetOrderStatus(_ context.Context, id uuid.UUID, status string) (string, *models.Order, error) {
	var previous string
	order, err := s.updateOrder(id, func(o *models.Order) error {
		previous = o.Status
		o.Status = status
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	return previous, order, nil
}

func (s *MemoryStore) PatchOrder(_ context.Context, id uuid.UUID, patch services.OrderPatch) (*models.Order, error) {
	return s.updateOrder(id, func(o *models.Order) error {
		applyOrderPatch(o, patch)
		return nil
	})
}

func (s *MemoryStore) AppendOrderNote(_ context.Context, id uuid.UUID, kind services.NoteKind, note models.Note) error {
	_, err := s.updateOrder(id, func(o *models.Order) error {
		notes := orderNotes(o, kind)
		*notes = append(*notes, note)
		return nil
	})
	return err
}

func (s *MemoryStore) RemoveOrderNote(_ context.Context, id uuid.UUID, kind services.NoteKind, noteID uuid.UUID) error {
	_, err := s.updateOrder(id, func(o *models.Order) error {
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

func (s *MemoryStore) DeleteOrder(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[id]; !ok {
		return services.ErrNotFound
	}
	delete(s.orders, id)
	return nil
}

func (s *MemoryStore) updateOrder(id uuid.UUID, mutate func(*models.Order) error) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.orders[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	next := cloneOrder(cur)
	if err := mutate(next); err != nil {
		return nil, err
	}
	next.Version++
	next.UpdatedAt = s.now()
	s.orders[id] = next
	return cloneOrder(next), nil
}

// Loyalty

func (s *MemoryStore) ListLoyaltyTransactions(_ context.Context, customerID uuid.UUID) ([]models.LoyaltyTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := []models.LoyaltyTransaction{}
	for i := len(s.loyalty) - 1; i >= 0; i-- {
		if s.loyalty[i].CustomerID == customerID {
			entries = append(entries, *s.loyalty[i])
		}
	}
	return entries, nil
}

// Riders

func (s *MemoryStore) GetRider(_ context.Context, id uuid.UUID) (*models.Rider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.riders[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	rider := *r
	return &rider, nil
}

func (s *MemoryStore) ListRiders(_ context.Context) ([]models.Rider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	riders := make([]models.Rider, 0, len(s.riders))
	for _, r := range s.riders {
		riders = append(riders, *r)
	}
	sort.Slice(riders, func(i, j int) bool { return riders[i].Name < riders[j].Name })
	return riders, nil
}

func (s *MemoryStore) SaveRider(_ context.Context, rider *models.Rider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if rider.ID == uuid.Nil {
		rider.EnsureID()
		rider.CreatedAt = now
	} else if _, ok := s.riders[rider.ID]; !ok {
		return services.ErrNotFound
	}
	rider.UpdatedAt = now
	stored := *rider
	s.riders[rider.ID] = &stored
	return nil
}

func (s *MemoryStore) DeleteRider(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.riders[id]; !ok {
		return services.ErrNotFound
	}
	delete(s.riders, id)
	return nil
}

// Settings

func (s *MemoryStore) GetSettings(_ context.Context) (*models.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return nil, services.ErrNotFound
	}
	settings := *s.settings
	return &settings, nil
}

func (s *MemoryStore) SaveSettings(_ context.Context, settings *models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings.UpdatedAt = s.now()
	stored := *settings
	s.settings = &stored
	return nil
}

func containsFold(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func newer(a, b models.BaseModel) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.String() > b.ID.String()
}

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
