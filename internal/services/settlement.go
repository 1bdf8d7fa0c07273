package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/example/retailadmin/internal/models"
)

// SettlementService creates and edits orders together with their stock and
// customer aggregate effects, as one transaction.
type SettlementService struct {
	store         Store
	notifier      Notifier
	log           *slog.Logger
	now           func() time.Time
	maxConcurrent int
}

// NewSettlementService constructs SettlementService.
func NewSettlementService(store Store, notifier Notifier, log *slog.Logger) *SettlementService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &SettlementService{
		store:         store,
		notifier:      notifier,
		log:           log,
		now:           time.Now,
		maxConcurrent: 8,
	}
}

// OrderItemInput is one requested line. Name and price are taken from the
// product when the order is settled.
type OrderItemInput struct {
	ProductID uuid.UUID
	Size      string
	Color     string
	Quantity  int
}

// OrderInput is the submitted content of an order.
type OrderInput struct {
	CustomerID   uuid.UUID
	AddressIndex int
	Items        []OrderItemInput
}

// CreateOrder settles a new order.
func (s *SettlementService) CreateOrder(ctx context.Context, in OrderInput) (*models.Order, error) {
	return s.settle(ctx, nil, in)
}

// EditOrder replaces the items of an existing order, returning released
// quantity to stock and reserving the new quantity. Status, payment,
// delivery and notes are preserved.
func (s *SettlementService) EditOrder(ctx context.Context, orderID uuid.UUID, in OrderInput) (*models.Order, error) {
	return s.settle(ctx, &orderID, in)
}

func (s *SettlementService) settle(ctx context.Context, orderID *uuid.UUID, in OrderInput) (*models.Order, error) {
	if err := validateOrderInput(in); err != nil {
		return nil, err
	}

	customer, err := s.store.GetCustomer(ctx, in.CustomerID)
	if errors.Is(err, ErrNotFound) {
		return nil, invalid("customer_id", "customer not found")
	}
	if err != nil {
		return nil, err
	}
	if len(customer.Addresses) > 0 && (in.AddressIndex < 0 || in.AddressIndex >= len(customer.Addresses)) {
		return nil, invalid("address_index", "customer has no address at this index")
	}

	var existingItems []models.OrderItem
	if orderID != nil {
		existing, err := s.store.GetOrder(ctx, *orderID)
		if err != nil {
			return nil, err
		}
		if existing.CustomerID != in.CustomerID {
			return nil, invalid("customer_id", "the customer of an existing order cannot be changed")
		}
		existingItems = existing.Items
	}

	products, err := s.loadProducts(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	items, err := buildItems(in.Items, products, existingItems)
	if err != nil {
		return nil, err
	}
	if err := precheckStock(ComputeStockDeltas(existingItems, items), products); err != nil {
		return nil, err
	}

	total := models.OrderTotal(items)
	now := s.now().UTC()

	var saved *models.Order
	err = s.store.RunInTransaction(ctx, func(tx Tx) error {
		var previous *models.Order
		if orderID != nil {
			p, err := tx.GetOrder(*orderID)
			if err != nil {
				return err
			}
			previous = p
		}

		var oldItems []models.OrderItem
		if previous != nil {
			oldItems = previous.Items
		}
		if err := applyStockDeltas(tx, ComputeStockDeltas(oldItems, items), s.log); err != nil {
			return err
		}

		cust, err := tx.GetCustomer(in.CustomerID)
		if err != nil {
			return err
		}
		if previous == nil {
			applyNewOrder(cust, total, now)
		} else {
			applyOrderEdit(cust, previous.TotalAmount, total, now)
		}
		if err := tx.PutCustomer(cust); err != nil {
			return err
		}

		order := buildOrder(previous, cust, in.AddressIndex, items, total, now)
		if previous == nil {
			err = tx.CreateOrder(order)
		} else {
			err = tx.PutOrder(order)
		}
		if err != nil {
			return err
		}
		saved = order
		return nil
	})
	if err != nil {
		s.log.Error("order settlement failed", "order_id", orderID, "customer_id", in.CustomerID, "error", err)
		return nil, &OrderSaveFailedError{Err: err}
	}

	evtType := EventOrderCreated
	if orderID != nil {
		evtType = EventOrderEdited
	}
	s.log.Info("order settled", "order_id", saved.ID, "customer_id", saved.CustomerID,
		"total", saved.TotalAmount.String(), "items", len(saved.Items), "event", evtType)
	deliver(ctx, s.notifier, s.log, Event{Type: evtType, Order: saved})
	return saved, nil
}

func validateOrderInput(in OrderInput) error {
	if in.CustomerID == uuid.Nil {
		return invalid("customer_id", "a customer must be selected")
	}
	if len(in.Items) == 0 {
		return invalid("items", "at least one item is required")
	}
	for i, item := range in.Items {
		field := fmt.Sprintf("items[%d]", i)
		if item.ProductID == uuid.Nil {
			return invalid(field+".product_id", "a product must be selected")
		}
		if item.Quantity <= 0 {
			return invalid(field+".quantity", "quantity must be a positive integer")
		}
	}
	return nil
}

// loadProducts fetches the latest persisted version of every product named
// by the items.
func (s *SettlementService) loadProducts(ctx context.Context, items []OrderItemInput) (map[uuid.UUID]*models.Product, error) {
	var ids []uuid.UUID
	seen := make(map[uuid.UUID]struct{})
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}

	loaded := make([]*models.Product, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)
	for i, id := range ids {
		g.Go(func() error {
			product, err := s.store.GetProduct(gctx, id)
			if errors.Is(err, ErrNotFound) {
				return &ProductNotFoundError{ProductID: id}
			}
			if err != nil {
				return fmt.Errorf("load product %s: %w", id, err)
			}
			loaded[i] = product
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	products := make(map[uuid.UUID]*models.Product, len(ids))
	for _, p := range loaded {
		products[p.ID] = p
	}
	return products, nil
}

// buildItems snapshots name and price for each requested line. Variants that
// were already on the order keep the price they were sold at.
func buildItems(in []OrderItemInput, products map[uuid.UUID]*models.Product, existing []models.OrderItem) ([]models.OrderItem, error) {
	soldAt := make(map[VariantKey]decimal.Decimal, len(existing))
	for _, item := range existing {
		soldAt[keyOf(item)] = item.Price
	}

	items := make([]models.OrderItem, 0, len(in))
	for _, req := range in {
		product := products[req.ProductID]
		idx := product.FindVariation(req.Size, req.Color)
		if idx < 0 {
			return nil, &VariantNotFoundError{ProductName: product.Name, Size: req.Size, Color: req.Color}
		}

		item := models.OrderItem{
			ProductID: product.ID,
			Size:      req.Size,
			Color:     req.Color,
			Name:      product.Name,
			Price:     product.UnitPrice(product.Variations[idx]),
			Quantity:  req.Quantity,
		}
		if price, ok := soldAt[keyOf(item)]; ok {
			item.Price = price
		}
		items = append(items, item)
	}
	return items, nil
}

// precheckStock rejects requests that cannot fit the stock last read. The
// authoritative check runs again inside the transaction.
func precheckStock(deltas map[VariantKey]int, products map[uuid.UUID]*models.Product) error {
	for key, delta := range deltas {
		if delta >= 0 {
			continue
		}
		product, ok := products[key.ProductID]
		if !ok {
			continue
		}
		idx := product.FindVariation(key.Size, key.Color)
		if idx < 0 {
			continue
		}
		if stock := product.Variations[idx].Stock; stock+delta < 0 {
			return &InsufficientStockError{
				ProductName: product.Name,
				Size:        key.Size,
				Color:       key.Color,
				Available:   stock,
				Requested:   -delta,
			}
		}
	}
	return nil
}

func buildOrder(previous *models.Order, customer *models.Customer, addressIndex int, items []models.OrderItem, total decimal.Decimal, now time.Time) *models.Order {
	var order models.Order
	if previous != nil {
		order = *previous
	} else {
		order = models.Order{
			Status:         models.OrderStatusPending,
			PaymentStatus:  models.PaymentStatusUnpaid,
			PaymentMethod:  models.PaymentMethodCOD,
			DeliveryStatus: models.DeliveryStatusNotShipped,
			Notes:          []models.Note{},
			DeliveryNotes:  []models.Note{},
		}
		order.ID = uuid.New()
		order.CreatedAt = now
	}

	order.CustomerID = customer.ID
	order.CustomerName = customer.Name
	order.CustomerPhone = customer.Phone
	order.ShippingAddress = nil
	if addressIndex >= 0 && addressIndex < len(customer.Addresses) {
		address := customer.Addresses[addressIndex]
		order.ShippingAddress = &address
	}
	order.Items = items
	order.TotalAmount = total
	order.UpdatedAt = now
	return &order
}
