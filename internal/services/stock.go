package services

import (
	"bytes"
	"errors"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/example/retailadmin/internal/models"
)

// VariantKey identifies one stock bucket: a product variation.
type VariantKey struct {
	ProductID uuid.UUID
	Size      string
	Color     string
}

func keyOf(item models.OrderItem) VariantKey {
	return VariantKey{ProductID: item.ProductID, Size: item.Size, Color: item.Color}
}

// ComputeStockDeltas returns the net stock change per variation when an order
// moves from oldItems to newItems. Releasing old quantity returns stock
// (positive), reserving new quantity deducts it (negative). Keys that net to
// zero are omitted.
func ComputeStockDeltas(oldItems, newItems []models.OrderItem) map[VariantKey]int {
	deltas := make(map[VariantKey]int)
	for _, item := range oldItems {
		deltas[keyOf(item)] += item.Quantity
	}
	for _, item := range newItems {
		deltas[keyOf(item)] -= item.Quantity
	}
	for key, delta := range deltas {
		if delta == 0 {
			delete(deltas, key)
		}
	}
	return deltas
}

// sortedKeys orders keys by product then size then color so products are
// always visited in the same order.
func sortedKeys(deltas map[VariantKey]int) []VariantKey {
	keys := make([]VariantKey, 0, len(deltas))
	for key := range deltas {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if c := bytes.Compare(keys[i].ProductID[:], keys[j].ProductID[:]); c != 0 {
			return c < 0
		}
		if keys[i].Size != keys[j].Size {
			return keys[i].Size < keys[j].Size
		}
		return keys[i].Color < keys[j].Color
	})
	return keys
}

// applyStockDeltas re-reads every touched product inside tx, applies the
// deltas and queues one write per product. Any error leaves the caller to
// abort the transaction.
func applyStockDeltas(tx Tx, deltas map[VariantKey]int, log *slog.Logger) error {
	var (
		current *models.Product
		dirty   bool
	)
	flush := func() error {
		if current != nil && dirty {
			return tx.PutProduct(current)
		}
		return nil
	}

	for _, key := range sortedKeys(deltas) {
		if current == nil || current.ID != key.ProductID {
			if err := flush(); err != nil {
				return err
			}
			product, err := tx.GetProduct(key.ProductID)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					return &ProductNotFoundError{ProductID: key.ProductID}
				}
				return err
			}
			current, dirty = product, false
		}

		delta := deltas[key]
		idx := current.FindVariation(key.Size, key.Color)
		if idx < 0 {
			if delta < 0 {
				return &VariantNotFoundError{ProductName: current.Name, Size: key.Size, Color: key.Color}
			}
			log.Warn("stock release skipped, variation no longer exists",
				"product_id", key.ProductID, "size", key.Size, "color", key.Color, "quantity", delta)
			continue
		}

		variation := &current.Variations[idx]
		next := variation.Stock + delta
		if next < 0 {
			return &InsufficientStockError{
				ProductName: current.Name,
				Size:        key.Size,
				Color:       key.Color,
				Available:   variation.Stock,
				Requested:   -delta,
			}
		}
		variation.Stock = next
		dirty = true
	}

	return flush()
}
