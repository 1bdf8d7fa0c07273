package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned by stores when a document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned by a transactional write whose document changed
	// after it was read. Stores retry the transaction when they see it.
	ErrConflict = errors.New("document changed concurrently")
	// ErrStoreConflict is surfaced once a transaction exhausted its retries.
	ErrStoreConflict = errors.New("store conflict: too many concurrent updates, please retry")
	// ErrInvalidAdjustment rejects manual point adjustments without a non-zero
	// amount and a reason.
	ErrInvalidAdjustment = errors.New("invalid adjustment: a non-zero point value and a reason are required")
	// ErrCategoryInUse refuses to delete a category that products still use.
	ErrCategoryInUse = errors.New("category has products assigned to it, re-assign them first")
)

// ValidationError reports bad input detected before any store call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// InsufficientStockError aborts a settlement that would drive stock negative.
type InsufficientStockError struct {
	ProductName string
	Size        string
	Color       string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for %s", e.ProductName)
}

// ProductNotFoundError aborts a settlement that references a deleted product.
type ProductNotFoundError struct {
	ProductID uuid.UUID
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// VariantNotFoundError aborts a settlement that deducts from a variation the
// product no longer has.
type VariantNotFoundError struct {
	ProductName string
	Size        string
	Color       string
}

func (e *VariantNotFoundError) Error() string {
	return fmt.Sprintf("%s has no %s/%s variation", e.ProductName, e.Size, e.Color)
}

// DuplicateSKUError rejects a product save whose SKU is already in use.
type DuplicateSKUError struct {
	SKU string
}

func (e *DuplicateSKUError) Error() string {
	return fmt.Sprintf("sku %q is already used by another product", e.SKU)
}

// OrderSaveFailedError wraps any failure of the settlement transaction.
// Unwrap exposes the cause so callers can still match stock errors.
type OrderSaveFailedError struct {
	Err error
}

func (e *OrderSaveFailedError) Error() string {
	return fmt.Sprintf("failed to save order: %v", e.Err)
}

func (e *OrderSaveFailedError) Unwrap() error {
	return e.Err
}
