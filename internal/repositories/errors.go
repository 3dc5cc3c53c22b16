package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrNotFound             = errors.New("record not found")
	ErrDuplicateEntry       = errors.New("duplicate entry")
	ErrDuplicateOrderNumber = errors.New("duplicate order number")
	ErrStockConflict        = errors.New("stock conflict")
)

// StockShortage is returned when a locked product no longer covers a cart line.
type StockShortage struct {
	ProductID   int64
	ProductName string
	Available   int
}

func (e *StockShortage) Error() string {
	return fmt.Sprintf("insufficient stock for product %d (%s): %d available", e.ProductID, e.ProductName, e.Available)
}

func (e *StockShortage) Is(target error) bool {
	return target == ErrStockConflict
}

const uniqueViolation = "23505"

func uniqueViolationOn(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return pqErr.Constraint, true
	}

	return "", false
}
