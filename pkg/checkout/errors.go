package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrPaymentNotCompleted = errors.New("payment not completed")
	ErrBadSessionMetadata  = errors.New("payment session metadata is malformed")
)

// ProductNotFoundError aborts the whole cart: there is no partial
// fulfillment, so it maps to a validation failure, not a 404.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}
