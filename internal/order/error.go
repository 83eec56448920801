package order

import "storefront-be/internal/apperr"

var (
	ErrItemsRequired    = apperr.New(apperr.ErrValidation, "items required and must be non-empty")
	ErrItemNameRequired = apperr.New(apperr.ErrValidation, "every item needs a name")
	ErrInvalidOrderID   = apperr.New(apperr.ErrValidation, "invalid orderId")
	ErrInvalidStatus    = apperr.New(apperr.ErrValidation, "invalid status")
	ErrOrderNotFound    = apperr.New(apperr.ErrNotFound, "order not found")
	ErrOrderNotPending  = apperr.New(apperr.ErrConflict, "order is not pending")
)
