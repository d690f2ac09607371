package ledger

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrItemNotFound      = errors.New("item not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrValidation        = errors.New("invalid input")
)
