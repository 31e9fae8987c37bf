package rental

import (
	"errors"
	"fmt"
)

var (
	ErrValidation            = errors.New("validation failed")
	ErrNotFound              = errors.New("not found")
	ErrInsufficientInventory = errors.New("item not available in requested quantity")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrActiveRentalsExist    = errors.New("item has active rentals")
	ErrConstraintViolation   = errors.New("constraint violation")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
