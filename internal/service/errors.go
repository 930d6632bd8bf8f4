package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrOutOfStock       = errors.New("no more in stock")
	ErrInvalidPromoCode = errors.New("invalid promo code")
	ErrNotFound         = errors.New("not found")
	ErrCartClosed       = errors.New("cart is already paid")
	ErrUnauthorized     = errors.New("invalid email or password")
)

// ValidationError reports the user input field that was rejected.
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

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func notFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}
