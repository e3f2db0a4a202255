// Package common defines shared constants and sentinel errors used across
// the Aln client layers. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Validation errors. Every domain validation failure wraps ErrValidation.
	ErrValidation        = errors.New("validation error")
	ErrOutOfBounds       = fmt.Errorf("%w: value out of bounds", ErrValidation)
	ErrMealAlreadyExists = fmt.Errorf("%w: meal already exists", ErrValidation)
	ErrTooManyMeals      = fmt.Errorf("%w: too many meals", ErrValidation)
	ErrMealNotFound      = fmt.Errorf("%w: meal not found", ErrValidation)

	// Auth errors.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrInvalidToken   = errors.New("invalid token")
)
