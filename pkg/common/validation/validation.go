// Package validation provides common validation utilities for configuration
// parameters across recflow components.
//
// Reusable validation helpers keep error messages consistent and reduce
// boilerplate in constructors and configuration parsers.
package validation

import (
	"fmt"

	"github.com/nmishr/recflow/pkg/supervise"
)

// ValidatePositive validates that an integer value is positive (> 0).
func ValidatePositive(component, field string, value int) error {
	if value <= 0 {
		return fmt.Errorf("%s: %s must be positive, got %d: %w",
			component, field, value, supervise.ErrInvalidConfiguration)
	}
	return nil
}

// ValidateNonNegative validates that an integer value is non-negative (>= 0).
func ValidateNonNegative(component, field string, value int) error {
	if value < 0 {
		return fmt.Errorf("%s: %s cannot be negative, got %d: %w",
			component, field, value, supervise.ErrInvalidConfiguration)
	}
	return nil
}

// ValidateNotNil validates that an interface value is not nil.
func ValidateNotNil(component, field string, value interface{}) error {
	if value == nil {
		return fmt.Errorf("%s: %s cannot be nil: %w",
			component, field, supervise.ErrInvalidConfiguration)
	}
	return nil
}

// ValidateNotEmpty validates that a string value is not empty.
func ValidateNotEmpty(component, field string, value string) error {
	if value == "" {
		return fmt.Errorf("%s: %s cannot be empty: %w",
			component, field, supervise.ErrInvalidConfiguration)
	}
	return nil
}
