package validation

import (
	"errors"
	"fmt"

	"github.com/iwvelando/home-affordability/pkg/mathutil"
)

// ErrInvalidInput is wrapped by every input error so callers can classify
// failures with errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// ErrInvalidZIP reports a postal code that is not five digits.
var ErrInvalidZIP = fmt.Errorf("%w: please enter a valid 5-digit ZIP code", ErrInvalidInput)

// NonNegativeAmount rejects NaN, infinite and negative amounts.
func NonNegativeAmount(field string, value float64) error {
	if !mathutil.IsFinite(value) {
		return fmt.Errorf("%w: %s must be a finite number", ErrInvalidInput, field)
	}
	if value < 0 {
		return fmt.Errorf("%w: %s must not be negative, got %v", ErrInvalidInput, field, value)
	}
	return nil
}
