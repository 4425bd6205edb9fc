// Package affordability estimates the maximum home price a household can
// afford from its gross income using the 28% front-end-ratio rule.
package affordability

import (
	"fmt"
	"strings"

	"github.com/iwvelando/home-affordability/pkg/constants"
	"github.com/iwvelando/home-affordability/pkg/mathutil"
	"github.com/iwvelando/home-affordability/pkg/validation"
)

// Frequency is how often an income amount is received.
type Frequency string

// Supported income frequencies.
const (
	Weekly   Frequency = "weekly"
	Monthly  Frequency = "monthly"
	Annually Frequency = "annually"
)

// ErrUnknownFrequency is returned for frequencies outside Weekly, Monthly and Annually.
var ErrUnknownFrequency = fmt.Errorf("%w: unknown income frequency", validation.ErrInvalidInput)

// ErrInvalidIncome is returned for negative or non-finite income values, and
// for values too large to annualize.
var ErrInvalidIncome = fmt.Errorf("%w: income", validation.ErrInvalidInput)

// Periods returns the number of pay periods per year.
func (f Frequency) Periods() (float64, error) {
	switch f {
	case Weekly:
		return constants.WeeksPerYear, nil
	case Monthly:
		return constants.MonthsPerYear, nil
	case Annually:
		return 1, nil
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownFrequency, string(f))
}

// ParseFrequency converts user input into a Frequency. Matching ignores case
// and surrounding whitespace; "annual" and "yearly" are accepted for Annually.
func ParseFrequency(value string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "weekly":
		return Weekly, nil
	case "monthly":
		return Monthly, nil
	case "annually", "annual", "yearly":
		return Annually, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownFrequency, value)
}

// Income is a stated income amount and how often it is received. Annual is
// derived and is only meaningful after Annualize.
type Income struct {
	Value     float64   `json:"value" yaml:"value"`
	Frequency Frequency `json:"frequency" yaml:"frequency"`
	Annual    float64   `json:"annual" yaml:"annual"`
}

// Annualize returns a copy of the income with Annual set to Value times the
// number of periods in a year.
func (i Income) Annualize() (Income, error) {
	if !mathutil.IsFinite(i.Value) || i.Value < 0 {
		return Income{}, fmt.Errorf("%w value must be a non-negative number, got %v", ErrInvalidIncome, i.Value)
	}
	periods, err := i.Frequency.Periods()
	if err != nil {
		return Income{}, err
	}
	i.Annual = i.Value * periods
	if !mathutil.IsFinite(i.Annual) {
		return Income{}, fmt.Errorf("%w value %v is too large to annualize", ErrInvalidIncome, i.Value)
	}
	return i, nil
}
