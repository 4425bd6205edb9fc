// Package datetime provides month-granularity date helpers for payment
// schedules.
package datetime

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/home-affordability/pkg/constants"
	"github.com/iwvelando/home-affordability/pkg/validation"
)

const (
	// DateTimeLayout is the accepted start date format and also the output
	// date format.
	DateTimeLayout = constants.DateTimeLayout
)

// ParseMonth parses a YYYY-MM date.
func ParseMonth(date string) (time.Time, error) {
	t, err := time.Parse(DateTimeLayout, strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must use the YYYY-MM format", validation.ErrInvalidInput, date)
	}
	return t, nil
}

// PaymentDates returns count consecutive months beginning with start.
func PaymentDates(start string, count int) ([]string, error) {
	t, err := ParseMonth(start)
	if err != nil {
		return nil, err
	}
	if count < 0 {
		count = 0
	}
	dates := make([]string, count)
	for i := range dates {
		dates[i] = t.AddDate(0, i, 0).Format(DateTimeLayout)
	}
	return dates, nil
}
