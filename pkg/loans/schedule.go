package loans

import (
	"fmt"

	"github.com/iwvelando/home-affordability/pkg/datetime"
	"github.com/iwvelando/home-affordability/pkg/mathutil"
)

// Payment holds the values for a given payment.
type Payment struct {
	Month              int     `json:"month"`
	Date               string  `json:"date,omitempty"`
	Payment            float64 `json:"payment"`
	Principal          float64 `json:"principal"`
	Interest           float64 `json:"interest"`
	RemainingPrincipal float64 `json:"remainingPrincipal"`
}

// ScheduleSummary totals an amortization schedule.
type ScheduleSummary struct {
	Payments      int     `json:"payments"`
	TotalPaid     float64 `json:"totalPaid"`
	TotalInterest float64 `json:"totalInterest"`
}

// GenerateSchedule creates the month-by-month amortization schedule for a
// quote. Payments use the unrounded monthly amount; the last payment settles
// whatever balance is left so the schedule always ends at zero.
func GenerateSchedule(quote Quote) ([]Payment, error) {
	if err := checkDuration(quote.LoanDuration); err != nil {
		return nil, err
	}
	months := quote.Months()
	if !mathutil.IsFinite(quote.LoanAmount) || quote.LoanAmount < 0 {
		return nil, fmt.Errorf("%w: loan amount must be a non-negative number, got %v", ErrInvalidAmount, quote.LoanAmount)
	}

	if quote.LoanAmount == 0 {
		return []Payment{}, nil
	}

	if !mathutil.IsFinite(quote.InterestRate) || quote.InterestRate < 0 {
		return nil, fmt.Errorf("%w must be a non-negative number, got %v", ErrInvalidRate, quote.InterestRate)
	}
	monthlyPayment := CalculateMonthlyPayment(quote.LoanAmount, quote.InterestRate, months)
	if !mathutil.IsFinite(monthlyPayment) {
		return nil, fmt.Errorf("%w for a loan of %v at %v%%", ErrOutOfRange, quote.LoanAmount, quote.InterestRate)
	}
	schedule := make([]Payment, 0, months)
	balance := quote.LoanAmount

	for month := 1; month <= months; month++ {
		current := Payment{Month: month}
		current.Interest = CalculateInterestPayment(balance, quote.InterestRate)
		current.Principal = monthlyPayment - current.Interest
		current.Payment = monthlyPayment

		remaining := balance - current.Principal
		if month == months || remaining <= 0 || mathutil.IsZero(remaining) {
			// Absorb floating point drift so the loan closes at exactly zero.
			current.Principal = balance
			current.Payment = balance + current.Interest
			current.RemainingPrincipal = 0
			schedule = append(schedule, current)
			break
		}

		current.RemainingPrincipal = remaining
		balance = remaining
		schedule = append(schedule, current)
	}

	return schedule, nil
}

// AssignDates labels each payment with its calendar month, the first payment
// falling in startDate (YYYY-MM).
func AssignDates(schedule []Payment, startDate string) error {
	dates, err := datetime.PaymentDates(startDate, len(schedule))
	if err != nil {
		return err
	}
	for i := range schedule {
		schedule[i].Date = dates[i]
	}
	return nil
}

// SummarizeSchedule totals the payments and interest in a schedule.
func SummarizeSchedule(schedule []Payment) ScheduleSummary {
	summary := ScheduleSummary{Payments: len(schedule)}
	for _, payment := range schedule {
		summary.TotalPaid += payment.Payment
		summary.TotalInterest += payment.Interest
	}
	summary.TotalPaid = mathutil.Round(summary.TotalPaid)
	summary.TotalInterest = mathutil.Round(summary.TotalInterest)
	return summary
}
