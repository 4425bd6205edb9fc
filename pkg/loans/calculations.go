// Package loans provides fixed-rate mortgage calculations.
package loans

import (
	"fmt"
	"math"

	"github.com/iwvelando/home-affordability/pkg/constants"
	"github.com/iwvelando/home-affordability/pkg/mathutil"
	"github.com/iwvelando/home-affordability/pkg/validation"
)

var (
	// ErrInvalidDuration is returned for loan terms outside 1 to MaxLoanDuration years.
	ErrInvalidDuration = fmt.Errorf("%w: loan duration must be between 1 and %d years",
		validation.ErrInvalidInput, constants.MaxLoanDuration)

	// ErrInvalidRate is returned for negative or non-finite interest rates.
	ErrInvalidRate = fmt.Errorf("%w: interest rate", validation.ErrInvalidInput)

	// ErrInvalidAmount is returned for negative or non-finite amounts, including a
	// down payment larger than the home value.
	ErrInvalidAmount = fmt.Errorf("%w: amount", validation.ErrInvalidInput)

	// ErrOutOfRange is returned when finite inputs produce a payment too large
	// to represent.
	ErrOutOfRange = fmt.Errorf("%w: monthly payment is out of range", validation.ErrInvalidInput)
)

// QuoteRequest holds the inputs of a mortgage quote. Nil optional fields take
// their defaults: no down payment, a 6.5% rate and a 30-year term.
//
// LoanAmount overrides HomeValue-DownPayment only when it is set and greater
// than zero; an explicit zero is treated the same as an absent value.
type QuoteRequest struct {
	HomeValue    float64  `json:"homeValue" yaml:"homeValue"`
	DownPayment  *float64 `json:"downPayment,omitempty" yaml:"downPayment,omitempty"`
	LoanAmount   *float64 `json:"loanAmount,omitempty" yaml:"loanAmount,omitempty"`
	InterestRate *float64 `json:"interestRate,omitempty" yaml:"interestRate,omitempty"` // annual, percent
	LoanDuration *int     `json:"loanDuration,omitempty" yaml:"loanDuration,omitempty"` // years
}

// Quote is a computed mortgage. MonthlyPayment is rounded to a whole currency
// unit; the other fields are passed through or derived without rounding.
type Quote struct {
	HomeValue      float64 `json:"homeValue"`
	DownPayment    float64 `json:"downPayment"`
	LoanAmount     float64 `json:"loanAmount"`
	MonthlyPayment float64 `json:"monthlyPayment"`
	InterestRate   float64 `json:"interestRate"`
	LoanDuration   int     `json:"loanDuration"`
}

// Months returns the number of monthly payments over the loan term.
func (q Quote) Months() int {
	return q.LoanDuration * constants.MonthsPerYear
}

// CalculateMortgage resolves the request defaults and computes the fixed
// monthly payment under standard amortization.
func CalculateMortgage(req QuoteRequest) (Quote, error) {
	quote, err := resolve(req)
	if err != nil {
		return Quote{}, err
	}

	payment := CalculateMonthlyPayment(quote.LoanAmount, quote.InterestRate, quote.Months())
	if !mathutil.IsFinite(payment) {
		return Quote{}, fmt.Errorf("%w for a loan of %v at %v%%", ErrOutOfRange, quote.LoanAmount, quote.InterestRate)
	}
	quote.MonthlyPayment = mathutil.RoundWhole(payment)
	return quote, nil
}

func resolve(req QuoteRequest) (Quote, error) {
	quote := Quote{
		HomeValue:    req.HomeValue,
		InterestRate: constants.DefaultInterestRate,
		LoanDuration: constants.DefaultLoanDuration,
	}
	if req.DownPayment != nil {
		quote.DownPayment = *req.DownPayment
	}
	if req.InterestRate != nil {
		quote.InterestRate = *req.InterestRate
	}
	if req.LoanDuration != nil {
		quote.LoanDuration = *req.LoanDuration
	}

	if err := checkAmount("home value", quote.HomeValue); err != nil {
		return Quote{}, err
	}
	if err := checkAmount("down payment", quote.DownPayment); err != nil {
		return Quote{}, err
	}
	if !mathutil.IsFinite(quote.InterestRate) || quote.InterestRate < 0 {
		return Quote{}, fmt.Errorf("%w must be a non-negative number, got %v", ErrInvalidRate, quote.InterestRate)
	}
	if err := checkDuration(quote.LoanDuration); err != nil {
		return Quote{}, err
	}

	if req.LoanAmount != nil && *req.LoanAmount != 0 {
		if err := checkAmount("loan amount", *req.LoanAmount); err != nil {
			return Quote{}, err
		}
		quote.LoanAmount = *req.LoanAmount
	} else {
		quote.LoanAmount = quote.HomeValue - quote.DownPayment
		if quote.LoanAmount < 0 {
			return Quote{}, fmt.Errorf("%w: down payment %v exceeds home value %v",
				ErrInvalidAmount, quote.DownPayment, quote.HomeValue)
		}
	}

	return quote, nil
}

func checkDuration(years int) error {
	if years <= 0 || years > constants.MaxLoanDuration {
		return fmt.Errorf("%w, got %d", ErrInvalidDuration, years)
	}
	return nil
}

func checkAmount(field string, value float64) error {
	if !mathutil.IsFinite(value) || value < 0 {
		return fmt.Errorf("%w: %s must be a non-negative number, got %v", ErrInvalidAmount, field, value)
	}
	return nil
}

// CalculateMonthlyPayment calculates the unrounded monthly payment for a loan
// using the standard amortization formula. A zero rate repays the loan in
// equal straight-line installments. termMonths must be positive.
//
// The annuity factor is computed as 1-(1+r)^-n through Expm1 and Log1p, which
// stays finite for long terms and high rates where (1+r)^n overflows.
func CalculateMonthlyPayment(loan, annualInterestRate float64, termMonths int) float64 {
	periodicInterestRate := MonthlyRate(annualInterestRate)
	if periodicInterestRate == 0 {
		return loan / float64(termMonths)
	}

	discount := -math.Expm1(-float64(termMonths) * math.Log1p(periodicInterestRate))
	return loan * periodicInterestRate / discount
}

// MonthlyRate converts an annual percentage rate into a monthly fraction.
func MonthlyRate(annualInterestRate float64) float64 {
	return annualInterestRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
}

// CalculateInterestPayment calculates the interest portion of a payment.
func CalculateInterestPayment(remainingPrincipal, annualInterestRate float64) float64 {
	return remainingPrincipal * MonthlyRate(annualInterestRate)
}
