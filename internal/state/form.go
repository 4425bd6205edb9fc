// Package state persists the calculator form record between sessions. It is a
// boundary concern: callers load the record at start and save it after each
// update, and the calculators never see the store.
package state

import (
	"errors"

	"github.com/iwvelando/home-affordability/pkg/affordability"
	"github.com/iwvelando/home-affordability/pkg/constants"
)

// ErrCorruptState is returned when a stored record cannot be decoded.
var ErrCorruptState = errors.New("stored form state is corrupt")

// Form is the persisted calculator form. Optional inputs the user has not
// entered yet are nil.
type Form struct {
	Income         affordability.Income `json:"income"`
	AffordableHome float64              `json:"affordableHome"`
	HomeValue      *float64             `json:"homeValue,omitempty"`
	DownPayment    *float64             `json:"downPayment,omitempty"`
	LoanAmount     *float64             `json:"loanAmount,omitempty"`
	InterestRate   *float64             `json:"interestRate,omitempty"`
	LoanDuration   *int                 `json:"loanDuration,omitempty"`
	MonthlyPayment float64              `json:"monthlyPayment"`
	ResultText     string               `json:"resultText,omitempty"`
}

// Update is a partial Form; only non-nil fields are applied by Merge.
type Update struct {
	Income         *affordability.Income `json:"income,omitempty"`
	AffordableHome *float64              `json:"affordableHome,omitempty"`
	HomeValue      *float64              `json:"homeValue,omitempty"`
	DownPayment    *float64              `json:"downPayment,omitempty"`
	LoanAmount     *float64              `json:"loanAmount,omitempty"`
	InterestRate   *float64              `json:"interestRate,omitempty"`
	LoanDuration   *int                  `json:"loanDuration,omitempty"`
	MonthlyPayment *float64              `json:"monthlyPayment,omitempty"`
	ResultText     *string               `json:"resultText,omitempty"`
}

// DefaultForm returns the record a new session starts with.
func DefaultForm() Form {
	duration := constants.DefaultLoanDuration
	return Form{
		Income:       affordability.Income{Frequency: affordability.Monthly},
		LoanDuration: &duration,
	}
}

// Merge returns a copy of f with every field present in u overwritten. When
// the update touches the home value or down payment but not the loan amount,
// the loan amount is re-derived from the two once both are non-zero.
func (f Form) Merge(u Update) Form {
	if u.Income != nil {
		f.Income = *u.Income
	}
	if u.AffordableHome != nil {
		f.AffordableHome = *u.AffordableHome
	}
	if u.HomeValue != nil {
		f.HomeValue = copyFloat(u.HomeValue)
	}
	if u.DownPayment != nil {
		f.DownPayment = copyFloat(u.DownPayment)
	}
	if u.LoanAmount != nil {
		f.LoanAmount = copyFloat(u.LoanAmount)
	}
	if u.InterestRate != nil {
		f.InterestRate = copyFloat(u.InterestRate)
	}
	if u.LoanDuration != nil {
		v := *u.LoanDuration
		f.LoanDuration = &v
	}
	if u.MonthlyPayment != nil {
		f.MonthlyPayment = *u.MonthlyPayment
	}
	if u.ResultText != nil {
		f.ResultText = *u.ResultText
	}

	if u.LoanAmount == nil && (u.HomeValue != nil || u.DownPayment != nil) &&
		f.HomeValue != nil && f.DownPayment != nil && *f.HomeValue != 0 && *f.DownPayment != 0 {
		loan := *f.HomeValue - *f.DownPayment
		f.LoanAmount = &loan
	}
	return f
}

func copyFloat(p *float64) *float64 {
	v := *p
	return &v
}
