// Package planner chains the affordability, mortgage and budget calculations
// into the guided flow and maps results onto the persisted form record.
package planner

import (
	"fmt"

	"github.com/iwvelando/home-affordability/internal/config"
	"github.com/iwvelando/home-affordability/internal/metrics"
	"github.com/iwvelando/home-affordability/internal/state"
	"github.com/iwvelando/home-affordability/pkg/affordability"
	"github.com/iwvelando/home-affordability/pkg/budget"
	"github.com/iwvelando/home-affordability/pkg/constants"
	"github.com/iwvelando/home-affordability/pkg/format"
	"github.com/iwvelando/home-affordability/pkg/loans"
	"github.com/iwvelando/home-affordability/pkg/mathutil"
	"go.uber.org/zap"
)

// Plan is the outcome of the guided flow for one income.
type Plan struct {
	Estimate affordability.Estimate `json:"estimate"`
	Quote    loans.Quote            `json:"quote"`
	Band     budget.Band            `json:"band"`
	Summary  string                 `json:"summary"`
}

// Planner runs the guided flow with fixed down payment, rate and term
// assumptions.
type Planner struct {
	logger             *zap.Logger
	downPaymentPercent float64
	interestRate       float64
	loanDuration       int
}

// New returns a Planner using the plan assumptions from cfg.
func New(logger *zap.Logger, cfg config.PlanConfig) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Planner{
		logger:             logger,
		downPaymentPercent: cfg.DownPaymentPercent,
		interestRate:       cfg.InterestRate,
		loanDuration:       cfg.LoanDuration,
	}
	if p.loanDuration <= 0 {
		p.loanDuration = constants.DefaultLoanDuration
	}
	return p
}

// Plan estimates the affordable price for income, quotes a mortgage on that
// price and derives the search band.
func (p *Planner) Plan(income affordability.Income) (Plan, error) {
	estimate, err := affordability.EstimateAffordability(income)
	metrics.ObserveCalculation(metrics.KindAffordability, err)
	if err != nil {
		return Plan{}, err
	}

	downPayment := mathutil.ApplyPercentage(estimate.AffordableHome, p.downPaymentPercent)
	rate := p.interestRate
	duration := p.loanDuration
	quote, err := loans.CalculateMortgage(loans.QuoteRequest{
		HomeValue:    estimate.AffordableHome,
		DownPayment:  &downPayment,
		InterestRate: &rate,
		LoanDuration: &duration,
	})
	metrics.ObserveCalculation(metrics.KindMortgage, err)
	if err != nil {
		return Plan{}, fmt.Errorf("failed to quote mortgage for %v: %w", estimate.AffordableHome, err)
	}

	band := budget.DeriveBand(estimate.AffordableHome)
	metrics.ObserveCalculation(metrics.KindBudget, nil)
	metrics.ObserveCalculation(metrics.KindPlan, nil)

	p.logger.Debug("plan computed",
		zap.String("op", "planner.Plan"),
		zap.Float64("annual", estimate.Annual),
		zap.Float64("affordableHome", estimate.AffordableHome),
		zap.Float64("monthlyPayment", quote.MonthlyPayment),
	)

	return Plan{
		Estimate: estimate,
		Quote:    quote,
		Band:     band,
		Summary:  Summary(estimate.Annual, quote),
	}, nil
}

// Quote computes a mortgage from the values entered on the form. The home
// value falls back to the affordable estimate; the remaining optional fields
// fall back to the calculator defaults.
func Quote(form state.Form) (loans.Quote, error) {
	home := form.AffordableHome
	if form.HomeValue != nil && *form.HomeValue != 0 {
		home = *form.HomeValue
	}

	quote, err := loans.CalculateMortgage(loans.QuoteRequest{
		HomeValue:    home,
		DownPayment:  form.DownPayment,
		LoanAmount:   form.LoanAmount,
		InterestRate: form.InterestRate,
		LoanDuration: form.LoanDuration,
	})
	metrics.ObserveCalculation(metrics.KindMortgage, err)
	return quote, err
}

// Summary renders the result sentence shown after a mortgage calculation.
func Summary(annualIncome float64, quote loans.Quote) string {
	return fmt.Sprintf("With an annual income of %s and an interest rate of %s, you can afford a home up to %s. Your monthly payment would be %s.",
		format.Dollars(annualIncome),
		format.Percent(quote.InterestRate),
		format.Dollars(quote.HomeValue),
		format.Dollars(quote.MonthlyPayment),
	)
}

// ApplyPlan records a guided plan on the form.
func ApplyPlan(form state.Form, plan Plan) state.Form {
	income := plan.Estimate.Income
	return form.Merge(state.Update{
		Income:         &income,
		AffordableHome: &plan.Estimate.AffordableHome,
		HomeValue:      &plan.Quote.HomeValue,
		DownPayment:    &plan.Quote.DownPayment,
		LoanAmount:     &plan.Quote.LoanAmount,
		MonthlyPayment: &plan.Quote.MonthlyPayment,
		InterestRate:   &plan.Quote.InterestRate,
		LoanDuration:   &plan.Quote.LoanDuration,
		ResultText:     &plan.Summary,
	})
}

// ApplyQuote records a mortgage quote and its summary on the form.
func ApplyQuote(form state.Form, quote loans.Quote) state.Form {
	summary := Summary(form.Income.Annual, quote)
	return form.Merge(state.Update{
		HomeValue:      &quote.HomeValue,
		DownPayment:    &quote.DownPayment,
		LoanAmount:     &quote.LoanAmount,
		MonthlyPayment: &quote.MonthlyPayment,
		InterestRate:   &quote.InterestRate,
		LoanDuration:   &quote.LoanDuration,
		ResultText:     &summary,
	})
}
