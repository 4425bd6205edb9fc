package affordability

import (
	"fmt"

	"github.com/iwvelando/home-affordability/pkg/constants"
	"github.com/iwvelando/home-affordability/pkg/mathutil"
)

// Estimate is the result of an affordability calculation.
type Estimate struct {
	Income         Income  `json:"income"`
	Annual         float64 `json:"annual"`
	AffordableHome float64 `json:"affordableHome"`
}

// EstimateAffordability annualizes the income, caps the monthly housing
// allowance at 28% of gross monthly income and scales it by a fixed
// multiplier to get a home price rounded to a whole currency unit.
func EstimateAffordability(income Income) (Estimate, error) {
	annualized, err := income.Annualize()
	if err != nil {
		return Estimate{}, err
	}

	monthlyAllowance := MonthlyAllowance(annualized.Annual)
	affordableHome := mathutil.RoundWhole(monthlyAllowance * constants.PaymentToPriceMultiplier)
	if !mathutil.IsFinite(affordableHome) {
		return Estimate{}, fmt.Errorf("%w value %v gives a home price out of range", ErrInvalidIncome, income.Value)
	}
	return Estimate{
		Income:         annualized,
		Annual:         annualized.Annual,
		AffordableHome: affordableHome,
	}, nil
}

// MonthlyAllowance is the maximum monthly housing cost for an annual income.
func MonthlyAllowance(annual float64) float64 {
	return annual * constants.FrontEndRatio / constants.MonthsPerYear
}
