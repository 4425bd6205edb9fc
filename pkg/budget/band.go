// Package budget derives the price range used to filter listings searches
// from a single affordable home price.
package budget

import (
	"errors"

	"github.com/iwvelando/home-affordability/pkg/constants"
	"github.com/iwvelando/home-affordability/pkg/mathutil"
)

// ErrNoBudget is returned when a listings search is attempted without a valid
// budget band, i.e. before an affordability calculation has produced a
// positive price.
var ErrNoBudget = errors.New("please complete the affordability calculation first")

// Band is a price range around an affordable home price.
type Band struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// DeriveBand expands affordableHome into a range of -10%/+10%, each bound
// rounded to a whole currency unit. Non-positive or non-finite input, or a
// price whose upper bound would overflow, yields the zero Band, which is not
// Valid.
func DeriveBand(affordableHome float64) Band {
	if !mathutil.IsFinite(affordableHome) || affordableHome <= 0 {
		return Band{}
	}
	band := Band{
		Lower: mathutil.RoundWhole(affordableHome * constants.BandLowerFactor),
		Upper: mathutil.RoundWhole(affordableHome * constants.BandUpperFactor),
	}
	if !mathutil.IsFinite(band.Upper) {
		return Band{}
	}
	return band
}

// Valid reports whether the band can be used to filter a search.
func (b Band) Valid() bool {
	return b.Upper > 0 && b.Upper >= b.Lower
}

// Contains reports whether price lies within the band, bounds included.
func (b Band) Contains(price float64) bool {
	return b.Valid() && price >= b.Lower && price <= b.Upper
}
