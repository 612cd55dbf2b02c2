package dcf

import (
	"gonum.org/v1/gonum/floats"

	"github.com/iwvelando/dcf-valuation/pkg/mathutil"
)

// ResearchAsset is the result of capitalizing R&D: the adjustment to
// reported operating income and the unamortized asset added to invested
// capital.
type ResearchAsset struct {
	Adjustment float64
	Value      float64
}

// CapitalizeResearch converts a history of R&D expenses, most recent first,
// into a research asset amortized straight-line over len(expenses)-1 years.
// An empty history has no effect. A single expense leaves the amortization
// life undefined.
func CapitalizeResearch(expenses []float64) (ResearchAsset, error) {
	if len(expenses) == 0 {
		return ResearchAsset{}, nil
	}
	life := len(expenses) - 1
	if life == 0 {
		return ResearchAsset{}, degenerate("r_and_d_expenses needs at least two periods to define an amortization life, got 1")
	}

	weights := mathutil.Linspace(1, 0, len(expenses))
	unamortized := floats.Dot(weights, expenses)

	amortization := 0.0
	for _, expense := range expenses[1:] {
		amortization += expense / float64(life)
	}

	return ResearchAsset{
		Adjustment: expenses[0] - amortization,
		Value:      unamortized,
	}, nil
}
