package dcf

import (
	"math"

	"github.com/iwvelando/dcf-valuation/pkg/mathutil"
)

const (
	// revenueEpsilon keeps the historical margin defined when revenues are zero.
	revenueEpsilon = 1e-8

	// nolRecoveryRate is the share of an operating loss that becomes a
	// carryforward.
	nolRecoveryRate = 0.8

	effectiveTaxPeriods        = 6
	taxGlidePeriods            = 5
	salesToCapitalGlidePeriods = 7
	startCostOfCapitalPeriods  = 6
)

// Projection is the full set of twelve-period operating series. Every slice
// has NumPeriods elements.
type Projection struct {
	RevenueGrowthRate []float64
	Revenues          []float64
	OperatingMargin   []float64
	OperatingIncome   []float64
	TaxRate           []float64
	Taxes             []float64
	NOL               []float64
	NOLCumulative     []float64
	NOLUtilized       []float64
	EBITAfterTax      []float64
	SalesToCapital    []float64
	Reinvestment      []float64
	InvestedCapital   []float64
	ROIC              []float64
	CostOfCapital     []float64

	// EndCostOfCapital is the long-run cost of capital the path glides to.
	EndCostOfCapital float64
}

// Project builds every operating series from the starting cost of capital
// and the capitalized research asset. Each row only reads earlier rows; the
// terminal year is then replaced by its stable-growth form.
func Project(in Input, startCostOfCapital float64, research ResearchAsset) (*Projection, error) {
	if in.YearsOfHighGrowth < 1 || in.YearsOfHighGrowth > TerminalPeriod {
		return nil, degenerate("years_of_high_growth must be between 1 and %d, got %d", TerminalPeriod, in.YearsOfHighGrowth)
	}
	if in.YearOfConvergenceForMargin < 0 || in.YearOfConvergenceForMargin > TerminalPeriod {
		return nil, degenerate("year_of_convergence_for_margin must be between 0 and %d, got %d", TerminalPeriod, in.YearOfConvergenceForMargin)
	}

	baseRevenue := in.Revenues + revenueEpsilon
	baseIncome := in.OperatingIncome + research.Adjustment

	growth := growthPath(in)
	revenues := mathutil.CumProd(addScalar(growth, 1))
	for i := range revenues {
		revenues[i] *= baseRevenue
	}

	margin := marginPath(in, baseIncome/baseRevenue)
	operatingIncome := make([]float64, NumPeriods)
	for i := range operatingIncome {
		operatingIncome[i] = revenues[i] * margin[i]
	}

	taxRate := taxPath(in)
	losses := carryforward(operatingIncome)
	taxes := make([]float64, NumPeriods)
	ebitAfterTax := make([]float64, NumPeriods)
	for i, income := range operatingIncome {
		if income > 0 {
			taxes[i] = income * taxRate[i]
		}
		taxes[i] -= losses.utilized[i] * taxRate[i]
		ebitAfterTax[i] = income - taxes[i]
	}

	salesToCapital := salesToCapitalPath(in)
	reinvestment := forwardReinvestment(revenues, salesToCapital)

	startingCapital := in.BookValueOfEquity + in.BookValueOfDebt - in.CashAndMarketableSecurities + research.Value
	investedCapital := mathutil.CumSum(reinvestment)
	roic := make([]float64, NumPeriods)
	for i := range investedCapital {
		investedCapital[i] += startingCapital
		roic[i] = ebitAfterTax[i] / investedCapital[i]
	}

	endCostOfCapital := in.EndCostOfCapital()
	terminal := stableGrowthTerminal(in.RiskFreeRate, endCostOfCapital,
		ebitAfterTax[TerminalPeriod], investedCapital[TerminalPeriod-1])

	return &Projection{
		RevenueGrowthRate: growth,
		Revenues:          revenues,
		OperatingMargin:   margin,
		OperatingIncome:   operatingIncome,
		TaxRate:           taxRate,
		Taxes:             taxes,
		NOL:               losses.generated,
		NOLCumulative:     losses.balance,
		NOLUtilized:       losses.utilized,
		EBITAfterTax:      ebitAfterTax,
		SalesToCapital:    salesToCapital,
		Reinvestment:      withTerminal(reinvestment, terminal.reinvestment),
		InvestedCapital:   withTerminal(investedCapital, terminal.investedCapital),
		ROIC:              withTerminal(roic, terminal.roic),
		CostOfCapital:     costOfCapitalPath(startCostOfCapital, endCostOfCapital),
		EndCostOfCapital:  endCostOfCapital,
	}, nil
}

// growthPath holds next-year growth in row 1, the compounded rate through
// the high-growth years, a linear fade of TerminalPeriod-yhg points to the
// risk-free rate, and the risk-free rate in the terminal year. With a single
// high-growth year the fade starts at row 2 and runs into the terminal row.
func growthPath(in Input) []float64 {
	growth := make([]float64, NumPeriods)
	growth[1] = in.RevenueGrowthRateNextYear
	fadeStart := max(in.YearsOfHighGrowth, 2)
	for i := 2; i < fadeStart; i++ {
		growth[i] = in.CompoundedAnnualRevenueGrowthRate
	}
	fade := mathutil.Linspace(in.CompoundedAnnualRevenueGrowthRate, in.RiskFreeRate, TerminalPeriod-in.YearsOfHighGrowth)
	copy(growth[fadeStart:], fade)
	growth[TerminalPeriod] = in.RiskFreeRate
	return growth
}

func marginPath(in Input, historical float64) []float64 {
	margin := make([]float64, NumPeriods)
	margin[0] = historical
	convergence := in.YearOfConvergenceForMargin
	copy(margin[1:convergence+1],
		mathutil.Linspace(in.OperatingMarginNextYear, in.TargetPreTaxOperatingMargin, convergence))
	for i := convergence + 1; i < NumPeriods; i++ {
		margin[i] = in.TargetPreTaxOperatingMargin
	}
	return margin
}

func taxPath(in Input) []float64 {
	rates := mathutil.Fill(in.EffectiveTaxRate, NumPeriods)
	copy(rates[effectiveTaxPeriods:TerminalPeriod],
		mathutil.Linspace(in.EffectiveTaxRate, in.MarginalTaxRate, taxGlidePeriods))
	rates[TerminalPeriod] = in.MarginalTaxRate
	return rates
}

func salesToCapitalPath(in Input) []float64 {
	ratios := mathutil.Fill(in.SalesToCapitalRatioSteady, NumPeriods)
	copy(ratios, mathutil.Linspace(in.SalesToCapitalRatioEarly, in.SalesToCapitalRatioSteady, salesToCapitalGlidePeriods))
	return ratios
}

func costOfCapitalPath(start, end float64) []float64 {
	path := mathutil.Fill(start, NumPeriods)
	copy(path[startCostOfCapitalPeriods:], mathutil.Linspace(start, end, NumPeriods-startCostOfCapitalPeriods))
	return path
}

type lossCarryforward struct {
	generated []float64
	balance   []float64
	utilized  []float64
}

// carryforward walks the periods in order. A loss adds 80% of its magnitude
// to the balance; a profit draws the balance down by at most its own size.
func carryforward(operatingIncome []float64) lossCarryforward {
	n := len(operatingIncome)
	losses := lossCarryforward{
		generated: make([]float64, n),
		balance:   make([]float64, n),
		utilized:  make([]float64, n),
	}
	carried := 0.0
	for i, income := range operatingIncome {
		if income < 0 {
			losses.generated[i] = -income * nolRecoveryRate
		}
		available := carried + losses.generated[i]
		if income > 0 {
			losses.utilized[i] = mathutil.Min(income, available)
		}
		losses.balance[i] = available - losses.utilized[i]
		carried = losses.balance[i]
	}
	return losses
}

// forwardReinvestment funds next period's revenue growth at this period's
// sales-to-capital ratio. The historical row carries no reinvestment and
// the terminal row has no next period, so it is left undefined.
func forwardReinvestment(revenues, salesToCapital []float64) []float64 {
	reinvestment := make([]float64, len(revenues))
	for i := 1; i < len(revenues)-1; i++ {
		reinvestment[i] = (revenues[i+1] - revenues[i]) / salesToCapital[i]
	}
	reinvestment[len(revenues)-1] = math.NaN()
	return reinvestment
}

type terminalYear struct {
	reinvestment    float64
	investedCapital float64
	roic            float64
}

// stableGrowthTerminal sets the terminal return equal to the long-run cost
// of capital and reinvests growth/return of after-tax operating income,
// with growth equal to the risk-free rate.
func stableGrowthTerminal(riskFreeRate, endCostOfCapital, ebitAfterTax, priorInvestedCapital float64) terminalYear {
	roic := endCostOfCapital
	reinvestment := (riskFreeRate / roic) * ebitAfterTax
	return terminalYear{
		reinvestment:    reinvestment,
		investedCapital: priorInvestedCapital + reinvestment,
		roic:            roic,
	}
}

// withTerminal returns a copy of series with the terminal element replaced.
func withTerminal(series []float64, terminal float64) []float64 {
	out := append([]float64(nil), series...)
	out[TerminalPeriod] = terminal
	return out
}

func addScalar(values []float64, scalar float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v + scalar
	}
	return out
}
