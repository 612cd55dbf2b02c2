package dcf

import (
	"fmt"

	"github.com/iwvelando/dcf-valuation/pkg/mathutil"
)

// liquidationRecovery is the share of going-concern value recovered if the
// firm fails.
const liquidationRecovery = 0.5

// CashFlows holds the discounted free cash flow series of a projection.
type CashFlows struct {
	FCFF           []float64
	DiscountFactor []float64
	PresentValue   []float64
}

// Discount computes free cash flow to the firm and its present value for
// every period. The discount factor of period i compounds the cost of
// capital of periods 0 through i-1, so the historical period is NaN.
func (p *Projection) Discount() CashFlows {
	n := len(p.EBITAfterTax)
	fcff := make([]float64, n)
	perPeriod := make([]float64, n)
	for i := range fcff {
		fcff[i] = p.EBITAfterTax[i] - p.Reinvestment[i]
		perPeriod[i] = 1 / (1 + p.CostOfCapital[i])
	}

	discountFactor := mathutil.Shift(mathutil.CumProd(perPeriod), 1)
	presentValue := make([]float64, n)
	for i := range presentValue {
		presentValue[i] = fcff[i] * discountFactor[i]
	}

	return CashFlows{
		FCFF:           fcff,
		DiscountFactor: discountFactor,
		PresentValue:   presentValue,
	}
}

// TerminalValue capitalizes the terminal free cash flow as a perpetuity
// growing at the risk-free rate. The long-run cost of capital must exceed
// that growth rate.
func TerminalValue(terminalFCFF, endCostOfCapital, riskFreeRate float64) (float64, error) {
	spread := endCostOfCapital - riskFreeRate
	if spread <= 0 {
		return 0, degenerate("long-run cost of capital %v must exceed terminal growth %v", endCostOfCapital, riskFreeRate)
	}
	return terminalFCFF / spread, nil
}

// OperatingValue weights the present value of cash flows by the probability
// of failure, assuming a failed firm recovers half of its going-concern value.
func OperatingValue(presentValue, probOfFailure float64) float64 {
	proceedsIfFail := presentValue * liquidationRecovery
	return presentValue*(1-probOfFailure) + proceedsIfFail*probOfFailure
}

// Value runs the full valuation: cost of capital, research capitalization,
// projection, discounting, terminal value and the bridge to equity value per
// share.
func Value(in Input) (*Output, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	startCostOfCapital, components := CostOfCapital(in.CapitalStructure())
	if in.HasDiscountRateOverride() {
		startCostOfCapital = *in.DiscountRate
	}
	if !mathutil.IsFinite(startCostOfCapital) {
		return nil, degenerate("cost of capital is %v for the given capital structure; set discount_rate to override it", startCostOfCapital)
	}

	research, err := CapitalizeResearch(in.RAndDExpenses)
	if err != nil {
		return nil, err
	}

	projection, err := Project(in, startCostOfCapital, research)
	if err != nil {
		return nil, err
	}
	flows := projection.Discount()

	terminalValue, err := TerminalValue(flows.FCFF[TerminalPeriod], projection.EndCostOfCapital, in.RiskFreeRate)
	if err != nil {
		return nil, err
	}
	terminalPresentValue := terminalValue * flows.DiscountFactor[TerminalPeriod-1]
	presentValue := mathutil.SumRange(flows.PresentValue, 1, TerminalPeriod) + terminalPresentValue

	operatingValue := OperatingValue(presentValue, in.ProbOfFailure)
	equityValue := operatingValue -
		in.BookValueOfDebt -
		in.MinorityInterest +
		in.CashAndMarketableSecurities +
		in.CrossHoldingsAndOtherNonOperatingAssets -
		in.ValueOfOptions
	valuePerShare := equityValue / in.NumberOfSharesOutstanding
	if !mathutil.IsFinite(valuePerShare) {
		return nil, fmt.Errorf("%w: value per share is %v", ErrDegenerateConfiguration, valuePerShare)
	}

	return &Output{
		ValuePerShare:           valuePerShare,
		Rows:                    projection.rows(flows),
		CostOfCapitalComponents: components,
		FinalComponents: FinalComponents{
			PresentValueOfCashFlows:                 presentValue,
			BookValueOfDebt:                         in.BookValueOfDebt,
			CashAndMarketableSecurities:             in.CashAndMarketableSecurities,
			CrossHoldingsAndOtherNonOperatingAssets: in.CrossHoldingsAndOtherNonOperatingAssets,
			MinorityInterest:                        in.MinorityInterest,
		},
	}, nil
}

func (p *Projection) rows(flows CashFlows) []Row {
	rows := make([]Row, NumPeriods)
	for i := range rows {
		rows[i] = Row{
			RevenueGrowthRate: p.RevenueGrowthRate[i],
			Revenues:          p.Revenues[i],
			OperatingMargin:   p.OperatingMargin[i],
			OperatingIncome:   p.OperatingIncome[i],
			TaxRate:           p.TaxRate[i],
			Taxes:             p.Taxes[i],
			NOL:               p.NOL[i],
			NOLCumulative:     p.NOLCumulative[i],
			NOLUtilized:       p.NOLUtilized[i],
			EBITAfterTax:      p.EBITAfterTax[i],
			Reinvestment:      p.Reinvestment[i],
			InvestedCapital:   p.InvestedCapital[i],
			ROIC:              p.ROIC[i],
			CostOfCapital:     p.CostOfCapital[i],
			FCFF:              flows.FCFF[i],
			DiscountFactor:    flows.DiscountFactor[i],
			PVFCFF:            flows.PresentValue[i],
		}
	}
	return rows
}
