// Package dcf implements a twelve-period discounted-cash-flow valuation
// engine. Given a company's historical financials and forward-looking
// assumptions it projects revenues, margins, taxes, reinvestment and
// invested capital, discounts the resulting free cash flows at a
// time-varying cost of capital and derives an intrinsic value per share.
//
// Everything in this package is a pure function of its inputs. Values that
// are undefined by construction, such as the discount factor of the
// historical period, are represented internally as NaN and encoded as null
// on the wire.
package dcf

// NumPeriods is the number of rows in every projection table: the historical
// period followed by ten forecast years and the terminal year.
const NumPeriods = 12

// TerminalPeriod is the index of the stable-growth terminal year.
const TerminalPeriod = NumPeriods - 1

// Input holds the assumptions for a single valuation. R&D expenses are
// ordered most recent first. A nil or zero DiscountRate means the cost of
// capital is derived from the capital structure.
type Input struct {
	Revenues                                float64   `json:"revenues" yaml:"revenues" mapstructure:"revenues"`
	OperatingIncome                         float64   `json:"operating_income" yaml:"operating_income" mapstructure:"operating_income"`
	InterestExpense                         float64   `json:"interest_expense" yaml:"interest_expense" mapstructure:"interest_expense"`
	BookValueOfEquity                       float64   `json:"book_value_of_equity" yaml:"book_value_of_equity" mapstructure:"book_value_of_equity"`
	BookValueOfDebt                         float64   `json:"book_value_of_debt" yaml:"book_value_of_debt" mapstructure:"book_value_of_debt"`
	CashAndMarketableSecurities             float64   `json:"cash_and_marketable_securities" yaml:"cash_and_marketable_securities" mapstructure:"cash_and_marketable_securities"`
	CrossHoldingsAndOtherNonOperatingAssets float64   `json:"cross_holdings_and_other_non_operating_assets" yaml:"cross_holdings_and_other_non_operating_assets" mapstructure:"cross_holdings_and_other_non_operating_assets"`
	MinorityInterest                        float64   `json:"minority_interest" yaml:"minority_interest" mapstructure:"minority_interest"`
	NumberOfSharesOutstanding               float64   `json:"number_of_shares_outstanding" yaml:"number_of_shares_outstanding" mapstructure:"number_of_shares_outstanding"`
	CurrPrice                               float64   `json:"curr_price" yaml:"curr_price" mapstructure:"curr_price"`
	EffectiveTaxRate                        float64   `json:"effective_tax_rate" yaml:"effective_tax_rate" mapstructure:"effective_tax_rate"`
	MarginalTaxRate                         float64   `json:"marginal_tax_rate" yaml:"marginal_tax_rate" mapstructure:"marginal_tax_rate"`
	UnleveredBeta                           float64   `json:"unlevered_beta" yaml:"unlevered_beta" mapstructure:"unlevered_beta"`
	RiskFreeRate                            float64   `json:"risk_free_rate" yaml:"risk_free_rate" mapstructure:"risk_free_rate"`
	EquityRiskPremium                       float64   `json:"equity_risk_premium" yaml:"equity_risk_premium" mapstructure:"equity_risk_premium"`
	MatureERP                               float64   `json:"mature_erp" yaml:"mature_erp" mapstructure:"mature_erp"`
	PreTaxCostOfDebt                        float64   `json:"pre_tax_cost_of_debt" yaml:"pre_tax_cost_of_debt" mapstructure:"pre_tax_cost_of_debt"`
	AverageMaturity                         float64   `json:"average_maturity" yaml:"average_maturity" mapstructure:"average_maturity"`
	ProbOfFailure                           float64   `json:"prob_of_failure" yaml:"prob_of_failure" mapstructure:"prob_of_failure"`
	ValueOfOptions                          float64   `json:"value_of_options" yaml:"value_of_options" mapstructure:"value_of_options"`
	RevenueGrowthRateNextYear               float64   `json:"revenue_growth_rate_next_year" yaml:"revenue_growth_rate_next_year" mapstructure:"revenue_growth_rate_next_year"`
	OperatingMarginNextYear                 float64   `json:"operating_margin_next_year" yaml:"operating_margin_next_year" mapstructure:"operating_margin_next_year"`
	CompoundedAnnualRevenueGrowthRate       float64   `json:"compounded_annual_revenue_growth_rate" yaml:"compounded_annual_revenue_growth_rate" mapstructure:"compounded_annual_revenue_growth_rate"`
	TargetPreTaxOperatingMargin             float64   `json:"target_pre_tax_operating_margin" yaml:"target_pre_tax_operating_margin" mapstructure:"target_pre_tax_operating_margin"`
	YearOfConvergenceForMargin              int       `json:"year_of_convergence_for_margin" yaml:"year_of_convergence_for_margin" mapstructure:"year_of_convergence_for_margin"`
	YearsOfHighGrowth                       int       `json:"years_of_high_growth" yaml:"years_of_high_growth" mapstructure:"years_of_high_growth"`
	SalesToCapitalRatioEarly                float64   `json:"sales_to_capital_ratio_early" yaml:"sales_to_capital_ratio_early" mapstructure:"sales_to_capital_ratio_early"`
	SalesToCapitalRatioSteady               float64   `json:"sales_to_capital_ratio_steady" yaml:"sales_to_capital_ratio_steady" mapstructure:"sales_to_capital_ratio_steady"`
	RAndDExpenses                           []float64 `json:"r_and_d_expenses" yaml:"r_and_d_expenses,omitempty" mapstructure:"r_and_d_expenses"`
	DiscountRate                            *float64  `json:"discount_rate,omitempty" yaml:"discount_rate,omitempty" mapstructure:"discount_rate"`
}

// CostOfCapitalComponents is the snapshot of rates behind the starting cost
// of capital.
type CostOfCapitalComponents struct {
	CostOfDebt        float64
	CostOfEquity      float64
	LeveredBeta       float64
	RiskFreeRate      float64
	EquityRiskPremium float64
}

// Row is one period of the projection table. Row 0 is the historical period
// and its DiscountFactor and PVFCFF are NaN.
type Row struct {
	RevenueGrowthRate float64
	Revenues          float64
	OperatingMargin   float64
	OperatingIncome   float64
	TaxRate           float64
	Taxes             float64
	NOL               float64 // loss generated in this period
	NOLCumulative     float64 // balance carried forward after utilization
	NOLUtilized       float64
	EBITAfterTax      float64
	Reinvestment      float64
	InvestedCapital   float64
	ROIC              float64
	CostOfCapital     float64
	FCFF              float64
	DiscountFactor    float64
	PVFCFF            float64
}

// FinalComponents are the terms of the bridge from operating value to
// equity value, exposed for display.
type FinalComponents struct {
	PresentValueOfCashFlows                 float64
	BookValueOfDebt                         float64
	CashAndMarketableSecurities             float64
	CrossHoldingsAndOtherNonOperatingAssets float64
	MinorityInterest                        float64
}

// Output is a complete valuation snapshot.
type Output struct {
	ValuePerShare           float64
	Rows                    []Row
	CostOfCapitalComponents CostOfCapitalComponents
	FinalComponents         FinalComponents
}

// HasDiscountRateOverride reports whether an explicit discount rate replaces
// the computed starting cost of capital.
func (in Input) HasDiscountRateOverride() bool {
	return in.DiscountRate != nil && *in.DiscountRate != 0
}

// EndCostOfCapital is the long-run cost of capital of a mature firm.
func (in Input) EndCostOfCapital() float64 {
	return in.RiskFreeRate + in.MatureERP
}

// CapitalStructure extracts the cost-of-capital inputs. The marginal tax rate
// is used for the debt tax shield.
func (in Input) CapitalStructure() CapitalStructure {
	return CapitalStructure{
		InterestExpense:      in.InterestExpense,
		PreTaxCostOfDebt:     in.PreTaxCostOfDebt,
		AverageMaturity:      in.AverageMaturity,
		BookValueOfDebt:      in.BookValueOfDebt,
		NumSharesOutstanding: in.NumberOfSharesOutstanding,
		CurrPrice:            in.CurrPrice,
		UnleveredBeta:        in.UnleveredBeta,
		TaxRate:              in.MarginalTaxRate,
		RiskFreeRate:         in.RiskFreeRate,
		EquityRiskPremium:    in.EquityRiskPremium,
	}
}

// Clone returns a copy that shares no memory with in.
func (in Input) Clone() Input {
	out := in
	if in.RAndDExpenses != nil {
		out.RAndDExpenses = append([]float64(nil), in.RAndDExpenses...)
	}
	if in.DiscountRate != nil {
		rate := *in.DiscountRate
		out.DiscountRate = &rate
	}
	return out
}
