package dcf

import "github.com/iwvelando/dcf-valuation/pkg/mathutil"

type namedValue struct {
	name  string
	value float64
}

// fields lists every required scalar of the input by its wire name.
func (in Input) fields() []namedValue {
	return []namedValue{
		{"revenues", in.Revenues},
		{"operating_income", in.OperatingIncome},
		{"interest_expense", in.InterestExpense},
		{"book_value_of_equity", in.BookValueOfEquity},
		{"book_value_of_debt", in.BookValueOfDebt},
		{"cash_and_marketable_securities", in.CashAndMarketableSecurities},
		{"cross_holdings_and_other_non_operating_assets", in.CrossHoldingsAndOtherNonOperatingAssets},
		{"minority_interest", in.MinorityInterest},
		{"number_of_shares_outstanding", in.NumberOfSharesOutstanding},
		{"curr_price", in.CurrPrice},
		{"effective_tax_rate", in.EffectiveTaxRate},
		{"marginal_tax_rate", in.MarginalTaxRate},
		{"unlevered_beta", in.UnleveredBeta},
		{"risk_free_rate", in.RiskFreeRate},
		{"equity_risk_premium", in.EquityRiskPremium},
		{"mature_erp", in.MatureERP},
		{"pre_tax_cost_of_debt", in.PreTaxCostOfDebt},
		{"average_maturity", in.AverageMaturity},
		{"prob_of_failure", in.ProbOfFailure},
		{"value_of_options", in.ValueOfOptions},
		{"revenue_growth_rate_next_year", in.RevenueGrowthRateNextYear},
		{"operating_margin_next_year", in.OperatingMarginNextYear},
		{"compounded_annual_revenue_growth_rate", in.CompoundedAnnualRevenueGrowthRate},
		{"target_pre_tax_operating_margin", in.TargetPreTaxOperatingMargin},
		{"year_of_convergence_for_margin", float64(in.YearOfConvergenceForMargin)},
		{"years_of_high_growth", float64(in.YearsOfHighGrowth)},
		{"sales_to_capital_ratio_early", in.SalesToCapitalRatioEarly},
		{"sales_to_capital_ratio_steady", in.SalesToCapitalRatioSteady},
	}
}

// RequiredFields returns the wire names of every field that must be present
// in an input payload.
func RequiredFields() []string {
	fields := Input{}.fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.name
	}
	return names
}

// Validate checks that every value is finite and that the capital structure
// and share count admit a valuation. Horizon and terminal checks happen where
// those values are used.
func (in Input) Validate() error {
	for _, f := range in.fields() {
		if !mathutil.IsFinite(f.value) {
			return malformed("%s must be a finite number, got %v", f.name, f.value)
		}
	}
	for i, expense := range in.RAndDExpenses {
		if !mathutil.IsFinite(expense) {
			return malformed("r_and_d_expenses[%d] must be a finite number, got %v", i, expense)
		}
	}
	if in.DiscountRate != nil && !mathutil.IsFinite(*in.DiscountRate) {
		return malformed("discount_rate must be a finite number, got %v", *in.DiscountRate)
	}

	if in.NumberOfSharesOutstanding <= 0 {
		return degenerate("number_of_shares_outstanding must be positive, got %v", in.NumberOfSharesOutstanding)
	}
	return in.CapitalStructure().Validate()
}
