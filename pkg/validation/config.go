package validation

import (
	"fmt"

	"github.com/iwvelando/dcf-valuation/pkg/dcf"
)

// ValidateAssumptions returns warnings for inputs that are numerically valid
// but unlikely to be intended. It never rejects an input.
func ValidateAssumptions(in dcf.Input) []string {
	var warnings []string

	if in.ProbOfFailure < 0 || in.ProbOfFailure > 1 {
		warnings = append(warnings, fmt.Sprintf("prob_of_failure %v is outside [0, 1]", in.ProbOfFailure))
	}

	margins := []struct {
		name  string
		value float64
	}{
		{"operating_margin_next_year", in.OperatingMarginNextYear},
		{"target_pre_tax_operating_margin", in.TargetPreTaxOperatingMargin},
	}
	for _, m := range margins {
		if m.value > 1 {
			warnings = append(warnings, fmt.Sprintf("%s %v exceeds 100%%", m.name, m.value))
		}
	}

	if in.EffectiveTaxRate > in.MarginalTaxRate {
		warnings = append(warnings, fmt.Sprintf("effective_tax_rate %v exceeds marginal_tax_rate %v",
			in.EffectiveTaxRate, in.MarginalTaxRate))
	}

	if in.HasDiscountRateOverride() {
		warnings = append(warnings, fmt.Sprintf("discount_rate %v overrides the cost of capital derived from the capital structure",
			*in.DiscountRate))
	}

	if in.CompoundedAnnualRevenueGrowthRate < in.RiskFreeRate && in.YearsOfHighGrowth > 1 {
		warnings = append(warnings, fmt.Sprintf("compounded_annual_revenue_growth_rate %v is below the risk-free rate %v",
			in.CompoundedAnnualRevenueGrowthRate, in.RiskFreeRate))
	}

	if in.SalesToCapitalRatioEarly <= 0 || in.SalesToCapitalRatioSteady <= 0 {
		warnings = append(warnings, "sales-to-capital ratios should be positive")
	}

	if in.MatureERP > in.EquityRiskPremium {
		warnings = append(warnings, fmt.Sprintf("mature_erp %v exceeds equity_risk_premium %v",
			in.MatureERP, in.EquityRiskPremium))
	}

	return warnings
}
