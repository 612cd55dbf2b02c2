package validation

import (
	"strings"
	"testing"

	"github.com/iwvelando/dcf-valuation/pkg/dcf"
	"github.com/iwvelando/dcf-valuation/pkg/testutil"
)

func TestValidateAssumptions(t *testing.T) {
	tests := []struct {
		name           string
		modify         func(in *dcf.Input)
		expectWarnings []string
	}{
		{
			name:   "Baseline has no warnings",
			modify: func(in *dcf.Input) {},
		},
		{
			name:           "Probability of failure above one",
			modify:         func(in *dcf.Input) { in.ProbOfFailure = 1.5 },
			expectWarnings: []string{"prob_of_failure"},
		},
		{
			name:           "Negative probability of failure",
			modify:         func(in *dcf.Input) { in.ProbOfFailure = -0.1 },
			expectWarnings: []string{"prob_of_failure"},
		},
		{
			name: "Margins above one hundred percent",
			modify: func(in *dcf.Input) {
				in.OperatingMarginNextYear = 1.2
				in.TargetPreTaxOperatingMargin = 18
			},
			expectWarnings: []string{"operating_margin_next_year", "target_pre_tax_operating_margin"},
		},
		{
			name:           "Effective tax above marginal",
			modify:         func(in *dcf.Input) { in.EffectiveTaxRate = 0.3 },
			expectWarnings: []string{"effective_tax_rate"},
		},
		{
			name:           "Discount rate override",
			modify:         func(in *dcf.Input) { in.DiscountRate = testutil.Float(0.09) },
			expectWarnings: []string{"discount_rate"},
		},
		{
			name:   "Zero discount rate is not an override",
			modify: func(in *dcf.Input) { in.DiscountRate = testutil.Float(0) },
		},
		{
			name:           "Growth below risk-free rate",
			modify:         func(in *dcf.Input) { in.CompoundedAnnualRevenueGrowthRate = 0.01 },
			expectWarnings: []string{"compounded_annual_revenue_growth_rate"},
		},
		{
			name:           "Non-positive sales to capital",
			modify:         func(in *dcf.Input) { in.SalesToCapitalRatioSteady = 0 },
			expectWarnings: []string{"sales-to-capital"},
		},
		{
			name:           "Mature premium above current premium",
			modify:         func(in *dcf.Input) { in.MatureERP = 0.06 },
			expectWarnings: []string{"mature_erp"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := testutil.BaselineInput()
			tt.modify(&in)

			warnings := ValidateAssumptions(in)
			if len(warnings) != len(tt.expectWarnings) {
				t.Fatalf("ValidateAssumptions() returned %d warnings %v, want %d", len(warnings), warnings, len(tt.expectWarnings))
			}
			for i, expected := range tt.expectWarnings {
				if !strings.Contains(warnings[i], expected) {
					t.Errorf("warning %d = %q, expected it to mention %q", i, warnings[i], expected)
				}
			}
		})
	}
}
