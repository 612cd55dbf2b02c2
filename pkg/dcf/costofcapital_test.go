package dcf_test

import (
	"errors"
	"math"
	"testing"

	"github.com/iwvelando/dcf-valuation/pkg/dcf"
	"github.com/iwvelando/dcf-valuation/pkg/testutil"
)

func TestCostOfCapital(t *testing.T) {
	tests := []struct {
		name            string
		cs              dcf.CapitalStructure
		expectedDebt    float64
		expectedWACC    float64
		expectedKdAfter float64
		expectedKe      float64
		expectedLevBeta float64
	}{
		{
			name: "Two year debt at five percent",
			cs: dcf.CapitalStructure{
				InterestExpense: 100, PreTaxCostOfDebt: 0.05, AverageMaturity: 2, BookValueOfDebt: 1000,
				NumSharesOutstanding: 100, CurrPrice: 10, UnleveredBeta: 1, TaxRate: 0.25,
				RiskFreeRate: 0.04, EquityRiskPremium: 0.05,
			},
			expectedDebt:    1092.9705215419501,
			expectedWACC:    0.08216684723726977,
			expectedKdAfter: 0.0375,
			expectedKe:      0.13098639455782313,
			expectedLevBeta: 1.8197278911564625,
		},
		{
			name: "Zero cost of debt uses the annuity limit",
			cs: dcf.CapitalStructure{
				InterestExpense: 50, PreTaxCostOfDebt: 0, AverageMaturity: 4, BookValueOfDebt: 800,
				NumSharesOutstanding: 100, CurrPrice: 10, UnleveredBeta: 1.2, TaxRate: 0.2,
				RiskFreeRate: 0.03, EquityRiskPremium: 0.05,
			},
			expectedDebt:    1000,
			expectedWACC:    0.069,
			expectedKdAfter: 0,
			expectedKe:      0.138,
			expectedLevBeta: 2.16,
		},
		{
			name: "Large cap baseline",
			cs: dcf.CapitalStructure{
				InterestExpense: 320_000_000, PreTaxCostOfDebt: 0.052, AverageMaturity: 6, BookValueOfDebt: 9_800_000_000,
				NumSharesOutstanding: 980_000_000, CurrPrice: 172.4, UnleveredBeta: 1.08, TaxRate: 0.21,
				RiskFreeRate: 0.041, EquityRiskPremium: 0.048,
			},
			expectedDebt:    8843773502.588045,
			expectedWACC:    0.09230247679516983,
			expectedKdAfter: 0.04108,
			expectedKe:      0.09498371160161223,
			expectedLevBeta: 1.1246606583669214,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertNearlyEqual(t, "MarketValueOfDebt", tt.cs.MarketValueOfDebt(), tt.expectedDebt)

			wacc, components := dcf.CostOfCapital(tt.cs)
			testutil.AssertNearlyEqual(t, "wacc", wacc, tt.expectedWACC)
			testutil.AssertNearlyEqual(t, "CostOfDebt", components.CostOfDebt, tt.expectedKdAfter)
			testutil.AssertNearlyEqual(t, "CostOfEquity", components.CostOfEquity, tt.expectedKe)
			testutil.AssertNearlyEqual(t, "LeveredBeta", components.LeveredBeta, tt.expectedLevBeta)
			if components.RiskFreeRate != tt.cs.RiskFreeRate {
				t.Errorf("RiskFreeRate = %v, want %v", components.RiskFreeRate, tt.cs.RiskFreeRate)
			}
			if components.EquityRiskPremium != tt.cs.EquityRiskPremium {
				t.Errorf("EquityRiskPremium = %v, want %v", components.EquityRiskPremium, tt.cs.EquityRiskPremium)
			}
		})
	}
}

func TestCostOfCapitalZeroEquityIsNotFinite(t *testing.T) {
	cs := testutil.BaselineInput().CapitalStructure()
	cs.CurrPrice = 0

	wacc, _ := dcf.CostOfCapital(cs)
	if !math.IsNaN(wacc) && !math.IsInf(wacc, 0) {
		t.Errorf("CostOfCapital() with zero equity = %v, expected a non-finite value", wacc)
	}
}

func TestCapitalStructureValidate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(cs *dcf.CapitalStructure)
		expectedErr error
	}{
		{
			name:   "Baseline is valid",
			modify: func(cs *dcf.CapitalStructure) {},
		},
		{
			name:        "NaN beta is malformed",
			modify:      func(cs *dcf.CapitalStructure) { cs.UnleveredBeta = math.NaN() },
			expectedErr: dcf.ErrMalformedInput,
		},
		{
			name:        "Infinite price is malformed",
			modify:      func(cs *dcf.CapitalStructure) { cs.CurrPrice = math.Inf(1) },
			expectedErr: dcf.ErrMalformedInput,
		},
		{
			name:        "Cost of debt at minus one is degenerate",
			modify:      func(cs *dcf.CapitalStructure) { cs.PreTaxCostOfDebt = -1 },
			expectedErr: dcf.ErrDegenerateConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := testutil.BaselineInput().CapitalStructure()
			tt.modify(&cs)

			err := cs.Validate()
			if tt.expectedErr == nil {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.expectedErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.expectedErr)
			}
		})
	}
}

func TestCapitalStructureUsesMarginalTaxRate(t *testing.T) {
	in := testutil.BaselineInput()
	cs := in.CapitalStructure()
	if cs.TaxRate != in.MarginalTaxRate {
		t.Errorf("CapitalStructure().TaxRate = %v, want marginal rate %v", cs.TaxRate, in.MarginalTaxRate)
	}
	if cs.NumSharesOutstanding != in.NumberOfSharesOutstanding {
		t.Errorf("CapitalStructure().NumSharesOutstanding = %v, want %v", cs.NumSharesOutstanding, in.NumberOfSharesOutstanding)
	}
}
