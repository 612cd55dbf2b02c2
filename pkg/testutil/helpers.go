// Package testutil provides common utility functions for testing.
package testutil

import (
	"math"
	"testing"

	"github.com/iwvelando/dcf-valuation/pkg/dcf"
	"github.com/iwvelando/dcf-valuation/pkg/mathutil"
)

// BaselineInput returns a mid-cap industrial with six years of R&D history
// and no discount rate override. Each call returns a fresh value.
func BaselineInput() dcf.Input {
	return dcf.Input{
		Revenues:                                18_400_000_000,
		OperatingIncome:                         3_250_000_000,
		InterestExpense:                         360_000_000,
		BookValueOfEquity:                       14_200_000_000,
		BookValueOfDebt:                         9_600_000_000,
		CashAndMarketableSecurities:             2_400_000_000,
		CrossHoldingsAndOtherNonOperatingAssets: 470_000_000,
		MinorityInterest:                        210_000_000,
		NumberOfSharesOutstanding:               840_000_000,
		CurrPrice:                               132.5,
		EffectiveTaxRate:                        0.185,
		MarginalTaxRate:                         0.21,
		UnleveredBeta:                           1.04,
		RiskFreeRate:                            0.039,
		EquityRiskPremium:                       0.052,
		MatureERP:                               0.043,
		PreTaxCostOfDebt:                        0.056,
		AverageMaturity:                         6,
		ProbOfFailure:                           0.05,
		ValueOfOptions:                          170_000_000,
		RevenueGrowthRateNextYear:               0.081,
		OperatingMarginNextYear:                 0.181,
		CompoundedAnnualRevenueGrowthRate:       0.067,
		TargetPreTaxOperatingMargin:             0.194,
		YearOfConvergenceForMargin:              5,
		YearsOfHighGrowth:                       6,
		SalesToCapitalRatioEarly:                1.6,
		SalesToCapitalRatioSteady:               1.22,
		RAndDExpenses:                           []float64{620_000_000, 580_000_000, 530_000_000, 490_000_000, 450_000_000, 410_000_000},
	}
}

// Float returns a pointer to v, for optional input fields.
func Float(v float64) *float64 {
	return &v
}

// AssertNearlyEqual fails the test when got and want differ beyond the
// package tolerance. NaN matches only NaN.
func AssertNearlyEqual(t testing.TB, name string, got, want float64) {
	t.Helper()
	if !mathutil.NearlyEqual(got, want) {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

// AssertWithin fails the test when got differs from want by more than tol.
func AssertWithin(t testing.TB, name string, got, want, tol float64) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v (±%v)", name, got, want, tol)
	}
}
