package dcf

import (
	"math"

	"github.com/iwvelando/dcf-valuation/pkg/mathutil"
)

// CapitalStructure holds the inputs to the weighted average cost of capital.
type CapitalStructure struct {
	InterestExpense      float64 `json:"interest_expense"`
	PreTaxCostOfDebt     float64 `json:"pre_tax_cost_of_debt"`
	AverageMaturity      float64 `json:"average_maturity"`
	BookValueOfDebt      float64 `json:"bv_debt"`
	NumSharesOutstanding float64 `json:"num_shares_outstanding"`
	CurrPrice            float64 `json:"curr_price"`
	UnleveredBeta        float64 `json:"unlevered_beta"`
	TaxRate              float64 `json:"tax_rate"`
	RiskFreeRate         float64 `json:"risk_free_rate"`
	EquityRiskPremium    float64 `json:"equity_risk_premium"`
}

// Validate checks that every input is finite and that the debt discount
// term is defined.
func (cs CapitalStructure) Validate() error {
	values := []namedValue{
		{"interest_expense", cs.InterestExpense},
		{"pre_tax_cost_of_debt", cs.PreTaxCostOfDebt},
		{"average_maturity", cs.AverageMaturity},
		{"book_value_of_debt", cs.BookValueOfDebt},
		{"number_of_shares_outstanding", cs.NumSharesOutstanding},
		{"curr_price", cs.CurrPrice},
		{"unlevered_beta", cs.UnleveredBeta},
		{"tax_rate", cs.TaxRate},
		{"risk_free_rate", cs.RiskFreeRate},
		{"equity_risk_premium", cs.EquityRiskPremium},
	}
	for _, v := range values {
		if !mathutil.IsFinite(v.value) {
			return malformed("%s must be a finite number, got %v", v.name, v.value)
		}
	}
	if cs.PreTaxCostOfDebt <= -1 {
		return degenerate("pre_tax_cost_of_debt must be greater than -1, got %v", cs.PreTaxCostOfDebt)
	}
	return nil
}

// MarketValueOfDebt values existing debt as an annuity of the interest
// expense plus the book principal, both discounted at the pre-tax cost of
// debt over the average maturity.
func (cs CapitalStructure) MarketValueOfDebt() float64 {
	discount := math.Pow(1+cs.PreTaxCostOfDebt, -cs.AverageMaturity)
	annuity := cs.AverageMaturity
	if cs.PreTaxCostOfDebt != 0 {
		annuity = (1 - discount) / cs.PreTaxCostOfDebt
	}
	return cs.InterestExpense*annuity + cs.BookValueOfDebt*discount
}

// MarketValueOfEquity is shares outstanding times the current price.
func (cs CapitalStructure) MarketValueOfEquity() float64 {
	return cs.NumSharesOutstanding * cs.CurrPrice
}

// CostOfCapital computes the weighted average cost of capital using a
// re-levered beta for the cost of equity. A zero market value of equity
// yields non-finite results; callers may supply an explicit discount rate
// instead.
func CostOfCapital(cs CapitalStructure) (float64, CostOfCapitalComponents) {
	debt := cs.MarketValueOfDebt()
	equity := cs.MarketValueOfEquity()
	capital := debt + equity
	debtWeight := debt / capital
	equityWeight := equity / capital

	leveredBeta := cs.UnleveredBeta * (1 + (1-cs.TaxRate)*(debt/equity))
	costOfEquity := cs.RiskFreeRate + leveredBeta*cs.EquityRiskPremium
	costOfDebt := cs.PreTaxCostOfDebt * (1 - cs.TaxRate)
	wacc := costOfDebt*debtWeight + costOfEquity*equityWeight

	return wacc, CostOfCapitalComponents{
		CostOfDebt:        costOfDebt,
		CostOfEquity:      costOfEquity,
		LeveredBeta:       leveredBeta,
		RiskFreeRate:      cs.RiskFreeRate,
		EquityRiskPremium: cs.EquityRiskPremium,
	}
}
