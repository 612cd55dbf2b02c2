package dcf

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"

	"github.com/iwvelando/dcf-valuation/pkg/mathutil"
)

// nullableFloat encodes non-finite values as null and decodes null or an
// empty string as NaN.
type nullableFloat float64

func (f nullableFloat) MarshalJSON() ([]byte, error) {
	if !mathutil.IsFinite(float64(f)) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, float64(f), 'g', -1, 64), nil
}

func (f *nullableFloat) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`""`)) {
		*f = nullableFloat(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	*f = nullableFloat(v)
	return nil
}

type wireRow struct {
	RevenueGrowthRate nullableFloat `json:"revenue_growth_rate"`
	Revenues          nullableFloat `json:"revenues"`
	OperatingMargin   nullableFloat `json:"operating_margin"`
	OperatingIncome   nullableFloat `json:"operating_income"`
	TaxRate           nullableFloat `json:"tax_rate"`
	Taxes             nullableFloat `json:"taxes"`
	NOL               nullableFloat `json:"nol"`
	NOLCumulative     nullableFloat `json:"nol_cumulative"`
	NOLUtilized       nullableFloat `json:"nol_utilized"`
	EBITAfterTax      nullableFloat `json:"ebit_after_tax"`
	Reinvestment      nullableFloat `json:"reinvestment"`
	InvestedCapital   nullableFloat `json:"invested_capital"`
	ROIC              nullableFloat `json:"roic"`
	CostOfCapital     nullableFloat `json:"cost_of_capital"`
	FCFF              nullableFloat `json:"fcff"`
	DiscountFactor    nullableFloat `json:"discount_factor"`
	PVFCFF            nullableFloat `json:"pv_fcff"`
}

// MarshalJSON encodes the row with snake_case keys and null for NaN.
func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireRow{
		RevenueGrowthRate: nullableFloat(r.RevenueGrowthRate),
		Revenues:          nullableFloat(r.Revenues),
		OperatingMargin:   nullableFloat(r.OperatingMargin),
		OperatingIncome:   nullableFloat(r.OperatingIncome),
		TaxRate:           nullableFloat(r.TaxRate),
		Taxes:             nullableFloat(r.Taxes),
		NOL:               nullableFloat(r.NOL),
		NOLCumulative:     nullableFloat(r.NOLCumulative),
		NOLUtilized:       nullableFloat(r.NOLUtilized),
		EBITAfterTax:      nullableFloat(r.EBITAfterTax),
		Reinvestment:      nullableFloat(r.Reinvestment),
		InvestedCapital:   nullableFloat(r.InvestedCapital),
		ROIC:              nullableFloat(r.ROIC),
		CostOfCapital:     nullableFloat(r.CostOfCapital),
		FCFF:              nullableFloat(r.FCFF),
		DiscountFactor:    nullableFloat(r.DiscountFactor),
		PVFCFF:            nullableFloat(r.PVFCFF),
	})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (r *Row) UnmarshalJSON(data []byte) error {
	var w wireRow
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = Row{
		RevenueGrowthRate: float64(w.RevenueGrowthRate),
		Revenues:          float64(w.Revenues),
		OperatingMargin:   float64(w.OperatingMargin),
		OperatingIncome:   float64(w.OperatingIncome),
		TaxRate:           float64(w.TaxRate),
		Taxes:             float64(w.Taxes),
		NOL:               float64(w.NOL),
		NOLCumulative:     float64(w.NOLCumulative),
		NOLUtilized:       float64(w.NOLUtilized),
		EBITAfterTax:      float64(w.EBITAfterTax),
		Reinvestment:      float64(w.Reinvestment),
		InvestedCapital:   float64(w.InvestedCapital),
		ROIC:              float64(w.ROIC),
		CostOfCapital:     float64(w.CostOfCapital),
		FCFF:              float64(w.FCFF),
		DiscountFactor:    float64(w.DiscountFactor),
		PVFCFF:            float64(w.PVFCFF),
	}
	return nil
}

type wireComponents struct {
	CostOfDebt        nullableFloat `json:"cost_of_debt"`
	CostOfEquity      nullableFloat `json:"cost_of_equity"`
	LeveredBeta       nullableFloat `json:"levered_beta"`
	RiskFreeRate      nullableFloat `json:"risk_free_rate"`
	EquityRiskPremium nullableFloat `json:"equity_risk_premium"`
}

// MarshalJSON encodes the components with snake_case keys and null for NaN.
func (c CostOfCapitalComponents) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireComponents{
		CostOfDebt:        nullableFloat(c.CostOfDebt),
		CostOfEquity:      nullableFloat(c.CostOfEquity),
		LeveredBeta:       nullableFloat(c.LeveredBeta),
		RiskFreeRate:      nullableFloat(c.RiskFreeRate),
		EquityRiskPremium: nullableFloat(c.EquityRiskPremium),
	})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (c *CostOfCapitalComponents) UnmarshalJSON(data []byte) error {
	var w wireComponents
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*c = CostOfCapitalComponents{
		CostOfDebt:        float64(w.CostOfDebt),
		CostOfEquity:      float64(w.CostOfEquity),
		LeveredBeta:       float64(w.LeveredBeta),
		RiskFreeRate:      float64(w.RiskFreeRate),
		EquityRiskPremium: float64(w.EquityRiskPremium),
	}
	return nil
}

type wireFinalComponents struct {
	PresentValueOfCashFlows                 nullableFloat `json:"present_value_of_cash_flows"`
	BookValueOfDebt                         nullableFloat `json:"book_value_of_debt"`
	CashAndMarketableSecurities             nullableFloat `json:"cash_and_marketable_securities"`
	CrossHoldingsAndOtherNonOperatingAssets nullableFloat `json:"cross_holdings_and_other_non_operating_assets"`
	MinorityInterest                        nullableFloat `json:"minority_interest"`
}

// MarshalJSON encodes the equity bridge inputs with null for NaN.
func (c FinalComponents) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireFinalComponents{
		PresentValueOfCashFlows:                 nullableFloat(c.PresentValueOfCashFlows),
		BookValueOfDebt:                         nullableFloat(c.BookValueOfDebt),
		CashAndMarketableSecurities:             nullableFloat(c.CashAndMarketableSecurities),
		CrossHoldingsAndOtherNonOperatingAssets: nullableFloat(c.CrossHoldingsAndOtherNonOperatingAssets),
		MinorityInterest:                        nullableFloat(c.MinorityInterest),
	})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (c *FinalComponents) UnmarshalJSON(data []byte) error {
	var w wireFinalComponents
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*c = FinalComponents{
		PresentValueOfCashFlows:                 float64(w.PresentValueOfCashFlows),
		BookValueOfDebt:                         float64(w.BookValueOfDebt),
		CashAndMarketableSecurities:             float64(w.CashAndMarketableSecurities),
		CrossHoldingsAndOtherNonOperatingAssets: float64(w.CrossHoldingsAndOtherNonOperatingAssets),
		MinorityInterest:                        float64(w.MinorityInterest),
	}
	return nil
}

type wireOutput struct {
	ValuePerShare           nullableFloat           `json:"value_per_share"`
	Rows                    []Row                   `json:"df"`
	CostOfCapitalComponents CostOfCapitalComponents `json:"cost_of_capital_components"`
	FinalComponents         FinalComponents         `json:"final_components"`
}

// MarshalJSON encodes the valuation with the projection table under "df".
func (o Output) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireOutput{
		ValuePerShare:           nullableFloat(o.ValuePerShare),
		Rows:                    o.Rows,
		CostOfCapitalComponents: o.CostOfCapitalComponents,
		FinalComponents:         o.FinalComponents,
	})
}

// UnmarshalJSON reads a valuation encoded by MarshalJSON.
func (o *Output) UnmarshalJSON(data []byte) error {
	var w wireOutput
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*o = Output{
		ValuePerShare:           float64(w.ValuePerShare),
		Rows:                    w.Rows,
		CostOfCapitalComponents: w.CostOfCapitalComponents,
		FinalComponents:         w.FinalComponents,
	}
	return nil
}

// DecodeInput parses a JSON valuation request. Every required field must be
// present and numeric; r_and_d_expenses and discount_rate are optional.
func DecodeInput(data []byte) (Input, error) {
	if err := requireFields(data, RequiredFields()); err != nil {
		return Input{}, err
	}
	var in Input
	if err := json.Unmarshal(data, &in); err != nil {
		return Input{}, decodeError(err)
	}
	return in, nil
}

// DecodeCapitalStructure parses a JSON cost-of-capital request, requiring
// every field.
func DecodeCapitalStructure(data []byte) (CapitalStructure, error) {
	required := []string{
		"interest_expense", "pre_tax_cost_of_debt", "average_maturity", "bv_debt",
		"num_shares_outstanding", "curr_price", "unlevered_beta", "tax_rate",
		"risk_free_rate", "equity_risk_premium",
	}
	if err := requireFields(data, required); err != nil {
		return CapitalStructure{}, err
	}
	var cs CapitalStructure
	if err := json.Unmarshal(data, &cs); err != nil {
		return CapitalStructure{}, decodeError(err)
	}
	return cs, nil
}

// WithOverrides returns a copy of in with the fields present in the JSON
// object data replaced. An empty payload returns an unchanged copy.
func (in Input) WithOverrides(data []byte) (Input, error) {
	out := in.Clone()
	if len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return Input{}, decodeError(err)
	}
	return out, nil
}

func requireFields(data []byte, names []string) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return decodeError(err)
	}
	for _, name := range names {
		value, ok := raw[name]
		if !ok || bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			return malformed("missing required field %s", name)
		}
	}
	return nil
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return malformed("field %s: expected %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value)
	}
	return malformed("%v", err)
}
