package dcf_test

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/iwvelando/dcf-valuation/pkg/dcf"
	"github.com/iwvelando/dcf-valuation/pkg/testutil"
)

func TestOutputJSONRoundTrip(t *testing.T) {
	out, err := dcf.Value(testutil.BaselineInput())
	if err != nil {
		t.Fatalf("Value() unexpected error: %v", err)
	}

	data, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("json.Marshal() unexpected error: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("json.Unmarshal() unexpected error: %v", err)
	}
	for _, key := range []string{"value_per_share", "df", "cost_of_capital_components", "final_components"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("encoded output is missing key %q", key)
		}
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(raw["df"], &rows); err != nil {
		t.Fatalf("json.Unmarshal(df) unexpected error: %v", err)
	}
	if len(rows) != dcf.NumPeriods {
		t.Fatalf("len(df) = %d, want %d", len(rows), dcf.NumPeriods)
	}
	if v, ok := rows[0]["discount_factor"]; !ok || v != nil {
		t.Errorf("df[0].discount_factor = %v, want null", v)
	}
	if v, ok := rows[0]["pv_fcff"]; !ok || v != nil {
		t.Errorf("df[0].pv_fcff = %v, want null", v)
	}

	var decoded dcf.Output
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("json.Unmarshal(Output) unexpected error: %v", err)
	}
	if decoded.ValuePerShare != out.ValuePerShare {
		t.Errorf("ValuePerShare = %v, want %v", decoded.ValuePerShare, out.ValuePerShare)
	}
	if decoded.FinalComponents != out.FinalComponents {
		t.Errorf("FinalComponents = %+v, want %+v", decoded.FinalComponents, out.FinalComponents)
	}
	if decoded.CostOfCapitalComponents != out.CostOfCapitalComponents {
		t.Errorf("CostOfCapitalComponents = %+v, want %+v", decoded.CostOfCapitalComponents, out.CostOfCapitalComponents)
	}
	for i := range out.Rows {
		got, want := decoded.Rows[i], out.Rows[i]
		if got.Revenues != want.Revenues || got.FCFF != want.FCFF || got.InvestedCapital != want.InvestedCapital {
			t.Errorf("row %d = %+v, want %+v", i, got, want)
		}
		if !sameFloat(got.DiscountFactor, want.DiscountFactor) || !sameFloat(got.PVFCFF, want.PVFCFF) {
			t.Errorf("row %d discounting = (%v, %v), want (%v, %v)", i, got.DiscountFactor, got.PVFCFF, want.DiscountFactor, want.PVFCFF)
		}
	}
}

func sameFloat(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

func TestRowDecodesEmptyStringAsNaN(t *testing.T) {
	var row dcf.Row
	if err := json.Unmarshal([]byte(`{"revenues": 12.5, "discount_factor": "", "pv_fcff": null}`), &row); err != nil {
		t.Fatalf("json.Unmarshal() unexpected error: %v", err)
	}
	if row.Revenues != 12.5 {
		t.Errorf("Revenues = %v, want 12.5", row.Revenues)
	}
	if !math.IsNaN(row.DiscountFactor) {
		t.Errorf("DiscountFactor = %v, want NaN", row.DiscountFactor)
	}
	if !math.IsNaN(row.PVFCFF) {
		t.Errorf("PVFCFF = %v, want NaN", row.PVFCFF)
	}
}

func TestRowEncodesInfinityAsNull(t *testing.T) {
	data, err := json.Marshal(dcf.Row{ROIC: math.Inf(1), Revenues: 3})
	if err != nil {
		t.Fatalf("json.Marshal() unexpected error: %v", err)
	}
	if !strings.Contains(string(data), `"roic":null`) {
		t.Errorf("json.Marshal() = %s, expected roic to be null", data)
	}
	if !strings.Contains(string(data), `"revenues":3`) {
		t.Errorf("json.Marshal() = %s, expected revenues to be 3", data)
	}
}

func TestDecodeInput(t *testing.T) {
	baseline := testutil.BaselineInput()
	valid, err := json.Marshal(baseline)
	if err != nil {
		t.Fatalf("json.Marshal() unexpected error: %v", err)
	}

	t.Run("Valid payload", func(t *testing.T) {
		in, err := dcf.DecodeInput(valid)
		if err != nil {
			t.Fatalf("DecodeInput() unexpected error: %v", err)
		}
		if in.Revenues != baseline.Revenues || in.YearsOfHighGrowth != baseline.YearsOfHighGrowth {
			t.Errorf("DecodeInput() = %+v, want %+v", in, baseline)
		}
		if len(in.RAndDExpenses) != len(baseline.RAndDExpenses) {
			t.Errorf("len(RAndDExpenses) = %d, want %d", len(in.RAndDExpenses), len(baseline.RAndDExpenses))
		}
		if in.DiscountRate != nil {
			t.Errorf("DiscountRate = %v, want nil", *in.DiscountRate)
		}
	})

	tests := []struct {
		name          string
		mutate        func(m map[string]interface{})
		raw           string
		expectedField string
	}{
		{
			name:          "Missing field",
			mutate:        func(m map[string]interface{}) { delete(m, "mature_erp") },
			expectedField: "mature_erp",
		},
		{
			name:          "Null field",
			mutate:        func(m map[string]interface{}) { m["curr_price"] = nil },
			expectedField: "curr_price",
		},
		{
			name:          "Non-numeric field",
			mutate:        func(m map[string]interface{}) { m["revenues"] = "lots" },
			expectedField: "revenues",
		},
		{
			name:          "Fractional horizon",
			mutate:        func(m map[string]interface{}) { m["years_of_high_growth"] = 5.5 },
			expectedField: "years_of_high_growth",
		},
		{
			name: "Not an object",
			raw:  `[1, 2, 3]`,
		},
		{
			name: "Truncated JSON",
			raw:  `{"revenues": 1`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := []byte(tt.raw)
			if tt.mutate != nil {
				var m map[string]interface{}
				if err := json.Unmarshal(valid, &m); err != nil {
					t.Fatalf("json.Unmarshal() unexpected error: %v", err)
				}
				tt.mutate(m)
				payload, _ = json.Marshal(m)
			}

			_, err := dcf.DecodeInput(payload)
			if !errors.Is(err, dcf.ErrMalformedInput) {
				t.Fatalf("DecodeInput() error = %v, want %v", err, dcf.ErrMalformedInput)
			}
			if tt.expectedField != "" && !strings.Contains(err.Error(), tt.expectedField) {
				t.Errorf("DecodeInput() error %q does not name field %q", err, tt.expectedField)
			}
		})
	}
}

func TestDecodeCapitalStructure(t *testing.T) {
	payload := `{"interest_expense": 100, "pre_tax_cost_of_debt": 0.05, "average_maturity": 2,
		"bv_debt": 1000, "num_shares_outstanding": 100, "curr_price": 10, "unlevered_beta": 1,
		"tax_rate": 0.25, "risk_free_rate": 0.04, "equity_risk_premium": 0.05}`

	cs, err := dcf.DecodeCapitalStructure([]byte(payload))
	if err != nil {
		t.Fatalf("DecodeCapitalStructure() unexpected error: %v", err)
	}
	if cs.BookValueOfDebt != 1000 || cs.NumSharesOutstanding != 100 {
		t.Errorf("DecodeCapitalStructure() = %+v", cs)
	}

	missing := strings.Replace(payload, `"bv_debt": 1000,`, "", 1)
	if _, err := dcf.DecodeCapitalStructure([]byte(missing)); !errors.Is(err, dcf.ErrMalformedInput) {
		t.Errorf("DecodeCapitalStructure() without bv_debt error = %v, want %v", err, dcf.ErrMalformedInput)
	}
}

func TestInputWithOverrides(t *testing.T) {
	base := testutil.BaselineInput()

	t.Run("Overlays present fields only", func(t *testing.T) {
		out, err := base.WithOverrides([]byte(`{"revenues": 1000, "discount_rate": 0.09, "r_and_d_expenses": [5, 4]}`))
		if err != nil {
			t.Fatalf("WithOverrides() unexpected error: %v", err)
		}
		if out.Revenues != 1000 {
			t.Errorf("Revenues = %v, want 1000", out.Revenues)
		}
		if out.DiscountRate == nil || *out.DiscountRate != 0.09 {
			t.Errorf("DiscountRate = %v, want 0.09", out.DiscountRate)
		}
		if len(out.RAndDExpenses) != 2 {
			t.Errorf("RAndDExpenses = %v, want [5 4]", out.RAndDExpenses)
		}
		if out.OperatingIncome != base.OperatingIncome {
			t.Errorf("OperatingIncome = %v, want unchanged %v", out.OperatingIncome, base.OperatingIncome)
		}

		if base.Revenues != 18_400_000_000 || base.DiscountRate != nil || len(base.RAndDExpenses) != 6 || base.RAndDExpenses[0] != 620_000_000 {
			t.Errorf("WithOverrides() modified the receiver: %+v", base)
		}
	})

	t.Run("Empty payload", func(t *testing.T) {
		out, err := base.WithOverrides(nil)
		if err != nil {
			t.Fatalf("WithOverrides() unexpected error: %v", err)
		}
		if out.Revenues != base.Revenues || len(out.RAndDExpenses) != len(base.RAndDExpenses) {
			t.Errorf("WithOverrides(nil) = %+v, want a copy of %+v", out, base)
		}
	})

	t.Run("Malformed payload", func(t *testing.T) {
		if _, err := base.WithOverrides([]byte(`{"revenues": "x"}`)); !errors.Is(err, dcf.ErrMalformedInput) {
			t.Errorf("WithOverrides() error = %v, want %v", err, dcf.ErrMalformedInput)
		}
	})
}
