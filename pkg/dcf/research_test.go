package dcf_test

import (
	"errors"
	"testing"

	"github.com/iwvelando/dcf-valuation/pkg/dcf"
	"github.com/iwvelando/dcf-valuation/pkg/testutil"
)

func TestCapitalizeResearch(t *testing.T) {
	tests := []struct {
		name               string
		expenses           []float64
		expectedAdjustment float64
		expectedValue      float64
	}{
		{
			name:               "Six year history",
			expenses:           []float64{620, 580, 530, 490, 450, 410},
			expectedAdjustment: 128,
			expectedValue:      1688,
		},
		{
			name:               "Two year history amortizes over one year",
			expenses:           []float64{100, 50},
			expectedAdjustment: 50,
			expectedValue:      100,
		},
		{
			name:               "Flat spending has no adjustment",
			expenses:           []float64{300, 300, 300},
			expectedAdjustment: 0,
			expectedValue:      450,
		},
		{
			name:               "Empty history",
			expenses:           nil,
			expectedAdjustment: 0,
			expectedValue:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asset, err := dcf.CapitalizeResearch(tt.expenses)
			if err != nil {
				t.Fatalf("CapitalizeResearch() unexpected error: %v", err)
			}
			testutil.AssertNearlyEqual(t, "Adjustment", asset.Adjustment, tt.expectedAdjustment)
			testutil.AssertNearlyEqual(t, "Value", asset.Value, tt.expectedValue)
		})
	}
}

func TestCapitalizeResearchSingleExpense(t *testing.T) {
	_, err := dcf.CapitalizeResearch([]float64{500})
	if !errors.Is(err, dcf.ErrDegenerateConfiguration) {
		t.Errorf("CapitalizeResearch() error = %v, want %v", err, dcf.ErrDegenerateConfiguration)
	}
}

func TestCapitalizeResearchDoesNotMutateInput(t *testing.T) {
	expenses := []float64{620, 580, 530}
	if _, err := dcf.CapitalizeResearch(expenses); err != nil {
		t.Fatalf("CapitalizeResearch() unexpected error: %v", err)
	}
	if expenses[0] != 620 || expenses[1] != 580 || expenses[2] != 530 {
		t.Errorf("CapitalizeResearch() modified its input: %v", expenses)
	}
}
