package valuation

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/dcf-valuation/internal/history"
	"github.com/iwvelando/dcf-valuation/internal/store"
	"github.com/iwvelando/dcf-valuation/pkg/dcf"
	"github.com/iwvelando/dcf-valuation/pkg/testutil"
)

type memoryStore struct {
	records map[string]store.Record
}

func (m *memoryStore) Get(_ context.Context, ticker string) (store.Record, error) {
	r, ok := m.records[strings.ToUpper(ticker)]
	if !ok {
		return store.Record{}, store.ErrNotFound
	}
	return r, nil
}

func (m *memoryStore) Search(context.Context, string, int) ([]store.Candidate, error) {
	return []store.Candidate{}, nil
}

func (m *memoryStore) Put(_ context.Context, r store.Record) error {
	m.records[r.Ticker] = r
	return nil
}

type staticFetcher struct {
	closes []float64
	err    error
}

func (f staticFetcher) History(context.Context, string) ([]float64, error) {
	return f.closes, f.err
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: map[string]store.Record{
		"ACME": {Ticker: "ACME", Name: "Acme Industrial", AsOf: "2025-06-30", Inputs: testutil.BaselineInput()},
	}}
}

func TestServiceCompute(t *testing.T) {
	svc := NewService(nil, nil, nil)

	out, err := svc.Compute(testutil.BaselineInput())
	if err != nil {
		t.Fatalf("Compute() unexpected error: %v", err)
	}
	testutil.AssertWithin(t, "ValuePerShare", out.ValuePerShare, 44.964005046097974, 1e-6)

	bad := testutil.BaselineInput()
	bad.MatureERP = 0
	if _, err := svc.Compute(bad); !errors.Is(err, dcf.ErrDegenerateConfiguration) {
		t.Errorf("Compute() error = %v, want %v", err, dcf.ErrDegenerateConfiguration)
	}
}

func TestServiceValueTicker(t *testing.T) {
	tests := []struct {
		name            string
		ticker          string
		overrides       string
		fetcher         history.Fetcher
		expectedValue   float64
		expectedHistory []float64
		expectedVerdict Verdict
	}{
		{
			name:            "Stored inputs with history",
			ticker:          "acme",
			fetcher:         staticFetcher{closes: []float64{120, 130, 135}},
			expectedValue:   44.964005046097974,
			expectedHistory: []float64{120, 130, 135},
			expectedVerdict: VerdictOvervalued,
		},
		{
			name:            "Discount rate override",
			ticker:          "ACME",
			overrides:       `{"discount_rate": 0.091}`,
			fetcher:         staticFetcher{closes: []float64{20, 30}},
			expectedValue:   45.56163784623913,
			expectedHistory: []float64{20, 30},
			expectedVerdict: VerdictUndervalued,
		},
		{
			name:            "History failure falls back to placeholder",
			ticker:          "ACME",
			fetcher:         staticFetcher{err: history.ErrUpstream},
			expectedValue:   44.964005046097974,
			expectedHistory: []float64{0, 0},
			expectedVerdict: VerdictUndervalued,
		},
		{
			name:            "No history fetcher",
			ticker:          "ACME",
			expectedValue:   44.964005046097974,
			expectedHistory: []float64{0, 0},
			expectedVerdict: VerdictUndervalued,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(nil, newMemoryStore(), tt.fetcher)

			result, err := svc.ValueTicker(context.Background(), tt.ticker, []byte(tt.overrides))
			if err != nil {
				t.Fatalf("ValueTicker() unexpected error: %v", err)
			}

			if result.Ticker != "ACME" || result.Name != "Acme Industrial" || result.AsOf != "2025-06-30" {
				t.Errorf("ValueTicker() identity = (%s, %s, %s)", result.Ticker, result.Name, result.AsOf)
			}
			testutil.AssertWithin(t, "ValuePerShare", result.Output.ValuePerShare, tt.expectedValue, 1e-6)
			if len(result.History) != len(tt.expectedHistory) {
				t.Fatalf("History = %v, want %v", result.History, tt.expectedHistory)
			}
			for i := range tt.expectedHistory {
				if result.History[i] != tt.expectedHistory[i] {
					t.Errorf("History[%d] = %v, want %v", i, result.History[i], tt.expectedHistory[i])
				}
			}
			if result.Summary.Verdict != tt.expectedVerdict {
				t.Errorf("Verdict = %s, want %s", result.Summary.Verdict, tt.expectedVerdict)
			}
		})
	}
}

func TestServiceValueTickerErrors(t *testing.T) {
	tests := []struct {
		name      string
		svc       *Service
		ticker    string
		overrides string
		expected  error
	}{
		{
			name:     "Unknown ticker",
			svc:      NewService(nil, newMemoryStore(), nil),
			ticker:   "NOPE",
			expected: store.ErrNotFound,
		},
		{
			name:      "Non-numeric override",
			svc:       NewService(nil, newMemoryStore(), nil),
			ticker:    "ACME",
			overrides: `{"revenues": "lots"}`,
			expected:  dcf.ErrMalformedInput,
		},
		{
			name:      "Degenerate override",
			svc:       NewService(nil, newMemoryStore(), nil),
			ticker:    "ACME",
			overrides: `{"mature_erp": 0}`,
			expected:  dcf.ErrDegenerateConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.svc.ValueTicker(context.Background(), tt.ticker, []byte(tt.overrides))
			if !errors.Is(err, tt.expected) {
				t.Errorf("ValueTicker() error = %v, want %v", err, tt.expected)
			}
		})
	}

	if _, err := NewService(nil, nil, nil).ValueTicker(context.Background(), "ACME", nil); err == nil {
		t.Error("ValueTicker() expected error without a store")
	}
}

func TestServiceValueTickerOverridesDoNotPersist(t *testing.T) {
	st := newMemoryStore()
	svc := NewService(nil, st, nil)

	if _, err := svc.ValueTicker(context.Background(), "ACME", []byte(`{"revenues": 1}`)); err != nil {
		t.Fatalf("ValueTicker() unexpected error: %v", err)
	}
	if got := st.records["ACME"].Inputs.Revenues; got != testutil.BaselineInput().Revenues {
		t.Errorf("stored revenues = %v after an override", got)
	}
}

func TestServiceWithFileStore(t *testing.T) {
	fs, err := store.OpenFileStore(filepath.Join(t.TempDir(), "inputs.yaml"))
	if err != nil {
		t.Fatalf("OpenFileStore() unexpected error: %v", err)
	}
	record := store.Record{Ticker: "acme", Name: "Acme Industrial", AsOf: "2025-06-30", Inputs: testutil.BaselineInput()}
	if err := fs.Put(context.Background(), record); err != nil {
		t.Fatalf("Put() unexpected error: %v", err)
	}

	result, err := NewService(nil, fs, staticFetcher{closes: []float64{40, 45}}).ValueTicker(context.Background(), "Acme", nil)
	if err != nil {
		t.Fatalf("ValueTicker() unexpected error: %v", err)
	}
	testutil.AssertWithin(t, "ValuePerShare", result.Output.ValuePerShare, 44.964005046097974, 1e-6)
	if result.Summary.CurrentPrice != 45 {
		t.Errorf("CurrentPrice = %v, want 45", result.Summary.CurrentPrice)
	}
}
