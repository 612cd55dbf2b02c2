package valuation

import (
	"fmt"

	"github.com/iwvelando/dcf-valuation/pkg/constants"
	"github.com/iwvelando/dcf-valuation/pkg/format"
	"github.com/iwvelando/dcf-valuation/pkg/mathutil"
)

// Verdict classifies the market price against the intrinsic value.
type Verdict string

const (
	VerdictDeeperAnalysis Verdict = "deeper-analysis"
	VerdictOvervalued     Verdict = "overvalued"
	VerdictUndervalued    Verdict = "undervalued"
)

// Summary relates a value per share to recent trading.
type Summary struct {
	Ticker        string  `json:"ticker"`
	ValuePerShare float64 `json:"value_per_share"`
	CurrentPrice  float64 `json:"current_price"`
	StartPrice    float64 `json:"start_price"`
	PriceToValue  float64 `json:"price_to_value"`
	TrendUp       bool    `json:"trend_up"`
	Verdict       Verdict `json:"verdict"`
	Sentence      string  `json:"sentence"`
}

// Summarize compares the last close in history with valuePerShare. The
// price-to-value ratio is a percentage; it is zero when the value per share
// is zero or undefined. A negative ratio means the business model needs a
// closer look rather than a price comparison.
func Summarize(ticker string, valuePerShare float64, history []float64) Summary {
	s := Summary{Ticker: ticker, ValuePerShare: valuePerShare}
	if len(history) > 0 {
		s.StartPrice = history[0]
		s.CurrentPrice = history[len(history)-1]
	}
	s.TrendUp = s.CurrentPrice > s.StartPrice

	if valuePerShare != 0 && mathutil.IsFinite(valuePerShare) {
		s.PriceToValue = s.CurrentPrice / valuePerShare * constants.PercentageMultiplier
	}

	switch {
	case s.PriceToValue < 0:
		s.Verdict = VerdictDeeperAnalysis
		s.Sentence = "This suggests a deeper analysis of the business model is required."
	case s.PriceToValue > constants.PercentageMultiplier:
		s.Verdict = VerdictOvervalued
	default:
		s.Verdict = VerdictUndervalued
	}
	if s.Sentence == "" {
		s.Sentence = fmt.Sprintf("This suggests the current market price of %s is %.2f%% of %s's intrinsic value.",
			format.Currency(s.CurrentPrice), s.PriceToValue, ticker)
	}
	return s
}
