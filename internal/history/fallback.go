package history

import (
	"context"

	"go.uber.org/zap"
)

// placeholder is returned when no usable history is available so that
// callers always have a start and current price.
var placeholder = []float64{0, 0}

// OrDefault fetches history and falls back to [0, 0] when the fetch fails
// or returns fewer than two closes. Failures are logged, not returned.
func OrDefault(ctx context.Context, logger *zap.Logger, fetcher Fetcher, ticker string) []float64 {
	if logger == nil {
		logger = zap.NewNop()
	}

	closes, err := fetcher.History(ctx, ticker)
	if err != nil {
		logger.Warn("price history unavailable, using placeholder",
			zap.String("op", "history.OrDefault"),
			zap.String("ticker", ticker),
			zap.Error(err),
		)
		return append([]float64(nil), placeholder...)
	}
	if len(closes) < 2 {
		logger.Warn("price history too short, using placeholder",
			zap.String("op", "history.OrDefault"),
			zap.String("ticker", ticker),
			zap.Int("points", len(closes)),
		)
		return append([]float64(nil), placeholder...)
	}
	return closes
}
