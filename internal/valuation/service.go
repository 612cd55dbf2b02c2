// Package valuation ties the engine to stored inputs and price history.
package valuation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/iwvelando/dcf-valuation/internal/history"
	"github.com/iwvelando/dcf-valuation/internal/store"
	"github.com/iwvelando/dcf-valuation/pkg/dcf"
)

// Result is a stored company valued with optional overrides.
type Result struct {
	Ticker  string      `json:"ticker"`
	Name    string      `json:"name"`
	AsOf    string      `json:"asOf"`
	Output  *dcf.Output `json:"output"`
	Summary Summary     `json:"summary"`
	History []float64   `json:"history"`
}

// Service runs valuations. The store and history fetcher are optional for
// Compute; ValueTicker needs a store.
type Service struct {
	logger  *zap.Logger
	store   store.Store
	history history.Fetcher
}

// NewService creates a Service. A nil logger is replaced with a no-op logger.
func NewService(logger *zap.Logger, st store.Store, fetcher history.Fetcher) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, store: st, history: fetcher}
}

// Compute values a single input.
func (s *Service) Compute(in dcf.Input) (*dcf.Output, error) {
	out, err := dcf.Value(in)
	if err != nil {
		s.logger.Debug("valuation failed",
			zap.String("op", "valuation.Service.Compute"),
			zap.Error(err),
		)
		return nil, err
	}
	s.logger.Debug("valuation computed",
		zap.String("op", "valuation.Service.Compute"),
		zap.Float64("value_per_share", out.ValuePerShare),
	)
	return out, nil
}

// ValueTicker loads the stored inputs for ticker, overlays the JSON
// overrides, values the result and compares it with recent prices. Missing
// price history falls back to a neutral placeholder.
func (s *Service) ValueTicker(ctx context.Context, ticker string, overrides []byte) (*Result, error) {
	if s.store == nil {
		return nil, fmt.Errorf("no inputs store configured")
	}

	record, err := s.store.Get(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to load inputs for %s: %w", ticker, err)
	}

	in, err := record.Inputs.WithOverrides(overrides)
	if err != nil {
		return nil, fmt.Errorf("invalid overrides for %s: %w", record.Ticker, err)
	}

	out, err := s.Compute(in)
	if err != nil {
		return nil, fmt.Errorf("failed to value %s: %w", record.Ticker, err)
	}

	closes := []float64{0, 0}
	if s.history != nil {
		closes = history.OrDefault(ctx, s.logger, s.history, record.Ticker)
	}

	s.logger.Info("valued ticker",
		zap.String("op", "valuation.Service.ValueTicker"),
		zap.String("ticker", record.Ticker),
		zap.Bool("overrides", len(overrides) > 0),
		zap.Float64("value_per_share", out.ValuePerShare),
	)

	return &Result{
		Ticker:  record.Ticker,
		Name:    record.Name,
		AsOf:    record.AsOf,
		Output:  out,
		Summary: Summarize(record.Ticker, out.ValuePerShare, closes),
		History: closes,
	}, nil
}
