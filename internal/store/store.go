// Package store persists valuation inputs keyed by ticker.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/iwvelando/dcf-valuation/pkg/constants"
	"github.com/iwvelando/dcf-valuation/pkg/datetime"
	"github.com/iwvelando/dcf-valuation/pkg/dcf"
	"github.com/iwvelando/dcf-valuation/pkg/validation"
)

// ErrNotFound is returned when no record exists for a ticker.
var ErrNotFound = errors.New("ticker not found")

// Record is the stored set of inputs for one company.
type Record struct {
	Ticker string    `json:"ticker" yaml:"ticker"`
	Name   string    `json:"name" yaml:"name"`
	AsOf   string    `json:"asOf" yaml:"as_of,omitempty"`
	Inputs dcf.Input `json:"inputs" yaml:"inputs"`
}

// Candidate is a search result.
type Candidate struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}

// Store looks up and saves records. Ticker lookups are case-insensitive.
type Store interface {
	Get(ctx context.Context, ticker string) (Record, error)
	Search(ctx context.Context, query string, limit int) ([]Candidate, error)
	Put(ctx context.Context, record Record) error
}

// Normalize upper-cases the ticker and checks the as-of date and inputs.
func (r Record) Normalize() (Record, error) {
	ticker, err := validation.NormalizeTicker(r.Ticker)
	if err != nil {
		return Record{}, err
	}
	r.Ticker = ticker
	r.Name = strings.TrimSpace(r.Name)
	if _, err := datetime.ParseAsOf(r.AsOf); err != nil {
		return Record{}, fmt.Errorf("record %s: %w", ticker, err)
	}
	if err := r.Inputs.Validate(); err != nil {
		return Record{}, fmt.Errorf("record %s: %w", ticker, err)
	}
	r.Inputs = r.Inputs.Clone()
	return r, nil
}

func searchLimit(limit int) int {
	if limit <= 0 || limit > constants.DefaultTickerSearchLimit {
		return constants.DefaultTickerSearchLimit
	}
	return limit
}

// rankCandidates keeps candidates whose ticker or name starts with query,
// case-insensitively. Ticker matches sort ahead of name-only matches, then
// by ticker and name.
func rankCandidates(query string, candidates []Candidate, limit int) []Candidate {
	prefix := strings.ToLower(strings.TrimSpace(query))
	matches := []Candidate{}
	if prefix == "" {
		return matches
	}

	priority := make(map[Candidate]int)
	for _, c := range candidates {
		switch {
		case strings.HasPrefix(strings.ToLower(c.Ticker), prefix):
			priority[c] = 0
		case strings.HasPrefix(strings.ToLower(c.Name), prefix):
			priority[c] = 1
		default:
			continue
		}
		matches = append(matches, c)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if priority[a] != priority[b] {
			return priority[a] < priority[b]
		}
		if a.Ticker != b.Ticker {
			return a.Ticker < b.Ticker
		}
		return a.Name < b.Name
	})

	if limit = searchLimit(limit); len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
