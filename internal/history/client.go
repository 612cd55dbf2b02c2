// Package history fetches daily closing prices used to put a valuation in
// context.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iwvelando/dcf-valuation/pkg/constants"
	"github.com/iwvelando/dcf-valuation/pkg/datetime"
	"github.com/iwvelando/dcf-valuation/pkg/mathutil"
)

// ErrUpstream indicates the price source failed or returned an unusable
// response.
var ErrUpstream = errors.New("price history unavailable")

// Fetcher returns daily closing prices for a ticker, oldest first.
type Fetcher interface {
	History(ctx context.Context, ticker string) ([]float64, error)
}

// ChartClient reads closes from a chart endpoint of the form
// {BaseURL}/v8/finance/chart/{ticker}.
type ChartClient struct {
	BaseURL        string
	HTTPClient     *http.Client
	LookbackMonths int
	Interval       string
	Now            func() time.Time

	logger *zap.Logger
}

// NewChartClient creates a client with default window settings. A nil
// httpClient gets one with the default history timeout.
func NewChartClient(baseURL string, httpClient *http.Client, logger *zap.Logger) *ChartClient {
	if baseURL == "" {
		baseURL = constants.DefaultHistoryBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.DefaultHistoryTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChartClient{
		BaseURL:        strings.TrimRight(baseURL, "/"),
		HTTPClient:     httpClient,
		LookbackMonths: constants.DefaultHistoryLookbackMonths,
		Interval:       constants.DefaultHistoryInterval,
		Now:            time.Now,
		logger:         logger,
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// History requests daily closes over the lookback window and keeps only
// finite values.
func (c *ChartClient) History(ctx context.Context, ticker string) ([]float64, error) {
	start, end := datetime.LookbackWindow(c.Now(), c.LookbackMonths)

	params := url.Values{}
	params.Set("period1", strconv.FormatInt(start.Unix(), 10))
	params.Set("period2", strconv.FormatInt(end.Unix(), 10))
	params.Set("interval", c.Interval)
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.BaseURL, url.PathEscape(ticker), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build history request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; dcf-valuation)")

	c.logger.Debug("requesting price history",
		zap.String("op", "history.ChartClient.History"),
		zap.String("ticker", ticker),
		zap.Time("start", start),
		zap.Time("end", end),
	)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %s returned status %d", ErrUpstream, ticker, resp.StatusCode)
	}

	var payload chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: failed to decode chart for %s: %v", ErrUpstream, ticker, err)
	}
	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrUpstream, payload.Chart.Error.Code, payload.Chart.Error.Description)
	}

	closes := []float64{}
	if len(payload.Chart.Result) == 0 || len(payload.Chart.Result[0].Indicators.Quote) == 0 {
		return closes, nil
	}
	for _, v := range payload.Chart.Result[0].Indicators.Quote[0].Close {
		if v != nil && mathutil.IsFinite(*v) {
			closes = append(closes, *v)
		}
	}
	return closes, nil
}
