package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iwvelando/dcf-valuation/internal/history"
	"github.com/iwvelando/dcf-valuation/internal/store"
	"github.com/iwvelando/dcf-valuation/internal/valuation"
	"github.com/iwvelando/dcf-valuation/pkg/constants"
	"github.com/iwvelando/dcf-valuation/pkg/dcf"
	"github.com/iwvelando/dcf-valuation/pkg/mathutil"
	"github.com/iwvelando/dcf-valuation/pkg/validation"
)

const (
	invalidDCFMessage           = "Invalid DCF request payload."
	invalidCostOfCapitalMessage = "Invalid cost of capital request payload."
)

// Dependencies are the collaborators behind the API. Routes whose
// collaborator is nil respond with 503.
type Dependencies struct {
	Store          store.Store
	History        history.Fetcher
	HistoryTimeout time.Duration
}

type handler struct {
	logger         *zap.Logger
	service        *valuation.Service
	store          store.Store
	history        history.Fetcher
	maxRequestSize int64
	version        string
	started        time.Time
}

// NewHandler constructs the HTTP handler that serves the valuation API.
func NewHandler(logger *zap.Logger, deps Dependencies, maxRequestSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxRequestSize <= 0 {
		maxRequestSize = constants.DefaultMaxRequestSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	var fetcher history.Fetcher
	if deps.History != nil {
		fetcher = timeoutFetcher{next: deps.History, timeout: deps.HistoryTimeout}
	}

	h := &handler{
		logger:         logger,
		service:        valuation.NewService(logger, deps.Store, fetcher),
		store:          deps.Store,
		history:        fetcher,
		maxRequestSize: maxRequestSize,
		version:        trimmedVersion,
		started:        time.Now(),
	}

	mux := http.NewServeMux()

	// Valuation of a full input payload
	mux.HandleFunc("/api/dcf", h.handleDCF)

	// Cost of capital for a capital structure
	mux.HandleFunc("/api/costOfCapital", h.handleCostOfCapital)

	// Daily closes for a ticker
	mux.HandleFunc("/api/history", h.handleHistory)

	// Stored inputs
	mux.HandleFunc("/api/tickers", h.handleTickers)
	mux.HandleFunc("/api/ticker", h.handleTicker)
	mux.HandleFunc("/api/valuation", h.handleValuation)

	// Metadata
	mux.HandleFunc("/api/version", h.handleVersion)
	mux.HandleFunc("/api/status", h.handleStatus)

	return withCORS(mux)
}

// withCORS allows any origin.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// timeoutFetcher bounds each history request.
type timeoutFetcher struct {
	next    history.Fetcher
	timeout time.Duration
}

func (f timeoutFetcher) History(ctx context.Context, ticker string) ([]float64, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	return f.next.History(ctx, ticker)
}

type costOfCapitalResponse struct {
	CostOfCapital float64                     `json:"cost_of_capital"`
	Components    dcf.CostOfCapitalComponents `json:"components"`
}

type historyResponse struct {
	History []float64 `json:"history"`
}

func (h *handler) handleDCF(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleDCF"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	body, ok := h.readBody(w, r, op)
	if !ok {
		return
	}

	in, err := dcf.DecodeInput(body)
	if err != nil {
		h.logger.Debug("rejected valuation payload",
			zap.String("op", op),
			zap.Error(err),
		)
		h.respondErrorWithOp(w, http.StatusBadRequest, invalidDCFMessage, op)
		return
	}

	start := time.Now()
	out, err := h.service.Compute(in)
	if err != nil {
		h.respondEngineError(w, err, invalidDCFMessage, op)
		return
	}

	h.logger.Info("valuation computed",
		zap.String("op", op),
		zap.Float64("value_per_share", out.ValuePerShare),
		zap.Duration("duration", time.Since(start)),
	)
	h.writeJSON(w, http.StatusOK, out)
}

func (h *handler) handleCostOfCapital(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCostOfCapital"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	body, ok := h.readBody(w, r, op)
	if !ok {
		return
	}

	cs, err := dcf.DecodeCapitalStructure(body)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, invalidCostOfCapitalMessage, op)
		return
	}
	if err := cs.Validate(); err != nil {
		h.respondEngineError(w, err, invalidCostOfCapitalMessage, op)
		return
	}

	wacc, components := dcf.CostOfCapital(cs)
	if !mathutil.IsFinite(wacc) {
		h.respondErrorWithOp(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("cost of capital is undefined for the given capital structure (market value of equity %v)", cs.MarketValueOfEquity()), op)
		return
	}

	h.writeJSON(w, http.StatusOK, costOfCapitalResponse{CostOfCapital: wacc, Components: components})
}

func (h *handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleHistory"
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	ticker, ok := h.tickerParam(w, r, op)
	if !ok {
		return
	}
	if h.history == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "price history is not configured", op)
		return
	}

	closes, err := h.history.History(r.Context(), ticker)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, history.ErrUpstream) || errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusBadGateway
		}
		h.respondErrorWithOp(w, status, fmt.Sprintf("failed to fetch price history for %s", ticker), op)
		return
	}

	h.writeJSON(w, http.StatusOK, historyResponse{History: closes})
}

func (h *handler) handleTickers(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleTickers"
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		h.writeJSON(w, http.StatusOK, []store.Candidate{})
		return
	}
	if h.store == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "inputs store is not configured", op)
		return
	}

	candidates, err := h.store.Search(r.Context(), query, constants.DefaultTickerSearchLimit)
	if err != nil {
		h.logger.Error("ticker search failed",
			zap.String("op", op),
			zap.String("query", query),
			zap.Error(err),
		)
		h.respondErrorWithOp(w, http.StatusInternalServerError, "failed to search tickers", op)
		return
	}

	h.writeJSON(w, http.StatusOK, candidates)
}

func (h *handler) handleTicker(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleTicker"
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	ticker, ok := h.tickerParam(w, r, op)
	if !ok {
		return
	}
	if h.store == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "inputs store is not configured", op)
		return
	}

	record, err := h.store.Get(r.Context(), ticker)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondErrorWithOp(w, http.StatusNotFound, fmt.Sprintf("no inputs stored for %s", ticker), op)
			return
		}
		h.logger.Error("ticker lookup failed",
			zap.String("op", op),
			zap.String("ticker", ticker),
			zap.Error(err),
		)
		h.respondErrorWithOp(w, http.StatusInternalServerError, "failed to load ticker", op)
		return
	}

	h.writeJSON(w, http.StatusOK, record)
}

func (h *handler) handleValuation(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleValuation"
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	ticker, ok := h.tickerParam(w, r, op)
	if !ok {
		return
	}
	if h.store == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "inputs store is not configured", op)
		return
	}

	overrides := []byte(r.URL.Query().Get("inputs"))
	result, err := h.service.ValueTicker(r.Context(), ticker, overrides)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondErrorWithOp(w, http.StatusNotFound, fmt.Sprintf("no inputs stored for %s", ticker), op)
			return
		}
		h.respondEngineError(w, err, invalidDCFMessage, op)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
		"store":   h.store != nil,
		"history": h.history != nil,
	})
}

// readBody reads a size-limited request body, responding on failure.
func (h *handler) readBody(w http.ResponseWriter, r *http.Request, op string) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestSize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxRequestSize), op)
			return nil, false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to read request: %v", err), op)
		return nil, false
	}
	return body, true
}

// tickerParam reads and normalizes the ticker query parameter.
func (h *handler) tickerParam(w http.ResponseWriter, r *http.Request, op string) (string, bool) {
	raw := r.URL.Query().Get("ticker")
	if strings.TrimSpace(raw) == "" {
		h.respondErrorWithOp(w, http.StatusBadRequest, "ticker is required", op)
		return "", false
	}
	ticker, err := validation.NormalizeTicker(raw)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return "", false
	}
	return ticker, true
}

// respondEngineError maps engine sentinels to 400 and 422.
func (h *handler) respondEngineError(w http.ResponseWriter, err error, malformedMsg string, op string) {
	switch {
	case errors.Is(err, dcf.ErrMalformedInput):
		h.logger.Debug("rejected input",
			zap.String("op", op),
			zap.Error(err),
		)
		h.respondErrorWithOp(w, http.StatusBadRequest, malformedMsg, op)
	case errors.Is(err, dcf.ErrDegenerateConfiguration):
		h.respondErrorWithOp(w, http.StatusUnprocessableEntity, err.Error(), op)
	default:
		h.logger.Error("valuation failed",
			zap.String("op", op),
			zap.Error(err),
		)
		h.respondErrorWithOp(w, http.StatusInternalServerError, "failed to compute valuation", op)
	}
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Warn("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
