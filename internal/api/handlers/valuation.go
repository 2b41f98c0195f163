package handlers

import (
	"context"
	"net/http"

	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/internal/valuation"
	"github.com/wonny/fairvalue/pkg/logger"
)

// MaxBatchTickers caps the size of one batch request
const MaxBatchTickers = 50

// Generic failure messages; provider or internal detail never reaches the client
const (
	msgProviderFailure = "Failed to retrieve data from the financial data provider"
	msgValuationFailed = "Failed to compute fair value"
)

// Valuator is the part of the valuation engine the handlers need
type Valuator interface {
	Evaluate(ctx context.Context, ticker string) (*contracts.FairValueResult, error)
	EvaluateBatch(ctx context.Context, tickers []string) map[string]valuation.Outcome
}

// ValuationHandler handles valuation endpoints
// ⭐ SSOT: 밸류에이션 API 핸들러는 이 구조체에서만
type ValuationHandler struct {
	valuator Valuator
	logger   *logger.Logger
}

// NewValuationHandler creates a new valuation handler
func NewValuationHandler(v Valuator, log *logger.Logger) *ValuationHandler {
	return &ValuationHandler{
		valuator: v,
		logger:   log.WithModule("api"),
	}
}

// ValuationRequest is the body of POST /api/valuation
type ValuationRequest struct {
	TickerSymbol string `json:"ticker_symbol"`
}

// ValuationResponse is a successful valuation
type ValuationResponse struct {
	EstimatedFairValue int64 `json:"estimated_fair_value"`
}

// ErrorResponse carries a generic failure message
type ErrorResponse struct {
	Error string `json:"error"`
}

// BatchRequest is the body of POST /api/valuation/batch
type BatchRequest struct {
	Tickers []string `json:"tickers"`
}

// BatchEntry is one ticker's outcome: exactly one field is set
type BatchEntry struct {
	EstimatedFairValue *int64 `json:"estimated_fair_value,omitempty"`
	Error              string `json:"error,omitempty"`
}

// BatchResponse maps normalized tickers to their outcome
type BatchResponse struct {
	Results map[string]BatchEntry `json:"results"`
}

// Evaluate values one ticker
// POST /api/valuation
func (h *ValuationHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req ValuationRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ticker := valuation.NormalizeTicker(req.TickerSymbol)
	if ticker == "" {
		respondError(w, http.StatusBadRequest, "ticker_symbol is required")
		return
	}

	res, err := h.valuator.Evaluate(r.Context(), ticker)
	if err != nil {
		status, message := failureStatus(err)
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"ticker": ticker,
			"kind":   contracts.KindOf(err),
			"status": status,
		}).Error("Valuation request failed")
		respondError(w, status, message)
		return
	}

	respondJSON(w, http.StatusOK, ValuationResponse{EstimatedFairValue: res.FairValuePerShare})
}

// EvaluateBatch values several tickers; one failure never fails the request
// POST /api/valuation/batch
func (h *ValuationHandler) EvaluateBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tickers := valuation.NormalizeTickers(req.Tickers)
	if len(tickers) == 0 {
		respondError(w, http.StatusBadRequest, "tickers must contain at least one symbol")
		return
	}
	if len(tickers) > MaxBatchTickers {
		respondError(w, http.StatusBadRequest, "too many tickers in one batch")
		return
	}

	outcomes := h.valuator.EvaluateBatch(r.Context(), tickers)

	resp := BatchResponse{Results: make(map[string]BatchEntry, len(outcomes))}
	for ticker, o := range outcomes {
		if o.OK() {
			v := o.Result.FairValuePerShare
			resp.Results[ticker] = BatchEntry{EstimatedFairValue: &v}
			continue
		}
		_, message := failureStatus(o.Err)
		h.logger.WithError(o.Err).WithFields(map[string]interface{}{
			"ticker": ticker,
			"kind":   contracts.KindOf(o.Err),
		}).Warn("Batch ticker failed")
		resp.Results[ticker] = BatchEntry{Error: message}
	}

	respondJSON(w, http.StatusOK, resp)
}

// failureStatus maps a valuation error to an HTTP status and a generic message
func failureStatus(err error) (int, string) {
	if contracts.IsProviderFailure(err) {
		return http.StatusBadGateway, msgProviderFailure
	}
	return http.StatusInternalServerError, msgValuationFailed
}
