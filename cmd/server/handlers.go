package main

import (
	"encoding/json"
	"net/http"
	"time"

	"binance-profit-tracker-go/internal/tracker"

	"go.uber.org/zap"
)

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log     *zap.Logger
	tracker *tracker.Tracker
	started time.Time
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, tr *tracker.Tracker) *APIHandler {
	return &APIHandler{log: log, tracker: tr, started: time.Now()}
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", zap.Error(err))
	}
}

// StatusResponse is the structure for the /api/status endpoint.
type StatusResponse struct {
	UptimeSeconds int64  `json:"uptime_seconds"`
	LastSync      string `json:"last_sync"`
}

// StatusHandler reports uptime and the last completed refresh.
func (h *APIHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	}
	if last := h.tracker.LastSync(); !last.IsZero() {
		resp.LastSync = last.UTC().Format(time.RFC3339)
	}
	h.writeJSON(w, resp)
}

// SummaryHandler returns the per-symbol portfolio rows and the net profit.
func (h *APIHandler) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.tracker.Summary())
}

// SeriesHandler returns the cumulative daily profit series for charting.
func (h *APIHandler) SeriesHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.tracker.Series())
}

// TradesHandler returns one symbol's annotated ledger, newest fill first.
func (h *APIHandler) TradesHandler(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		http.Error(w, "symbol query parameter is required", http.StatusBadRequest)
		return
	}

	detail, ok := h.tracker.Detail(symbol)
	if !ok {
		http.Error(w, "no trade data for symbol", http.StatusNotFound)
		return
	}

	h.writeJSON(w, detail)
}

// SyncHandler triggers an immediate refresh.
func (h *APIHandler) SyncHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.tracker.Refresh(r.Context())
	h.writeJSON(w, map[string]string{"status": "ok"})
}
