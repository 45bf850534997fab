package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/lekhan/internal/analysis"
	"github.com/lehigh-university-libraries/lekhan/internal/images"
	"github.com/lehigh-university-libraries/lekhan/internal/models"
	"github.com/lehigh-university-libraries/lekhan/internal/report"
	"github.com/lehigh-university-libraries/lekhan/internal/vault"
)

// SessionHeader carries the vault session id on every vault request
const SessionHeader = "X-Session-ID"

// Analyzer runs one document analysis
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*analysis.Analysis, error)
}

type Handler struct {
	store      *vault.Store
	analyzer   Analyzer
	sessions   *SessionRegistry
	images     *images.Fetcher
	reportOpts report.Options
	now        func() time.Time
}

func New(store *vault.Store, analyzer Analyzer, reportOpts report.Options) *Handler {
	return &Handler{
		store:      store,
		analyzer:   analyzer,
		sessions:   NewSessionRegistry(),
		images:     images.NewFetcher(),
		reportOpts: reportOpts,
		now:        time.Now,
	}
}

// Register wires every route onto mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/session", h.HandleCurrentSession)
	mux.HandleFunc("POST /api/sessions", h.HandleCreateSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.HandleDeleteSession)

	mux.HandleFunc("POST /api/analyze", h.HandleAnalyze)

	mux.HandleFunc("GET /api/vault", h.HandleListVault)
	mux.HandleFunc("GET /api/vault/{id}", h.HandleGetItem)
	mux.HandleFunc("PUT /api/vault/{id}/status", h.HandleUpdateStatus)
	mux.HandleFunc("DELETE /api/vault/{id}", h.HandleDeleteItem)
	mux.HandleFunc("GET /api/vault/{id}/report", h.HandleReport)
	mux.HandleFunc("GET /api/vault/{id}/preview", h.HandlePreview)

	mux.HandleFunc("GET /api/languages", h.HandleLanguages)
	mux.HandleFunc("GET /api/modes", h.HandleModes)
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
}

// Close ends every open session
func (h *Handler) Close() {
	h.sessions.CloseAll()
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message, "code", code)
	http.Error(w, message, code)
}

// writeVaultError maps vault errors onto status codes
func (h *Handler) writeVaultError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, vault.ErrInvalidStatus), errors.Is(err, models.ErrUnknownStatus):
		h.writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, vault.ErrSessionClosed):
		h.writeError(w, err.Error(), http.StatusUnauthorized)
	default:
		h.writeError(w, "Vault operation failed: "+err.Error(), http.StatusInternalServerError)
	}
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, r *http.Request) (*sessionEntry, bool) {
	sessionID := r.Header.Get(SessionHeader)
	if sessionID == "" {
		h.writeError(w, "Missing "+SessionHeader+" header", http.StatusUnauthorized)
		return nil, false
	}
	entry, exists := h.sessions.Get(sessionID)
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return entry, true
}
