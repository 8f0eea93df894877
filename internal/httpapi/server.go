// Package httpapi is the JSON surface the web client talks to. It carries
// no business logic: requests are decoded, handed to the service layer and
// encoded back.
//
// Authentication is out of scope here; the upstream gateway authenticates
// and injects the user id as the X-User-ID header.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	applog "subtrack/internal/log"
	"subtrack/internal/rates"
	"subtrack/internal/service"
	"subtrack/internal/settings"
	"subtrack/internal/store"
)

const userIDHeader = "X-User-ID"

type Server struct {
	tracker  *service.Tracker
	rates    *rates.Provider
	settings *settings.Store
	logger   *applog.Logger
	limiter  *rateLimiter
	now      func() time.Time
}

func New(tracker *service.Tracker, ratesProvider *rates.Provider, settingsStore *settings.Store, logger *applog.Logger) *Server {
	return &Server{
		tracker:  tracker,
		rates:    ratesProvider,
		settings: settingsStore,
		logger:   logger.WithComponent(applog.ComponentHTTP),
		limiter:  newRateLimiter(defaultRequestsPerMinute),
		now:      time.Now,
	}
}

// Handler returns the routed handler with rate limiting and request logging
// applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/presets", s.handlePresets)

	mux.HandleFunc("GET /api/subscriptions", s.handleListSubscriptions)
	mux.HandleFunc("POST /api/subscriptions", s.handleCreateSubscription)
	mux.HandleFunc("PUT /api/subscriptions/{id}", s.handleUpdateSubscription)
	mux.HandleFunc("DELETE /api/subscriptions/{id}", s.handleDeleteSubscription)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/budgets", s.handleListBudgets)
	mux.HandleFunc("POST /api/budgets", s.handleCreateBudget)
	mux.HandleFunc("DELETE /api/budgets/{id}", s.handleDeleteBudget)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/dashboard/chart", s.handleDashboardChart)

	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("PUT /api/settings", s.handlePutSettings)

	return s.requestLogger(s.limiter.middleware(mux))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("Request handled",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rec.status,
			applog.FieldDuration, time.Since(start).Milliseconds())
	})
}

// userID extracts the authenticated user. Requests without one are
// rejected before touching the data layer.
func (s *Server) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get(userIDHeader)
	if id == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return "", false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeFailure maps a mutation error onto a status and a machine-readable
// kind, so the client can tell a conflict rollback from a generic one.
func writeFailure(w http.ResponseWriter, err error) {
	switch service.ClassifyError(err) {
	case service.FailureValidation:
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Kind: "validation"})
	case service.FailureConflict:
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), Kind: "conflict"})
	default:
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Kind: "not_found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "operation failed, please try again", Kind: "transient"})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}
