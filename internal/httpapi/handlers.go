package httpapi

import (
	"net/http"
	"time"

	"subtrack/internal/charts"
	"subtrack/internal/core"
	"subtrack/internal/settings"
	"subtrack/internal/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, core.Presets())
}

type createSubscriptionRequest struct {
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Currency     string  `json:"currency"`
	BillingCycle string  `json:"billing_cycle"`
	Category     string  `json:"category"`
	BillingDay   int     `json:"billing_day"`
	BillingMonth int     `json:"billing_month"`
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	subs, err := s.tracker.Subscriptions(r.Context(), userID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req createSubscriptionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sub := core.Subscription{
		UserID:       userID,
		Name:         req.Name,
		Price:        req.Price,
		Currency:     req.Currency,
		BillingCycle: core.BillingCycle(req.BillingCycle),
		Category:     req.Category,
	}
	created, err := s.tracker.AddSubscription(r.Context(), sub, req.BillingDay, req.BillingMonth)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req createSubscriptionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sub := core.Subscription{
		ID:           r.PathValue("id"),
		UserID:       userID,
		Name:         req.Name,
		Price:        req.Price,
		Currency:     req.Currency,
		BillingCycle: core.BillingCycle(req.BillingCycle),
		Category:     req.Category,
	}
	updated, err := s.tracker.UpdateSubscription(r.Context(), sub, req.BillingDay, req.BillingMonth)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	if err := s.tracker.RemoveSubscription(r.Context(), r.PathValue("id"), userID); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createTransactionRequest struct {
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	filter := store.TransactionFilter{}
	if t := r.URL.Query().Get("type"); t != "" {
		filter.Type = core.TransactionType(t)
	}
	txs, err := s.tracker.Transactions(r.Context(), userID, filter)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req createTransactionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	date := req.Date
	if date == "" {
		date = s.now().Format(core.DateFormat)
	}
	tx := core.Transaction{
		UserID:      userID,
		Type:        core.TransactionType(req.Type),
		Amount:      req.Amount,
		Category:    req.Category,
		Date:        date,
		Description: req.Description,
	}
	created, err := s.tracker.AddTransaction(r.Context(), tx)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	if err := s.tracker.RemoveTransaction(r.Context(), r.PathValue("id"), userID); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createBudgetRequest struct {
	Category    string  `json:"category"`
	LimitAmount float64 `json:"limit_amount"`
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	budgets, err := s.tracker.Budgets(r.Context(), userID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req createBudgetRequest
	if !decodeBody(w, r, &req) {
		return
	}
	b := core.Budget{
		UserID:      userID,
		Category:    req.Category,
		LimitAmount: req.LimitAmount,
	}
	created, err := s.tracker.AddBudget(r.Context(), b)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	if err := s.tracker.RemoveBudget(r.Context(), r.PathValue("id"), userID); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// monthRef resolves the optional ?month=2006-01 query parameter, defaulting
// to the current month.
func (s *Server) monthRef(r *http.Request) time.Time {
	if m := r.URL.Query().Get("month"); m != "" {
		if t, err := time.Parse("2006-01", m); err == nil {
			return t
		}
	}
	return s.now()
}

// displayCurrency resolves the display currency: explicit query parameter
// first, then the user's saved preference.
func (s *Server) displayCurrency(r *http.Request, userID string) string {
	if c := r.URL.Query().Get("currency"); c != "" {
		return c
	}
	prefs, err := s.settings.Load(r.Context(), userID)
	if err != nil {
		return settings.Default().DisplayCurrency
	}
	return prefs.DisplayCurrency
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	display := s.displayCurrency(r, userID)
	dashboard, err := s.tracker.BuildDashboard(r.Context(), userID, s.monthRef(r), display, s.rates.Table(r.Context()))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (s *Server) handleDashboardChart(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	display := s.displayCurrency(r, userID)
	dashboard, err := s.tracker.BuildDashboard(r.Context(), userID, s.monthRef(r), display, s.rates.Table(r.Context()))
	if err != nil {
		writeFailure(w, err)
		return
	}
	png, err := charts.RenderDistribution(dashboard.Distribution, display)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "chart rendering failed")
		return
	}
	if png == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	prefs, err := s.settings.Load(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	var prefs settings.Settings
	if !decodeBody(w, r, &prefs) {
		return
	}
	if prefs.DisplayCurrency == "" || prefs.Language == "" || prefs.Theme == "" {
		writeError(w, http.StatusUnprocessableEntity, "display_currency, language and theme are required")
		return
	}
	if err := s.settings.Save(r.Context(), userID, prefs); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}
