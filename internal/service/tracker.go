// Package service orchestrates the tracker's business logic over the data
// layer and the realtime channel.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"subtrack/internal/billing"
	"subtrack/internal/core"
	"subtrack/internal/currency"
	"subtrack/internal/insights"
	"subtrack/internal/realtime"
	"subtrack/internal/store"
)

// Tracker validates records, derives billing dates, writes through the
// store and publishes change events. A nil events channel disables
// publishing; mutations still succeed.
type Tracker struct {
	repo   store.Repository
	events *realtime.Channel
	now    func() time.Time
}

func NewTracker(repo store.Repository, events *realtime.Channel) *Tracker {
	return &Tracker{
		repo:   repo,
		events: events,
		now:    time.Now,
	}
}

// WithClock overrides the reference clock, for tests.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// AddSubscription derives the subscription's start and next payment dates
// from the chosen billing day (and month, for yearly cycles), persists it
// and publishes an insert event.
func (t *Tracker) AddSubscription(ctx context.Context, sub core.Subscription, billingDay, billingMonth int) (core.Subscription, error) {
	now := t.now()
	sub.StartDate = billing.StartDate(billingDay, billingMonth, sub.BillingCycle, now)
	sub.NextPaymentDate = billing.NextPaymentDate(billingDay, billingMonth, sub.BillingCycle, now)
	if err := sub.Validate(); err != nil {
		return core.Subscription{}, err
	}
	if err := t.repo.CreateSubscription(ctx, &sub); err != nil {
		return core.Subscription{}, fmt.Errorf("add subscription: %w", err)
	}
	t.publish(ctx, "subscriptions", realtime.ChangeInsert, sub.UserID, sub)
	return sub, nil
}

// UpdateSubscription recomputes the next payment date for the (possibly
// changed) billing day and cycle, persists the record and publishes an
// update event.
func (t *Tracker) UpdateSubscription(ctx context.Context, sub core.Subscription, billingDay, billingMonth int) (core.Subscription, error) {
	sub.NextPaymentDate = billing.NextPaymentDate(billingDay, billingMonth, sub.BillingCycle, t.now())
	if err := sub.Validate(); err != nil {
		return core.Subscription{}, err
	}
	if err := t.repo.UpdateSubscription(ctx, &sub); err != nil {
		return core.Subscription{}, fmt.Errorf("update subscription: %w", err)
	}
	t.publish(ctx, "subscriptions", realtime.ChangeUpdate, sub.UserID, sub)
	return sub, nil
}

func (t *Tracker) RemoveSubscription(ctx context.Context, id, userID string) error {
	if err := t.repo.DeleteSubscription(ctx, id, userID); err != nil {
		return fmt.Errorf("remove subscription: %w", err)
	}
	t.publish(ctx, "subscriptions", realtime.ChangeDelete, userID, core.Subscription{ID: id, UserID: userID})
	return nil
}

func (t *Tracker) Subscriptions(ctx context.Context, userID string) ([]core.Subscription, error) {
	return t.repo.ListSubscriptions(ctx, userID)
}

func (t *Tracker) AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := t.repo.CreateTransaction(ctx, &tx); err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}
	t.publish(ctx, "transactions", realtime.ChangeInsert, tx.UserID, tx)
	return tx, nil
}

func (t *Tracker) RemoveTransaction(ctx context.Context, id, userID string) error {
	if err := t.repo.DeleteTransaction(ctx, id, userID); err != nil {
		return fmt.Errorf("remove transaction: %w", err)
	}
	t.publish(ctx, "transactions", realtime.ChangeDelete, userID, core.Transaction{ID: id, UserID: userID})
	return nil
}

func (t *Tracker) Transactions(ctx context.Context, userID string, filter store.TransactionFilter) ([]core.Transaction, error) {
	return t.repo.ListTransactions(ctx, userID, filter)
}

// AddBudget persists a budget. A second budget for the same category fails
// with store.ErrDuplicateCategory so callers can show a specific message.
func (t *Tracker) AddBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	if err := t.repo.CreateBudget(ctx, &b); err != nil {
		if store.IsUniqueViolation(err) {
			return core.Budget{}, fmt.Errorf("add budget: %w", store.ErrDuplicateCategory)
		}
		return core.Budget{}, fmt.Errorf("add budget: %w", err)
	}
	t.publish(ctx, "budgets", realtime.ChangeInsert, b.UserID, b)
	return b, nil
}

func (t *Tracker) RemoveBudget(ctx context.Context, id, userID string) error {
	if err := t.repo.DeleteBudget(ctx, id, userID); err != nil {
		return fmt.Errorf("remove budget: %w", err)
	}
	t.publish(ctx, "budgets", realtime.ChangeDelete, userID, core.Budget{ID: id, UserID: userID})
	return nil
}

func (t *Tracker) Budgets(ctx context.Context, userID string) ([]core.Budget, error) {
	return t.repo.ListBudgets(ctx, userID)
}

// publish emits a change event without failing the surrounding mutation;
// the write already succeeded and the push stream is best-effort.
func (t *Tracker) publish(ctx context.Context, table, change, userID string, record any) {
	if t.events == nil {
		return
	}
	ev, err := realtime.NewChangeEvent(table, change, userID, record)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to build change event",
			"table", table, "change_type", change, "error", err)
		return
	}
	if err := t.events.Publish(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change event",
			"table", table, "change_type", change, "error", err)
	}
}

// FailureKind discriminates why a mutation was rejected so the caller can
// pick the right rollback message.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureValidation
	FailureConflict
	FailureTransient
)

// ClassifyError maps a mutation error onto its failure kind.
func ClassifyError(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, store.ErrDuplicateCategory):
		return FailureConflict
	case errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrNegativePrice),
		errors.Is(err, core.ErrNegativeAmount),
		errors.Is(err, core.ErrInvalidCycle),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidLimit),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidCurrency):
		return FailureValidation
	default:
		return FailureTransient
	}
}

// Dashboard is the aggregated month view served to the UI.
type Dashboard struct {
	Month           string            `json:"month"`
	DisplayCurrency string            `json:"display_currency"`
	CurrentTotal    float64           `json:"current_total"`
	PreviousTotal   float64           `json:"previous_total"`
	MonthlyIncome   float64           `json:"monthly_income"`
	Distribution    []insights.Bucket `json:"distribution"`
	Insight         insights.Insight  `json:"insight"`
	Budgets         []BudgetStatus    `json:"budgets"`
}

// BudgetStatus pairs a budget with the month's spend in its category.
type BudgetStatus struct {
	Budget    core.Budget `json:"budget"`
	Spent     float64     `json:"spent"`
	Remaining float64     `json:"remaining"`
}

// BuildDashboard aggregates a user's records into the month view for the
// month containing monthRef, with totals in the display currency converted
// through the given rate table.
func (t *Tracker) BuildDashboard(ctx context.Context, userID string, monthRef time.Time, display currency.Code, table currency.RateTable) (Dashboard, error) {
	subs, err := t.repo.ListSubscriptions(ctx, userID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("build dashboard: %w", err)
	}

	convert := func(amount float64, from, to currency.Code) float64 {
		return currency.ConvertDynamic(amount, from, to, table)
	}

	var current, previous []core.Subscription
	prevRef := monthRef.AddDate(0, -1, 0)
	for _, s := range subs {
		if insights.ActiveInMonth(s, monthRef) {
			current = append(current, s)
		}
		if insights.ActiveInMonth(s, prevRef) {
			previous = append(previous, s)
		}
	}
	currentTotal := insights.TotalMonthlyCost(current, display, convert)
	previousTotal := insights.TotalMonthlyCost(previous, display, convert)

	monthStart := time.Date(monthRef.Year(), monthRef.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)
	txs, err := t.repo.ListTransactions(ctx, userID, store.TransactionFilter{
		StartDate: &monthStart,
		EndDate:   &monthEnd,
	})
	if err != nil {
		return Dashboard{}, fmt.Errorf("build dashboard: %w", err)
	}

	income := insights.MonthlyIncome(txs, monthRef)
	distribution := insights.SpendingDistribution(txs, currentTotal, monthRef)

	budgets, err := t.repo.ListBudgets(ctx, userID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("build dashboard: %w", err)
	}
	spentByCategory := make(map[string]float64, len(distribution))
	for _, b := range distribution {
		spentByCategory[b.Category] = b.Total
	}
	statuses := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		spent := spentByCategory[b.Category]
		statuses = append(statuses, BudgetStatus{
			Budget:    b,
			Spent:     spent,
			Remaining: b.LimitAmount - spent,
		})
	}

	return Dashboard{
		Month:           monthStart.Format("2006-01"),
		DisplayCurrency: display,
		CurrentTotal:    currentTotal,
		PreviousTotal:   previousTotal,
		MonthlyIncome:   income,
		Distribution:    distribution,
		Insight:         insights.Generate(currentTotal, previousTotal, income),
		Budgets:         statuses,
	}, nil
}
