package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"subtrack/internal/core"
	"subtrack/internal/realtime"
	"subtrack/internal/reconcile"
	"subtrack/internal/store"
)

// Session is the client-held view of one user's records. Mutations are
// optimistic: a placeholder appears immediately, then the remote outcome
// (or the pushed change event, whichever lands first) reconciles it. Each
// event is applied under the session lock as one whole state transition, so
// the visible collections converge regardless of arrival order.
type Session struct {
	userID  string
	tracker *Tracker

	mu            sync.Mutex
	subscriptions *reconcile.Collection[core.Subscription]
	transactions  *reconcile.Collection[core.Transaction]
	budgets       *reconcile.Collection[core.Budget]

	cancel func()
}

// NewSession loads the user's snapshots and, when a channel is given,
// starts draining its push events into the collections. Close releases the
// subscription.
func NewSession(ctx context.Context, tracker *Tracker, events *realtime.Channel, userID string) (*Session, error) {
	subs, err := tracker.Subscriptions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load subscriptions: %w", err)
	}
	txs, err := tracker.Transactions(ctx, userID, store.TransactionFilter{})
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	budgets, err := tracker.Budgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load budgets: %w", err)
	}

	s := &Session{
		userID:        userID,
		tracker:       tracker,
		subscriptions: reconcile.NewCollection(subs),
		transactions:  reconcile.NewCollection(txs),
		budgets:       reconcile.NewCollection(budgets),
		cancel:        func() {},
	}

	if events != nil {
		stream, cancel, err := events.Subscribe(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("subscribe to change events: %w", err)
		}
		s.cancel = cancel
		go func() {
			for ev := range stream {
				s.applyEvent(ev)
			}
		}()
	}

	return s, nil
}

func (s *Session) Close() {
	s.cancel()
}

// applyEvent merges one pushed change into the owning collection.
func (s *Session) applyEvent(ev *realtime.ChangeEvent) {
	raw, err := ev.DecodeRecord()
	if err != nil {
		slog.Warn("Skipping malformed change event", "table", ev.Table, "error", err)
		return
	}
	change := reconcile.Change(ev.ChangeType)

	s.mu.Lock()
	defer s.mu.Unlock()
	switch ev.Table {
	case "subscriptions":
		s.subscriptions.ApplyPush(change, core.NormalizeSubscription(raw))
	case "transactions":
		s.transactions.ApplyPush(change, core.NormalizeTransaction(raw))
	case "budgets":
		s.budgets.ApplyPush(change, core.NormalizeBudget(raw))
	default:
		slog.Warn("Change event for unknown table", "table", ev.Table)
	}
}

// Subscriptions returns the visible subscription records, newest first.
func (s *Session) Subscriptions() []core.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscriptions.Items()
}

func (s *Session) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transactions.Items()
}

func (s *Session) Budgets() []core.Budget {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budgets.Items()
}

// AddTransaction inserts an optimistic placeholder, performs the remote
// write and reconciles. Validation failures reject before any visible
// change; write failures roll the placeholder back.
func (s *Session) AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx.UserID = s.userID
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	placeholder := tx
	placeholder.ID = reconcile.NewLocalID()
	s.mu.Lock()
	s.transactions.SubmitCreate(placeholder)
	s.mu.Unlock()

	created, err := s.tracker.AddTransaction(ctx, tx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.transactions.FailCreate(placeholder.ID)
		return core.Transaction{}, err
	}
	s.transactions.ConfirmCreate(placeholder.ID, created)
	return created, nil
}

// DeleteTransaction removes the record immediately and reinstates it if the
// remote delete fails.
func (s *Session) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	_, ok := s.transactions.SubmitDelete(id)
	s.mu.Unlock()
	if !ok {
		return store.ErrNotFound
	}

	err := s.tracker.RemoveTransaction(ctx, id, s.userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.transactions.FailDelete(id)
		return err
	}
	s.transactions.ConfirmDelete(id)
	return nil
}

// AddSubscription mirrors AddTransaction for subscriptions; billing dates
// are derived by the tracker before the remote write.
func (s *Session) AddSubscription(ctx context.Context, sub core.Subscription, billingDay, billingMonth int) (core.Subscription, error) {
	sub.UserID = s.userID
	// Pre-validate the user-controlled fields so a rejection happens before
	// any visible change; the derived dates are validated by the tracker.
	probe := sub
	probe.StartDate, probe.NextPaymentDate = "", ""
	if err := probe.Validate(); err != nil {
		return core.Subscription{}, err
	}

	placeholder := sub
	placeholder.ID = reconcile.NewLocalID()
	s.mu.Lock()
	s.subscriptions.SubmitCreate(placeholder)
	s.mu.Unlock()

	created, err := s.tracker.AddSubscription(ctx, sub, billingDay, billingMonth)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.subscriptions.FailCreate(placeholder.ID)
		return core.Subscription{}, err
	}
	s.subscriptions.ConfirmCreate(placeholder.ID, created)
	return created, nil
}

func (s *Session) DeleteSubscription(ctx context.Context, id string) error {
	s.mu.Lock()
	_, ok := s.subscriptions.SubmitDelete(id)
	s.mu.Unlock()
	if !ok {
		return store.ErrNotFound
	}

	err := s.tracker.RemoveSubscription(ctx, id, s.userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.subscriptions.FailDelete(id)
		return err
	}
	s.subscriptions.ConfirmDelete(id)
	return nil
}

// AddBudget mirrors AddTransaction; a duplicate-category conflict rolls the
// placeholder back just like any other failure, but keeps its distinct
// error kind for the caller's message.
func (s *Session) AddBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	b.UserID = s.userID
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	placeholder := b
	placeholder.ID = reconcile.NewLocalID()
	s.mu.Lock()
	s.budgets.SubmitCreate(placeholder)
	s.mu.Unlock()

	created, err := s.tracker.AddBudget(ctx, b)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.budgets.FailCreate(placeholder.ID)
		return core.Budget{}, err
	}
	s.budgets.ConfirmCreate(placeholder.ID, created)
	return created, nil
}

func (s *Session) DeleteBudget(ctx context.Context, id string) error {
	s.mu.Lock()
	_, ok := s.budgets.SubmitDelete(id)
	s.mu.Unlock()
	if !ok {
		return store.ErrNotFound
	}

	err := s.tracker.RemoveBudget(ctx, id, s.userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.budgets.FailDelete(id)
		return err
	}
	s.budgets.ConfirmDelete(id)
	return nil
}
