package service

import (
	"context"
	"errors"
	"testing"

	"subtrack/internal/core"
	"subtrack/internal/realtime"
	"subtrack/internal/reconcile"
	"subtrack/internal/store"
)

func newTestSession(t *testing.T, repo *fakeRepository) *Session {
	t.Helper()
	tracker := NewTracker(repo, nil).WithClock(fixedClock("2025-06-15"))
	s, err := NewSession(context.Background(), tracker, nil, "u-1")
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestSessionAddTransaction(t *testing.T) {
	repo := &fakeRepository{}
	s := newTestSession(t, repo)

	created, err := s.AddTransaction(context.Background(), core.Transaction{
		Type: core.Expense, Amount: 12.50, Category: "Food", Date: "2025-06-10",
	})
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	if reconcile.IsLocalID(created.ID) {
		t.Errorf("returned record still has placeholder id %q", created.ID)
	}

	items := s.Transactions()
	if len(items) != 1 || items[0].ID != created.ID {
		t.Errorf("visible state = %+v, want the confirmed record only", items)
	}
}

func TestSessionAddTransaction_ValidationBeforeVisibleChange(t *testing.T) {
	repo := &fakeRepository{}
	s := newTestSession(t, repo)

	_, err := s.AddTransaction(context.Background(), core.Transaction{
		Type: "transfer", Amount: 12.50, Category: "Food", Date: "2025-06-10",
	})
	if !errors.Is(err, core.ErrInvalidType) {
		t.Fatalf("err = %v, want ErrInvalidType", err)
	}
	if len(s.Transactions()) != 0 {
		t.Error("rejected record became visible")
	}
	if len(repo.transactions) != 0 {
		t.Error("rejected record reached the store")
	}
}

func TestSessionAddTransaction_RollbackOnWriteFailure(t *testing.T) {
	repo := &fakeRepository{
		transactions: []core.Transaction{
			{ID: "t1", UserID: "u-1", Type: core.Expense, Amount: 5, Category: "Food", Date: "2025-06-01"},
		},
	}
	s := newTestSession(t, repo)
	before := s.Transactions()

	repo.failAll = errors.New("connection refused")
	_, err := s.AddTransaction(context.Background(), core.Transaction{
		Type: core.Expense, Amount: 12.50, Category: "Food", Date: "2025-06-10",
	})
	if err == nil {
		t.Fatal("expected write failure")
	}
	if ClassifyError(err) != FailureTransient {
		t.Errorf("ClassifyError = %v, want FailureTransient", ClassifyError(err))
	}

	after := s.Transactions()
	if len(after) != len(before) || after[0].ID != before[0].ID {
		t.Errorf("rollback did not restore pre-submission state: before %+v, after %+v", before, after)
	}
}

func TestSessionAddBudget_ConflictRollsBack(t *testing.T) {
	repo := &fakeRepository{
		budgets: []core.Budget{
			{ID: "b1", UserID: "u-1", Category: "Food", LimitAmount: 300},
		},
	}
	s := newTestSession(t, repo)

	_, err := s.AddBudget(context.Background(), core.Budget{Category: "Food", LimitAmount: 200})
	if !errors.Is(err, store.ErrDuplicateCategory) {
		t.Fatalf("err = %v, want ErrDuplicateCategory", err)
	}

	items := s.Budgets()
	if len(items) != 1 || items[0].ID != "b1" {
		t.Errorf("conflict rollback left %+v, want the original budget only", items)
	}
}

func TestSessionAddSubscription_DerivedDatesVisible(t *testing.T) {
	repo := &fakeRepository{}
	s := newTestSession(t, repo)

	created, err := s.AddSubscription(context.Background(), core.Subscription{
		Name: "Netflix", Price: 15.49, Currency: "USD",
		BillingCycle: core.Monthly, Category: "Entertainment",
	}, 10, 0)
	if err != nil {
		t.Fatalf("AddSubscription: %v", err)
	}
	if created.NextPaymentDate != "2025-07-10" {
		t.Errorf("NextPaymentDate = %q, want 2025-07-10", created.NextPaymentDate)
	}

	items := s.Subscriptions()
	if len(items) != 1 || items[0].NextPaymentDate != "2025-07-10" {
		t.Errorf("visible record missing derived dates: %+v", items)
	}
}

func TestSessionDelete_RollbackKeepsPosition(t *testing.T) {
	repo := &fakeRepository{
		transactions: []core.Transaction{
			{ID: "t1", UserID: "u-1", Type: core.Expense, Amount: 1, Category: "Food", Date: "2025-06-01"},
			{ID: "t2", UserID: "u-1", Type: core.Expense, Amount: 2, Category: "Rent", Date: "2025-06-02"},
			{ID: "t3", UserID: "u-1", Type: core.Expense, Amount: 3, Category: "Fun", Date: "2025-06-03"},
		},
	}
	s := newTestSession(t, repo)

	repo.failAll = errors.New("connection refused")
	if err := s.DeleteTransaction(context.Background(), "t2"); err == nil {
		t.Fatal("expected delete failure")
	}

	items := s.Transactions()
	if len(items) != 3 || items[1].ID != "t2" {
		t.Errorf("failed delete did not reinstate in place: %+v", items)
	}
}

func TestSessionDelete_UnknownID(t *testing.T) {
	s := newTestSession(t, &fakeRepository{})
	if err := s.DeleteBudget(context.Background(), "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// A pushed insert that arrives while the local confirmation is still pending
// must replace the placeholder rather than duplicate it. The push path is
// driven directly here; the wire transport has its own tests.
func TestSessionApplyEvent_PushFirstConvergence(t *testing.T) {
	repo := &fakeRepository{}
	s := newTestSession(t, repo)

	// Seed an optimistic placeholder by hand, as if the remote write were
	// still in flight.
	placeholder := core.Transaction{
		ID: reconcile.NewLocalID(), UserID: "u-1",
		Type: core.Expense, Amount: 12.50, Category: "Food",
		Date: "2025-06-10", Description: "lunch",
	}
	s.mu.Lock()
	s.transactions.SubmitCreate(placeholder)
	s.mu.Unlock()

	ev, err := realtime.NewChangeEvent("transactions", realtime.ChangeInsert, "u-1", map[string]any{
		"id":          "srv-1",
		"type":        "expense",
		"amount":      12.50,
		"category":    "Food",
		"date":        "2025-06-10",
		"description": "lunch",
	})
	if err != nil {
		t.Fatalf("NewChangeEvent: %v", err)
	}
	s.applyEvent(ev)

	items := s.Transactions()
	if len(items) != 1 {
		t.Fatalf("len = %d, want placeholder replaced in place: %+v", len(items), items)
	}
	if items[0].ID != "srv-1" {
		t.Errorf("id = %q, want server id", items[0].ID)
	}

	// The late confirmation for the same write must not re-add anything.
	s.mu.Lock()
	s.transactions.ConfirmCreate(placeholder.ID, items[0])
	s.mu.Unlock()
	if got := len(s.Transactions()); got != 1 {
		t.Errorf("after late confirmation: len = %d, want 1", got)
	}
}

func TestSessionApplyEvent_UnknownTableIgnored(t *testing.T) {
	s := newTestSession(t, &fakeRepository{})
	ev, err := realtime.NewChangeEvent("settings", realtime.ChangeInsert, "u-1", map[string]any{"id": "x"})
	if err != nil {
		t.Fatalf("NewChangeEvent: %v", err)
	}
	s.applyEvent(ev) // must not panic or alter any collection
	if len(s.Subscriptions())+len(s.Transactions())+len(s.Budgets()) != 0 {
		t.Error("event for unknown table mutated a collection")
	}
}
