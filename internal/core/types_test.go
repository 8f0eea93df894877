package core

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func validSubscription() Subscription {
	return Subscription{
		Name:         "Netflix",
		Price:        15.49,
		Currency:     "USD",
		BillingCycle: Monthly,
		Category:     "Entertainment",
	}
}

func TestSubscriptionValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Subscription)
		wantErr error
	}{
		{"valid", func(*Subscription) {}, nil},
		{"blank name", func(s *Subscription) { s.Name = "   " }, ErrEmptyName},
		{"negative price", func(s *Subscription) { s.Price = -1 }, ErrNegativePrice},
		{"nan price", func(s *Subscription) { s.Price = math.NaN() }, ErrNegativePrice},
		{"zero price ok", func(s *Subscription) { s.Price = 0 }, nil},
		{"bad cycle", func(s *Subscription) { s.BillingCycle = "weekly" }, ErrInvalidCycle},
		{"bad currency", func(s *Subscription) { s.Currency = "US" }, ErrInvalidCurrency},
		{"bad start date", func(s *Subscription) { s.StartDate = "15-06-2025" }, ErrInvalidDate},
		{"valid dates", func(s *Subscription) { s.StartDate = "2025-06-15"; s.NextPaymentDate = "2025-07-15" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := validSubscription()
			tt.mutate(&sub)
			if err := sub.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{Type: Expense, Amount: 12.50, Category: "Food", Date: "2025-06-10"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid transaction rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr error
	}{
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidType},
		{"negative amount", func(tx *Transaction) { tx.Amount = -5 }, ErrNegativeAmount},
		{"blank category", func(tx *Transaction) { tx.Category = "" }, ErrEmptyCategory},
		{"missing date", func(tx *Transaction) { tx.Date = "" }, ErrInvalidDate},
		{"timestamp instead of date", func(tx *Transaction) { tx.Date = "2025-06-10T12:00:00Z" }, ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid
			tt.mutate(&tx)
			if err := tx.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBudgetValidate(t *testing.T) {
	if err := (Budget{Category: "Food", LimitAmount: 300}).Validate(); err != nil {
		t.Fatalf("valid budget rejected: %v", err)
	}
	if err := (Budget{Category: "", LimitAmount: 300}).Validate(); !errors.Is(err, ErrEmptyCategory) {
		t.Errorf("blank category: got %v", err)
	}
	if err := (Budget{Category: "Food", LimitAmount: 0}).Validate(); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("zero limit: got %v", err)
	}
	if err := (Budget{Category: "Food", LimitAmount: -10}).Validate(); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("negative limit: got %v", err)
	}
}

// Records marshaled for a write must not carry a zero created_at: the
// column has a server-side default on insert, and an update payload that
// includes the field would overwrite the stored creation time.
func TestMarshal_OmitsZeroCreatedAt(t *testing.T) {
	records := map[string]any{
		"subscription": validSubscription(),
		"transaction":  Transaction{Type: Expense, Amount: 5, Category: "Food", Date: "2025-06-10"},
		"budget":       Budget{Category: "Food", LimitAmount: 300},
	}
	for name, record := range records {
		t.Run(name, func(t *testing.T) {
			data, err := json.Marshal(record)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if strings.Contains(string(data), "created_at") {
				t.Errorf("zero created_at serialized: %s", data)
			}
		})
	}

	// A server-populated timestamp still round-trips.
	sub := validSubscription()
	sub.CreatedAt = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	data, err := json.Marshal(sub)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"created_at":"2025-06-15T12:00:00Z"`) {
		t.Errorf("populated created_at lost: %s", data)
	}
}

func TestSameAs(t *testing.T) {
	a := validSubscription()
	b := validSubscription()
	a.ID, b.ID = "local-1", "srv-1"
	if !a.SameAs(b) {
		t.Error("identical subscriptions with different ids should match")
	}
	b.Price = 16.49
	if a.SameAs(b) {
		t.Error("different price should not match")
	}

	// Budgets compare by category only.
	x := Budget{ID: "local-2", Category: "Food", LimitAmount: 300}
	y := Budget{ID: "srv-2", Category: "Food", LimitAmount: 250}
	if !x.SameAs(y) {
		t.Error("budgets in the same category should match regardless of limit")
	}
}
