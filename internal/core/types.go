package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

// DateFormat is the calendar-date wire format used for all persisted dates.
// Dates carry no time-of-day component.
const DateFormat = "2006-01-02"

const (
	Monthly BillingCycle = "monthly"
	Yearly  BillingCycle = "yearly"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	BillingCycle    string
	TransactionType string

	// Subscription is a recurring charge tracked for a user. Price is in the
	// subscription's own currency; StartDate and NextPaymentDate are calendar
	// dates in DateFormat (NextPaymentDate may be empty until derived).
	Subscription struct {
		ID              string       `json:"id,omitempty"`
		UserID          string       `json:"user_id,omitempty"`
		Name            string       `json:"name"`
		Price           float64      `json:"price"`
		Currency        string       `json:"currency"`
		BillingCycle    BillingCycle `json:"billing_cycle"`
		Category        string       `json:"category"`
		StartDate       string       `json:"start_date,omitempty"`
		NextPaymentDate string       `json:"next_payment_date,omitempty"`
		CreatedAt       time.Time    `json:"created_at,omitzero"`
	}

	// Transaction is a one-off income or expense entry.
	Transaction struct {
		ID          string          `json:"id,omitempty"`
		UserID      string          `json:"user_id,omitempty"`
		Type        TransactionType `json:"type"`
		Amount      float64         `json:"amount"`
		Category    string          `json:"category"`
		Date        string          `json:"date"`
		Description string          `json:"description,omitempty"`
		CreatedAt   time.Time       `json:"created_at,omitzero"`
	}

	// Budget is a per-category monthly spending limit. At most one budget per
	// category per user; the database enforces the uniqueness.
	Budget struct {
		ID          string    `json:"id,omitempty"`
		UserID      string    `json:"user_id,omitempty"`
		Category    string    `json:"category"`
		LimitAmount float64   `json:"limit_amount"`
		CreatedAt   time.Time `json:"created_at,omitzero"`
	}
)

var (
	ErrEmptyName       = errors.New("empty name")
	ErrEmptyCategory   = errors.New("empty category")
	ErrNegativePrice   = errors.New("negative price")
	ErrNegativeAmount  = errors.New("negative amount")
	ErrInvalidCycle    = errors.New("invalid billing cycle")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidLimit    = errors.New("budget limit must be positive")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidCurrency = errors.New("invalid currency code")
)

func (c BillingCycle) Valid() bool {
	return c == Monthly || c == Yearly
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// ParseDate parses a calendar date in DateFormat.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

func (s Subscription) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if s.Price < 0 || math.IsNaN(s.Price) || math.IsInf(s.Price, 0) {
		return ErrNegativePrice
	}
	if !s.BillingCycle.Valid() {
		return ErrInvalidCycle
	}
	if len(s.Currency) != 3 {
		return ErrInvalidCurrency
	}
	if s.StartDate != "" {
		if _, err := ParseDate(s.StartDate); err != nil {
			return err
		}
	}
	if s.NextPaymentDate != "" {
		if _, err := ParseDate(s.NextPaymentDate); err != nil {
			return err
		}
	}
	return nil
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Amount < 0 || math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
		return ErrNegativeAmount
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if _, err := ParseDate(t.Date); err != nil {
		return err
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if b.LimitAmount <= 0 || math.IsNaN(b.LimitAmount) || math.IsInf(b.LimitAmount, 0) {
		return ErrInvalidLimit
	}
	return nil
}

// Key returns the record identifier used for collection reconciliation.
func (s Subscription) Key() string { return s.ID }
func (t Transaction) Key() string  { return t.ID }
func (b Budget) Key() string       { return b.ID }

// SameAs reports whether two subscriptions describe the same charge,
// ignoring identifiers. Used to match an optimistic placeholder against a
// pushed record before the server identifier is known.
func (s Subscription) SameAs(other Subscription) bool {
	return s.Name == other.Name &&
		s.Price == other.Price &&
		s.BillingCycle == other.BillingCycle &&
		s.Currency == other.Currency
}

// SameAs reports whether two transactions carry the same semantic fields.
func (t Transaction) SameAs(other Transaction) bool {
	return t.Type == other.Type &&
		t.Amount == other.Amount &&
		t.Category == other.Category &&
		t.Date == other.Date &&
		t.Description == other.Description
}

// SameAs matches budgets by category alone: a user has at most one budget
// per category.
func (b Budget) SameAs(other Budget) bool {
	return b.Category == other.Category
}
