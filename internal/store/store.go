// Package store is the data-access layer contract and its Supabase-backed
// implementation. All persistent storage is owned by the hosted database;
// this package only moves snapshots and mutations across its API.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"subtrack/internal/core"
)

var (
	// ErrDuplicateCategory is returned when creating a budget for a category
	// that already has one. The database enforces the uniqueness; callers
	// need to tell this apart from a generic write failure to show a
	// specific message.
	ErrDuplicateCategory = errors.New("a budget for this category already exists")

	ErrNotFound = errors.New("record not found")
)

// TransactionFilter narrows a transaction listing.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Type      core.TransactionType
	Limit     int
}

// Repository is the persistence contract for the tracker's three record
// sets. Create methods assign the server id (and created_at) back onto the
// passed record.
type Repository interface {
	ListSubscriptions(ctx context.Context, userID string) ([]core.Subscription, error)
	CreateSubscription(ctx context.Context, sub *core.Subscription) error
	UpdateSubscription(ctx context.Context, sub *core.Subscription) error
	DeleteSubscription(ctx context.Context, id, userID string) error
	// ListDueSubscriptions returns, across all users, subscriptions whose
	// next payment date is on or before the given calendar date.
	ListDueSubscriptions(ctx context.Context, onOrBefore string) ([]core.Subscription, error)

	ListTransactions(ctx context.Context, userID string, filter TransactionFilter) ([]core.Transaction, error)
	CreateTransaction(ctx context.Context, t *core.Transaction) error
	DeleteTransaction(ctx context.Context, id, userID string) error

	ListBudgets(ctx context.Context, userID string) ([]core.Budget, error)
	CreateBudget(ctx context.Context, b *core.Budget) error
	DeleteBudget(ctx context.Context, id, userID string) error
}

// IsUniqueViolation reports whether err is a postgres unique-constraint
// violation surfaced through the REST layer. The REST error body carries
// the SQLSTATE code as text, so matching is on the message.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDuplicateCategory) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") || strings.Contains(msg, "duplicate key")
}
