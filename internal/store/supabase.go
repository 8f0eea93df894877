package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/supabase-community/supabase-go"

	"subtrack/internal/core"
)

const (
	tableSubscriptions = "subscriptions"
	tableTransactions  = "transactions"
	tableBudgets       = "budgets"
)

// SupabaseRepository implements Repository over the hosted postgrest API.
type SupabaseRepository struct {
	client *supabase.Client
}

func NewSupabaseRepository(url, key string) (*SupabaseRepository, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &SupabaseRepository{client: client}, nil
}

func (r *SupabaseRepository) ListSubscriptions(ctx context.Context, userID string) ([]core.Subscription, error) {
	data, _, err := r.client.From(tableSubscriptions).
		Select("*", "", false).
		Eq("user_id", userID).
		Order("created_at.desc", nil).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	var subs []core.Subscription
	if err := json.Unmarshal(data, &subs); err != nil {
		return nil, fmt.Errorf("parse subscriptions: %w", err)
	}
	return subs, nil
}

func (r *SupabaseRepository) CreateSubscription(ctx context.Context, sub *core.Subscription) error {
	data, _, err := r.client.From(tableSubscriptions).
		Insert(sub, false, "", "representation", "").
		Execute()
	if err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}
	return adoptCreated(data, func(created core.Subscription) {
		sub.ID = created.ID
		sub.CreatedAt = created.CreatedAt
	})
}

func (r *SupabaseRepository) UpdateSubscription(ctx context.Context, sub *core.Subscription) error {
	_, _, err := r.client.From(tableSubscriptions).
		Update(sub, "", "").
		Eq("id", sub.ID).
		Eq("user_id", sub.UserID).
		Execute()
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	return nil
}

func (r *SupabaseRepository) DeleteSubscription(ctx context.Context, id, userID string) error {
	_, _, err := r.client.From(tableSubscriptions).
		Delete("", "").
		Eq("id", id).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	return nil
}

func (r *SupabaseRepository) ListDueSubscriptions(ctx context.Context, onOrBefore string) ([]core.Subscription, error) {
	data, _, err := r.client.From(tableSubscriptions).
		Select("*", "", false).
		Lte("next_payment_date", onOrBefore).
		Order("next_payment_date.asc", nil).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("list due subscriptions: %w", err)
	}
	var subs []core.Subscription
	if err := json.Unmarshal(data, &subs); err != nil {
		return nil, fmt.Errorf("parse due subscriptions: %w", err)
	}
	return subs, nil
}

func (r *SupabaseRepository) ListTransactions(ctx context.Context, userID string, filter TransactionFilter) ([]core.Transaction, error) {
	query := r.client.From(tableTransactions).
		Select("*", "", false).
		Eq("user_id", userID)
	if filter.StartDate != nil {
		query = query.Gte("date", filter.StartDate.Format(core.DateFormat))
	}
	if filter.EndDate != nil {
		query = query.Lte("date", filter.EndDate.Format(core.DateFormat))
	}
	if filter.Type != "" {
		query = query.Eq("type", string(filter.Type))
	}
	query = query.Order("date.desc", nil)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit, "")
	}

	data, count, err := query.Execute()
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	slog.DebugContext(ctx, "Fetched transactions", "user_id", userID, "count", count)

	var txs []core.Transaction
	if err := json.Unmarshal(data, &txs); err != nil {
		return nil, fmt.Errorf("parse transactions: %w", err)
	}
	return txs, nil
}

func (r *SupabaseRepository) CreateTransaction(ctx context.Context, t *core.Transaction) error {
	data, _, err := r.client.From(tableTransactions).
		Insert(t, false, "", "representation", "").
		Execute()
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return adoptCreated(data, func(created core.Transaction) {
		t.ID = created.ID
		t.CreatedAt = created.CreatedAt
	})
}

func (r *SupabaseRepository) DeleteTransaction(ctx context.Context, id, userID string) error {
	_, _, err := r.client.From(tableTransactions).
		Delete("", "").
		Eq("id", id).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

func (r *SupabaseRepository) ListBudgets(ctx context.Context, userID string) ([]core.Budget, error) {
	data, _, err := r.client.From(tableBudgets).
		Select("*", "", false).
		Eq("user_id", userID).
		Order("category.asc", nil).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	var budgets []core.Budget
	if err := json.Unmarshal(data, &budgets); err != nil {
		return nil, fmt.Errorf("parse budgets: %w", err)
	}
	return budgets, nil
}

func (r *SupabaseRepository) CreateBudget(ctx context.Context, b *core.Budget) error {
	data, _, err := r.client.From(tableBudgets).
		Insert(b, false, "", "representation", "").
		Execute()
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("create budget: %w", ErrDuplicateCategory)
		}
		return fmt.Errorf("create budget: %w", err)
	}
	return adoptCreated(data, func(created core.Budget) {
		b.ID = created.ID
		b.CreatedAt = created.CreatedAt
	})
}

func (r *SupabaseRepository) DeleteBudget(ctx context.Context, id, userID string) error {
	_, _, err := r.client.From(tableBudgets).
		Delete("", "").
		Eq("id", id).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return nil
}

// adoptCreated copies the server-assigned fields from an insert response
// back onto the caller's record.
func adoptCreated[T any](data []byte, adopt func(T)) error {
	var created []T
	if err := json.Unmarshal(data, &created); err != nil {
		return fmt.Errorf("parse created record: %w", err)
	}
	if len(created) > 0 {
		adopt(created[0])
	}
	return nil
}
