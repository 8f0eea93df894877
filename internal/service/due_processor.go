package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"subtrack/internal/billing"
	"subtrack/internal/core"
	"subtrack/internal/realtime"
	"subtrack/internal/store"
)

// DueProcessor advances subscriptions whose next payment date has passed:
// the date rolls forward to the next occurrence of the billing day, the
// record is updated and an update event is published. Run periodically by
// the billing worker.
type DueProcessor struct {
	repo   store.Repository
	events *realtime.Channel
	now    func() time.Time
}

func NewDueProcessor(repo store.Repository, events *realtime.Channel) *DueProcessor {
	return &DueProcessor{
		repo:   repo,
		events: events,
		now:    time.Now,
	}
}

// WithClock overrides the reference clock, for tests.
func (p *DueProcessor) WithClock(now func() time.Time) *DueProcessor {
	p.now = now
	return p
}

// ProcessDue rolls every due subscription forward and returns how many were
// advanced. Individual failures are logged and skipped; one bad record must
// not stall the sweep.
func (p *DueProcessor) ProcessDue(ctx context.Context) (int, error) {
	now := p.now()
	today := now.Format(core.DateFormat)

	due, err := p.repo.ListDueSubscriptions(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("list due subscriptions: %w", err)
	}

	slog.InfoContext(ctx, "Processing due subscriptions",
		"total_due", len(due),
		"processing_date", today)

	advanced := 0
	for _, sub := range due {
		if sub.NextPaymentDate == "" {
			continue
		}
		billingDay := billing.DayOf(sub.NextPaymentDate, now)
		billingMonth := billing.MonthOf(sub.NextPaymentDate, now)
		next := billing.NextPaymentDate(billingDay, billingMonth, sub.BillingCycle, now)
		if next == sub.NextPaymentDate {
			continue
		}

		sub.NextPaymentDate = next
		if err := p.repo.UpdateSubscription(ctx, &sub); err != nil {
			slog.ErrorContext(ctx, "Failed to advance subscription",
				"id", sub.ID,
				"name", sub.Name,
				"error", err)
			continue
		}

		if p.events != nil {
			ev, err := realtime.NewChangeEvent("subscriptions", realtime.ChangeUpdate, sub.UserID, sub)
			if err == nil {
				if err := p.events.Publish(ctx, ev); err != nil {
					slog.ErrorContext(ctx, "Failed to publish advance event",
						"id", sub.ID, "error", err)
				}
			}
		}

		advanced++
		slog.InfoContext(ctx, "Advanced subscription billing date",
			"id", sub.ID,
			"name", sub.Name,
			"next_payment_date", next,
			"billing_cycle", sub.BillingCycle)
	}

	slog.InfoContext(ctx, "Due subscription processing complete",
		"advanced", advanced,
		"total_checked", len(due))
	return advanced, nil
}
