// Package worker reacts to subscription events: it refreshes its view of the
// ledger, reports payments coming due, and mirrors the data to the backup
// spreadsheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"subtrack/internal/amqp"
	"subtrack/internal/core"
	"subtrack/internal/ledger"
)

// Backup mirrors the subscription set somewhere durable.
type Backup interface {
	Sync(ctx context.Context, subs []core.Subscription) error
}

type Notifier struct {
	ledger *ledger.Ledger
	backup Backup // nil disables backup
	window int
}

func NewNotifier(led *ledger.Ledger, backup Backup, windowDays int) *Notifier {
	if windowDays < 1 {
		windowDays = 7
	}
	return &Notifier{
		ledger: led,
		backup: backup,
		window: windowDays,
	}
}

// HandleEvent processes one subscription event: reload the blob, log what is
// due, and mirror to the backup.
func (n *Notifier) HandleEvent(ctx context.Context, msg *amqp.SubscriptionEventMessage) error {
	slog.InfoContext(ctx, "Processing subscription event",
		"action", msg.Action,
		"id", msg.ID,
		"name", msg.Name)

	if err := n.ledger.Reload(ctx); err != nil {
		return fmt.Errorf("reload ledger: %w", err)
	}

	n.reportUpcoming(ctx)

	if n.backup != nil {
		if err := n.backup.Sync(ctx, n.ledger.List()); err != nil {
			return fmt.Errorf("backup sync: %w", err)
		}
	}

	return nil
}

// reportUpcoming logs payments due inside the window.
func (n *Notifier) reportUpcoming(ctx context.Context) {
	due := n.ledger.Upcoming(n.window)
	if len(due) == 0 {
		return
	}

	for _, sub := range due {
		slog.InfoContext(ctx, "Payment due soon",
			"name", sub.Name,
			"amount", sub.Price.String(),
			"currency", sub.Currency,
			"due", sub.NextPayment.String())
	}
}

// RunPeriodicBackup mirrors the set on a fixed interval until the context
// ends. Sync failures are logged and retried on the next tick.
func (n *Notifier) RunPeriodicBackup(ctx context.Context, interval time.Duration) error {
	if n.backup == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := n.ledger.Reload(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic reload failed", "error", err)
				continue
			}
			if err := n.backup.Sync(ctx, n.ledger.List()); err != nil {
				slog.ErrorContext(ctx, "Periodic backup failed", "error", err)
				continue
			}
			slog.InfoContext(ctx, "Periodic backup completed", "count", len(n.ledger.List()))
		}
	}
}
