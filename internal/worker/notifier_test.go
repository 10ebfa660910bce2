package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"subtrack/internal/amqp"
	"subtrack/internal/core"
	"subtrack/internal/kv"
	"subtrack/internal/ledger"
)

type captureBackup struct {
	synced [][]core.Subscription
	err    error
}

func (b *captureBackup) Sync(_ context.Context, subs []core.Subscription) error {
	if b.err != nil {
		return b.err
	}
	b.synced = append(b.synced, subs)
	return nil
}

func newTestLedger(t *testing.T, store kv.Store) *ledger.Ledger {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	l, err := ledger.Open(context.Background(), store, logger)
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	return l
}

func TestHandleEventReloadsAndBacksUp(t *testing.T) {
	store := kv.NewMemory()
	l := newTestLedger(t, store)
	backup := &captureBackup{}
	n := NewNotifier(l, backup, 7)
	ctx := context.Background()

	// Another process wrote a new blob; the event tells us to pick it up.
	blob, _ := json.Marshal([]core.Subscription{{ID: "1", Name: "Netflix", Status: core.StatusActive}})
	store.Set(ctx, ledger.StorageKey, string(blob))

	msg := &amqp.SubscriptionEventMessage{Action: "added", ID: "1", Name: "Netflix", Timestamp: time.Now()}
	if err := n.HandleEvent(ctx, msg); err != nil {
		t.Fatalf("handle event: %v", err)
	}

	if len(l.List()) != 1 {
		t.Error("ledger not reloaded")
	}
	if len(backup.synced) != 1 || len(backup.synced[0]) != 1 {
		t.Fatalf("backup synced %d times, want 1 with 1 record", len(backup.synced))
	}
}

func TestHandleEventWithoutBackup(t *testing.T) {
	store := kv.NewMemory()
	l := newTestLedger(t, store)
	n := NewNotifier(l, nil, 7)

	msg := &amqp.SubscriptionEventMessage{Action: "deleted", ID: "x", Name: "Old"}
	if err := n.HandleEvent(context.Background(), msg); err != nil {
		t.Fatalf("handle event: %v", err)
	}
}

func TestHandleEventBackupFailure(t *testing.T) {
	store := kv.NewMemory()
	l := newTestLedger(t, store)
	backup := &captureBackup{err: errors.New("quota exceeded")}
	n := NewNotifier(l, backup, 7)

	msg := &amqp.SubscriptionEventMessage{Action: "updated", ID: "1", Name: "X"}
	if err := n.HandleEvent(context.Background(), msg); err == nil {
		t.Fatal("expected backup error so the message gets requeued")
	}
}

func TestRunPeriodicBackupStopsOnContext(t *testing.T) {
	store := kv.NewMemory()
	l := newTestLedger(t, store)
	n := NewNotifier(l, &captureBackup{}, 7)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := n.RunPeriodicBackup(ctx, 10*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}
