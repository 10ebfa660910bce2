// Package ledger holds the in-memory subscription ledger backed by a
// key/value store. All mutations persist the full set before committing
// to memory, so a failed write never leaves the two out of sync.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"subtrack/internal/core"
	"subtrack/internal/kv"
)

// StorageKey is the kv key the subscription blob lives under.
const StorageKey = "subscriptions"

// LoadStatus reports how the initial load from storage went. A corrupt or
// unreadable blob degrades to an empty ledger instead of failing Open, so
// callers can surface the condition without losing service.
type LoadStatus int

const (
	LoadOK LoadStatus = iota
	LoadEmpty
	LoadCorrupt
	LoadFailed
)

func (s LoadStatus) String() string {
	switch s {
	case LoadOK:
		return "ok"
	case LoadEmpty:
		return "empty"
	case LoadCorrupt:
		return "corrupt"
	case LoadFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// EventPublisher receives a domain event after a mutation has been
// persisted. Publish failures are logged, never returned to the caller.
type EventPublisher interface {
	PublishSubscriptionEvent(ctx context.Context, event Event) error
}

// Event describes a committed ledger mutation.
type Event struct {
	Action    string    `json:"action"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	ActionAdded   = "added"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Ledger is the single authority over the subscription set.
type Ledger struct {
	mu     sync.Mutex
	store  kv.Store
	events EventPublisher
	logger *slog.Logger
	now    func() time.Time

	subs   []core.Subscription
	status LoadStatus
}

// Option configures a Ledger at Open time.
type Option func(*Ledger)

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithPublisher attaches an event publisher. Without one, mutations
// simply skip publishing.
func WithPublisher(p EventPublisher) Option {
	return func(l *Ledger) { l.events = p }
}

// Open loads the subscription set from the store. Load problems degrade to
// an empty ledger; inspect LoadStatus to tell the cases apart.
func Open(ctx context.Context, store kv.Store, logger *slog.Logger, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	raw, ok, err := store.Get(ctx, StorageKey)
	switch {
	case err != nil:
		l.logger.Error("failed to load subscriptions, starting empty", "error", err)
		l.status = LoadFailed
	case !ok:
		l.status = LoadEmpty
	default:
		var subs []core.Subscription
		if err := json.Unmarshal([]byte(raw), &subs); err != nil {
			l.logger.Error("corrupt subscription blob, starting empty", "error", err)
			l.status = LoadCorrupt
		} else {
			l.subs = subs
			l.status = LoadOK
		}
	}

	return l, nil
}

// LoadStatus reports the outcome of the initial load.
func (l *Ledger) LoadStatus() LoadStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// AddInput carries the caller-supplied fields for a new subscription.
type AddInput struct {
	Name          string
	Price         core.Money
	Currency      string
	Frequency     core.Frequency
	BillingDate   core.Date
	PaymentMethod core.PaymentMethod
	Category      string
	Notes         string
	IsShared      bool
	SharedWith    []core.SharedPerson
	IsIncluded    bool
	IncludedWith  string
}

// Add validates the input, assigns an id, computes the first payment date
// and persists the new record.
func (l *Ledger) Add(ctx context.Context, in AddInput) (core.Subscription, error) {
	now := l.now()

	sub := core.Subscription{
		ID:            uuid.NewString(),
		Name:          in.Name,
		Price:         in.Price,
		Currency:      in.Currency,
		Frequency:     in.Frequency,
		BillingDate:   in.BillingDate,
		PaymentMethod: in.PaymentMethod,
		Category:      in.Category,
		Notes:         in.Notes,
		Status:        core.StatusActive,
		IsShared:      in.IsShared,
		SharedWith:    in.SharedWith,
		IsIncluded:    in.IsIncluded,
		IncludedWith:  in.IncludedWith,
		CreatedAt:     now,
	}
	if sub.Currency == "" {
		sub.Currency = "USD"
	}
	if sub.Category == "" {
		sub.Category = core.DefaultCategory
	}

	if err := sub.Validate(); err != nil {
		return core.Subscription{}, err
	}

	sub.NextPayment = core.DateOf(core.NextPaymentDate(sub.BillingDate, sub.Frequency, now))

	l.mu.Lock()
	defer l.mu.Unlock()

	next := append(append([]core.Subscription(nil), l.subs...), sub)
	if err := l.persist(ctx, next); err != nil {
		return core.Subscription{}, err
	}
	l.subs = next

	l.publish(ctx, Event{Action: ActionAdded, ID: sub.ID, Name: sub.Name, Timestamp: now})
	return sub, nil
}

// UpdatePatch carries partial updates; nil fields are left untouched.
type UpdatePatch struct {
	Name          *string
	Price         *core.Money
	Currency      *string
	Frequency     *core.Frequency
	BillingDate   *core.Date
	PaymentMethod *core.PaymentMethod
	Category      *string
	Notes         *string
	Status        *core.Status
	IsShared      *bool
	SharedWith    *[]core.SharedPerson
	IsIncluded    *bool
	IncludedWith  *string
}

// Update applies the patch to the identified subscription. The next payment
// date is recomputed only when the billing date or frequency changed and the
// record ends up active.
func (l *Ledger) Update(ctx context.Context, id string, patch UpdatePatch) (core.Subscription, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexOf(id)
	if idx < 0 {
		return core.Subscription{}, core.ErrNotFound
	}

	sub := l.subs[idx]
	recompute := false

	if patch.Name != nil {
		sub.Name = *patch.Name
	}
	if patch.Price != nil {
		sub.Price = *patch.Price
	}
	if patch.Currency != nil {
		sub.Currency = *patch.Currency
	}
	if patch.Frequency != nil && *patch.Frequency != sub.Frequency {
		sub.Frequency = *patch.Frequency
		recompute = true
	}
	if patch.BillingDate != nil && !patch.BillingDate.Equal(sub.BillingDate.Time) {
		sub.BillingDate = *patch.BillingDate
		recompute = true
	}
	if patch.PaymentMethod != nil {
		sub.PaymentMethod = *patch.PaymentMethod
	}
	if patch.Category != nil {
		sub.Category = *patch.Category
	}
	if patch.Notes != nil {
		sub.Notes = *patch.Notes
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return core.Subscription{}, core.ErrInvalidStatus
		}
		sub.Status = *patch.Status
	}
	if patch.IsShared != nil {
		sub.IsShared = *patch.IsShared
	}
	if patch.SharedWith != nil {
		sub.SharedWith = *patch.SharedWith
	}
	if patch.IsIncluded != nil {
		sub.IsIncluded = *patch.IsIncluded
	}
	if patch.IncludedWith != nil {
		sub.IncludedWith = *patch.IncludedWith
	}

	if err := sub.Validate(); err != nil {
		return core.Subscription{}, err
	}

	if recompute && sub.Status == core.StatusActive {
		sub.NextPayment = core.DateOf(core.NextPaymentDate(sub.BillingDate, sub.Frequency, now))
	}

	next := append([]core.Subscription(nil), l.subs...)
	next[idx] = sub
	if err := l.persist(ctx, next); err != nil {
		return core.Subscription{}, err
	}
	l.subs = next

	l.publish(ctx, Event{Action: ActionUpdated, ID: sub.ID, Name: sub.Name, Timestamp: now})
	return sub, nil
}

// Delete removes the subscription and reports the yearly amount freed up.
func (l *Ledger) Delete(ctx context.Context, id string) (core.Subscription, core.Money, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexOf(id)
	if idx < 0 {
		return core.Subscription{}, core.Money{}, core.ErrNotFound
	}

	sub := l.subs[idx]
	next := append([]core.Subscription(nil), l.subs[:idx]...)
	next = append(next, l.subs[idx+1:]...)

	if err := l.persist(ctx, next); err != nil {
		return core.Subscription{}, core.Money{}, err
	}
	l.subs = next

	savings := core.AnnualSavings(sub)
	l.publish(ctx, Event{Action: ActionDeleted, ID: sub.ID, Name: sub.Name, Timestamp: now})
	return sub, savings, nil
}

// Get returns a single subscription by id.
func (l *Ledger) Get(id string) (core.Subscription, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexOf(id)
	if idx < 0 {
		return core.Subscription{}, core.ErrNotFound
	}
	return l.subs[idx], nil
}

// List returns a copy of all subscriptions in insertion order.
func (l *Ledger) List() []core.Subscription {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]core.Subscription(nil), l.subs...)
}

// Stats is the aggregate view over the current subscription set.
type Stats struct {
	Count         int                  `json:"count"`
	ActiveCount   int                  `json:"active_count"`
	MonthlyTotal  float64              `json:"monthly_total"`
	YearlyTotal   float64              `json:"yearly_total"`
	MostExpensive *core.Subscription   `json:"most_expensive,omitempty"`
	Oldest        *core.Subscription   `json:"oldest,omitempty"`
	ByCategory    []core.CategoryStat  `json:"by_category"`
	SharedPeople  []core.PersonSummary `json:"shared_people"`
}

// Stats computes the aggregate view in one pass over a snapshot.
func (l *Ledger) Stats() Stats {
	subs := l.List()

	st := Stats{
		Count:        len(subs),
		MonthlyTotal: core.MonthlyNetTotal(subs),
		ByCategory:   core.CategoryBreakdown(subs),
		SharedPeople: core.SharedPeopleSummary(subs),
	}
	st.YearlyTotal = st.MonthlyTotal * 12
	for _, s := range subs {
		if s.Status == core.StatusActive {
			st.ActiveCount++
		}
	}
	if me, ok := core.MostExpensive(subs); ok {
		st.MostExpensive = &me
	}
	if old, ok := core.Oldest(subs); ok {
		st.Oldest = &old
	}
	return st
}

// Upcoming returns active subscriptions due within the window, soonest first.
func (l *Ledger) Upcoming(windowDays int) []core.Subscription {
	return core.UpcomingPayments(l.List(), l.now(), windowDays)
}

// SharedSummary returns the per-person shared cost rollup.
func (l *Ledger) SharedSummary() []core.PersonSummary {
	return core.SharedPeopleSummary(l.List())
}

// Reload re-reads the blob from storage, replacing the in-memory set.
// Used by workers reacting to events from another process.
func (l *Ledger) Reload(ctx context.Context) error {
	raw, ok, err := l.store.Get(ctx, StorageKey)
	if err != nil {
		return fmt.Errorf("reload subscriptions: %w", err)
	}

	var subs []core.Subscription
	if ok {
		if err := json.Unmarshal([]byte(raw), &subs); err != nil {
			return fmt.Errorf("decode subscriptions: %w", err)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.subs = subs
	l.status = LoadOK
	if !ok {
		l.status = LoadEmpty
	}
	return nil
}

func (l *Ledger) indexOf(id string) int {
	for i, s := range l.subs {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// persist writes the full set as one JSON blob. Callers hold the mutex.
func (l *Ledger) persist(ctx context.Context, subs []core.Subscription) error {
	raw, err := json.Marshal(subs)
	if err != nil {
		return fmt.Errorf("encode subscriptions: %w", err)
	}
	if err := l.store.Set(ctx, StorageKey, string(raw)); err != nil {
		return fmt.Errorf("persist subscriptions: %w", err)
	}
	return nil
}

func (l *Ledger) publish(ctx context.Context, event Event) {
	if l.events == nil {
		return
	}
	if err := l.events.PublishSubscriptionEvent(ctx, event); err != nil {
		l.logger.Error("failed to publish subscription event",
			"action", event.Action, "id", event.ID, "error", err)
	}
}
