package core

import (
	"testing"
	"time"
)

func activeSub(name string, cents int64, freq Frequency) Subscription {
	return Subscription{
		ID:        name,
		Name:      name,
		Price:     Money{Cents: cents},
		Frequency: freq,
		Status:    StatusActive,
	}
}

func TestMonthlyNetTotal(t *testing.T) {
	tests := []struct {
		name string
		subs []Subscription
		want float64
	}{
		{"empty set is zero", nil, 0},
		{
			"all paused is zero",
			[]Subscription{
				{Price: Money{Cents: 1000}, Frequency: Monthly, Status: StatusPaused},
				{Price: Money{Cents: 2000}, Frequency: Yearly, Status: StatusPaused},
			},
			0,
		},
		{
			"all included is zero",
			[]Subscription{
				{Price: Money{Cents: 1000}, Frequency: Monthly, Status: StatusActive, IsIncluded: true},
			},
			0,
		},
		{
			"mixed cadences normalize",
			[]Subscription{
				activeSub("a", 1200, Monthly),
				activeSub("b", 2400, Yearly),
			},
			14,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthlyNetTotal(tt.subs)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("MonthlyNetTotal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUpcomingPayments(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	inWindow := activeSub("due-soon", 100, Monthly)
	inWindow.NextPayment = NewDate(2024, 6, 18)

	edge := activeSub("edge", 100, Monthly)
	edge.NextPayment = NewDate(2024, 6, 22) // today+7, inclusive

	today := activeSub("today", 100, Monthly)
	today.NextPayment = NewDate(2024, 6, 15)

	outside := activeSub("later", 100, Monthly)
	outside.NextPayment = NewDate(2024, 6, 23)

	paused := activeSub("paused", 100, Monthly)
	paused.Status = StatusPaused
	paused.NextPayment = NewDate(2024, 6, 16)

	got := UpcomingPayments([]Subscription{outside, edge, inWindow, paused, today}, now, 7)

	wantOrder := []string{"today", "due-soon", "edge"}
	if len(got) != len(wantOrder) {
		t.Fatalf("got %d payments, want %d", len(got), len(wantOrder))
	}
	for i, name := range wantOrder {
		if got[i].Name != name {
			t.Errorf("position %d: got %q, want %q", i, got[i].Name, name)
		}
	}
}

func TestMostExpensive(t *testing.T) {
	if _, ok := MostExpensive(nil); ok {
		t.Fatal("expected no result for empty set")
	}

	cheap := activeSub("cheap", 500, Monthly)
	pricey := activeSub("pricey", 9900, Yearly) // 8.25/month
	weekly := activeSub("weekly", 300, Weekly)  // 12.99/month
	included := activeSub("bundled", 99900, Monthly)
	included.IsIncluded = true

	got, ok := MostExpensive([]Subscription{cheap, pricey, weekly, included})
	if !ok || got.Name != "weekly" {
		t.Errorf("MostExpensive() = %q ok=%v, want weekly", got.Name, ok)
	}

	// Ties keep the first-encountered entry.
	first := activeSub("first", 1000, Monthly)
	second := activeSub("second", 1000, Monthly)
	got, _ = MostExpensive([]Subscription{first, second})
	if got.Name != "first" {
		t.Errorf("tie-break: got %q, want first", got.Name)
	}
}

func TestOldest(t *testing.T) {
	older := activeSub("older", 100, Monthly)
	older.CreatedAt = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := activeSub("newer", 100, Monthly)
	newer.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	pausedOlder := activeSub("paused", 100, Monthly)
	pausedOlder.Status = StatusPaused
	pausedOlder.CreatedAt = time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

	got, ok := Oldest([]Subscription{newer, older, pausedOlder})
	if !ok || got.Name != "older" {
		t.Errorf("Oldest() = %q ok=%v, want older (paused entries ignored)", got.Name, ok)
	}
}

func TestSharedPeopleSummary(t *testing.T) {
	a := activeSub("netflix", 3000, Monthly)
	a.IsShared = true
	a.SharedWith = []SharedPerson{
		{Name: "Ana", Amount: Money{Cents: 500}},
		{Name: "Luis", Amount: Money{Cents: 300}},
	}
	b := activeSub("spotify", 1500, Monthly)
	b.Status = StatusPaused // status does not matter for this summary
	b.IsShared = true
	b.SharedWith = []SharedPerson{
		{Name: "Ana", Amount: Money{Cents: 700}},
		{Name: "", Amount: Money{Cents: 100}}, // nameless entries are skipped
	}
	notShared := activeSub("solo", 900, Monthly)
	notShared.SharedWith = []SharedPerson{{Name: "Ghost", Amount: Money{Cents: 100}}}

	got := SharedPeopleSummary([]Subscription{a, b, notShared})
	if len(got) != 2 {
		t.Fatalf("got %d people, want 2", len(got))
	}
	if got[0].Name != "Ana" || got[0].Count != 2 || got[0].Total.Cents != 1200 {
		t.Errorf("Ana summary = %+v, want count 2 total 1200", got[0])
	}
	if got[1].Name != "Luis" || got[1].Count != 1 || got[1].Total.Cents != 300 {
		t.Errorf("Luis summary = %+v, want count 1 total 300", got[1])
	}
}

func TestCategoryBreakdown(t *testing.T) {
	a := activeSub("netflix", 1200, Monthly)
	a.Category = "entertainment"
	b := activeSub("spotify", 600, Monthly)
	b.Category = "entertainment"
	c := activeSub("gym", 3000, Monthly)
	c.Category = "health"
	d := activeSub("uncategorized", 100, Monthly)

	got := CategoryBreakdown([]Subscription{a, b, c, d})
	if len(got) != 3 {
		t.Fatalf("got %d categories, want 3", len(got))
	}
	if got[0].Name != "health" {
		t.Errorf("top category = %q, want health", got[0].Name)
	}
	if got[1].Name != "entertainment" || got[1].Count != 2 {
		t.Errorf("entertainment = %+v, want count 2", got[1])
	}
	if got[2].Name != DefaultCategory {
		t.Errorf("missing category should fall back to %q, got %q", DefaultCategory, got[2].Name)
	}
}
