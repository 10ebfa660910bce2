package core

import (
	"sort"
	"time"
)

// PersonSummary aggregates one person's participation across all shared
// subscriptions, regardless of subscription status.
type PersonSummary struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Total Money  `json:"total_amount"`
}

// CategoryStat is the monthly-equivalent spend grouped by category.
type CategoryStat struct {
	Name         string  `json:"name"`
	Count        int     `json:"count"`
	MonthlyTotal float64 `json:"monthly_total"`
}

// MonthlyNetTotal sums the monthly-equivalent owner share over all active,
// non-included subscriptions.
func MonthlyNetTotal(subs []Subscription) float64 {
	var total float64
	for _, s := range subs {
		total += MonthlyEquivalent(s)
	}
	return total
}

// UpcomingPayments returns the active subscriptions whose next payment falls
// within [today, today+windowDays], both ends inclusive, sorted by next
// payment ascending. Paused subscriptions are excluded even when their stored
// date lands inside the window.
func UpcomingPayments(subs []Subscription, now time.Time, windowDays int) []Subscription {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := today.AddDate(0, 0, windowDays)

	var due []Subscription
	for _, s := range subs {
		if s.Status != StatusActive || s.NextPayment.IsZero() {
			continue
		}
		np := s.NextPayment.Time
		if !np.Before(today) && !np.After(end) {
			due = append(due, s)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].NextPayment.Before(due[j].NextPayment.Time)
	})
	return due
}

// MostExpensive returns the active, non-included subscription with the
// highest monthly-equivalent share. Ties keep the earliest entry. The second
// return is false when nothing qualifies.
func MostExpensive(subs []Subscription) (Subscription, bool) {
	var best Subscription
	found := false
	for _, s := range subs {
		if s.Status != StatusActive || s.IsIncluded {
			continue
		}
		if !found || MonthlyEquivalent(s) > MonthlyEquivalent(best) {
			best = s
			found = true
		}
	}
	return best, found
}

// Oldest returns the active subscription with the earliest creation time,
// ties keeping the earliest entry.
func Oldest(subs []Subscription) (Subscription, bool) {
	var oldest Subscription
	found := false
	for _, s := range subs {
		if s.Status != StatusActive {
			continue
		}
		if !found || s.CreatedAt.Before(oldest.CreatedAt) {
			oldest = s
			found = true
		}
	}
	return oldest, found
}

// SharedPeopleSummary groups the shared-with entries of every subscription by
// person name, counting subscriptions and summing contributed amounts. The
// result is sorted by count descending, then total descending; entries with
// equal keys keep first-seen order.
func SharedPeopleSummary(subs []Subscription) []PersonSummary {
	index := make(map[string]int)
	var out []PersonSummary
	for _, s := range subs {
		if !s.IsShared {
			continue
		}
		for _, p := range s.SharedWith {
			if p.Name == "" {
				continue
			}
			i, ok := index[p.Name]
			if !ok {
				i = len(out)
				index[p.Name] = i
				out = append(out, PersonSummary{Name: p.Name})
			}
			out[i].Count++
			out[i].Total.Cents += p.Amount.Cents
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Total.Cents > out[j].Total.Cents
	})
	return out
}

// CategoryBreakdown groups active, non-included subscriptions by category
// with their monthly-equivalent totals, sorted by total descending.
func CategoryBreakdown(subs []Subscription) []CategoryStat {
	index := make(map[string]int)
	var out []CategoryStat
	for _, s := range subs {
		if s.Status != StatusActive || s.IsIncluded {
			continue
		}
		name := s.Category
		if name == "" {
			name = DefaultCategory
		}
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, CategoryStat{Name: name})
		}
		out[i].Count++
		out[i].MonthlyTotal += MonthlyEquivalent(s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MonthlyTotal > out[j].MonthlyTotal
	})
	return out
}
