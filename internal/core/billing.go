package core

import "time"

const (
	monthsPerYear = 12
	weeksPerYear  = 52
	// weeksPerMonth is the average-weeks approximation used for the monthly
	// normalization. The annual-savings figure uses the exact 52 instead;
	// the two constants are intentionally kept separate.
	weeksPerMonth = 4.33
)

// NextPaymentDate advances billing by whole periods until it reaches today
// (now with the time of day zeroed) or later. An absent billing date yields
// now unchanged; an unrecognized frequency returns the anchor as-is rather
// than failing.
func NextPaymentDate(billing Date, freq Frequency, now time.Time) time.Time {
	if billing.IsZero() {
		return now
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	date := billing.Time
	for date.Before(today) {
		switch freq {
		case Monthly:
			date = date.AddDate(0, 1, 0)
		case Yearly:
			date = date.AddDate(1, 0, 0)
		case Weekly:
			date = date.AddDate(0, 0, 7)
		default:
			return date
		}
	}
	return date
}

// MonthlyEquivalent normalizes the owner's share to a monthly figure so that
// subscriptions with different cadences compare. Paused and included
// subscriptions contribute nothing.
func MonthlyEquivalent(s Subscription) float64 {
	if s.Status != StatusActive || s.IsIncluded {
		return 0
	}
	share := s.UserShare().Amount()
	switch s.Frequency {
	case Yearly:
		return share / monthsPerYear
	case Weekly:
		return share * weeksPerMonth
	default:
		return share
	}
}

// AnnualSavings estimates what dropping the subscription saves per year:
// the owner's share scaled to a full year of payments.
func AnnualSavings(s Subscription) Money {
	share := s.UserShare()
	switch s.Frequency {
	case Monthly:
		return Money{Cents: share.Cents * monthsPerYear}
	case Yearly:
		return share
	case Weekly:
		return Money{Cents: share.Cents * weeksPerYear}
	default:
		return Money{}
	}
}
