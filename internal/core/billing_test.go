package core

import (
	"testing"
	"time"
)

func TestNextPaymentDate(t *testing.T) {
	now := time.Date(2024, 6, 15, 13, 45, 0, 0, time.UTC)

	tests := []struct {
		name    string
		billing Date
		freq    Frequency
		want    time.Time
	}{
		{
			name:    "monthly anchor in the past lands on first of-month date after today",
			billing: NewDate(2024, 1, 1),
			freq:    Monthly,
			want:    time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "monthly anchor today stays put",
			billing: NewDate(2024, 6, 15),
			freq:    Monthly,
			want:    time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "monthly anchor in the future stays put",
			billing: NewDate(2024, 9, 3),
			freq:    Monthly,
			want:    time.Date(2024, 9, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "yearly advances whole years",
			billing: NewDate(2022, 3, 10),
			freq:    Yearly,
			want:    time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "weekly advances in 7 day steps",
			billing: NewDate(2024, 6, 3),
			freq:    Weekly,
			want:    time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "unknown frequency returns the anchor unchanged",
			billing: NewDate(2024, 1, 1),
			freq:    Frequency("daily"),
			want:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextPaymentDate(tt.billing, tt.freq, now)
			if !got.Equal(tt.want) {
				t.Errorf("NextPaymentDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextPaymentDateAbsentBilling(t *testing.T) {
	now := time.Date(2024, 6, 15, 13, 45, 0, 0, time.UTC)
	if got := NextPaymentDate(Date{}, Monthly, now); !got.Equal(now) {
		t.Errorf("absent billing date: got %v, want now (%v)", got, now)
	}
}

// The advanced date must reach today with the fewest whole periods: never
// overshooting more than one period past today.
func TestNextPaymentDateNoOvershoot(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		freq Frequency
		back func(time.Time) time.Time
	}{
		{Weekly, func(t time.Time) time.Time { return t.AddDate(0, 0, -7) }},
		{Monthly, func(t time.Time) time.Time { return t.AddDate(0, -1, 0) }},
		{Yearly, func(t time.Time) time.Time { return t.AddDate(-1, 0, 0) }},
	}
	for _, tc := range cases {
		anchor := NewDate(2021, 2, 27)
		got := NextPaymentDate(anchor, tc.freq, now)
		if got.Before(now) {
			t.Errorf("%s: result %v is before today", tc.freq, got)
		}
		if prev := tc.back(got); !prev.Before(now) {
			t.Errorf("%s: result %v overshoots, previous period %v is still >= today", tc.freq, got, prev)
		}
	}
}

func TestMonthlyEquivalent(t *testing.T) {
	shared := Subscription{
		Price:     Money{Cents: 3000},
		Frequency: Yearly,
		Status:    StatusActive,
		IsShared:  true,
		SharedWith: []SharedPerson{
			{Name: "Ana", Amount: Money{Cents: 1000}},
			{Name: "Luis", Amount: Money{Cents: 500}},
		},
	}

	tests := []struct {
		name string
		sub  Subscription
		want float64
	}{
		{"yearly shared share 15 becomes 1.25", shared, 1.25},
		{
			"weekly uses the 4.33 approximation",
			Subscription{Price: Money{Cents: 1000}, Frequency: Weekly, Status: StatusActive},
			43.30,
		},
		{
			"monthly passes through",
			Subscription{Price: Money{Cents: 1599}, Frequency: Monthly, Status: StatusActive},
			15.99,
		},
		{
			"paused contributes zero",
			Subscription{Price: Money{Cents: 1599}, Frequency: Monthly, Status: StatusPaused},
			0,
		},
		{
			"included contributes zero",
			Subscription{Price: Money{Cents: 1599}, Frequency: Monthly, Status: StatusActive, IsIncluded: true},
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthlyEquivalent(tt.sub)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("MonthlyEquivalent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnnualSavings(t *testing.T) {
	tests := []struct {
		name string
		sub  Subscription
		want int64
	}{
		{
			"monthly 12.00 saves 144.00 a year",
			Subscription{Price: Money{Cents: 1200}, Frequency: Monthly, Status: StatusActive},
			14400,
		},
		{
			"yearly is the share itself",
			Subscription{Price: Money{Cents: 9900}, Frequency: Yearly, Status: StatusActive},
			9900,
		},
		{
			"weekly uses the exact 52",
			Subscription{Price: Money{Cents: 500}, Frequency: Weekly, Status: StatusActive},
			26000,
		},
		{
			"shared subtracts the others' contributions first",
			Subscription{
				Price:     Money{Cents: 3000},
				Frequency: Monthly,
				Status:    StatusActive,
				IsShared:  true,
				SharedWith: []SharedPerson{
					{Name: "Ana", Amount: Money{Cents: 1000}},
					{Name: "Luis", Amount: Money{Cents: 500}},
				},
			},
			18000,
		},
		{
			"unknown frequency saves nothing",
			Subscription{Price: Money{Cents: 1200}, Frequency: Frequency("daily")},
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AnnualSavings(tt.sub); got.Cents != tt.want {
				t.Errorf("AnnualSavings() = %d cents, want %d", got.Cents, tt.want)
			}
		})
	}
}

func TestUserShareNoClamping(t *testing.T) {
	s := Subscription{
		Price:    Money{Cents: 1000},
		IsShared: true,
		SharedWith: []SharedPerson{
			{Name: "Ana", Amount: Money{Cents: 800}},
			{Name: "Luis", Amount: Money{Cents: 700}},
		},
	}
	if got := s.UserShare().Cents; got != -500 {
		t.Errorf("UserShare() = %d, want -500 (misconfigured splits are not clamped)", got)
	}
}
