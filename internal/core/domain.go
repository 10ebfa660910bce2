package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

const (
	CreditCard   PaymentMethod = "credit_card"
	DebitCard    PaymentMethod = "debit_card"
	PayPal       PaymentMethod = "paypal"
	BankTransfer PaymentMethod = "bank_transfer"
	Cash         PaymentMethod = "cash"
)

const (
	StatusActive Status = "active"
	StatusPaused Status = "paused"
)

// DefaultCategory is assigned when a subscription is created without one.
const DefaultCategory = "general"

type (
	Frequency     string
	PaymentMethod string
	Status        string

	Date struct {
		time.Time
	}

	// SharedPerson is one participant in a shared subscription. Amount is
	// the portion that person pays, not the owner's share.
	SharedPerson struct {
		PersonID string `json:"person_id"`
		Name     string `json:"name"`
		Amount   Money  `json:"amount"`
	}

	// Subscription is a single recurring service tracked by the ledger.
	Subscription struct {
		ID            string         `json:"id"`
		Name          string         `json:"name"`
		Price         Money          `json:"price"`
		Currency      string         `json:"currency"`
		Frequency     Frequency      `json:"frequency"`
		BillingDate   Date           `json:"billing_date"`
		NextPayment   Date           `json:"next_payment"`
		PaymentMethod PaymentMethod  `json:"payment_method"`
		Category      string         `json:"category"`
		Notes         string         `json:"notes,omitempty"`
		Status        Status         `json:"status"`
		IsShared      bool           `json:"is_shared"`
		SharedWith    []SharedPerson `json:"shared_with,omitempty"`
		IsIncluded    bool           `json:"is_included"`
		IncludedWith  string         `json:"included_with,omitempty"`
		CreatedAt     time.Time      `json:"created_at"`
	}
)

var (
	ErrNotFound         = errors.New("subscription not found")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrInvalidMethod    = errors.New("invalid payment method")
	ErrInvalidStatus    = errors.New("invalid status")
)

func (f Frequency) Valid() bool {
	switch f {
	case Weekly, Monthly, Yearly:
		return true
	default:
		return false
	}
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case CreditCard, DebitCard, PayPal, BankTransfer, Cash:
		return true
	default:
		return false
	}
}

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusPaused
}

// NewDate creates a Date at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day at UTC midnight.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a calendar date in 2006-01-02 form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// MarshalJSON encodes the date as "2006-01-02", or null when zero.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	// Tolerate full timestamps from older blobs.
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return nil
		}
	}
	return ErrInvalidDate
}

// UserShare is the owner's portion of the price after subtracting what the
// shared participants pay. It is not clamped: a misconfigured split where the
// others pay more than the price yields a negative share.
func (s Subscription) UserShare() Money {
	share := s.Price
	if s.IsShared {
		for _, p := range s.SharedWith {
			share.Cents -= p.Amount.Cents
		}
	}
	return share
}

// Validate checks the fields required at the service boundary. The ledger
// itself accepts whatever it is handed; rejection happens here.
func (s Subscription) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if s.Price.Cents < 0 {
		return ErrInvalidAmount
	}
	if s.BillingDate.IsZero() {
		return ErrInvalidDate
	}
	if !s.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if s.PaymentMethod != "" && !s.PaymentMethod.Valid() {
		return ErrInvalidMethod
	}
	return nil
}
