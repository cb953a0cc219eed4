package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Monthly    PaymentFrequency = "monthly"
	Quarterly  PaymentFrequency = "quarterly"
	Semiannual PaymentFrequency = "semiannual"
	Annual     PaymentFrequency = "annual"
)

const (
	StatusUpToDate PaymentStatus = "up_to_date"
	StatusOverdue  PaymentStatus = "overdue"
)

type (
	// PaymentFrequency is how often a tenant's rent falls due. Only the
	// monthly schedule is evaluated by the status engine today; the other
	// values are accepted and stored but not interpreted.
	PaymentFrequency string

	// PaymentStatus is the derived rent state for a tenant.
	PaymentStatus string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	House struct {
		ID        int64
		Name      string
		Address   string
		CreatedAt time.Time
	}

	Room struct {
		ID      int64
		HouseID int64
		Name    string
		Type    string // free-text category, optional
	}

	Tenant struct {
		ID        int64
		HouseID   int64
		RoomID    int64
		FirstName string
		LastName  string
		Phone     string
		Email     string // optional
		EntryDate Date
		Frequency PaymentFrequency
		Rent      Money
	}

	Payment struct {
		ID       int64
		TenantID int64
		Month    Month
		Amount   Money
		PaidAt   time.Time
		Notes    string
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidFrequency = errors.New("invalid payment frequency")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyAddress     = errors.New("empty address")
	ErrEmptyPhone       = errors.New("empty phone")
	ErrInvalidHouse     = errors.New("missing house reference")
	ErrInvalidRoom      = errors.New("missing room reference")
	ErrInvalidTenant    = errors.New("missing tenant reference")
)

// NewDate creates a Date from year, month, day at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO "YYYY-MM-DD" date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) String() string { return d.Format("2006-01-02") }

// Month returns the calendar year-month containing d.
func (d Date) Month() Month { return MonthOf(d.Time) }

func (f PaymentFrequency) Validate() error {
	switch f {
	case Monthly, Quarterly, Semiannual, Annual:
		return nil
	default:
		return ErrInvalidFrequency
	}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (h House) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(h.Address) == "" {
		return ErrEmptyAddress
	}
	return nil
}

func (r Room) Validate() error {
	if r.HouseID == 0 {
		return ErrInvalidHouse
	}
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (t Tenant) Validate() error {
	if t.HouseID == 0 {
		return ErrInvalidHouse
	}
	if t.RoomID == 0 {
		return ErrInvalidRoom
	}
	if strings.TrimSpace(t.FirstName) == "" || strings.TrimSpace(t.LastName) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(t.Phone) == "" {
		return ErrEmptyPhone
	}
	if err := t.EntryDate.Validate(); err != nil {
		return err
	}
	if err := t.Frequency.Validate(); err != nil {
		return err
	}
	return t.Rent.Validate()
}

// EntryMonth is the month the tenancy starts. Tenants whose entry month is
// the current month or later are never flagged overdue.
func (t Tenant) EntryMonth() Month { return t.EntryDate.Month() }

// FullName joins first and last name for display and export.
func (t Tenant) FullName() string { return t.FirstName + " " + t.LastName }

func (p Payment) Validate() error {
	if p.TenantID == 0 {
		return ErrInvalidTenant
	}
	if p.Month.IsZero() {
		return ErrInvalidDate
	}
	// Zero amounts are tolerated on historical rows; negatives never are.
	if p.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}
