package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// MonthFormat is the wire format for a calendar year-month, e.g. "2024-03".
const MonthFormat = "2006-01"

// Month is a calendar year-month with no day component. Payments are
// recorded against a Month, and the status engine compares Months only.
type Month struct {
	Year int
	M    time.Month
}

// NewMonth returns a normalized Month (month overflow rolls the year).
func NewMonth(year int, m time.Month) Month {
	t := time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
	return Month{Year: t.Year(), M: t.Month()}
}

// MonthOf returns the Month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), M: t.Month()}
}

// ParseMonth parses a "YYYY-MM" string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(MonthFormat, s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q want format %q: %w", s, MonthFormat, err)
	}
	return MonthOf(t), nil
}

func (m Month) String() string {
	return time.Date(m.Year, m.M, 1, 0, 0, 0, 0, time.UTC).Format(MonthFormat)
}

// IsZero reports whether m is the zero Month.
func (m Month) IsZero() bool { return m.Year == 0 && m.M == 0 }

// index is the absolute month count used for ordering and distance.
func (m Month) index() int { return m.Year*12 + int(m.M) }

// Compare returns -1, 0, or +1 ordering m against x chronologically.
func (m Month) Compare(x Month) int {
	switch {
	case m.index() < x.index():
		return -1
	case m.index() > x.index():
		return 1
	default:
		return 0
	}
}

// Before reports whether m is strictly before x.
func (m Month) Before(x Month) bool { return m.Compare(x) < 0 }

// After reports whether m is strictly after x.
func (m Month) After(x Month) bool { return m.Compare(x) > 0 }

// Add returns the Month n months after m (n may be negative).
func (m Month) Add(n int) Month {
	return NewMonth(m.Year, m.M+time.Month(n))
}

// MonthsBetween returns the number of whole calendar months from a to b.
// It counts month boundaries crossed, not 30-day spans: January 31st to
// February 1st is one month. Negative when b precedes a.
func MonthsBetween(a, b time.Time) int {
	return MonthOf(b).index() - MonthOf(a).index()
}

func (m Month) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Month) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseMonth(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

var (
	_ json.Marshaler   = Month{}
	_ json.Unmarshaler = (*Month)(nil)
)
