package types

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const DayLayout = "2006-01-02"

// Millimetres is a rain amount. It scans from numeric and REAL columns and
// marshals to a bare JSON number.
type Millimetres struct {
	decimal.Decimal
}

func MM(s string) Millimetres {
	return Millimetres{decimal.RequireFromString(s)}
}

func (m *Millimetres) Scan(src any) error {
	if err := m.Decimal.Scan(src); err != nil {
		return fmt.Errorf("scan rain: %w", err)
	}
	return nil
}

func (m Millimetres) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

func (m *Millimetres) UnmarshalJSON(b []byte) error {
	return m.Decimal.UnmarshalJSON(b)
}

// Metres is a nullable station height.
type Metres struct {
	decimal.NullDecimal
}

func M(s string) Metres {
	return Metres{decimal.NewNullDecimal(decimal.RequireFromString(s))}
}

func (m *Metres) Scan(src any) error {
	if err := m.NullDecimal.Scan(src); err != nil {
		return fmt.Errorf("scan height: %w", err)
	}
	return nil
}

func (m Metres) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return []byte(m.Decimal.String()), nil
}

func (m *Metres) UnmarshalJSON(b []byte) error {
	return m.NullDecimal.UnmarshalJSON(b)
}

// Day is a calendar date without time zone, serialized as YYYY-MM-DD.
type Day struct {
	t time.Time
}

func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return Day{}, err
	}
	return Day{t: t}, nil
}

// DayOf returns the calendar date of t in t's location.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Day) AddDays(n int) Day {
	return Day{t: d.t.AddDate(0, 0, n)}
}

func (d Day) Time() time.Time { return d.t }

func (d Day) IsZero() bool { return d.t.IsZero() }

func (d Day) Before(o Day) bool { return d.t.Before(o.t) }

func (d Day) String() string {
	return d.t.Format(DayLayout)
}

// Value binds the day as an ISO date string, which both Postgres DATE and
// SQLite TEXT columns compare correctly.
func (d Day) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *Day) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = DayOf(v)
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	case nil:
		*d = Day{}
		return nil
	default:
		return fmt.Errorf("scan day: unsupported type %T", src)
	}
}

func (d *Day) parse(s string) error {
	s = strings.TrimSpace(s)
	if len(s) > len(DayLayout) {
		s = s[:len(DayLayout)]
	}
	parsed, err := ParseDay(s)
	if err != nil {
		return fmt.Errorf("scan day %q: %w", s, err)
	}
	*d = parsed
	return nil
}

func (d Day) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Day) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
