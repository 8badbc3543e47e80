// Package calendar models date-only values and the clock that decides which
// calendar day "today" is.
package calendar

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// DateLayout is the ISO layout used for every date key.
const DateLayout = "2006-01-02"

// Date is a calendar day without a time-of-day or zone. It is stored as a
// Postgres DATE and serialised as "YYYY-MM-DD".
type Date struct {
	t time.Time
}

// NewDate returns the date for the given components. Out-of-range values are
// normalised the same way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateFromTime takes the year, month and day of t in t's own location.
func DateFromTime(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateFromTime(t), nil
}

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time { return d.t }

func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

func (d Date) Equal(o Date) bool  { return d.t.Equal(o.t) }
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool  { return d.t.After(o.t) }

// DaysSince returns the number of whole days from o to d.
func (d Date) DaysSince(o Date) int {
	return int(d.t.Sub(o.t).Hours() / 24)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*d = Date{}
		return nil
	}
	// Accept full timestamps too; only the date part is kept.
	raw := *s
	if len(raw) > len(DateLayout) {
		raw = raw[:len(DateLayout)]
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// GormDataType maps the type to a DATE column.
func (Date) GormDataType() string { return "date" }

func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = Date{}
	case time.Time:
		*d = DateFromTime(v)
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("calendar: cannot scan %T into Date", value)
	}
	return nil
}

func (d *Date) scanString(s string) error {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Clock resolves wall-clock instants to calendar days in a fixed location.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock returns a clock for loc. A nil loc means time.Local.
func NewClock(loc *time.Location) *Clock {
	if loc == nil {
		loc = time.Local
	}
	return &Clock{loc: loc, now: time.Now}
}

// FixedClock returns a clock frozen at now, for tests and replays.
func FixedClock(now time.Time, loc *time.Location) *Clock {
	c := NewClock(loc)
	c.now = func() time.Time { return now }
	return c
}

// LoadLocation understands "Local", "UTC" and IANA zone names.
func LoadLocation(name string) (*time.Location, error) {
	switch strings.TrimSpace(name) {
	case "", "Local", "local":
		return time.Local, nil
	case "UTC", "utc":
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

func (c *Clock) Location() *time.Location { return c.loc }

func (c *Clock) Now() time.Time { return c.now().In(c.loc) }

// Today is the calendar day of the current instant at the clock's location.
func (c *Clock) Today() Date { return c.DateOf(c.now()) }

// DateOf is the calendar day of t at the clock's location.
func (c *Clock) DateOf(t time.Time) Date { return DateFromTime(t.In(c.loc)) }

func (c *Clock) IsToday(d Date) bool { return d.Equal(c.Today()) }

// StartOf returns the instant the day begins at the clock's location.
func (c *Clock) StartOf(d Date) time.Time {
	y, m, day := d.t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, c.loc)
}
