package chrono

import (
	"fmt"
	"time"
)

// TimeAPI is the interface that anything depending on the system clock should use.
type TimeAPI interface {
	// Now returns the current time in UTC.
	Now() time.Time
}

// StandardTime is the standard implementation of TimeAPI using the standard library.
type StandardTime struct{}

// NewStandardTime is the constructor of StandardTime.
func NewStandardTime() StandardTime {
	return StandardTime{}
}

func (StandardTime) Now() time.Time {
	return time.Now().UTC()
}

// Date is a calendar day formatted as YYYY-MM-DD, the zero padding makes
// lexicographic comparison identical to chronological comparison.
type Date string

const dateLayout = time.DateOnly

// DateOf returns the UTC calendar day of t.
func DateOf(t time.Time) Date {
	return Date(t.UTC().Format(dateLayout))
}

// Today returns the current UTC calendar day according to clock.
func Today(clock TimeAPI) Date {
	return DateOf(clock.Now())
}

func ParseDate(value string) (Date, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return "", fmt.Errorf("parse date %q: %w", value, err)
	}
	return DateOf(t), nil
}

func (d Date) Time() time.Time {
	t, err := time.Parse(dateLayout, string(d))
	if err != nil {
		panic(fmt.Sprintf("malformed date %q", string(d)))
	}
	return t
}

// AddDays returns the date n days after d, n may be negative.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

func (d Date) Before(other Date) bool {
	return d < other
}

func (d Date) After(other Date) bool {
	return d > other
}

func (d Date) String() string {
	return string(d)
}
