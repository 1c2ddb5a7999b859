package valueobject

import (
	"fmt"
	"sync"
	"time"
)

// businessDayLayout is the wire format for business days
const businessDayLayout = "2006-01-02"

var (
	salonLocationOnce sync.Once
	salonLocation     *time.Location
)

// SalonLocation returns the timezone used for day-boundary calculations.
// Cash-register days are salon-local days, not UTC days.
func SalonLocation() *time.Location {
	salonLocationOnce.Do(func() {
		loc, err := time.LoadLocation("Europe/Lisbon")
		if err != nil {
			// tzdata missing on the host; UTC keeps the service usable
			loc = time.UTC
		}
		salonLocation = loc
	})
	return salonLocation
}

// BusinessDay is a calendar day in the salon's local timezone.
// It is the scoping key for cash-register sessions and day-bounded queries.
type BusinessDay struct {
	start time.Time // midnight at the start of the day, salon-local
}

// BusinessDayOf returns the business day containing the given instant
func BusinessDayOf(t time.Time) BusinessDay {
	local := t.In(SalonLocation())
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, SalonLocation())
	return BusinessDay{start: start}
}

// CurrentBusinessDay returns today's business day
func CurrentBusinessDay() BusinessDay {
	return BusinessDayOf(time.Now())
}

// ParseBusinessDay parses a YYYY-MM-DD string into a BusinessDay
func ParseBusinessDay(s string) (BusinessDay, error) {
	t, err := time.ParseInLocation(businessDayLayout, s, SalonLocation())
	if err != nil {
		return BusinessDay{}, fmt.Errorf("invalid business day %q: %w", s, err)
	}
	return BusinessDay{start: t}, nil
}

// Start returns the first instant of the day
func (d BusinessDay) Start() time.Time {
	return d.start
}

// End returns the first instant of the next day (exclusive upper bound)
func (d BusinessDay) End() time.Time {
	return d.start.AddDate(0, 0, 1)
}

// Contains reports whether the instant falls within this business day
func (d BusinessDay) Contains(t time.Time) bool {
	local := t.In(SalonLocation())
	return !local.Before(d.start) && local.Before(d.End())
}

// Equal reports whether two business days are the same calendar day
func (d BusinessDay) Equal(other BusinessDay) bool {
	return d.start.Equal(other.start)
}

// IsZero reports whether the business day is the zero value
func (d BusinessDay) IsZero() bool {
	return d.start.IsZero()
}

// String returns the YYYY-MM-DD representation
func (d BusinessDay) String() string {
	return d.start.Format(businessDayLayout)
}
