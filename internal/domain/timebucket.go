package domain

import (
	"fmt"
	"time"
)

// DayKeyLayout is the canonical calendar-day format.
const DayKeyLayout = "2006-01-02"

// DefaultTimezone is used whenever a caller supplies no zone or an unknown one.
const DefaultTimezone = "UTC"

// ResolveLocation loads an IANA zone, falling back to UTC.
// never fails, so bucketing stays total for malformed profile data.
func ResolveLocation(tz string) *time.Location {
	if tz == "" || tz == "Local" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DayKey returns the calendar day of t in the given zone as YYYY-MM-DD.
func DayKey(t time.Time, tz string) string {
	return DayKeyIn(t, ResolveLocation(tz))
}

// DayKeyIn is DayKey for an already resolved location.
func DayKeyIn(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DayKeyLayout)
}

// ParseDayKey parses a YYYY-MM-DD key into midnight UTC of that date.
// day arithmetic is done in UTC so DST transitions never skip or repeat a day.
func ParseDayKey(key string) (time.Time, error) {
	t, err := time.Parse(DayKeyLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDayKey, key)
	}
	return t, nil
}

// AddDays shifts a day key by n calendar days.
// an unparsable key is returned unchanged.
func AddDays(key string, n int) string {
	t, err := ParseDayKey(key)
	if err != nil {
		return key
	}
	return t.AddDate(0, 0, n).Format(DayKeyLayout)
}

// DaysBetween returns the number of calendar days from a to b (b - a).
func DaysBetween(a, b string) int {
	ta, errA := ParseDayKey(a)
	tb, errB := ParseDayKey(b)
	if errA != nil || errB != nil {
		return 0
	}
	return int(tb.Sub(ta).Hours() / 24)
}

// DateWindow is an inclusive range of calendar days, expressed as day keys.
type DateWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// NewDateWindow validates and builds an inclusive window.
func NewDateWindow(start, end string) (DateWindow, error) {
	ts, err := ParseDayKey(start)
	if err != nil {
		return DateWindow{}, err
	}
	te, err := ParseDayKey(end)
	if err != nil {
		return DateWindow{}, err
	}
	if te.Before(ts) {
		return DateWindow{}, fmt.Errorf("%w: end %s before start %s", ErrInvalidWindow, end, start)
	}
	return DateWindow{Start: start, End: end}, nil
}

// WindowEndingOn returns the window of the given length whose last day is end.
// days below 1 are treated as 1.
func WindowEndingOn(end string, days int) DateWindow {
	if days < 1 {
		days = 1
	}
	return DateWindow{Start: AddDays(end, -(days - 1)), End: end}
}

// MonthWindow returns the window covering every day of the given month.
func MonthWindow(year int, month time.Month) DateWindow {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return DateWindow{Start: first.Format(DayKeyLayout), End: last.Format(DayKeyLayout)}
}

// Len returns the number of days in the window, inclusive.
func (w DateWindow) Len() int {
	n := DaysBetween(w.Start, w.End) + 1
	if n < 0 {
		return 0
	}
	return n
}

// Contains reports whether key falls inside the window.
// day keys sort lexicographically in calendar order.
func (w DateWindow) Contains(key string) bool {
	return key >= w.Start && key <= w.End
}

// Days lists every day key of the window in ascending order.
func (w DateWindow) Days() []string {
	n := w.Len()
	days := make([]string, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, AddDays(w.Start, i))
	}
	return days
}

// Previous returns the window of equal length immediately before w.
func (w DateWindow) Previous() DateWindow {
	return WindowEndingOn(AddDays(w.Start, -1), w.Len())
}

// Overlaps reports whether two windows share at least one day.
func (w DateWindow) Overlaps(other DateWindow) bool {
	return w.Start <= other.End && other.Start <= w.End
}

// UTCBounds returns the instant range that can contain entries for this
// window in loc: [start-of-first-day, start-of-day-after-last) in loc, as UTC.
func (w DateWindow) UTCBounds(loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	start, _ := ParseDayKey(w.Start)
	end, _ := ParseDayKey(w.End)
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	to := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	return from.UTC(), to.UTC()
}
