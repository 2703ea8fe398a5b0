// Package series normalizes raw metric samples into one-point-per-day series.
// All calendar arithmetic is done in UTC.
package series

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the ISO 8601 calendar-date layout used on every boundary.
const DateLayout = "2006-01-02"

const (
	millisPerMinute = int64(60_000)
	millisPerDay    = int64(86_400_000)
)

// ErrInvalidWindow is returned for unparsable dates or a start after the end.
var ErrInvalidWindow = errors.New("invalid time window")

// TimeWindow is an inclusive range of calendar dates.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// NewWindow truncates both ends to UTC midnight and checks start <= end.
func NewWindow(start, end time.Time) (TimeWindow, error) {
	w := TimeWindow{Start: midnight(start), End: midnight(end)}
	if w.End.Before(w.Start) {
		return TimeWindow{}, fmt.Errorf("%w: start %s is after end %s",
			ErrInvalidWindow, w.Start.Format(DateLayout), w.End.Format(DateLayout))
	}
	return w, nil
}

// ParseWindow parses two YYYY-MM-DD strings into a window.
func ParseWindow(start, end string) (TimeWindow, error) {
	if start == "" || end == "" {
		return TimeWindow{}, fmt.Errorf("%w: start and end are required (YYYY-MM-DD)", ErrInvalidWindow)
	}
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("%w: start %q: %v", ErrInvalidWindow, start, err)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("%w: end %q: %v", ErrInvalidWindow, end, err)
	}
	return NewWindow(s, e)
}

// Days is the number of calendar dates in the window.
func (w TimeWindow) Days() int {
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

// StartMillis is the epoch millisecond of the first instant of Start.
func (w TimeWindow) StartMillis() int64 {
	return w.Start.UnixMilli()
}

// EndMillis is the epoch millisecond of the last instant of End, so the
// whole end date is covered.
func (w TimeWindow) EndMillis() int64 {
	return w.End.UnixMilli() + millisPerDay - 1
}

// Dates lists every date of the window in chronological order.
func (w TimeWindow) Dates() []string {
	dates := make([]string, 0, w.Days())
	for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(DateLayout))
	}
	return dates
}

// Contains reports whether the epoch millisecond falls on a date of the window.
func (w TimeWindow) Contains(ms int64) bool {
	return ms >= w.StartMillis() && ms <= w.EndMillis()
}

func (w TimeWindow) String() string {
	return w.Start.Format(DateLayout) + ".." + w.End.Format(DateLayout)
}

func midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateOf returns the UTC calendar date of an epoch millisecond.
func DateOf(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(DateLayout)
}
