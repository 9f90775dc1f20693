package util

import (
	"fmt"
	"math"
	"time"

	"github.com/teambition/rrule-go"
)

const DateLayout = "2006-01-02"

var weekdays = []rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR}

// ParseDate parses a YYYY-MM-DD string as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// WorkingDays lists the Monday-to-Friday dates between start and end, inclusive.
func WorkingDays(start, end time.Time) ([]time.Time, error) {
	start = truncateDay(start)
	end = truncateDay(end)
	if end.Before(start) {
		return nil, nil
	}

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.DAILY,
		Dtstart:   start,
		Until:     end,
		Byweekday: weekdays,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build working day rule: %w", err)
	}
	return r.All(), nil
}

// CountWorkingDays is len(WorkingDays(start, end)).
func CountWorkingDays(start, end time.Time) (int, error) {
	days, err := WorkingDays(start, end)
	if err != nil {
		return 0, err
	}
	return len(days), nil
}

// MonthRange returns the first and last day of the month.
func MonthRange(year, month int) (time.Time, time.Time) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

// OverlapDays clips [start, end] to [from, to] and counts the working days left.
func OverlapDays(start, end, from, to time.Time) (int, error) {
	if start.Before(from) {
		start = from
	}
	if end.After(to) {
		end = to
	}
	return CountWorkingDays(start, end)
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
