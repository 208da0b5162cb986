package utils

import (
	"time"

	"github.com/jinzhu/now"
)

// DateOnly drops the clock and zone, keeping the calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func BeginningOfMonth(t time.Time) time.Time {
	return DateOnly(now.With(DateOnly(t)).BeginningOfMonth())
}

func EndOfMonth(t time.Time) time.Time {
	return DateOnly(now.With(DateOnly(t)).EndOfMonth())
}

// FirstOfNextMonth is the first day of the month after t.
func FirstOfNextMonth(t time.Time) time.Time {
	return EndOfMonth(t).AddDate(0, 0, 1)
}

// FirstOfMonthOnOrAfter returns t when it is already the first of a month.
func FirstOfMonthOnOrAfter(t time.Time) time.Time {
	t = DateOnly(t)
	if t.Day() == 1 {
		return t
	}
	return FirstOfNextMonth(t)
}

func MaxDate(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func MinDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// Covers reports whether day falls inside [start, end], comparing calendar dates only.
func Covers(start, end, day time.Time) bool {
	day = DateOnly(day)
	return !day.Before(DateOnly(start)) && !day.After(DateOnly(end))
}

func SameDate(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}
