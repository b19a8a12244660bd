package helpers

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

func StringToInt(s string) (int, error) {
	return strconv.Atoi(s)
}

// ParseClock converts a "HH:MM" string to minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour*60 + minute, nil
}

// ClockRangesOverlap reports whether the half-open ranges
// [aStart,aEnd) and [bStart,bEnd) of "HH:MM" strings intersect.
func ClockRangesOverlap(aStart, aEnd, bStart, bEnd string) (bool, error) {
	as, err := ParseClock(aStart)
	if err != nil {
		return false, err
	}
	ae, err := ParseClock(aEnd)
	if err != nil {
		return false, err
	}
	bs, err := ParseClock(bStart)
	if err != nil {
		return false, err
	}
	be, err := ParseClock(bEnd)
	if err != nil {
		return false, err
	}
	return as < be && ae > bs, nil
}

// ParseDate accepts the date formats clients send for bookings.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// DayBounds returns the [start, end) window covering the calendar day of t
// in UTC, for same-day range queries.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}

// FormatHourRange renders an hour window as the display string stored on
// trainer bookings, e.g. "9:00 - 11:00".
func FormatHourRange(startHour, duration int) string {
	return fmt.Sprintf("%d:00 - %d:00", startHour, startHour+duration)
}
