// Package dateparse turns user date input into dates and due times. It
// accepts exact dates, keywords, weekday names and relative offsets.
package dateparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultDueClock is used when a due date is given without a time.
const DefaultDueClock = "23:59"

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseDate parses a date input string and returns an ISO 8601 date (YYYY-MM-DD).
func ParseDate(input string) (string, error) {
	return ParseDateFrom(input, time.Now())
}

// ParseDateFrom is ParseDate relative to now.
//
// Supported formats:
//   - Exact dates: "2026-03-01"
//   - Relative offsets: "+7d", "+2w", "+1m"
//   - Day names: "monday" (next occurrence, never today)
//   - Keywords: "today", "tomorrow", "next-week", "next-month"
func ParseDateFrom(input string, now time.Time) (string, error) {
	t, err := dayFrom(input, now)
	if err != nil {
		return "", err
	}
	return t.Format("2006-01-02"), nil
}

// ParseDue parses a due date with an optional clock time, "friday 17:00" or
// "2026-03-01T09:30". Without a time the due time is DefaultDueClock. The
// result is in loc.
func ParseDue(input string, now time.Time, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("empty due date")
	}

	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, input, loc); err == nil {
			return t, nil
		}
	}

	day, clock := input, DefaultDueClock
	if i := strings.LastIndexAny(input, " @"); i > 0 {
		day, clock = strings.TrimSpace(input[:i]), strings.TrimSpace(input[i+1:])
	}
	hm, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q (use HH:MM)", clock)
	}
	d, err := dayFrom(day, now)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), hm.Hour(), hm.Minute(), 0, 0, loc), nil
}

func dayFrom(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" {
		return time.Time{}, fmt.Errorf("empty date input")
	}

	if t, err := time.ParseInLocation("2006-01-02", input, now.Location()); err == nil {
		return t, nil
	}

	switch input {
	case "today":
		return now, nil
	case "tomorrow":
		return now.AddDate(0, 0, 1), nil
	case "next-week":
		return now.AddDate(0, 0, daysUntil(now, time.Monday)), nil
	case "next-month":
		year, month, _ := now.Date()
		return time.Date(year, month+1, 1, 0, 0, 0, 0, now.Location()), nil
	}

	if strings.HasPrefix(input, "+") && len(input) >= 3 {
		unit := input[len(input)-1]
		n, err := strconv.Atoi(input[1 : len(input)-1])
		if err == nil && n >= 0 {
			switch unit {
			case 'd':
				return now.AddDate(0, 0, n), nil
			case 'w':
				return now.AddDate(0, 0, n*7), nil
			case 'm':
				return now.AddDate(0, n, 0), nil
			default:
				return time.Time{}, fmt.Errorf("unknown relative unit %q in %q (use d, w, or m)", string(unit), input)
			}
		}
	}

	if target, ok := weekdays[input]; ok {
		return now.AddDate(0, 0, daysUntil(now, target)), nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date format: %q", input)
}

// daysUntil counts days to the next target weekday, 1 to 7.
func daysUntil(now time.Time, target time.Weekday) int {
	n := (int(target) - int(now.Weekday()) + 7) % 7
	if n == 0 {
		n = 7
	}
	return n
}
