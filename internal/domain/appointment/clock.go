package appointment

import (
	"strings"
	"time"

	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
)

// ParseDate validates a YYYY-MM-DD calendar date.
func ParseDate(raw string) (time.Time, error) {
	d, err := time.Parse(timezone.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// NormalizeClock accepts H:MM or HH:MM and returns zero-padded HH:MM so
// wall-clock strings sort lexically.
func NormalizeClock(raw string) (string, error) {
	t, err := time.Parse(timezone.ClockLayout, strings.TrimSpace(raw))
	if err != nil {
		return "", ErrInvalidTime
	}
	return t.Format(timezone.ClockLayout), nil
}

// Interval normalizes start/end and requires end after start.
func Interval(start, end string) (string, string, error) {
	s, err := NormalizeClock(start)
	if err != nil {
		return "", "", err
	}
	e, err := NormalizeClock(end)
	if err != nil {
		return "", "", err
	}
	if e <= s {
		return "", "", ErrInvalidTime
	}
	return s, e, nil
}

// DaysBetween lists every date from..to inclusive.
func DaysBetween(from, to time.Time) []time.Time {
	var out []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

func FormatDate(t time.Time) string {
	return t.Format(timezone.DateLayout)
}
