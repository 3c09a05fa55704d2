package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are the representations arqueo inputs use for dates, tried in
// order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	time.RFC3339,
}

// DateKey formats a date as the comparable numeric key YYYYMMDD used to
// match movements across every source.
func DateKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// ParseDate parses a date cell in any of the supported layouts.
func ParseDate(val string) (time.Time, error) {
	s := strings.TrimSpace(val)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	// Bare numeric key, e.g. "20251128".
	if len(s) == 8 {
		if t, err := time.Parse("20060102", s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format %q", s)
}

// ParseDateKey converts a date cell to the YYYYMMDD key. Numeric cells are
// taken as already-formatted keys.
func ParseDateKey(val string) (int, error) {
	s := strings.TrimSpace(val)
	if len(s) == 8 {
		if key, err := strconv.Atoi(s); err == nil {
			return key, nil
		}
	}
	t, err := ParseDate(s)
	if err != nil {
		return 0, err
	}
	return DateKey(t), nil
}

// PreviousBusinessDay returns the closest weekday strictly before t. Arqueo
// runs reconcile the previous business day's counts; holiday calendars are
// not modeled.
func PreviousBusinessDay(t time.Time) time.Time {
	d := t.AddDate(0, 0, -1)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}
