package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateRange is a named lookback window ending at "now".
type DateRange string

const (
	RangeToday DateRange = "TODAY"
	RangeWeek  DateRange = "WEEK"
	RangeMonth DateRange = "MONTH"
	RangeYear  DateRange = "YEAR"
)

func IsValidDateRange(r DateRange) bool {
	switch r {
	case RangeToday, RangeWeek, RangeMonth, RangeYear:
		return true
	default:
		return false
	}
}

// ParseDateRange accepts a range name in any case. An empty name yields fallback.
func ParseDateRange(s string, fallback DateRange) (DateRange, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}
	r := DateRange(strings.ToUpper(s))
	if !IsValidDateRange(r) {
		return "", NewValidationError(fmt.Sprintf("invalid range '%s'", s))
	}
	return r, nil
}

// Start returns the inclusive lower bound of the range relative to now.
func (r DateRange) Start(now time.Time) time.Time {
	switch r {
	case RangeWeek:
		return now.AddDate(0, 0, -6)
	case RangeMonth:
		return now.AddDate(0, -1, 0)
	case RangeYear:
		return now.AddDate(-1, 0, 0)
	default:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	}
}
