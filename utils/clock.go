package utils

import (
	"fmt"
	"regexp"
	"time"
)

// Clock is the single time source for every wall-clock comparison in the
// service. All implementations must return UTC instants so that scheduling
// never depends on the process timezone.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// NewClock returns the production UTC clock.
func NewClock() Clock {
	return realClock{}
}

var dateOnlyRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseUTC parses a caller-supplied timestamp. Accepts RFC3339 and a bare
// YYYY-MM-DD date, which is treated as UTC midnight.
func ParseUTC(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}
	if dateOnlyRe.MatchString(value) {
		value = value + "T00:00:00Z"
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date string %q: %w", value, err)
	}
	return parsed.UTC(), nil
}

// IsInFuture reports whether the instant is strictly after the clock's now.
func IsInFuture(clock Clock, t time.Time) bool {
	return t.After(clock.Now())
}
