package utils

import (
	"fmt"
	"strconv"
	"time"
)

const (
	// DateTimeLayout is the full-precision timestamp used by the feed.
	DateTimeLayout = "2006-01-02 15:04:05"
	// DateLayout is the date-only timestamp used by the reduced line shape.
	DateLayout = "2006-01-02"
)

// ConvertToCount parses a non-negative base-10 integer.
func ConvertToCount(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid count %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid count %q: negative", s)
	}
	return n, nil
}

// ConvertDateTime parses s with exactly the given layout and returns it in UTC.
// Unlike a best-effort parser it never falls back to another layout.
func ConvertDateTime(s string, layout string) (time.Time, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse datetime %q as %q: %w", s, layout, err)
	}
	return t.UTC(), nil
}

// ToInterfaces copies a typed slice into the []interface{} form the Mongo
// bulk APIs expect.
func ToInterfaces[T any](in []T) []interface{} {
	out := make([]interface{}, len(in))
	for i := range in {
		out[i] = in[i]
	}
	return out
}
