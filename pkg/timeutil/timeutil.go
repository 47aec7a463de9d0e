package timeutil

import "time"

// LayoutISO8601 is the canonical serialization layout for timestamps stored
// in the cache. RFC 3339 with nanoseconds is a strict ISO-8601 profile, so
// every value written by FormatTimestamp round-trips through ParseTimestamp
// without loss.
const LayoutISO8601 = time.RFC3339Nano

// FormatTimestamp serializes t as an ISO-8601 string in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(LayoutISO8601)
}

// ParseTimestamp parses a stored ISO-8601 timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(LayoutISO8601, s)
}
