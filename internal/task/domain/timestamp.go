package domain

import (
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04", // datetime-local form input
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NormalizeTimestamp converts the due-date representations found in stored
// documents into a time. It returns nil for absent or unrecognized values.
//
// Accepted shapes: time.Time and *time.Time (native store timestamps),
// {seconds, nanoseconds} maps (serialized timestamps, with or without a
// leading underscore), numbers of epoch milliseconds and ISO strings.
func NormalizeTimestamp(v interface{}) *time.Time {
	switch val := v.(type) {
	case nil:
		return nil
	case time.Time:
		if val.IsZero() {
			return nil
		}
		return &val
	case *time.Time:
		if val == nil || val.IsZero() {
			return nil
		}
		t := *val
		return &t
	case map[string]interface{}:
		return timestampFromMap(val)
	case int64:
		t := time.UnixMilli(val)
		return &t
	case float64:
		t := time.UnixMilli(int64(val))
		return &t
	case string:
		return parseTimestampString(val)
	}
	return nil
}

func timestampFromMap(m map[string]interface{}) *time.Time {
	secs, ok := numberField(m, "seconds", "_seconds")
	if !ok {
		return nil
	}
	nanos, _ := numberField(m, "nanoseconds", "_nanoseconds")
	t := time.Unix(secs, nanos)
	return &t
}

func numberField(m map[string]interface{}, keys ...string) (int64, bool) {
	for _, key := range keys {
		switch n := m[key].(type) {
		case int64:
			return n, true
		case int:
			return int64(n), true
		case float64:
			return int64(n), true
		}
	}
	return 0, false
}

func parseTimestampString(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// ParseTimeInput parses a user supplied time in location loc. Strings
// without a zone (datetime-local) are read as local wall time.
func ParseTimeInput(s string, loc *time.Location) (*time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return &t, true
	}
	for _, layout := range timestampLayouts[2:] {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return &t, true
		}
	}
	return nil, false
}
