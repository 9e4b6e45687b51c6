package extract

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var reFirstInt = regexp.MustCompile(`\d+`)

// utcNow is the default clock. Its times carry no monotonic reading.
func utcNow() time.Time { return time.Now().UTC() }

// maxRelative caps the count in relative text; larger values are treated
// as this many units.
const maxRelative = 100000

// ResolveRelative converts strings like "3 days ago" to an absolute time
// no later than now. Anything it does not recognize resolves to now.
func ResolveRelative(s string, now time.Time) time.Time {
	l := strings.ToLower(s)
	n := 0
	if m := reFirstInt.FindString(l); m != "" {
		n = maxRelative
		if v, err := strconv.Atoi(m); err == nil && v < maxRelative {
			n = v
		}
	}

	t := now
	switch {
	case strings.Contains(l, "minute"), strings.Contains(l, "hour"):
	case strings.Contains(l, "day"):
		t = now.AddDate(0, 0, -n)
	case strings.Contains(l, "week"):
		t = now.AddDate(0, 0, -7*n)
	case strings.Contains(l, "month"):
		t = now.AddDate(0, -n, 0)
	}
	if t.After(now) {
		return now
	}
	return t
}

// FromEpochMillis converts a millisecond unix timestamp.
func FromEpochMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// ResolveDate accepts the value shapes seen in page data: epoch millis as a
// number or digit string, RFC 3339 or date-only strings, and relative text.
// ok is false only when v carries nothing.
func ResolveDate(v any, now time.Time) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case json.Number:
		if ms, err := t.Int64(); err == nil {
			return FromEpochMillis(ms), true
		}
		if f, err := t.Float64(); err == nil {
			return FromEpochMillis(int64(f)), true
		}
		return now, true
	case float64:
		return FromEpochMillis(int64(t)), true
	case int64:
		return FromEpochMillis(t), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return FromEpochMillis(ms), true
		}
		if ts, err := time.Parse(time.RFC3339, s); err == nil {
			return ts.UTC(), true
		}
		if ts, err := time.Parse("2006-01-02", s); err == nil {
			return ts, true
		}
		return ResolveRelative(s, now), true
	default:
		return time.Time{}, false
	}
}
