package normalize

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"
	"time"
)

// ISOLayout is the millisecond UTC form used when a timestamp has to be
// synthesized.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// naiveISO matches backend timestamps that omit the zone: second,
// millisecond and microsecond precision. They are UTC.
var naiveISO = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d{3}|\.\d{6})?$`)

// Zone-less layouts parse as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
	time.RFC822Z,
	time.RFC822,
	"Mon Jan 2 2006 15:04:05 GMT-0700",
	"Jan 2, 2006 15:04:05",
	"Jan 2, 2006",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

// JS Date magnitude limit in milliseconds.
const maxEpochMillis = 8.64e15

// TryParse parses a timestamp without any fallback. It accepts time.Time,
// *time.Time, strings in the formats above, and numbers as epoch
// milliseconds. The zero time is never reported as valid.
func TryParse(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, !t.IsZero()
	case string:
		return parseString(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return parseString(t.String())
		}
		return fromEpochMillis(f)
	case float64:
		return fromEpochMillis(t)
	case int:
		return fromEpochMillis(float64(t))
	case int64:
		return fromEpochMillis(float64(t))
	default:
		return time.Time{}, false
	}
}

func parseString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if naiveISO.MatchString(s) {
		s += "Z"
	}
	// Date.toString() output carries a trailing "(Zone Name)".
	if i := strings.Index(s, " ("); i > 0 && strings.HasSuffix(s, ")") {
		s = s[:i]
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.IsZero() {
				return time.Time{}, false
			}
			return t, true
		}
	}
	return time.Time{}, false
}

func fromEpochMillis(ms float64) (time.Time, bool) {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || math.Abs(ms) > maxEpochMillis {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)).UTC(), true
}

// ParseTimestamp always returns a usable time. Empty input (nil, "", zero
// time) yields the current time silently; unparseable input yields the
// current time and a warning.
func (n *Normalizer) ParseTimestamp(v interface{}) time.Time {
	if t, ok := TryParse(v); ok {
		return t
	}
	if !isBlank(v) {
		n.log.Warn("unparseable timestamp, using current time", "value", v)
	}
	return n.now()
}

func isBlank(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case time.Time:
		return t.IsZero()
	case *time.Time:
		return t == nil || t.IsZero()
	default:
		return false
	}
}

// FormatISO renders t the way synthesized timestamps are stored.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}
