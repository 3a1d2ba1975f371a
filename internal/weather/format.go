package weather

import (
	"strconv"
	"time"
)

// KST is Korea Standard Time. Korea has no daylight saving, so a fixed zone
// avoids depending on the host's tz database.
var KST = time.FixedZone("KST", 9*60*60)

// localLayouts are accepted for timestamps that carry no offset; they are
// read as KST wall-clock time.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseInstant parses an ISO-8601 instant. Timestamps without an offset are
// taken to be KST.
func ParseInstant(raw string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, raw, KST); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatKST renders an instant as 24-hour KST date and time. Malformed input
// is returned unchanged.
func FormatKST(raw string) string {
	t, ok := ParseInstant(raw)
	if !ok {
		return raw
	}
	return t.In(KST).Format("2006-01-02 15:04")
}

// FormatHour renders the KST hour and minute of an instant, or the raw
// string when it cannot be parsed.
func FormatHour(raw string) string {
	t, ok := ParseInstant(raw)
	if !ok {
		return raw
	}
	return t.In(KST).Format("15:04")
}

// FormatNumber renders v with the given precision and unit suffix, or "-"
// when there is no usable value.
func FormatNumber(v *float64, unit string, digits int) string {
	if !Finite(v) {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', digits, 64) + unit
}
