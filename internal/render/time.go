package render

import (
	"time"

	"github.com/dustin/go-humanize"
)

// dateLayouts are the shapes the backend stores event dates in: the
// date input's value, or a full timestamp after a Mongo round trip.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
}

// ParseEventDate parses an event's date field.
func ParseEventDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatEventDate renders an event date as "2 Jan 2006", "Date TBD" when
// empty, or the raw value when it does not parse.
func FormatEventDate(s string) string {
	if s == "" {
		return "Date TBD"
	}
	t, ok := ParseEventDate(s)
	if !ok {
		return s
	}
	return t.UTC().Format("2 Jan 2006")
}

// FormatEventTime returns the event's time or "Time TBD".
func FormatEventTime(s string) string {
	if s == "" {
		return "Time TBD"
	}
	return s
}

// TimeAgo renders t relative to now, like "3 minutes ago".
func TimeAgo(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}
