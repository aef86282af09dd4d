// Package normalize converts provider-shaped values into the internal data
// model: America/New_York timestamps and coerced scalars.
package normalize

import (
	"strings"
	"time"

	"github.com/parlaylab/sports-mcp/internal/models"
)

// Eastern is the zone every public timestamp is rendered in.
var Eastern *time.Location

func init() {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		// Fall back to a fixed offset so the process still serves; only
		// happens on hosts with no tzdata.
		loc = time.FixedZone("ET", -5*3600)
	}
	Eastern = loc
}

const dateLayout = "2006-01-02"

// naive layouts accepted for zone-less inputs, assumed UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseInstant resolves a temporal string to an absolute instant.
//
// A 10-character YYYY-MM-DD resolves to the first instant of that calendar
// day in America/New_York. Anything else parses as ISO-8601; when it carries
// no zone it is assumed UTC.
func ParseInstant(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if len(s) == len(dateLayout) {
		if t, err := time.ParseInLocation(dateLayout, s, Eastern); err == nil {
			return t, true
		}
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// RequiredInstant is ParseInstant for fields that must normalize.
func RequiredInstant(field, s string) (time.Time, error) {
	t, ok := ParseInstant(s)
	if !ok {
		return time.Time{}, &models.NormalizationError{Field: field}
	}
	return t, nil
}

// DateET renders an instant as its ET calendar day.
func DateET(t time.Time) string {
	return t.In(Eastern).Format(dateLayout)
}

// InstantET renders an instant in the ET zone, RFC3339.
func InstantET(t time.Time) string {
	return t.In(Eastern).Format(time.RFC3339)
}

// TodayET is the current ET calendar day.
func TodayET() string {
	return time.Now().In(Eastern).Format(dateLayout)
}
