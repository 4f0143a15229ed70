package models

import (
	"fmt"
	"strings"
	"time"
)

// timestampLayout is what the store writes: local ISO 8601 at second
// resolution, no zone suffix.
const timestampLayout = "2006-01-02T15:04:05"

// timestampLayouts are accepted on read. Older rows carry RFC3339 or bare
// dates, so parsing is lenient.
var timestampLayouts = []string{
	timestampLayout,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	time.DateOnly,
}

// Timestamp is a lenient wrapper over time.Time for the store's timestamp
// columns (last_updated, submitted_at, reviewed_at).
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to second resolution, matching what the store keeps.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.Truncate(time.Second)}
}

// UnmarshalJSON accepts any of the layouts the store has historically written.
// Null and empty strings decode to the zero Timestamp.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}

	return fmt.Errorf("unrecognized timestamp %q", s)
}

// MarshalJSON writes the store's second-resolution layout. The zero value
// marshals as null so omitted columns stay empty.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(timestampLayout) + `"`), nil
}
