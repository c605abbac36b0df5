package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp is a time.Time that also decodes zone-less ISO 8601 values such
// as "2024-05-01T10:11:12.123456", which are read as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// At wraps t.
func At(t time.Time) Timestamp { return Timestamp{Time: t} }

// ParseTimestamp accepts RFC 3339 and the zone-less layouts above.
func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid timestamp %q", s)
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalYAML keeps YAML output a plain timestamp rather than a struct.
func (t Timestamp) MarshalYAML() (any, error) {
	return t.Time, nil
}
