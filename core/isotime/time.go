package isotime

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// EncodeLayout is the layout used when marshalling.
const EncodeLayout = "2006-01-02T15:04:05.000Z07:00"

// decodeLayouts are tried in order. Layouts without a zone are interpreted as UTC.
var decodeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Time is a time.Time with tolerant JSON decoding.
type Time struct {
	time.Time
}

// New wraps t, normalised to UTC.
func New(t time.Time) Time {
	return Time{Time: t.UTC()}
}

// Ptr returns a pointer to New(t), or nil when t is zero.
func Ptr(t time.Time) *Time {
	if t.IsZero() {
		return nil
	}
	v := New(t)
	return &v
}

// Parse decodes s using every supported layout.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range decodeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp format %q", s)
}

// MarshalJSON implements json.Marshaler.
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.UTC().Format(EncodeLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler. Null and empty strings decode to the zero time.
func (t *Time) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("timestamp must be a JSON string, got %s", data)
	}
	s := string(data[1 : len(data)-1])
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}
