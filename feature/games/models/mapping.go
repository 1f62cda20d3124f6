package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Mapping is a character to character map stored as a JSON text column.
type Mapping map[string]string

// Value implements driver.Valuer.
func (m Mapping) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	data, err := json.Marshal(map[string]string(m))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (m *Mapping) Scan(value any) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*m = Mapping{}
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into Mapping", value)
	}
	out := Mapping{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &out); err != nil {
			return fmt.Errorf("failed to decode mapping: %w", err)
		}
	}
	*m = out
	return nil
}

// Clone returns a copy of the mapping.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
