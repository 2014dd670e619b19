package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ExtensionsVersion is the current extension-map schema version.
const ExtensionsVersion = 1

// Extensions is a typed, versioned bag of optional string fields carried
// by documents for forward compatibility. It serializes as JSON with an
// explicit version so future readers can migrate old payloads instead of
// guessing at an untyped blob.
type Extensions struct {
	Version int               `json:"v"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Set stores a key, initializing the version on first use.
func (e *Extensions) Set(key, value string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if e.Version == 0 {
		e.Version = ExtensionsVersion
	}
	e.Fields[key] = value
}

// Get returns the value for key and whether it was present.
func (e Extensions) Get(key string) (string, bool) {
	v, ok := e.Fields[key]
	return v, ok
}

// Value implements driver.Valuer.
func (e Extensions) Value() (driver.Value, error) {
	if e.Version == 0 && len(e.Fields) == 0 {
		return nil, nil
	}
	return json.Marshal(e)
}

// Scan implements sql.Scanner.
func (e *Extensions) Scan(src any) error {
	if src == nil {
		*e = Extensions{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("extensions: cannot scan %T", src)
	}
	if len(data) == 0 {
		*e = Extensions{}
		return nil
	}
	return json.Unmarshal(data, e)
}
