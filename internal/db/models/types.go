package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList is a JSON encoded list of strings (tags, completed dates).
type StringList []string

// Scan implements sql.Scanner for reading from database
func (l *StringList) Scan(value any) error {
	return scanJSON(value, l, "StringList")
}

// Value implements driver.Valuer for writing to database
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return valueJSON(l)
}

// IntList is a JSON encoded list of integers (habit target weekdays).
type IntList []int

// Scan implements sql.Scanner for reading from database
func (l *IntList) Scan(value any) error {
	return scanJSON(value, l, "IntList")
}

// Value implements driver.Valuer for writing to database
func (l IntList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return valueJSON(l)
}

// JSONMap stores free-form metadata.
type JSONMap map[string]any

// Scan implements sql.Scanner for reading from database
func (m *JSONMap) Scan(value any) error {
	return scanJSON(value, m, "JSONMap")
}

// Value implements driver.Valuer for writing to database
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return valueJSON(m)
}

func scanJSON(value any, dest any, name string) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("failed to scan %s: unsupported type %T", name, value)
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}

func valueJSON(v any) (driver.Value, error) {
	bytes, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(bytes), nil
}
