package logs

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Entry is one structured line of the application log.
type Entry struct {
	Timestamp string         `mapstructure:"time" json:"timestamp"`
	Level     string         `mapstructure:"level" json:"level"`
	Logger    string         `mapstructure:"service" json:"logger"`
	Message   string         `mapstructure:"message" json:"message"`
	Module    *string        `mapstructure:"module" json:"module"`
	Function  *string        `mapstructure:"function" json:"function"`
	Line      *int           `mapstructure:"line" json:"line"`
	Exception *string        `mapstructure:"error" json:"exception"`
	Fields    map[string]any `mapstructure:",remain" json:"fields,omitempty"`
}

// parseLine decodes a zerolog JSON line. It returns the raw field map as well
// so filter expressions can reach fields that Entry does not name.
func parseLine(line []byte) (*Entry, map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal(line, &raw); err != nil {
		return nil, nil, fmt.Errorf("decode log line: %w", err)
	}

	var e Entry
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &e,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, nil, fmt.Errorf("decode log entry: %w", err)
	}
	e.Level = strings.ToUpper(e.Level)
	return &e, raw, nil
}

// time parses the entry timestamp. ok is false when it is missing or malformed.
func (e *Entry) time() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, e.Timestamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// normalizeLevel maps user supplied level names onto zerolog's.
func normalizeLevel(level string) string {
	level = strings.ToUpper(strings.TrimSpace(level))
	if level == "WARNING" {
		return "WARN"
	}
	return level
}
