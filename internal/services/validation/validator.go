// Package validation checks request bodies against embedded JSON schemas
// before they are decoded into service inputs.
package validation

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/focusflow/focusapi/internal/apperr"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Schema names an embedded request schema.
type Schema string

const (
	Register       Schema = "register.json"
	Login          Schema = "login.json"
	ProfileUpdate  Schema = "profile_update.json"
	TaskCreate     Schema = "task_create.json"
	TaskBatch      Schema = "task_batch.json"
	TaskUpdate     Schema = "task_update.json"
	GoalCreate     Schema = "goal_create.json"
	HabitCreate    Schema = "habit_create.json"
	HabitCheckIn   Schema = "habit_check_in.json"
	InsightCreate  Schema = "insight_create.json"
	ChatMessage    Schema = "chat_message.json"
	AIConfigCreate Schema = "ai_config_create.json"
	ClientError    Schema = "client_error.json"
)

// MaxBodyBytes caps a request body.
const MaxBodyBytes = 1 << 20

const maxMessageLen = 200

var printer = message.NewPrinter(language.English)

// Validator validates request bodies. Compiled schemas are cached.
type Validator struct {
	mu       sync.Mutex
	compiler *jsonschema.Compiler
	cache    *lru.Cache[Schema, *jsonschema.Schema]
}

// NewValidator loads every embedded schema into a draft 7 compiler that
// asserts "format" keywords.
func NewValidator(cacheSize int) (*Validator, error) {
	cache, err := lru.New[Schema, *jsonschema.Schema](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create schema cache: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft7)
	compiler.AssertFormat()

	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("read embedded schemas: %w", err)
	}
	for _, entry := range entries {
		f, err := schemaFS.Open("schemas/" + entry.Name())
		if err != nil {
			return nil, err
		}
		doc, err := jsonschema.UnmarshalJSON(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parse schema %s: %w", entry.Name(), err)
		}
		if err := compiler.AddResource(entry.Name(), doc); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", entry.Name(), err)
		}
	}

	return &Validator{compiler: compiler, cache: cache}, nil
}

func (v *Validator) schema(name Schema) (*jsonschema.Schema, error) {
	if s, ok := v.cache.Get(name); ok {
		return s, nil
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	s, err := v.compiler.Compile(string(name))
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	v.cache.Add(name, s)
	return s, nil
}

// Validate checks a decoded JSON instance (as produced by jsonschema.UnmarshalJSON).
func (v *Validator) Validate(name Schema, instance any) error {
	s, err := v.schema(name)
	if err != nil {
		return apperr.Internal("Request validation unavailable", err)
	}
	if err := s.Validate(instance); err != nil {
		return apperr.Malformed(formatValidationError(err))
	}
	return nil
}

// Decode reads a JSON body, validates it against name and unmarshals it into dst.
func (v *Validator) Decode(r io.Reader, name Schema, dst any) error {
	data, err := io.ReadAll(io.LimitReader(r, MaxBodyBytes+1))
	if err != nil {
		return apperr.Malformed("Could not read request body")
	}
	if len(data) > MaxBodyBytes {
		return apperr.Malformed("Request body too large")
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return apperr.Malformed("Request body is required")
	}

	instance, err := jsonschema.UnmarshalJSON(strings.NewReader(string(data)))
	if err != nil {
		return apperr.Malformed("Invalid JSON body")
	}
	if err := v.Validate(name, instance); err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return apperr.Malformed(fmt.Sprintf("Invalid request body: %s", unmarshalDetail(err)))
	}
	return nil
}

func unmarshalDetail(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Sprintf("field %s has the wrong type", typeErr.Field)
	}
	return err.Error()
}

// formatValidationError reports the first failing leaf as
// "validation failed at '$.title': <reason>".
func formatValidationError(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}

	path := "$"
	var parts []string
	for _, part := range ve.InstanceLocation {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) > 0 {
		path = "$." + strings.Join(parts, ".")
	}

	msg := ve.ErrorKind.LocalizedString(printer)
	if len(msg) > maxMessageLen {
		msg = msg[:maxMessageLen] + "... (truncated)"
	}
	return fmt.Sprintf("validation failed at '%s': %s", path, msg)
}
