// Package schemas owns the wine record schema and validates documents against it.
package schemas

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/wine-enricher/internal/types"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// compiled schemas keyed by their JSON text
var (
	compiled   = make(map[string]*gojsonschema.Schema)
	compiledMu sync.Mutex
)

func compile(schemaContent string) (*gojsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()

	if s, ok := compiled[schemaContent]; ok {
		return s, nil
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaContent))
	if err != nil {
		return nil, &SchemaLoadError{
			Path:    "(string schema)",
			Message: "schema compilation failed",
			Cause:   err,
		}
	}
	compiled[schemaContent] = s
	return s, nil
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schema, err := compile(schemaContent)
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(jsonContent))
	if err != nil {
		return &SchemaLoadError{
			Path:    "(string schema)",
			Message: "document could not be loaded",
			Cause:   err,
		}
	}
	return toValidationError(result)
}

// ValidateRecord checks a record against the schema generated from fields.
func ValidateRecord(fields []Field, record *types.WineRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	return ValidateJSONString(RecordJSONSchema(fields), string(data))
}

// ValidateRecordsFile validates a JSON file holding an array of records.
func ValidateRecordsFile(path string, fields []Field) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	arraySchema := fmt.Sprintf(`{"type":"array","items":%s}`, RecordJSONSchema(fields))
	return ValidateJSONString(arraySchema, string(data))
}

func toValidationError(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
