package parsing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/wine-enricher/internal/schemas"
	"github.com/jonathan/wine-enricher/internal/types"
)

// ParseRecord extracts the first JSON object from model output and maps it onto the schema.
// Keys outside the schema are dropped and missing keys are left unknown.
func ParseRecord(raw string, fields []schemas.Field) (*types.WineRecord, error) {
	span, ok := FindJSON(raw, ShapeObject)
	if !ok {
		return nil, &MalformedResponseError{Message: "no JSON object found", Excerpt: excerpt(raw)}
	}

	obj, err := decodeObject([]byte(span))
	if err != nil {
		return nil, &MalformedResponseError{Message: "invalid JSON object", Excerpt: excerpt(span), Cause: err}
	}
	return RecordFromMap(obj, fields)
}

// ParseRecords extracts the first JSON array of objects from model output.
// A lone object is accepted as a one-element list, including one whose values
// hold arrays of their own. Non-object elements are skipped.
func ParseRecords(raw string, fields []schemas.Field) ([]*types.WineRecord, error) {
	text := CleanJSONBlock(raw)
	span, arrStart := findJSON(text, ShapeArray)
	objSpan, objStart := findJSON(text, ShapeObject)

	// an object opening before the array is the whole answer, e.g. {"sources": [...]}
	if objStart >= 0 && (arrStart < 0 || objStart < arrStart) {
		return singleRecord(objSpan, fields)
	}
	if arrStart < 0 {
		return nil, &MalformedResponseError{Message: "no JSON array or object found", Excerpt: excerpt(raw)}
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(span), &items); err != nil {
		return nil, &MalformedResponseError{Message: "invalid JSON array", Excerpt: excerpt(span), Cause: err}
	}

	records := make([]*types.WineRecord, 0, len(items))
	for _, item := range items {
		obj, err := decodeObject(item)
		if err != nil {
			continue
		}
		rec, err := RecordFromMap(obj, fields)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		if objStart >= 0 {
			return singleRecord(objSpan, fields)
		}
		return nil, &MalformedResponseError{Message: "JSON array holds no objects", Excerpt: excerpt(span)}
	}
	return records, nil
}

func singleRecord(span string, fields []schemas.Field) ([]*types.WineRecord, error) {
	obj, err := decodeObject([]byte(span))
	if err != nil {
		return nil, &MalformedResponseError{Message: "invalid JSON object", Excerpt: excerpt(span), Cause: err}
	}
	rec, err := RecordFromMap(obj, fields)
	if err != nil {
		return nil, err
	}
	return []*types.WineRecord{rec}, nil
}

// Parse dispatches on shape.
func Parse(raw string, shape Shape, fields []schemas.Field) ([]*types.WineRecord, error) {
	if shape == ShapeArray {
		return ParseRecords(raw, fields)
	}
	rec, err := ParseRecord(raw, fields)
	if err != nil {
		return nil, err
	}
	return []*types.WineRecord{rec}, nil
}

// RecordFromMap maps a decoded object onto a schema record and validates the result.
func RecordFromMap(obj map[string]any, fields []schemas.Field) (*types.WineRecord, error) {
	record := schemas.NewRecord(fields)

	for _, f := range fields {
		v, ok := lookup(obj, f.Name)
		if !ok || v == nil {
			continue
		}

		if f.Type == schemas.TypeStringList {
			record.SetSources(NormalizeSources(toStrings(v)))
			continue
		}

		s, err := scalarString(v)
		if err != nil {
			return nil, &ValidationError{Field: f.Name, Message: err.Error()}
		}
		record.Set(f.Name, NormalizeValue(f.Name, s))
	}

	if err := schemas.ValidateRecord(fields, record); err != nil {
		return nil, &ValidationError{Message: "record does not match schema", Cause: err}
	}
	return record, nil
}

func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("expected an object, got null")
	}
	return obj, nil
}

// lookup finds key exactly, then by case-insensitive match with spaces or camel case
// folded to snake case ("Wine Type", "wineType").
func lookup(obj map[string]any, key string) (any, bool) {
	if v, ok := obj[key]; ok {
		return v, true
	}
	for k, v := range obj {
		if snake(k) == key {
			return v, true
		}
	}
	return nil, false
}

func snake(s string) string {
	var sb strings.Builder
	for i, r := range strings.TrimSpace(s) {
		switch {
		case r == ' ' || r == '-':
			sb.WriteByte('_')
		case r >= 'A' && r <= 'Z':
			if i > 0 && !strings.HasSuffix(sb.String(), "_") {
				sb.WriteByte('_')
			}
			sb.WriteRune(r + ('a' - 'A'))
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// scalarString coerces a JSON scalar to its string form. Lists of scalars are joined.
func scalarString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool:
		if t {
			return "true", nil
		}
		return "false", nil
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			s, err := scalarString(item)
			if err != nil {
				return "", err
			}
			if s = strings.TrimSpace(s); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", "), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected a string, got %T", v)
	}
}

// toStrings reads a source list. A single string is split on semicolons or newlines.
func toStrings(v any) []string {
	switch t := v.(type) {
	case string:
		return strings.FieldsFunc(t, func(r rune) bool { return r == ';' || r == '\n' })
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, err := scalarString(item); err == nil {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
