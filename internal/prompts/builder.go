package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/wine-enricher/internal/schemas"
	"github.com/jonathan/wine-enricher/internal/types"
)

const wineFile = "wine.json"

// MaxCandidates caps how many profiles a lookup may return.
const MaxCandidates = 3

// BuildWinePrompt asks for a single record describing the queried wine.
func BuildWinePrompt(q types.WineQuery, fields []schemas.Field) string {
	return assemble(
		MustGet(wineFile, "role"),
		MustGet(wineFile, "object_instruction"),
		schemaTemplate(fields),
		MustGet(wineFile, "rules"),
		queryInput(q),
	)
}

// BuildCandidatesPrompt asks for an array of up to limit candidate records.
func BuildCandidatesPrompt(q types.WineQuery, fields []schemas.Field, limit int) string {
	if limit <= 0 || limit > MaxCandidates {
		limit = MaxCandidates
	}
	instruction := Format(MustGet(wineFile, "array_instruction"), map[string]string{
		"Max": fmt.Sprint(limit),
	})
	return assemble(
		MustGet(wineFile, "role"),
		instruction,
		schemaTemplate(fields),
		MustGet(wineFile, "rules"),
		queryInput(q),
	)
}

// BuildLinePrompt asks for a record describing a raw menu line.
func BuildLinePrompt(line string, fields []schemas.Field) string {
	return assemble(
		MustGet(wineFile, "role"),
		MustGet(wineFile, "object_instruction"),
		schemaTemplate(fields),
		MustGet(wineFile, "rules"),
		Format(MustGet(wineFile, "line_input"), map[string]string{"Line": line}),
	)
}

// WithRetryNote appends a reminder of which fields came back unknown.
func WithRetryNote(prompt string, missing []string) string {
	if len(missing) == 0 {
		return prompt
	}
	note := Format(MustGet(wineFile, "retry_note"), map[string]string{
		"Missing": strings.Join(missing, ", "),
	})
	return prompt + "\n\n" + note
}

// BuildFillPrompt asks the model to complete the unknown fields of an existing record.
func BuildFillPrompt(record *types.WineRecord, fields []schemas.Field) (string, error) {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal record: %w", err)
	}
	return assemble(
		MustGet(wineFile, "fill_role"),
		MustGet(wineFile, "object_instruction"),
		schemaTemplate(fields),
		MustGet(wineFile, "fill_rules"),
		Format(MustGet(wineFile, "fill_input"), map[string]string{"Record": string(data)}),
	), nil
}

func queryInput(q types.WineQuery) string {
	return Format(MustGet(wineFile, "query_input"), map[string]string{
		"Producer":    orDefault(q.Producer, "unknown"),
		"WineName":    strings.TrimSpace(q.WineName),
		"VintageHint": orDefault(q.VintageHint, "none"),
	})
}

// schemaTemplate renders the fields as a literal object with a type marker per key.
func schemaTemplate(fields []schemas.Field) string {
	var sb strings.Builder
	sb.WriteString("{\n")
	for i, field := range fields {
		typeHint := "string|null"
		if field.Type == schemas.TypeStringList {
			typeHint = "string[]"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s", field.Name, typeHint))
		if i < len(fields)-1 {
			sb.WriteString(",")
		}
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}

func assemble(role, instruction, schema, rules, input string) string {
	var sb strings.Builder
	sb.WriteString(role)
	sb.WriteString("\n")
	sb.WriteString(instruction)
	sb.WriteString("\n")
	sb.WriteString(schema)
	sb.WriteString("\n")
	sb.WriteString(rules)
	sb.WriteString("\n\n")
	sb.WriteString(input)
	return sb.String()
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
