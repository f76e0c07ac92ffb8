package schemas

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/wine-enricher/internal/types"
)

// FieldType is the semantic type of a wine record field.
type FieldType string

const (
	// TypeString is a nullable string.
	TypeString FieldType = "string"
	// TypeStringList is an ordered list of strings.
	TypeStringList FieldType = "string[]"
)

// Field is one entry of the wine record schema.
type Field struct {
	Name        string
	Type        FieldType
	Description string
}

// PriceVariant selects how prices are represented in emitted records.
type PriceVariant string

const (
	// PriceSingle emits one "price" field.
	PriceSingle PriceVariant = "single"
	// PriceSplit emits "price_glass" and "price_bottle".
	PriceSplit PriceVariant = "split"
)

// Field names shared by prompts, parsing, storage and export.
const (
	FieldRegion         = "region"
	FieldState          = "state"
	FieldCountry        = "country"
	FieldWineType       = "wine_type"
	FieldBody           = "body"
	FieldBrand          = "brand"
	FieldProducer       = "producer"
	FieldVarietal       = "varietal"
	FieldTasteProfile   = "taste_profile"
	FieldTypicalVintage = "typical_vintage"
	FieldPrice          = "price"
	FieldPriceGlass     = "price_glass"
	FieldPriceBottle    = "price_bottle"
	FieldSources        = types.SourcesField
)

var descriptiveFields = []Field{
	{Name: FieldRegion, Type: TypeString, Description: "wine region or appellation"},
	{Name: FieldState, Type: TypeString, Description: "state or province, when the country uses them"},
	{Name: FieldCountry, Type: TypeString},
	{Name: FieldWineType, Type: TypeString, Description: "red, white, rosé, sparkling, dessert or fortified"},
	{Name: FieldBody, Type: TypeString, Description: "light, medium or full"},
	{Name: FieldBrand, Type: TypeString},
	{Name: FieldProducer, Type: TypeString},
	{Name: FieldVarietal, Type: TypeString, Description: "grape or blend"},
	{Name: FieldTasteProfile, Type: TypeString, Description: "short tasting notes"},
	{Name: FieldTypicalVintage, Type: TypeString, Description: "four digit year"},
}

var singlePriceFields = []Field{
	{Name: FieldPrice, Type: TypeString, Description: "typical retail price with currency symbol"},
}

var splitPriceFields = []Field{
	{Name: FieldPriceGlass, Type: TypeString, Description: "restaurant price by the glass"},
	{Name: FieldPriceBottle, Type: TypeString, Description: "restaurant price by the bottle"},
}

var sourcesField = Field{Name: FieldSources, Type: TypeStringList, Description: "URLs or publications backing the facts"}

// ParsePriceVariant validates a configured variant name.
func ParsePriceVariant(s string) (PriceVariant, error) {
	switch PriceVariant(strings.ToLower(strings.TrimSpace(s))) {
	case "", PriceSingle:
		return PriceSingle, nil
	case PriceSplit:
		return PriceSplit, nil
	default:
		return "", fmt.Errorf("unknown price variant %q (want %q or %q)", s, PriceSingle, PriceSplit)
	}
}

// WineFields returns the ordered record schema for a price variant.
// The returned slice is a fresh copy.
func WineFields(variant PriceVariant) []Field {
	fields := make([]Field, 0, len(descriptiveFields)+3)
	fields = append(fields, descriptiveFields...)
	if variant == PriceSplit {
		fields = append(fields, splitPriceFields...)
	} else {
		fields = append(fields, singlePriceFields...)
	}
	return append(fields, sourcesField)
}

// StorageFields returns every field any variant can emit: descriptive fields, the
// single price, the split prices and sources.
func StorageFields() []Field {
	fields := make([]Field, 0, len(descriptiveFields)+4)
	fields = append(fields, descriptiveFields...)
	fields = append(fields, singlePriceFields...)
	fields = append(fields, splitPriceFields...)
	return append(fields, sourcesField)
}

// FieldNames returns the names of fields in order.
func FieldNames(fields []Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// ScalarFieldNames returns the names of the string-typed fields in order.
func ScalarFieldNames(fields []Field) []string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Type != TypeStringList {
			names = append(names, f.Name)
		}
	}
	return names
}

// NewRecord returns an all-unknown record for the fields.
func NewRecord(fields []Field) *types.WineRecord {
	return types.NewWineRecord(FieldNames(fields))
}

// RecordJSONSchema renders a JSON Schema document for records with the given fields.
func RecordJSONSchema(fields []Field) string {
	properties := make(map[string]any, len(fields))
	required := make([]string, 0, len(fields))
	for _, f := range fields {
		switch f.Type {
		case TypeStringList:
			properties[f.Name] = map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			}
		default:
			properties[f.Name] = map[string]any{"type": []string{"string", "null"}}
		}
		required = append(required, f.Name)
	}

	doc := map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
	data, _ := json.Marshal(doc) // only maps of strings; cannot fail
	return string(data)
}
