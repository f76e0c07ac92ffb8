package parsing

import (
	"strings"

	"github.com/jonathan/wine-enricher/internal/schemas"
)

// nullTokens are answers models give instead of null.
var nullTokens = map[string]bool{
	"":        true,
	"null":    true,
	"none":    true,
	"n/a":     true,
	"na":      true,
	"unknown": true,
	"-":       true,
}

// wineTypeNormalizations maps common wine type variants to canonical names
var wineTypeNormalizations = map[string]string{
	"red":            "Red",
	"red wine":       "Red",
	"white":          "White",
	"white wine":     "White",
	"rose":           "Rosé",
	"rosé":           "Rosé",
	"rosato":         "Rosé",
	"rosado":         "Rosé",
	"sparkling":      "Sparkling",
	"sparkling wine": "Sparkling",
	"champagne":      "Sparkling",
	"orange":         "Orange",
	"orange wine":    "Orange",
	"dessert":        "Dessert",
	"dessert wine":   "Dessert",
	"sweet":          "Dessert",
	"fortified":      "Fortified",
	"fortified wine": "Fortified",
}

// bodyNormalizations maps body descriptions to light/medium/full
var bodyNormalizations = map[string]string{
	"light":          "Light",
	"light-bodied":   "Light",
	"light bodied":   "Light",
	"medium":         "Medium",
	"medium-bodied":  "Medium",
	"medium bodied":  "Medium",
	"medium-light":   "Medium",
	"medium-full":    "Medium-Full",
	"medium to full": "Medium-Full",
	"full":           "Full",
	"full-bodied":    "Full",
	"full bodied":    "Full",
}

// NormalizeValue trims a scalar answer and maps placeholder answers to nil.
// Known vocabularies (wine type, body) are mapped to canonical names.
func NormalizeValue(field, value string) *string {
	normalized := strings.Join(strings.Fields(value), " ")
	lower := strings.ToLower(normalized)
	if nullTokens[lower] {
		return nil
	}

	switch field {
	case schemas.FieldWineType:
		if canonical, ok := wineTypeNormalizations[lower]; ok {
			return &canonical
		}
	case schemas.FieldBody:
		if canonical, ok := bodyNormalizations[lower]; ok {
			return &canonical
		}
	}
	return &normalized
}

// NormalizeSources trims and deduplicates sources, keeping first occurrence order.
func NormalizeSources(sources []string) []string {
	if len(sources) == 0 {
		return sources
	}

	normalized := make([]string, 0, len(sources))
	seen := make(map[string]bool)
	for _, s := range sources {
		s = strings.TrimSpace(s)
		if nullTokens[strings.ToLower(s)] || seen[s] {
			continue
		}
		seen[s] = true
		normalized = append(normalized, s)
	}
	return normalized
}
