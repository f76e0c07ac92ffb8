// Package classify filters menu lines that are clearly not wine before any model call is spent on them.
package classify

import (
	"regexp"
	"strings"
)

// DefaultKeywords lists spirits, cocktails and other beverages that never describe a wine.
// Fortified and wine-based styles such as port or sherry are deliberately absent.
var DefaultKeywords = []string{
	// spirits
	"vodka", "gin", "rum", "tequila", "mezcal", "whiskey", "whisky", "bourbon", "scotch",
	"cognac", "brandy", "armagnac", "grappa", "liqueur", "amaro", "absinthe", "vermouth",
	"soju", "shochu", "sake",
	// cocktails
	"margarita", "martini", "mojito", "negroni", "daiquiri", "spritz", "old fashioned",
	"manhattan", "cosmopolitan", "paloma", "mule", "bloody mary", "mimosa", "bellini",
	"sangria", "highball", "julep", "sazerac", "gimlet",
	// modifiers
	"cocktail", "cocktails", "mocktail", "mocktails", "mixed drink", "on the rocks", "shot", "shots",
	// beer and cider
	"beer", "ale", "lager", "ipa", "stout", "pilsner", "cider", "seltzer",
	// soft drinks
	"coffee", "espresso", "latte", "cappuccino", "tea", "soda", "juice", "lemonade",
	"water", "tonic", "kombucha", "non-alcoholic", "zero proof",
}

// Classifier matches whole words or phrases against a keyword set.
type Classifier struct {
	pattern *regexp.Regexp
}

var defaultClassifier = New(DefaultKeywords)

// New builds a classifier from keywords. Multi-word keywords match across any whitespace.
func New(keywords []string) *Classifier {
	alts := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(strings.ToLower(kw))
		if kw == "" {
			continue
		}
		words := strings.Fields(kw)
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		alts = append(alts, strings.Join(words, `\s+`))
	}
	if len(alts) == 0 {
		return &Classifier{}
	}
	return &Classifier{pattern: regexp.MustCompile(`(?i)\b(?:` + strings.Join(alts, "|") + `)\b`)}
}

// WithExtra returns a classifier that also matches the given keywords.
func WithExtra(extra []string) *Classifier {
	if len(extra) == 0 {
		return defaultClassifier
	}
	all := make([]string, 0, len(DefaultKeywords)+len(extra))
	all = append(all, DefaultKeywords...)
	all = append(all, extra...)
	return New(all)
}

// IsLikelyNonWine reports whether text mentions a non-wine beverage keyword.
func (c *Classifier) IsLikelyNonWine(text string) bool {
	if c == nil || c.pattern == nil {
		return false
	}
	return c.pattern.MatchString(text)
}

// IsLikelyNonWine checks text against DefaultKeywords.
func IsLikelyNonWine(text string) bool {
	return defaultClassifier.IsLikelyNonWine(text)
}
