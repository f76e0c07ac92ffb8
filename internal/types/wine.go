// Package types provides type definitions for structured data used throughout the wine enricher.
//
//nolint:revive // types is a standard Go package name pattern
package types

// RawMenuLine is one free-text wine entry read from a menu or an input file.
type RawMenuLine struct {
	Text       string `json:"text"`
	City       string `json:"city,omitempty"`
	Restaurant string `json:"restaurant,omitempty"`
	Section    string `json:"section,omitempty"` // e.g. "Wines by the Glass"
}

// ExtractedSignals holds the price and vintage data parsed deterministically from a menu line.
// Price is never set together with PriceGlass or PriceBottle.
type ExtractedSignals struct {
	CleanedName string  `json:"cleaned_name"`
	Price       *string `json:"price"`
	PriceGlass  *string `json:"price_glass"`
	PriceBottle *string `json:"price_bottle"`
	Vintage     *string `json:"vintage"`
}

// HasSplitPrice reports whether a glass or bottle price was found.
func (s ExtractedSignals) HasSplitPrice() bool {
	return s.PriceGlass != nil || s.PriceBottle != nil
}

// WineQuery is the normalized identifying input for a lookup.
type WineQuery struct {
	Producer    string `json:"producer,omitempty"`
	WineName    string `json:"wine_name" validate:"required"`
	VintageHint string `json:"vintage_hint,omitempty" validate:"omitempty,len=4,numeric"`
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
