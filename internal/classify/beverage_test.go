package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLikelyNonWine(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"House Margarita", true},
		{"Ginger-inflected Riesling", false},
		{"Hendrick's Gin & Tonic", true},
		{"ESPRESSO MARTINI 16", true},
		{"Old   Fashioned", true},
		{"Non-Alcoholic Sparkling", true},
		{"Cakebread Chardonnay 2021 $18/$72", false},
		{"Taylor Fladgate 20yr Tawny Port", false},
		{"Rumble Red Blend", false},
		{"Saketini", false},
		{"Stella Artois Beer", true},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, IsLikelyNonWine(tt.text))
		})
	}
}

func TestIsLikelyNonWine_Idempotent(t *testing.T) {
	for _, text := range []string{"House Margarita", "Ginger-inflected Riesling"} {
		first := IsLikelyNonWine(text)
		assert.Equal(t, first, IsLikelyNonWine(text))
	}
}

func TestWithExtra(t *testing.T) {
	c := WithExtra([]string{"hard kombucha", "Boilermaker"})

	assert.True(t, c.IsLikelyNonWine("boilermaker special"))
	assert.True(t, c.IsLikelyNonWine("House Margarita"))
	assert.False(t, c.IsLikelyNonWine("Pinot Noir"))
}

func TestNew_EmptyKeywords(t *testing.T) {
	c := New([]string{" ", ""})
	assert.False(t, c.IsLikelyNonWine("vodka"))
}
