package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url      string
		expected Platform
	}{
		{"https://lilia.getbento.com/menus/#wine", PlatformBentoBox},
		{"https://www.popmenu.com/restaurant/menu", PlatformPopmenu},
		{"https://www.toasttab.com/local/order/trattoria", PlatformToast},
		{"https://trattoria.squarespace.com/wine", PlatformSquarespace},
		{"https://www.frenchlaundry.com/menus", PlatformUnknown},
		{"://bad", PlatformUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectPlatform(tt.url))
		})
	}
}

func TestPlatformContentSelectors(t *testing.T) {
	assert.Equal(t, MenuSelectors(), PlatformContentSelectors(PlatformUnknown))
	assert.Contains(t, PlatformContentSelectors(PlatformBentoBox), ".menu-section")
	assert.Contains(t, PlatformContentSelectors(PlatformSquarespace), ".menu-block")
}

func TestPlatformNoiseSelectors(t *testing.T) {
	common := PlatformNoiseSelectors(PlatformUnknown)
	assert.Contains(t, common, ".newsletter")

	toast := PlatformNoiseSelectors(PlatformToast)
	assert.Greater(t, len(toast), len(common))
	assert.Contains(t, toast, ".checkout")
}
