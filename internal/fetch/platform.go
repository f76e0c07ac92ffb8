package fetch

import (
	"net/url"
	"strings"
)

// Platform is a hosted menu or website builder that restaurants commonly use.
type Platform string

const (
	// PlatformBentoBox is BentoBox (getbento.com)
	PlatformBentoBox Platform = "bentobox"
	// PlatformPopmenu is Popmenu
	PlatformPopmenu Platform = "popmenu"
	// PlatformToast is Toast online ordering
	PlatformToast Platform = "toast"
	// PlatformSquarespace is a Squarespace site
	PlatformSquarespace Platform = "squarespace"
	// PlatformUnknown is an unrecognized platform
	PlatformUnknown Platform = "unknown"
)

// DetectPlatform identifies the menu platform from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Host)

	switch {
	case strings.Contains(host, "getbento.com"):
		return PlatformBentoBox
	case strings.Contains(host, "popmenu.com"):
		return PlatformPopmenu
	case strings.Contains(host, "toasttab.com"):
		return PlatformToast
	case strings.Contains(host, "squarespace.com"):
		return PlatformSquarespace
	default:
		return PlatformUnknown
	}
}

// PlatformContentSelectors returns content selectors for a specific platform.
func PlatformContentSelectors(platform Platform) []string {
	switch platform {
	case PlatformBentoBox:
		return []string{
			".menu-section",
			".tabs-content",
			"#main-content",
		}
	case PlatformPopmenu:
		return []string{
			"[class*='menuSection']",
			"[class*='MenuSection']",
			"main",
		}
	case PlatformToast:
		return []string{
			"[data-testid='menu-group']",
			".menuSection",
			"main",
		}
	case PlatformSquarespace:
		return []string{
			".menu-block",
			".sqs-block-menu",
			"#page",
		}
	default:
		return MenuSelectors()
	}
}

// PlatformNoiseSelectors returns noise exclusion selectors for a specific platform.
func PlatformNoiseSelectors(platform Platform) []string {
	common := []string{
		// reservation and ordering widgets
		".reservation-widget",
		"[class*='opentable']",
		"[class*='resy']",
		".order-online",

		// newsletter and social
		".newsletter",
		".social-links",
		".share-buttons",

		".cookie-consent",
		".gdpr-notice",
	}

	switch platform {
	case PlatformBentoBox:
		return append(common, ".site-footer", ".popup-overlay")
	case PlatformToast:
		return append(common, "[data-testid='cart']", ".checkout")
	default:
		return common
	}
}
