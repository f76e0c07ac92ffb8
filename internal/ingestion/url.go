package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/wine-enricher/internal/fetch"
	"github.com/jonathan/wine-enricher/internal/types"
)

var (
	// ErrHTTPRequestFailed is returned when the menu page cannot be fetched
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	// ErrContentExtractionFailed is returned when the page cannot be turned into text
	ErrContentExtractionFailed = errors.New("content extraction failed")
	// ErrUnsupportedDocument is returned for menus published only as PDF
	ErrUnsupportedDocument = errors.New("unsupported menu document")
)

// FetchOptions configures FetchMenu.
type FetchOptions struct {
	Menu   MenuOptions
	Getter fetch.Getter // defaults to fetch.HTTPGetter
	// UseBrowser renders the page headlessly when the plain fetch yields too little text.
	UseBrowser     bool
	BrowserTimeout time.Duration
	Logger         *slog.Logger
}

// FetchMenu downloads a menu page and extracts its wine lines, using the platform's
// selectors and, if enabled, a headless browser for client-rendered menus.
func FetchMenu(ctx context.Context, urlStr string, opts FetchOptions) ([]types.RawMenuLine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	getter := opts.Getter
	if getter == nil {
		getter = fetch.HTTPGetter{}
	}

	platform := fetch.DetectPlatform(urlStr)
	logger = logger.With("url", urlStr, "platform", platform)

	result, err := getter.Get(ctx, urlStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}
	if result.IsPDF() {
		return nil, fmt.Errorf("%w: %s is a PDF", ErrUnsupportedDocument, urlStr)
	}
	logger.Debug("ingest.fetched", "bytes", len(result.HTML))

	contentSelectors := fetch.PlatformContentSelectors(platform)
	noiseSelectors := fetch.PlatformNoiseSelectors(platform)

	text, err := fetch.ExtractMainText(result.HTML, contentSelectors, noiseSelectors...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}

	if opts.UseBrowser && fetch.ShouldUseBrowser(text) {
		logger.Info("ingest.browser_fallback", "chars", len(text), "min", fetch.MinContentLength)
		html, browserErr := fetch.WithBrowser(ctx, urlStr, opts.BrowserTimeout, logger)
		if browserErr != nil {
			logger.Warn("ingest.browser_failed", "error", browserErr)
		} else if rendered, err := fetch.ExtractMainText(html, contentSelectors, noiseSelectors...); err == nil {
			text = rendered
		}
	}

	lines := ExtractMenuLines(text, opts.Menu)
	logger.Info("ingest.menu.ok", "lines", len(lines))
	return lines, nil
}

// ReadMenuFile extracts wine lines from a saved menu page (.html, .htm) or text file.
func ReadMenuFile(path string, opts MenuOptions) ([]types.RawMenuLine, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		return ExtractMenuLinesFromHTML(string(content), fetch.PlatformUnknown, opts)
	case ".pdf":
		return nil, fmt.Errorf("%w: %s is a PDF", ErrUnsupportedDocument, path)
	default:
		text, err := ReadTextFile(path)
		if err != nil {
			return nil, err
		}
		return ExtractMenuLines(text, opts), nil
	}
}
