package ingestion

import (
	"regexp"
	"strings"

	"github.com/jonathan/wine-enricher/internal/fetch"
	"github.com/jonathan/wine-enricher/internal/types"
)

// MaxBufferedWords ends a wine entry that never shows a price.
const MaxBufferedWords = 12

// maxHeaderWords keeps long wine lines from being mistaken for section headers.
const maxHeaderWords = 5

var (
	wineSectionRe = regexp.MustCompile(`(?i)by the glass|by the bottle|glass pours|\bbottles\b`)
	endSectionRe  = regexp.MustCompile(`(?i)^(?:beers?|cocktails?|spirits?|mocktails?|non[- ]?alcoholic|sake|vermouth|liqueurs?|brandy|whiske?y|scotch|tequila|rum|cider)\b`)
	categoryRe    = regexp.MustCompile(`(?i)^(?:sparkling|champagne|bubbles|whites?|reds?|ros[eé]s?|orange|skin contact|dessert|sweet|fortified|half bottles|large format|white (?:&|and) ros[eé])(?: wines?)?:?$`)
	// a price is a $ amount or a trailing 2-3 digit number that is not part of a vintage
	priceRe     = regexp.MustCompile(`\$\s?\d+|(?:^|[\s/|])\d{2,3}(?:\.\d{2})?\s*$`)
	priceOnlyRe = regexp.MustCompile(`^[\s$\d./|,-]+$`)
)

// MenuOptions carries the context attached to every extracted line.
type MenuOptions struct {
	City       string
	Restaurant string
}

// ExtractMenuLines splits menu text into one RawMenuLine per wine.
//
// Lines are buffered until one carries a price or the buffer reaches MaxBufferedWords.
// "By the glass" style headers set the section for the lines that follow, bare
// category headers are dropped, and a beer, cocktail or spirits header stops
// extraction until the next wine header.
func ExtractMenuLines(text string, opts MenuOptions) []types.RawMenuLine {
	var (
		lines   []types.RawMenuLine
		buffer  []string
		section string
		capture = true
	)

	flush := func() {
		if len(buffer) == 0 {
			return
		}
		if capture {
			lines = append(lines, types.RawMenuLine{
				Text:       strings.Join(buffer, " "),
				City:       opts.City,
				Restaurant: opts.Restaurant,
				Section:    section,
			})
		}
		buffer = nil
	}

	for _, raw := range strings.Split(CleanText(text), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if isHeader(line) {
			switch {
			case wineSectionRe.MatchString(line):
				flush()
				section, capture = line, true
				continue
			case endSectionRe.MatchString(line):
				flush()
				capture = false
				continue
			case categoryRe.MatchString(line):
				flush()
				capture = true
				continue
			}
		}
		if !capture {
			continue
		}

		// a price on its own line belongs to the wine above it
		if priceOnlyRe.MatchString(line) {
			switch {
			case len(buffer) > 0:
				buffer = append(buffer, line)
				flush()
			case len(lines) > 0:
				last := &lines[len(lines)-1]
				last.Text += " " + line
			}
			continue
		}

		buffer = append(buffer, line)
		if priceRe.MatchString(line) || wordCount(buffer) >= MaxBufferedWords {
			flush()
		}
	}
	flush()

	return lines
}

// ExtractMenuLinesFromHTML renders a menu page to text and extracts its wine lines.
func ExtractMenuLinesFromHTML(html string, platform fetch.Platform, opts MenuOptions) ([]types.RawMenuLine, error) {
	text, err := fetch.ExtractMainText(html, fetch.PlatformContentSelectors(platform), fetch.PlatformNoiseSelectors(platform)...)
	if err != nil {
		return nil, err
	}
	return ExtractMenuLines(text, opts), nil
}

func isHeader(line string) bool {
	return len(strings.Fields(line)) <= maxHeaderWords && !priceRe.MatchString(line)
}

func wordCount(parts []string) int {
	n := 0
	for _, p := range parts {
		n += len(strings.Fields(p))
	}
	return n
}
