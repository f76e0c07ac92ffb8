// Package signals pulls prices and vintages out of free-text wine menu lines.
package signals

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/wine-enricher/internal/types"
)

const defaultCurrency = "$"

var (
	// "$18 / $72", "18/72", "$12.50/$48". "1/2" is a half bottle, not a pair.
	glassBottleRe = regexp.MustCompile(`(?:^|[^\w.$€£])(([$€£]?)\s*(\d{1,3}(?:\.\d{1,2})?)\s*/\s*([$€£]?)\s*(\d{1,3}(?:\.\d{1,2})?))(?:$|[^\w.])`)

	// "$14 glass" is tried before "glass $14" so that "12 glass 48 bottle" pairs each
	// amount with the keyword that follows it.
	glassAmountFirstRe   = regexp.MustCompile(`(?i)(?:^|[^\w.])([$€£]?)\s*(\d{1,3}(?:\.\d{1,2})?)\s*(?:/\s*|per\s+|a\s+)?(?:by\s+the\s+)?glass\b`)
	glassKeywordFirstRe  = regexp.MustCompile(`(?i)\b(?:by\s+the\s+)?glass\b\s*[:\-]?\s*([$€£]?)\s*(\d{1,3}(?:\.\d{1,2})?)\b`)
	bottleAmountFirstRe  = regexp.MustCompile(`(?i)(?:^|[^\w.])([$€£]?)\s*(\d{1,3}(?:\.\d{1,2})?)\s*(?:/\s*|per\s+|a\s+)?(?:by\s+the\s+)?bottle\b`)
	bottleKeywordFirstRe = regexp.MustCompile(`(?i)\b(?:by\s+the\s+)?bottle\b\s*[:\-]?\s*([$€£]?)\s*(\d{1,3}(?:\.\d{1,2})?)\b`)

	// A trailing amount, optionally followed by a bare year that the vintage step handles.
	trailingPriceRe = regexp.MustCompile(`(?:^|\s)(([$€£]?)\s*(\d+(?:\.\d{1,2})?))(?:\s+\d{4})?\s*$`)

	// tokens that make a following number part of the name: "Bin 389", "No 5"
	nameNumberRe = regexp.MustCompile(`(?i)(?:^|\s)(?:no\.?|n°|nº|#|bin|lot|block|clone)$`)
	bareNumberRe = regexp.MustCompile(`(?:^|\s)\d+(?:\.\d+)?$`)

	vintageRe = regexp.MustCompile(`(?:^|[^\w$€£.])((?:19\d{2}|20[0-2]\d))\b`)

	whitespaceRe = regexp.MustCompile(`\s+`)
)

const edgeTrimChars = " \t-–—,|/:;·"

// Extract parses a raw menu line. It never fails: absent signals are nil.
//
// Steps run in a fixed order and each removes what it matched, so later steps
// never see tokens an earlier step already claimed.
func Extract(raw string) types.ExtractedSignals {
	var sig types.ExtractedSignals
	text := tidy(raw)

	for _, m := range glassBottleRe.FindAllStringSubmatchIndex(text, -1) {
		if !isPricePair(text[m[4]:m[5]], text[m[6]:m[7]], text[m[8]:m[9]], text[m[10]:m[11]]) {
			continue
		}
		currency := text[m[4]:m[5]]
		sig.PriceGlass = money(currency, text[m[6]:m[7]])
		sig.PriceBottle = money(currency, text[m[10]:m[11]])
		text = cut(text, m[2], m[3])
		break
	}

	text = extractKeyword(text, &sig.PriceGlass, glassAmountFirstRe, glassKeywordFirstRe)
	text = extractKeyword(text, &sig.PriceBottle, bottleAmountFirstRe, bottleKeywordFirstRe)

	if m := trailingPriceRe.FindStringSubmatchIndex(text); m != nil {
		currency := text[m[4]:m[5]]
		amount := text[m[6]:m[7]]
		rest := cut(text, m[2], m[3])
		if currency != "" || (!isYear(amount) && !endsInNameNumber(rest)) {
			switch {
			case !sig.HasSplitPrice():
				sig.Price = money(currency, amount)
				text = rest
			case sig.PriceBottle == nil && amountOf(amount) >= amountOf(*sig.PriceGlass):
				// "glass 11 45": the unlabeled amount is the bottle
				sig.PriceBottle = money(currency, amount)
				text = rest
			case sig.PriceGlass == nil && amountOf(amount) <= amountOf(*sig.PriceBottle):
				sig.PriceGlass = money(currency, amount)
				text = rest
			}
		}
	}

	if ms := vintageRe.FindAllStringSubmatchIndex(text, -1); len(ms) > 0 {
		year := text[ms[0][2]:ms[0][3]]
		sig.Vintage = &year
		for i := len(ms) - 1; i >= 0; i-- {
			text = cut(text, ms[i][2], ms[i][3])
		}
	}

	sig.CleanedName = text
	return sig
}

// extractKeyword removes every "glass $N" style match and records the first one
// when the target was not set by an earlier step. Amounts that belong to a
// fraction such as "1/2 bottle" are left in the name.
func extractKeyword(text string, target **string, patterns ...*regexp.Regexp) string {
	for _, re := range patterns {
		for {
			m := firstNonFraction(text, re)
			if m == nil {
				break
			}
			if *target == nil {
				*target = money(text[m[2]:m[3]], text[m[4]:m[5]])
			}
			text = cut(text, m[0], m[1])
		}
	}
	return text
}

func firstNonFraction(text string, re *regexp.Regexp) []int {
	for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
		if !inFraction(text, m[4], m[5]) {
			return m
		}
	}
	return nil
}

// inFraction reports whether text[start:end] is one side of "a/b".
func inFraction(text string, start, end int) bool {
	before := strings.TrimRight(text[:start], " $€£")
	if strings.HasSuffix(before, "/") {
		before = strings.TrimRight(strings.TrimSuffix(before, "/"), " ")
		if before != "" && isDigit(before[len(before)-1]) {
			return true
		}
	}
	after := strings.TrimLeft(text[end:], " ")
	if strings.HasPrefix(after, "/") {
		after = strings.TrimLeft(strings.TrimPrefix(after, "/"), " $€£")
		if after != "" && isDigit(after[0]) {
			return true
		}
	}
	return false
}

// isPricePair rejects fractions: at least one side needs a currency marker or two digits.
func isPricePair(cur1, a, cur2, b string) bool {
	return cur1 != "" || cur2 != "" || intDigits(a) >= 2 || intDigits(b) >= 2
}

// endsInNameNumber reports whether the text left after removing a bare trailing
// amount still ends in a number, or in a token like "Bin" that introduces one.
// The amount then reads as part of the name, which keeps a cleaned name stable
// when it is extracted again.
func endsInNameNumber(rest string) bool {
	rest = tidy(vintageRe.ReplaceAllStringFunc(rest, func(m string) string {
		return strings.TrimRight(m, "0123456789")
	}))
	return bareNumberRe.MatchString(rest) || nameNumberRe.MatchString(rest)
}

func amountOf(s string) float64 {
	n, _ := strconv.ParseFloat(strings.TrimLeft(s, "$€£"), 64)
	return n
}

func intDigits(s string) int {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	return len(s)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func money(currency, amount string) *string {
	if currency == "" {
		currency = defaultCurrency
	}
	s := currency + amount
	return &s
}

func isYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return false
	}
	return (n >= 1900 && n <= 1999) || (n >= 2000 && n <= 2029)
}

// cut removes text[start:end] and re-tidies the remainder.
func cut(text string, start, end int) string {
	return tidy(text[:start] + " " + text[end:])
}

func tidy(s string) string {
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.Trim(s, edgeTrimChars)
}
