// Package ingestion turns menus and input files into RawMenuLines.
package ingestion

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	spaceRunRe  = regexp.MustCompile(`[ \t\x{00A0}\x{2007}\x{202F}]+`)
	blankRunsRe = regexp.MustCompile(`\n\n\n+`)
	// leaders are the dot or dash fills menus put between a name and its price
	leaderRe = regexp.MustCompile(`\s*(?:\.{3,}|…+|_{3,}|-{3,})\s*`)
)

// CleanText normalizes menu text while keeping its line structure.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, cleanLine(line))
	}

	result := strings.Join(cleaned, "\n")
	result = blankRunsRe.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine collapses whitespace, replaces price leaders with a space and drops bullets.
func cleanLine(line string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}

	if isBulletLine(line) {
		line = strings.TrimSpace(line[strings.IndexByte(line, ' ')+1:])
	}
	line = leaderRe.ReplaceAllString(line, " ")
	line = spaceRunRe.ReplaceAllString(line, " ")
	return strings.TrimSpace(line)
}

// isBulletLine checks if a line is a bullet list item
func isBulletLine(line string) bool {
	return strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") ||
		strings.HasPrefix(line, "• ") || strings.HasPrefix(line, "· ")
}

// ReadTextFile reads a menu saved as text and cleans it.
func ReadTextFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %w", err)
		}
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return CleanText(string(content)), nil
}
