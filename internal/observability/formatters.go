// Package observability sets up logging and prints human-readable run summaries.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/wine-enricher/internal/export"
	"github.com/jonathan/wine-enricher/internal/fetch"
	"github.com/jonathan/wine-enricher/internal/schemas"
	"github.com/jonathan/wine-enricher/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, boxWidth-4), boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintBatchSummary outputs the counts of a run and its first few failures.
func (p *Printer) PrintBatchSummary(result *types.BatchResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:        %s\n", result.RunID))
	sb.WriteString(fmt.Sprintf("Rows:       %d\n", result.Total()))
	sb.WriteString(fmt.Sprintf("Finalized:  %d", len(result.Succeeded)))
	if n := result.Incomplete(); n > 0 {
		sb.WriteString(fmt.Sprintf(" (%d incomplete)", n))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Skipped:    %d\n", len(result.Skipped)))
	sb.WriteString(fmt.Sprintf("Failed:     %d\n", len(result.Failed)))

	if len(result.Failed) > 0 {
		sb.WriteString("\nFailures:\n")
		count := min(len(result.Failed), maxItemsToShow)
		for i := 0; i < count; i++ {
			f := result.Failed[i]
			sb.WriteString(fmt.Sprintf("  • #%d %s [%s]\n", f.Index+1, f.Input.Text, f.Kind))
		}
		if len(result.Failed) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(result.Failed)-maxItemsToShow))
		}
	}

	p.printBox("BATCH SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintWineCard outputs one record, unknown fields shown as "-".
func (p *Printer) PrintWineCard(title string, record *types.WineRecord, fields []schemas.Field) {
	if record == nil {
		return
	}

	var sb strings.Builder
	width := 0
	for _, f := range fields {
		width = max(width, len(export.Label(f.Name)))
	}

	for _, f := range fields {
		var value string
		if f.Name == schemas.FieldSources {
			value = strings.Join(record.Sources(), export.SourcesSeparator)
		} else {
			value = record.Value(f.Name)
		}
		if value == "" {
			value = "-"
		}
		sb.WriteString(fmt.Sprintf("%-*s  %s\n", width, export.Label(f.Name), value))
	}

	if title == "" {
		title = "WINE"
	}
	p.printBox(strings.ToUpper(title), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDiscovery outputs where a restaurant's wine list was found.
func (p *Printer) PrintDiscovery(d *fetch.Discovery) {
	if d == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Site:    %s\n", d.HomeURL))
	sb.WriteString(fmt.Sprintf("Status:  %s\n", d.Status))
	if d.Found() {
		sb.WriteString(fmt.Sprintf("Menu:    %s\n", d.MenuURL))
	}
	if len(d.Checked) > 0 {
		sb.WriteString(fmt.Sprintf("Checked: %d menu pages\n", len(d.Checked)))
	}

	p.printBox("WINE LIST DISCOVERY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMenuLines outputs the first lines extracted from a menu.
func (p *Printer) PrintMenuLines(lines []types.RawMenuLine) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Extracted %d wine lines\n", len(lines)))
	if len(lines) > 0 {
		sb.WriteString("\n")
	}

	count := min(len(lines), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("• %s\n", lines[i].Text))
	}
	if len(lines) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(lines)-maxItemsToShow))
	}

	p.printBox("MENU LINES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRestaurants outputs how many restaurants a list page held and the first few names.
func (p *Printer) PrintRestaurants(restaurants []types.Restaurant) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d restaurants\n", len(restaurants)))
	if len(restaurants) > 0 {
		sb.WriteString("\n")
	}

	count := min(len(restaurants), maxItemsToShow)
	for i := 0; i < count; i++ {
		r := restaurants[i]
		site := r.Website
		if site == "" {
			site = "no website"
		}
		sb.WriteString(fmt.Sprintf("• %s (%s)\n", r.Name, site))
	}
	if len(restaurants) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(restaurants)-maxItemsToShow))
	}

	p.printBox("RESTAURANTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintOfferings outputs how many restaurants had a wine list, grouped by status.
func (p *Printer) PrintOfferings(offerings []types.WineOffering) {
	counts := make(map[string]int)
	var order []string
	found := 0
	for _, o := range offerings {
		if o.WineMenuURL != "" {
			found++
		}
		if counts[o.Status] == 0 {
			order = append(order, o.Status)
		}
		counts[o.Status]++
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Restaurants:  %d\n", len(offerings)))
	sb.WriteString(fmt.Sprintf("Wine lists:   %d\n", found))
	if len(order) > 0 {
		sb.WriteString("\n")
	}
	for _, status := range order {
		sb.WriteString(fmt.Sprintf("  %3d  %s\n", counts[status], status))
	}

	p.printBox("WINE OFFERINGS", strings.TrimSuffix(sb.String(), "\n"))
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

// pad right-pads s with spaces to n runes.
func pad(s string, n int) string {
	if c := utf8.RuneCountInString(s); c < n {
		return s + strings.Repeat(" ", n-c)
	}
	return s
}
