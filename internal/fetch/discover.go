package fetch

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/wine-enricher/internal/types"
)

// DefaultMaxMenuPages bounds how many menu-like pages are opened looking for a wine list.
const DefaultMaxMenuPages = 10

// DiscoveryStatus says how a wine list was found, or why none was.
type DiscoveryStatus string

const (
	StatusWineLink   DiscoveryStatus = "Wine link found"
	StatusMenuPage   DiscoveryStatus = "Wine found inside menu page"
	StatusPDF        DiscoveryStatus = "Wine PDF link"
	StatusNotFound   DiscoveryStatus = "No wines found"
	StatusDisallowed DiscoveryStatus = "Blocked by robots.txt"
	StatusNoWebsite  DiscoveryStatus = "No website listed"

	// fetchErrorPrefix starts the status of a restaurant whose homepage failed.
	fetchErrorPrefix = "Error fetching homepage: "
)

var (
	wineLinkRe = regexp.MustCompile(`(?i)wine|vino|\bvins?\b`)
	menuLinkRe = regexp.MustCompile(`(?i)menu|dinner|lunch|drinks?|beverage|happy`)
	winePageRe = regexp.MustCompile(`(?i)wine|vino|vin\s(?:rouge|blanc)|by the glass|by the bottle`)
	pdfHintRe  = regexp.MustCompile(`(?i)wine|drink`)
)

// Discovery is the outcome of searching a restaurant site for its wine list.
type Discovery struct {
	HomeURL string          `json:"home_url"`
	MenuURL string          `json:"menu_url,omitempty"`
	Status  DiscoveryStatus `json:"status"`
	// Checked lists the menu pages opened while searching.
	Checked []string `json:"checked,omitempty"`
}

// Found reports whether a wine list URL was located.
func (d *Discovery) Found() bool { return d.MenuURL != "" }

// DiscoverOptions configures DiscoverMenuLinks.
type DiscoverOptions struct {
	Getter       Getter         // defaults to HTTPGetter
	Robots       *RobotsChecker // nil skips robots.txt checks
	MaxMenuPages int
	Logger       *slog.Logger
}

type candidateLink struct {
	url     string
	hasWine bool
}

// DiscoverMenuLinks looks for a restaurant's wine list starting from its homepage.
// Links naming wine win outright. Otherwise up to MaxMenuPages menu-like pages are
// opened and scanned for wine words, and finally PDF links hinting at wine or drinks
// are tried. Only a homepage fetch failure is returned as an error.
func DiscoverMenuLinks(ctx context.Context, homeURL string, opts DiscoverOptions) (*Discovery, error) {
	if opts.Getter == nil {
		opts.Getter = HTTPGetter{}
	}
	if opts.MaxMenuPages <= 0 {
		opts.MaxMenuPages = DefaultMaxMenuPages
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("home_url", homeURL)

	d := &Discovery{HomeURL: homeURL, Status: StatusNotFound}
	allowed := func(u string) bool {
		return opts.Robots == nil || opts.Robots.Allowed(ctx, u)
	}

	if !allowed(homeURL) {
		d.Status = StatusDisallowed
		logger.Info("discover.disallowed")
		return d, nil
	}

	home, err := opts.Getter.Get(ctx, homeURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(home.HTML))
	if err != nil {
		return nil, &Error{URL: homeURL, Message: "failed to parse HTML", Cause: err}
	}
	base, err := url.Parse(homeURL)
	if err != nil {
		return nil, &Error{URL: homeURL, Message: "invalid URL", Cause: err}
	}

	candidates := candidateLinks(doc, base)
	for _, c := range candidates {
		if c.hasWine {
			d.MenuURL, d.Status = c.url, StatusWineLink
			logger.Info("discover.done", "status", d.Status, "menu_url", d.MenuURL)
			return d, nil
		}
	}

	for i, c := range candidates {
		if i >= opts.MaxMenuPages {
			break
		}
		if err := ctx.Err(); err != nil {
			return d, err
		}
		if !allowed(c.url) {
			logger.Debug("discover.page.disallowed", "url", c.url)
			continue
		}
		d.Checked = append(d.Checked, c.url)
		page, err := opts.Getter.Get(ctx, c.url)
		if err != nil {
			logger.Debug("discover.page.failed", "url", c.url, "error", err)
			continue
		}
		if winePageRe.MatchString(page.HTML) {
			d.MenuURL, d.Status = c.url, StatusMenuPage
			logger.Info("discover.done", "status", d.Status, "menu_url", d.MenuURL)
			return d, nil
		}
	}

	if pdf := pdfLink(doc, base); pdf != "" {
		d.MenuURL, d.Status = pdf, StatusPDF
	}
	logger.Info("discover.done", "status", d.Status, "menu_url", d.MenuURL, "checked", len(d.Checked))
	return d, nil
}

// DiscoverOffering runs DiscoverMenuLinks for one listed restaurant and always
// returns a row: a missing or non-HTTP website and a failed homepage fetch are
// reported in Status rather than as errors.
func DiscoverOffering(ctx context.Context, r types.Restaurant, opts DiscoverOptions) types.WineOffering {
	offering := types.WineOffering{Name: r.Name, Website: strings.TrimSpace(r.Website)}
	if offering.Name == "" {
		offering.Name = "Unknown"
	}

	u, err := url.Parse(offering.Website)
	if offering.Website == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		offering.Website = ""
		offering.Status = string(StatusNoWebsite)
		return offering
	}

	d, err := DiscoverMenuLinks(ctx, offering.Website, opts)
	if err != nil {
		offering.Status = fetchErrorPrefix + err.Error()
		return offering
	}
	offering.WineMenuURL = d.MenuURL
	offering.Status = string(d.Status)
	return offering
}

// candidateLinks returns wine and menu links, wine links first, each URL once.
func candidateLinks(doc *goquery.Document, base *url.URL) []candidateLink {
	seen := make(map[string]bool)
	var wine, menu []candidateLink

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		abs.Fragment = ""
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		u := abs.String()
		if seen[u] {
			return
		}

		combined := strings.Join(strings.Fields(s.Text()), " ") + " " + href
		switch {
		case wineLinkRe.MatchString(combined):
			seen[u] = true
			wine = append(wine, candidateLink{url: u, hasWine: true})
		case menuLinkRe.MatchString(combined):
			seen[u] = true
			menu = append(menu, candidateLink{url: u})
		}
	})

	return append(wine, menu...)
}

func pdfLink(doc *goquery.Document, base *url.URL) string {
	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		if strings.HasSuffix(strings.ToLower(ref.Path), ".pdf") && pdfHintRe.MatchString(href) {
			found = base.ResolveReference(ref).String()
			return false
		}
		return true
	})
	return found
}
