package fetch

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/wine-enricher/internal/types"
)

// Selectors for map-style "best restaurants" lists (one card per venue).
const (
	restaurantCardSelector    = "section.c-mapstack__card"
	restaurantNameSelector    = "div.c-mapstack__card-hed h1"
	restaurantDescSelector    = "div.c-entry-content p"
	restaurantAddrSelector    = "div.c-mapstack__address"
	restaurantPhoneSelector   = `div.c-mapstack__phone-url a[href^="tel:"]`
	restaurantPhotoSelector   = "div.c-mapstack__photo"
	restaurantWebsiteLinkText = "Visit Website"
)

// ExtractRestaurants reads restaurant cards from a list page. Cards are keyed by
// their data-slug: cards without one, repeats and cards without a name are skipped.
// Website and image links are resolved against baseURL; missing values stay empty.
func ExtractRestaurants(html, baseURL string) ([]types.Restaurant, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &Error{URL: baseURL, Message: "failed to parse HTML", Cause: err}
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, &Error{URL: baseURL, Message: "invalid URL", Cause: err}
	}

	seen := make(map[string]bool)
	var restaurants []types.Restaurant
	doc.Find(restaurantCardSelector).Each(func(_ int, card *goquery.Selection) {
		slug := strings.TrimSpace(card.AttrOr("data-slug", ""))
		if slug == "" || seen[slug] {
			return
		}
		name := squash(card.Find(restaurantNameSelector).First().Text())
		if name == "" {
			return
		}
		seen[slug] = true

		r := types.Restaurant{
			Name:        name,
			Description: squash(card.Find(restaurantDescSelector).First().Text()),
			Phone:       squash(card.Find(restaurantPhoneSelector).First().Text()),
		}

		addr := card.Find(restaurantAddrSelector).First()
		if a := addr.Find("a").First(); a.Length() > 0 {
			r.Address = squash(a.Text())
		} else {
			r.Address = squash(addr.Text())
		}

		card.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			if strings.Contains(a.Text(), restaurantWebsiteLinkText) {
				r.Website = resolve(base, a.AttrOr("href", ""))
				return false
			}
			return true
		})

		photo := card.Find(restaurantPhotoSelector).First()
		if src, ok := photo.Find("span.e-image__image").Attr("data-original"); ok {
			r.Image = resolve(base, src)
		} else if src, ok := photo.Find("img").Attr("src"); ok {
			r.Image = resolve(base, src)
		}

		restaurants = append(restaurants, r)
	})
	return restaurants, nil
}

// FetchRestaurants downloads a restaurant list page and extracts its restaurants.
func FetchRestaurants(ctx context.Context, listURL string, getter Getter) ([]types.Restaurant, error) {
	if getter == nil {
		getter = HTTPGetter{}
	}
	page, err := getter.Get(ctx, listURL)
	if err != nil {
		return nil, err
	}
	return ExtractRestaurants(page.HTML, listURL)
}

func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
