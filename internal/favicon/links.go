package favicon

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// iconRels are the normalized rel values whose href points at a favicon.
var iconRels = map[string]struct{}{ //nolint: gochecknoglobals
	"icon":             {},
	"shortcut icon":    {},
	"apple-touch-icon": {},
}

// ExtractIconLinks returns, in document order, the href of every <link> element
// whose rel is "icon", "shortcut icon" or "apple-touch-icon". The rel value is
// compared case-insensitively with its whitespace collapsed; attribute order
// does not matter. Empty hrefs are dropped.
func ExtractIconLinks(html []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("could not parse html: %w", err)
	}

	var hrefs []string
	doc.Find("link[rel][href]").Each(func(_ int, s *goquery.Selection) {
		rel, _ := s.Attr("rel")
		if _, ok := iconRels[normalizeRel(rel)]; !ok {
			return
		}

		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" {
			return
		}

		hrefs = append(hrefs, href)
	})

	return hrefs, nil
}

func normalizeRel(rel string) string {
	return strings.ToLower(strings.Join(strings.Fields(rel), " "))
}

// ResolveURL turns an href found on the page at base into an absolute URL:
//   - http:// and https:// URLs are returned unchanged
//   - protocol-relative "//host/path" gets https:
//   - root-relative "/path" is appended to base
//   - anything else is treated as relative to the site root, not to the page
func ResolveURL(href string, base BaseURL) string {
	switch {
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	case strings.HasPrefix(href, "/"):
		return base.String() + href
	default:
		return base.String() + "/" + href
	}
}

// IconURLs extracts icon links from html and resolves them against base.
// The result is de-duplicated preserving first-seen order. Inline data: URIs
// are skipped since there is nothing to fetch.
func IconURLs(html []byte, base BaseURL) ([]string, error) {
	hrefs, err := ExtractIconLinks(html)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(hrefs))
	urls := make([]string, 0, len(hrefs))
	for _, href := range hrefs {
		if hasScheme(href, "data:") {
			continue
		}

		u := ResolveURL(href, base)
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}

	return urls, nil
}

func hasScheme(href, scheme string) bool {
	return len(href) >= len(scheme) && strings.EqualFold(href[:len(scheme)], scheme)
}
