// Package resolver turns arbitrary AliExpress links (canonical or shortened)
// into validated numeric product identifiers.
package resolver

import (
	"context"
	"regexp"
	"strings"
)

const minProductIDLen = 10

var (
	productIDRegex = regexp.MustCompile(`/item/(\d+)\.html`)
	shortLinkRegex = regexp.MustCompile(`(?i)^https?://(s\.click\.aliexpress\.com/e/|a\.aliexpress\.com/_)[a-zA-Z0-9_-]+/?`)

	// Fallbacks tried in order when the canonical /item/ pattern misses.
	altPatterns = []*regexp.Regexp{
		regexp.MustCompile(`/p/[^/]+/([0-9]+)\.html`),
		regexp.MustCompile(`product/([0-9]+)`),
		regexp.MustCompile(`productId=(\d+)`),
	}
)

// Expander follows a shortened link to its final URL. One-shot: no retries,
// a timeout or non-200 final status is a plain failure.
type Expander interface {
	Expand(ctx context.Context, shortURL string) (string, error)
}

type Resolver struct {
	expander Expander
}

func New(expander Expander) *Resolver {
	return &Resolver{expander: expander}
}

// Resolve extracts the numeric product ID from link, expanding it first when
// it matches a known short-link pattern. The empty string means resolution
// failed; partial or malformed IDs are never returned.
func (r *Resolver) Resolve(ctx context.Context, link string) string {
	if link == "" {
		return ""
	}

	if shortLinkRegex.MatchString(link) {
		expanded, err := r.expander.Expand(ctx, link)
		if err != nil || expanded == "" {
			return ""
		}
		link = expanded
	}

	id := ExtractProductID(link)
	if !ValidProductID(id) {
		return ""
	}

	return id
}

// ExtractProductID pulls the product ID out of an already-canonical URL.
// The US storefront domain is normalized first so both variants match.
func ExtractProductID(url string) string {
	if url == "" {
		return ""
	}

	url = NormalizeHost(url)

	if m := productIDRegex.FindStringSubmatch(url); m != nil {
		return m[1]
	}

	for _, pattern := range altPatterns {
		if m := pattern.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}

	return ""
}

// ValidProductID reports whether id looks like a real product identifier:
// digits only and long enough to not be an error page artifact like "404".
func ValidProductID(id string) bool {
	if len(id) < minProductIDLen {
		return false
	}

	for _, c := range id {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}

// NormalizeHost maps the .aliexpress.us storefront to the canonical domain.
func NormalizeHost(url string) string {
	return strings.ReplaceAll(url, ".aliexpress.us", ".aliexpress.com")
}

// IsShortLink reports whether link matches a known shortened/redirect form.
func IsShortLink(link string) bool {
	return shortLinkRegex.MatchString(link)
}
