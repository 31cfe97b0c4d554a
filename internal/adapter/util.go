package adapter

import (
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/publicsuffix"

	"github.com/amishk599/jobmatch/internal/model"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// extractText converts an HTML or HTML-encoded string to plain text.
// Entities are unescaped, tags stripped, and whitespace collapsed.
func extractText(content string) string {
	unescaped := html.UnescapeString(content)
	plain := htmlTagRegex.ReplaceAllString(unescaped, "")
	return strings.Join(strings.Fields(plain), " ")
}

// textOf returns the cleaned text of the first element matching selector
// under s. ok is false when nothing matches or the text is blank.
func textOf(s *goquery.Selection, selector string) (string, bool) {
	el := s.Find(selector).First()
	if el.Length() == 0 {
		return "", false
	}
	text := extractText(el.Text())
	return text, text != ""
}

// titleOf returns the placeholder title when the card has no title element
// at all, and the (possibly blank) element text otherwise.
func titleOf(s *goquery.Selection, selector string) string {
	el := s.Find(selector).First()
	if el.Length() == 0 {
		return model.NoTitle
	}
	return extractText(el.Text())
}

// firstText tries each selector in turn.
func firstText(s *goquery.Selection, selectors ...string) (string, bool) {
	for _, sel := range selectors {
		if text, ok := textOf(s, sel); ok {
			return text, true
		}
	}
	return "", false
}

// attrOf returns attribute attr of the first element matching selector.
func attrOf(s *goquery.Selection, selector, attr string) (string, bool) {
	v, ok := s.Find(selector).First().Attr(attr)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// absoluteURL resolves href against base and accepts it only when the result
// is http(s) and lives on base's domain (subdomains included).
func absoluteURL(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	if !sameSite(abs.Hostname(), base.Hostname()) {
		return "", false
	}
	return abs.String(), true
}

// sameSite reports whether host and baseHost share a registrable domain per
// the public suffix list, so "uk.indeed.co.uk" matches "www.indeed.co.uk" but
// "evil.co.uk" does not. Hosts without one (IPs, localhost) must match exactly.
func sameSite(host, baseHost string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	baseHost = strings.ToLower(strings.TrimSuffix(baseHost, "."))
	root, err := publicsuffix.EffectiveTLDPlusOne(baseHost)
	if err != nil {
		return host == baseHost
	}
	got, err := publicsuffix.EffectiveTLDPlusOne(host)
	return err == nil && got == root
}
