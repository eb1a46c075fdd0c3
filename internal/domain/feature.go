package domain

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// WeatherFileProperty is the feature property holding the EPW download link.
const WeatherFileProperty = "epw"

// FeatureURL extracts the weather file URL of the i-th feature. The property
// may be a bare URL or an HTML anchor; relative links resolve against base.
// A feature without a usable link yields a *SkippedFeature.
func FeatureURL(i int, f Feature, base *url.URL) (string, error) {
	if f.Properties == nil {
		return "", &SkippedFeature{Index: i, Reason: "feature has no properties"}
	}
	raw, ok := f.Properties[WeatherFileProperty]
	if !ok {
		return "", &SkippedFeature{Index: i, Reason: fmt.Sprintf("missing %q property", WeatherFileProperty)}
	}
	s, ok := raw.(string)
	if !ok {
		return "", &SkippedFeature{Index: i, Reason: fmt.Sprintf("%q property is %T, not a string", WeatherFileProperty, raw)}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", &SkippedFeature{Index: i, Reason: fmt.Sprintf("empty %q property", WeatherFileProperty)}
	}

	href := s
	if strings.Contains(s, "<") {
		href = anchorHref(s)
		if href == "" {
			return "", &SkippedFeature{Index: i, Reason: "no anchor href in " + s}
		}
	}

	u, err := url.Parse(href)
	if err != nil {
		return "", &SkippedFeature{Index: i, Reason: fmt.Sprintf("invalid url %q: %v", href, err)}
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", &SkippedFeature{Index: i, Reason: fmt.Sprintf("unsupported url %q", u.String())}
	}
	return u.String(), nil
}

// anchorHref returns the href of the first <a> element in an HTML snippet.
func anchorHref(snippet string) string {
	z := html.NewTokenizer(strings.NewReader(snippet))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data != "a" {
				continue
			}
			for _, attr := range tok.Attr {
				if attr.Key == "href" {
					return strings.TrimSpace(attr.Val)
				}
			}
			return ""
		}
	}
}
