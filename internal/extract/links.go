package extract

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Link is an anchor found on a listing page
type Link struct {
	URL  string
	Text string
	Host string
}

// IsPDF reports whether the link points at a PDF document
func (l Link) IsPDF() bool {
	u, err := url.Parse(l.URL)
	if err != nil {
		return strings.HasSuffix(strings.ToLower(l.URL), ".pdf")
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".pdf")
}

// ExtractLinks returns the absolute http(s) links of a page, deduplicated by URL
func ExtractLinks(htmlContent string, sourceURL string) ([]Link, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	baseURL, err := url.Parse(sourceURL)
	if err != nil {
		return nil, err
	}

	var links []Link
	var walk func(*html.Node)

	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			href := ""
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					href = strings.TrimSpace(attr.Val)
				}
			}

			if href != "" {
				if resolved := resolveURL(baseURL, href); resolved != "" {
					host := ""
					if parsed, err := url.Parse(resolved); err == nil {
						host = parsed.Host
					}
					links = append(links, Link{
						URL:  resolved,
						Text: extractVisibleText(n),
						Host: host,
					})
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)

	return dedupeLinks(links), nil
}

// resolveURL resolves a relative URL against a base URL
func resolveURL(base *url.URL, href string) string {
	// Skip anchors
	if strings.HasPrefix(href, "#") {
		return ""
	}

	// Skip javascript: and mailto: links
	if strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(parsed)

	// Only keep http/https URLs
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}

	return resolved.String()
}

func dedupeLinks(links []Link) []Link {
	seen := make(map[string]bool)
	var unique []Link

	for _, l := range links {
		if !seen[l.URL] {
			seen[l.URL] = true
			unique = append(unique, l)
		}
	}

	return unique
}
