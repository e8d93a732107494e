package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/textsift/textsift/internal/crawl"
)

// Selectors removed from the body before text extraction when no <main>
// element is present. Fixed on purpose: the heuristic must stay
// enumerable and deterministic.
const chromeSelectors = "script, style, noscript, nav, header, footer, template"

// Config controls link scoping.
type Config struct {
	// SameHostOnly drops links pointing at a different host than the
	// page they were found on.
	SameHostOnly bool
}

// Extractor implements crawl.Extractor on top of goquery.
type Extractor struct {
	cfg Config
}

// New builds an Extractor.
func New(cfg Config) *Extractor {
	return &Extractor{cfg: cfg}
}

// Extract parses body and returns the page's main text plus its outbound
// links resolved and normalized against pageURL. Main text comes from the
// <main> element when one exists, otherwise from the body with
// script/style/navigation chrome stripped.
func (e *Extractor) Extract(body []byte, pageURL *url.URL) (crawl.PageResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return crawl.PageResult{}, fmt.Errorf("parse html: %w", err)
	}

	result := crawl.PageResult{
		URL:  pageURL.String(),
		Text: mainText(doc),
	}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		normalized, err := crawl.Normalize(href, pageURL)
		if err != nil {
			result.InvalidLinks++
			return
		}
		if e.cfg.SameHostOnly && !sameHost(normalized, pageURL) {
			return
		}
		result.Links = append(result.Links, normalized)
	})

	return result, nil
}

func mainText(doc *goquery.Document) string {
	if main := doc.Find("main").First(); main.Length() > 0 {
		return collapse(main.Text())
	}
	body := doc.Find("body").First()
	if body.Length() == 0 {
		return ""
	}
	body.Find(chromeSelectors).Remove()
	return collapse(body.Text())
}

// collapse squeezes runs of whitespace within lines and drops blank
// lines, joining the remaining blocks with single newlines.
func collapse(text string) string {
	var blocks []string
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		blocks = append(blocks, strings.Join(fields, " "))
	}
	return strings.Join(blocks, "\n")
}

func sameHost(normalized string, pageURL *url.URL) bool {
	u, err := url.Parse(normalized)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Hostname(), pageURL.Hostname())
}
