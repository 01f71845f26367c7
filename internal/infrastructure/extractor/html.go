package extractor

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"NewsPipeline/internal/domain"
	"NewsPipeline/internal/infrastructure/htmltext"
	"NewsPipeline/internal/ports"
)

const (
	minParagraphRunes = 25
	maxPageBytes      = 4 << 20
)

const noiseSelectors = "script, style, noscript, nav, aside, footer, header, form, iframe, button, .share, .related, .advertisement"

// HTMLExtractor downloads a page and extracts the article body with goquery heuristics.
type HTMLExtractor struct {
	client    *http.Client
	userAgent string
}

var _ ports.Extractor = (*HTMLExtractor)(nil)

// NewHTMLExtractor wires an HTTP client; a nil client gets a 20s timeout.
func NewHTMLExtractor(client *http.Client, userAgent string) *HTMLExtractor {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &HTMLExtractor{client: client, userAgent: userAgent}
}

// Extract fetches pageURL and returns title, paragraph HTML and lead image.
func (e *HTMLExtractor) Extract(ctx context.Context, pageURL string) (domain.ExtractedContent, error) {
	base, err := url.Parse(pageURL)
	if err != nil || base.Host == "" {
		return domain.ExtractedContent{}, fmt.Errorf("invalid url %q", pageURL)
	}

	doc, err := e.fetchDocument(ctx, pageURL)
	if err != nil {
		return domain.ExtractedContent{}, err
	}

	return ParseDocument(doc, base), nil
}

func (e *HTMLExtractor) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

// ParseDocument applies the extraction heuristics to an already parsed page.
func ParseDocument(doc *goquery.Document, base *url.URL) domain.ExtractedContent {
	title := firstNonEmpty(
		metaContent(doc, `meta[property="og:title"]`),
		htmltext.Collapse(doc.Find("h1").First().Text()),
		htmltext.Collapse(doc.Find("title").First().Text()),
	)

	image := firstNonEmpty(
		metaContent(doc, `meta[property="og:image"]`),
		metaContent(doc, `meta[name="twitter:image"]`),
		attr(doc.Find("article img").First(), "src"),
	)

	doc.Find(noiseSelectors).Remove()

	paragraphs := paragraphsOf(bodyContainer(doc))
	var (
		b      strings.Builder
		length int
	)
	for _, p := range paragraphs {
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(p))
		b.WriteString("</p>\n")
		length += utf8.RuneCountInString(p)
	}

	return domain.ExtractedContent{
		Title:         title,
		Content:       strings.TrimSpace(b.String()),
		ContentLength: length,
		Image:         absolute(base, image),
	}
}

// bodyContainer prefers <article>, then the block holding the most paragraph text.
func bodyContainer(doc *goquery.Document) *goquery.Selection {
	if article := doc.Find("article").First(); article.Length() > 0 && len(paragraphsOf(article)) > 0 {
		return article
	}

	best := doc.Find("body")
	bestScore := 0
	doc.Find("main, section, div").Each(func(_ int, s *goquery.Selection) {
		score := 0
		s.ChildrenFiltered("p").Each(func(_ int, p *goquery.Selection) {
			score += utf8.RuneCountInString(htmltext.Collapse(p.Text()))
		})
		if score > bestScore {
			best, bestScore = s, score
		}
	})
	return best
}

func paragraphsOf(s *goquery.Selection) []string {
	var out []string
	s.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := htmltext.Collapse(p.Text())
		if utf8.RuneCountInString(text) >= minParagraphRunes {
			out = append(out, text)
		}
	})
	return out
}

func metaContent(doc *goquery.Document, selector string) string {
	return attr(doc.Find(selector).First(), "content")
}

func attr(s *goquery.Selection, name string) string {
	v, _ := s.Attr(name)
	return strings.TrimSpace(v)
}

func absolute(base *url.URL, ref string) string {
	if ref == "" || base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
