package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"NewsPipeline/internal/domain"
	"NewsPipeline/internal/infrastructure/htmltext"
	"NewsPipeline/internal/ports"
)

const defaultTimeout = 15 * time.Second

// Reader fetches RSS/Atom feeds through gofeed and normalizes their items.
type Reader struct {
	parser  *gofeed.Parser
	timeout time.Duration
	logger  *zap.Logger
}

var _ ports.FeedReader = (*Reader)(nil)

// NewReader builds a reader; timeout defaults to 15s.
func NewReader(client *http.Client, userAgent string, timeout time.Duration, logger *zap.Logger) *Reader {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	parser := gofeed.NewParser()
	parser.Client = client
	if userAgent != "" {
		parser.UserAgent = userAgent
	}
	return &Reader{parser: parser, timeout: timeout, logger: logger}
}

// Read downloads feedURL and returns its items sorted newest first.
func (r *Reader) Read(ctx context.Context, feedURL string) ([]domain.CandidateItem, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	parsed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	googleNews := isGoogleNews(feedURL)
	items := make([]domain.CandidateItem, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		if it == nil || strings.TrimSpace(it.Link) == "" {
			continue
		}
		items = append(items, toCandidate(it, parsed.Title, googleNews))
	}

	sortNewestFirst(items)
	r.logger.Debug("feed read", zap.String("url", feedURL), zap.Int("items", len(items)))
	return items, nil
}

func toCandidate(it *gofeed.Item, feedTitle string, googleNews bool) domain.CandidateItem {
	title := htmltext.Collapse(it.Title)
	source := strings.TrimSpace(feedTitle)
	if googleNews {
		title, source = splitPublisher(title, source)
	}

	var published time.Time
	switch {
	case it.PublishedParsed != nil:
		published = *it.PublishedParsed
	case it.UpdatedParsed != nil:
		published = *it.UpdatedParsed
	}

	snippet := htmltext.PlainText(it.Description)
	if content := htmltext.PlainText(it.Content); len(content) > len(snippet) {
		snippet = content
	}

	return domain.CandidateItem{
		Title:       title,
		Link:        strings.TrimSpace(it.Link),
		PublishedAt: published,
		Source:      source,
		Image:       itemImage(it),
		Snippet:     snippet,
	}
}

func itemImage(it *gofeed.Item) string {
	if it.Image != nil && it.Image.URL != "" {
		return it.Image.URL
	}
	for _, enc := range it.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") && enc.URL != "" {
			return enc.URL
		}
	}
	if media, ok := it.Extensions["media"]; ok {
		for _, name := range []string{"content", "thumbnail"} {
			for _, ext := range media[name] {
				if u := ext.Attrs["url"]; u != "" {
					return u
				}
			}
		}
	}
	return ""
}

// splitPublisher separates Google News' "Headline - Publisher" titles.
func splitPublisher(title, fallback string) (string, string) {
	idx := strings.LastIndex(title, " - ")
	if idx <= 0 {
		return title, fallback
	}
	publisher := strings.TrimSpace(title[idx+3:])
	if publisher == "" {
		return title, fallback
	}
	return strings.TrimSpace(title[:idx]), publisher
}

func sortNewestFirst(items []domain.CandidateItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
}

func isGoogleNews(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Hostname(), googleNewsHost)
}
