package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"NewsPipeline/internal/domain"
	"NewsPipeline/internal/ports"
)

const (
	minContentLength    = 200
	minSnippetLength    = 50
	maxSynthesisSources = 5
)

// sourceCollector turns candidate items into rewriter inputs: URL dedup, extraction,
// then the snippet fallback.
type sourceCollector struct {
	articles  ports.ArticleStore
	extractor ports.Extractor
	logger    *zap.Logger
}

// document resolves one item. Known source URLs never reach the extractor.
func (c sourceCollector) document(ctx context.Context, item domain.CandidateItem) (domain.SourceDocument, error) {
	exists, err := c.articles.ExistsBySourceURL(ctx, item.Link)
	if err != nil {
		return domain.SourceDocument{}, fmt.Errorf("check source url: %w", err)
	}
	if exists {
		return domain.SourceDocument{}, fmt.Errorf("source %s: %w", item.Link, domain.ErrDuplicate)
	}

	doc := domain.SourceDocument{
		Title:      item.Title,
		SourceName: sourceName(item),
		URL:        item.Link,
		Image:      item.Image,
	}

	extracted, err := c.extractor.Extract(ctx, item.Link)
	switch {
	case err != nil:
		c.logger.Debug("extraction failed, trying snippet", zap.String("url", item.Link), zap.Error(err))
	case extracted.ContentLength > minContentLength:
		doc.Content = extracted.Content
		if doc.Title == "" {
			doc.Title = extracted.Title
		}
		if extracted.Image != "" {
			doc.Image = extracted.Image
		}
		return doc, nil
	default:
		c.logger.Debug("extracted content too short, trying snippet",
			zap.String("url", item.Link), zap.Int("length", extracted.ContentLength))
	}

	snippet := strings.TrimSpace(item.Snippet)
	if utf8.RuneCountInString(snippet) > minSnippetLength {
		doc.Content = snippet
		return doc, nil
	}
	return domain.SourceDocument{}, fmt.Errorf("source %s: %w", item.Link, domain.ErrExtractFailed)
}

// collect resolves up to maxSynthesisSources documents from items, in order.
func (c sourceCollector) collect(ctx context.Context, items []domain.CandidateItem) ([]domain.SourceDocument, error) {
	var (
		docs       []domain.SourceDocument
		duplicates int
	)
	for _, item := range items {
		if len(docs) == maxSynthesisSources {
			break
		}
		doc, err := c.document(ctx, item)
		if err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				duplicates++
			}
			c.logger.Debug("source skipped", zap.String("url", item.Link), zap.Error(err))
			continue
		}
		docs = append(docs, doc)
	}

	if len(docs) > 0 {
		return docs, nil
	}
	if duplicates > 0 && duplicates == len(items) {
		return nil, fmt.Errorf("all %d sources already published: %w", duplicates, domain.ErrDuplicate)
	}
	return nil, fmt.Errorf("no usable source among %d candidates: %w", len(items), domain.ErrExtractFailed)
}

func sourceName(item domain.CandidateItem) string {
	if s := strings.TrimSpace(item.Source); s != "" {
		return s
	}
	u, err := url.Parse(item.Link)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// joinSourceNames lists distinct publishers in order, at most three.
func joinSourceNames(docs []domain.SourceDocument) string {
	seen := map[string]bool{}
	var names []string
	for _, d := range docs {
		key := strings.ToLower(d.SourceName)
		if d.SourceName == "" || seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, d.SourceName)
		if len(names) == 3 {
			break
		}
	}
	return strings.Join(names, ", ")
}

func firstImage(docs []domain.SourceDocument) string {
	for _, d := range docs {
		if d.Image != "" {
			return d.Image
		}
	}
	return ""
}

func limitItems(items []domain.CandidateItem, n int) []domain.CandidateItem {
	if len(items) > n {
		return items[:n]
	}
	return items
}
