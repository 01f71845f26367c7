package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"NewsPipeline/internal/domain"
	"NewsPipeline/internal/ports"
	"NewsPipeline/internal/scanner"
)

const focusKeywordWords = 4

// StrategyDeps wires the driven adapters shared by the job-type strategies.
type StrategyDeps struct {
	Feeds     ports.FeedReader
	Discovery ports.NewsDiscovery
	Extractor ports.Extractor
	Articles  ports.ArticleStore
	Rewriter  ports.Rewriter
	// LocalFeeds are scanned by keyword jobs when search finds nothing.
	LocalFeeds        []string
	TitlePrefixLength int
	Logger            *zap.Logger
}

// NewStrategies returns the registry holding all three job-type strategies.
func NewStrategies(deps StrategyDeps) *scanner.Registry {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return scanner.NewRegistry(
		NewStandardStrategy(deps),
		NewKeywordStrategy(deps),
		NewTrendStrategy(deps),
	)
}

// StandardStrategy rewrites the newest items of a single RSS feed, one article per item.
type StandardStrategy struct {
	feeds    ports.FeedReader
	sources  sourceCollector
	rewriter ports.Rewriter
	logger   *zap.Logger
}

var _ scanner.Strategy = (*StandardStrategy)(nil)

func NewStandardStrategy(deps StrategyDeps) *StandardStrategy {
	logger := deps.Logger.Named("standard")
	return &StandardStrategy{
		feeds:    deps.Feeds,
		sources:  sourceCollector{articles: deps.Articles, extractor: deps.Extractor, logger: logger},
		rewriter: deps.Rewriter,
		logger:   logger,
	}
}

func (s *StandardStrategy) Type() domain.JobType { return domain.JobStandard }

func (s *StandardStrategy) FatalDiscovery() bool { return true }

// Discover reads the job feed and keeps the first Limit items, duplicates included.
func (s *StandardStrategy) Discover(ctx context.Context, job domain.Job) ([]scanner.Unit, error) {
	if strings.TrimSpace(job.RSSURL) == "" {
		return nil, fmt.Errorf("job %q has no feed url: %w", job.Name, domain.ErrFeedUnavailable)
	}
	items, err := s.feeds.Read(ctx, job.RSSURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFeedUnavailable, err)
	}

	items = limitItems(items, job.Limit())
	units := make([]scanner.Unit, 0, len(items))
	for _, item := range items {
		units = append(units, scanner.Unit{Label: item.Title, SourceURL: item.Link, Item: item})
	}
	s.logger.Debug("feed read", zap.String("feed", job.RSSURL), zap.Int("units", len(units)))
	return units, nil
}

func (s *StandardStrategy) Compose(ctx context.Context, job domain.Job, unit scanner.Unit) (scanner.Composition, error) {
	doc, err := s.sources.document(ctx, unit.Item)
	if err != nil {
		return scanner.Composition{}, err
	}

	result := s.rewriter.Rewrite(ctx, doc, rewriteOptions(job, ""))
	if result.Fallback {
		s.logger.Info("publishing original text", zap.String("url", doc.URL))
	}
	return scanner.Composition{
		Result:      result,
		SourceImage: doc.Image,
		SourceURL:   doc.URL,
		SourceName:  doc.SourceName,
		Keyword:     leadingWords(result.Title, focusKeywordWords),
	}, nil
}

func rewriteOptions(job domain.Job, keyword string) ports.RewriteOptions {
	return ports.RewriteOptions{
		Language:     job.Language,
		WritingStyle: job.WritingStyle,
		ArticleModel: job.ArticleModel,
		Keyword:      keyword,
	}
}

func leadingWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
