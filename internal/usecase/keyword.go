package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"NewsPipeline/internal/domain"
	"NewsPipeline/internal/ports"
	"NewsPipeline/internal/scanner"
)

// KeywordStrategy synthesizes one article per run from the freshest news about a keyword.
type KeywordStrategy struct {
	discovery  ports.NewsDiscovery
	feeds      ports.FeedReader
	localFeeds []string
	sources    sourceCollector
	rewriter   ports.Rewriter
	logger     *zap.Logger
}

var _ scanner.Strategy = (*KeywordStrategy)(nil)

func NewKeywordStrategy(deps StrategyDeps) *KeywordStrategy {
	logger := deps.Logger.Named("keyword")
	return &KeywordStrategy{
		discovery:  deps.Discovery,
		feeds:      deps.Feeds,
		localFeeds: deps.LocalFeeds,
		sources:    sourceCollector{articles: deps.Articles, extractor: deps.Extractor, logger: logger},
		rewriter:   deps.Rewriter,
		logger:     logger,
	}
}

func (s *KeywordStrategy) Type() domain.JobType { return domain.JobKeywordWatcher }

func (s *KeywordStrategy) FatalDiscovery() bool { return false }

// Discover searches the keyword and falls back to the local feeds. No candidates means
// no units, which is a successful empty run.
func (s *KeywordStrategy) Discover(ctx context.Context, job domain.Job) ([]scanner.Unit, error) {
	keyword := strings.TrimSpace(job.SearchKeyword)
	if keyword == "" {
		return nil, fmt.Errorf("job %q has no search keyword", job.Name)
	}

	items, err := s.discovery.Search(ctx, keyword, job.Niche, job.Region)
	if err != nil {
		s.logger.Warn("keyword search failed", zap.String("keyword", keyword), zap.Error(err))
		items = nil
	}
	if len(items) == 0 {
		items = s.scanLocalFeeds(ctx, keyword)
		s.logger.Info("search empty, scanned local feeds",
			zap.String("keyword", keyword), zap.Int("matches", len(items)))
	}
	if len(items) == 0 {
		return nil, nil
	}

	sortNewestFirst(items)
	return []scanner.Unit{{
		Label:   keyword,
		Keyword: keyword,
		Items:   limitItems(items, maxSynthesisSources),
	}}, nil
}

func (s *KeywordStrategy) Compose(ctx context.Context, job domain.Job, unit scanner.Unit) (scanner.Composition, error) {
	return synthesizeUnit(ctx, s.sources, s.rewriter, job, unit.Keyword, unit.Items)
}

func (s *KeywordStrategy) scanLocalFeeds(ctx context.Context, keyword string) []domain.CandidateItem {
	var matches []domain.CandidateItem
	for _, feed := range s.localFeeds {
		items, err := s.feeds.Read(ctx, feed)
		if err != nil {
			s.logger.Warn("local feed unavailable", zap.String("feed", feed), zap.Error(err))
			continue
		}
		for _, item := range items {
			if matchesKeyword(item, keyword) {
				matches = append(matches, item)
			}
		}
	}
	return matches
}

// matchesKeyword requires every keyword word in the title or snippet, case-insensitively.
func matchesKeyword(item domain.CandidateItem, keyword string) bool {
	haystack := strings.ToLower(item.Title + " " + item.Snippet)
	words := strings.Fields(strings.ToLower(keyword))
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if !strings.Contains(haystack, w) {
			return false
		}
	}
	return true
}

// synthesizeUnit is shared by the keyword and trend strategies.
func synthesizeUnit(ctx context.Context, sources sourceCollector, rewriter ports.Rewriter,
	job domain.Job, keyword string, items []domain.CandidateItem) (scanner.Composition, error) {
	docs, err := sources.collect(ctx, items)
	if err != nil {
		return scanner.Composition{}, err
	}

	result, err := rewriter.Synthesize(ctx, docs, rewriteOptions(job, keyword))
	if err != nil {
		return scanner.Composition{}, fmt.Errorf("%w: %v", domain.ErrRewriteFailed, err)
	}
	return scanner.Composition{
		Result:      result,
		SourceImage: firstImage(docs),
		SourceURL:   docs[0].URL,
		SourceName:  joinSourceNames(docs),
		Keyword:     keyword,
	}, nil
}

func sortNewestFirst(items []domain.CandidateItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
}
