package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"NewsPipeline/internal/domain"
	"NewsPipeline/internal/ports"
	"NewsPipeline/internal/scanner"
	"NewsPipeline/internal/textnorm"
)

const headlineKeywordWords = 8

// TrendStrategy picks trending topics on its own and synthesizes one article per topic.
type TrendStrategy struct {
	discovery   ports.NewsDiscovery
	articles    ports.ArticleStore
	sources     sourceCollector
	rewriter    ports.Rewriter
	titlePrefix int
	logger      *zap.Logger
}

var _ scanner.Strategy = (*TrendStrategy)(nil)

func NewTrendStrategy(deps StrategyDeps) *TrendStrategy {
	logger := deps.Logger.Named("trend")
	return &TrendStrategy{
		discovery:   deps.Discovery,
		articles:    deps.Articles,
		sources:     sourceCollector{articles: deps.Articles, extractor: deps.Extractor, logger: logger},
		rewriter:    deps.Rewriter,
		titlePrefix: deps.TitlePrefixLength,
		logger:      logger,
	}
}

func (s *TrendStrategy) Type() domain.JobType { return domain.JobSmartTrend }

func (s *TrendStrategy) FatalDiscovery() bool { return false }

// Discover merges trend signals with topic headlines into at most Limit keywords.
// Either source failing only shrinks the list.
func (s *TrendStrategy) Discover(ctx context.Context, job domain.Job) ([]scanner.Unit, error) {
	trends, err := s.discovery.TrendingSearches(ctx, job.Region)
	if err != nil {
		s.logger.Warn("trend signals unavailable", zap.Error(err))
	}

	var fromHeadlines []string
	headlines, err := s.discovery.Headlines(ctx, job.Niche, job.Region)
	if err != nil {
		s.logger.Warn("headlines unavailable", zap.String("niche", job.Niche), zap.Error(err))
	}
	for _, h := range headlines {
		fromHeadlines = append(fromHeadlines, leadingWords(h.Title, headlineKeywordWords))
	}

	keywords := mergeKeywords(job.Limit(), trends, fromHeadlines)
	units := make([]scanner.Unit, 0, len(keywords))
	for _, kw := range keywords {
		units = append(units, scanner.Unit{Label: kw, Keyword: kw})
	}
	s.logger.Debug("trend keywords", zap.Strings("keywords", keywords))
	return units, nil
}

// Compose skips topics already covered, then searches, extracts and synthesizes.
func (s *TrendStrategy) Compose(ctx context.Context, job domain.Job, unit scanner.Unit) (scanner.Composition, error) {
	fragment := textnorm.TitleFragment(unit.Keyword, s.titlePrefix)
	covered, err := s.articles.ExistsByTitleFragment(ctx, fragment)
	if err != nil {
		return scanner.Composition{}, fmt.Errorf("check topic %q: %w", unit.Keyword, err)
	}
	if covered {
		return scanner.Composition{}, fmt.Errorf("topic %q: %w", unit.Keyword, domain.ErrDuplicate)
	}

	items, err := s.discovery.Search(ctx, unit.Keyword, job.Niche, job.Region)
	if err != nil {
		s.logger.Warn("topic search failed", zap.String("keyword", unit.Keyword), zap.Error(err))
	}
	if len(items) == 0 {
		return scanner.Composition{}, fmt.Errorf("no news for topic %q: %w", unit.Keyword, domain.ErrExtractFailed)
	}

	sortNewestFirst(items)
	return synthesizeUnit(ctx, s.sources, s.rewriter, job, unit.Keyword, limitItems(items, maxSynthesisSources))
}

// mergeKeywords concatenates the lists in order, dropping blanks and case-insensitive repeats.
func mergeKeywords(limit int, lists ...[]string) []string {
	seen := map[string]bool{}
	var out []string
	for _, list := range lists {
		for _, kw := range list {
			kw = strings.Join(strings.Fields(kw), " ")
			key := strings.ToLower(kw)
			if kw == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, kw)
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}
