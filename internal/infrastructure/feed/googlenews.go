package feed

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"NewsPipeline/internal/domain"
	"NewsPipeline/internal/ports"
)

const (
	googleNewsHost    = "news.google.com"
	googleNewsBase    = "https://news.google.com/rss"
	freshnessOperator = "when:1d"
	freshnessWindow   = 24 * time.Hour
	defaultTopic      = "WORLD"
	productsNiche     = "products"
)

var topicCodes = map[string]string{
	"technology":    "TECHNOLOGY",
	"business":      "BUSINESS",
	"sports":        "SPORTS",
	"entertainment": "ENTERTAINMENT",
	"science":       "SCIENCE",
	"health":        "HEALTH",
}

// Locale holds the Google News language/country parameters of a region.
type Locale struct {
	HL   string
	GL   string
	CEID string
}

// LocaleFor maps a job region to Google News parameters; unknown regions fall back to local.
func LocaleFor(region domain.Region) Locale {
	if region == domain.RegionWestern {
		return Locale{HL: "en", GL: "US", CEID: "US:en"}
	}
	return Locale{HL: "id", GL: "ID", CEID: "ID:id"}
}

func (l Locale) apply(q url.Values) {
	q.Set("hl", l.HL)
	q.Set("gl", l.GL)
	q.Set("ceid", l.CEID)
}

// SearchURL builds a past-24h Google News search feed.
func SearchURL(query string, region domain.Region) string {
	q := url.Values{}
	q.Set("q", strings.TrimSpace(query)+" "+freshnessOperator)
	LocaleFor(region).apply(q)
	return googleNewsBase + "/search?" + q.Encode()
}

// TopicURL builds a topic headline feed; niches outside the topic table use WORLD.
func TopicURL(niche string, region domain.Region) string {
	code, ok := topicCodes[strings.ToLower(strings.TrimSpace(niche))]
	if !ok {
		code = defaultTopic
	}
	q := url.Values{}
	LocaleFor(region).apply(q)
	return fmt.Sprintf("%s/headlines/section/topic/%s?%s", googleNewsBase, code, q.Encode())
}

// ProductsQuery rewrites a keyword into a shopping-intent search.
func ProductsQuery(keyword string, region domain.Region) string {
	keyword = strings.TrimSpace(keyword)
	if region == domain.RegionWestern {
		if keyword == "" {
			keyword = "new product launch"
		}
		return keyword + " price specs review"
	}
	if keyword == "" {
		keyword = "produk baru"
	}
	return keyword + " harga spesifikasi terbaru"
}

// IsProductsNiche reports whether the niche asks for shopping-intent queries.
func IsProductsNiche(niche string) bool {
	return strings.EqualFold(strings.TrimSpace(niche), productsNiche)
}

// GoogleNews implements discovery over Google News and Google Trends feeds.
type GoogleNews struct {
	reader        ports.FeedReader
	trendsPattern string
	now           func() time.Time
	logger        *zap.Logger
}

var _ ports.NewsDiscovery = (*GoogleNews)(nil)

// NewGoogleNews wires discovery to a feed reader. trendsPattern is a printf pattern taking the country code.
func NewGoogleNews(reader ports.FeedReader, trendsPattern string, logger *zap.Logger) *GoogleNews {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoogleNews{
		reader:        reader,
		trendsPattern: trendsPattern,
		now:           time.Now,
		logger:        logger,
	}
}

// Search reads the keyword search feed.
func (g *GoogleNews) Search(ctx context.Context, keyword, niche string, region domain.Region) ([]domain.CandidateItem, error) {
	query := keyword
	if IsProductsNiche(niche) {
		query = ProductsQuery(keyword, region)
	}
	items, err := g.reader.Read(ctx, SearchURL(query, region))
	if err != nil {
		return nil, fmt.Errorf("google news search %q: %w", query, err)
	}
	g.logger.Debug("google news search", zap.String("query", query), zap.Int("items", len(items)))
	return items, nil
}

// Headlines reads the niche topic feed, dropping items older than 24h.
func (g *GoogleNews) Headlines(ctx context.Context, niche string, region domain.Region) ([]domain.CandidateItem, error) {
	if IsProductsNiche(niche) {
		return g.Search(ctx, "", niche, region)
	}
	items, err := g.reader.Read(ctx, TopicURL(niche, region))
	if err != nil {
		return nil, fmt.Errorf("google news headlines %s: %w", niche, err)
	}
	return g.fresh(items), nil
}

// TrendingSearches returns the trend-signal keywords for the region's country.
func (g *GoogleNews) TrendingSearches(ctx context.Context, region domain.Region) ([]string, error) {
	if g.trendsPattern == "" {
		return nil, nil
	}
	feedURL := fmt.Sprintf(g.trendsPattern, LocaleFor(region).GL)
	items, err := g.reader.Read(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("trending searches: %w", err)
	}
	keywords := make([]string, 0, len(items))
	for _, it := range items {
		if kw := strings.TrimSpace(it.Title); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords, nil
}

func (g *GoogleNews) fresh(items []domain.CandidateItem) []domain.CandidateItem {
	cutoff := g.now().Add(-freshnessWindow)
	kept := items[:0]
	for _, it := range items {
		if !it.PublishedAt.IsZero() && it.PublishedAt.Before(cutoff) {
			continue
		}
		kept = append(kept, it)
	}
	return kept
}
