package feed

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsPipeline/internal/domain"
)

type recordingReader struct {
	urls  []string
	items []domain.CandidateItem
	err   error
}

func (r *recordingReader) Read(_ context.Context, feedURL string) ([]domain.CandidateItem, error) {
	r.urls = append(r.urls, feedURL)
	return r.items, r.err
}

func TestSearchURLAddsFreshnessAndLocale(t *testing.T) {
	t.Parallel()

	raw := SearchURL("banjir jakarta", domain.RegionLocal)
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "news.google.com", u.Host)
	assert.Equal(t, "/rss/search", u.Path)
	q := u.Query()
	assert.Equal(t, "banjir jakarta when:1d", q.Get("q"))
	assert.Equal(t, "id", q.Get("hl"))
	assert.Equal(t, "ID", q.Get("gl"))
	assert.Equal(t, "ID:id", q.Get("ceid"))

	western, err := url.Parse(SearchURL("floods", domain.RegionWestern))
	require.NoError(t, err)
	assert.Equal(t, "US", western.Query().Get("gl"))
	assert.Equal(t, "en", western.Query().Get("hl"))
	assert.Equal(t, "US:en", western.Query().Get("ceid"))
}

func TestTopicURL(t *testing.T) {
	t.Parallel()

	assert.Contains(t, TopicURL("Technology", domain.RegionWestern), "/headlines/section/topic/TECHNOLOGY?")
	assert.Contains(t, TopicURL("health", domain.RegionLocal), "/topic/HEALTH?")
	assert.Contains(t, TopicURL("gardening", domain.RegionLocal), "/topic/WORLD?")
}

func TestProductsQuery(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "iphone 16 harga spesifikasi terbaru", ProductsQuery("iphone 16", domain.RegionLocal))
	assert.Equal(t, "pixel price specs review", ProductsQuery("pixel", domain.RegionWestern))
	assert.True(t, IsProductsNiche(" Products "))
	assert.False(t, IsProductsNiche("sports"))
}

func TestGoogleNewsSearchUsesProductsQuery(t *testing.T) {
	t.Parallel()

	reader := &recordingReader{}
	g := NewGoogleNews(reader, "", nil)

	_, err := g.Search(context.Background(), "kulkas", "products", domain.RegionLocal)
	require.NoError(t, err)
	require.Len(t, reader.urls, 1)

	u, err := url.Parse(reader.urls[0])
	require.NoError(t, err)
	assert.Equal(t, "kulkas harga spesifikasi terbaru when:1d", u.Query().Get("q"))
}

func TestGoogleNewsHeadlinesDropsStaleItems(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 8, 12, 0, 0, 0, time.UTC)
	reader := &recordingReader{items: []domain.CandidateItem{
		{Title: "fresh", Link: "a", PublishedAt: now.Add(-2 * time.Hour)},
		{Title: "stale", Link: "b", PublishedAt: now.Add(-30 * time.Hour)},
		{Title: "undated", Link: "c"},
	}}
	g := NewGoogleNews(reader, "", nil)
	g.now = func() time.Time { return now }

	items, err := g.Headlines(context.Background(), "sports", domain.RegionLocal)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "fresh", items[0].Title)
	assert.Equal(t, "undated", items[1].Title)
	assert.Contains(t, reader.urls[0], "/topic/SPORTS")
}

func TestTrendingSearches(t *testing.T) {
	t.Parallel()

	reader := &recordingReader{items: []domain.CandidateItem{{Title: " timnas "}, {Title: ""}, {Title: "gempa"}}}
	g := NewGoogleNews(reader, "https://trends.example/rss?geo=%s", nil)

	keywords, err := g.TrendingSearches(context.Background(), domain.RegionWestern)
	require.NoError(t, err)
	assert.Equal(t, []string{"timnas", "gempa"}, keywords)
	assert.Equal(t, "https://trends.example/rss?geo=US", reader.urls[0])

	reader.err = errors.New("boom")
	_, err = g.TrendingSearches(context.Background(), domain.RegionLocal)
	assert.Error(t, err)
}
