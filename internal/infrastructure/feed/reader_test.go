package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
<channel>
  <title>Kabar Harian</title>
  <item>
    <title>Older story</title>
    <link>https://example.org/older</link>
    <pubDate>Mon, 06 Jan 2025 08:00:00 GMT</pubDate>
    <description>&lt;p&gt;Old &lt;b&gt;news&lt;/b&gt;&lt;/p&gt;</description>
  </item>
  <item>
    <title>Newest story</title>
    <link>https://example.org/newest</link>
    <pubDate>Wed, 08 Jan 2025 08:00:00 GMT</pubDate>
    <description>Fresh text</description>
    <media:content url="https://cdn.example.org/newest.jpg" medium="image"/>
  </item>
  <item>
    <title>Middle story</title>
    <link>https://example.org/middle</link>
    <pubDate>Tue, 07 Jan 2025 08:00:00 GMT</pubDate>
    <enclosure url="https://cdn.example.org/middle.png" type="image/png" length="1"/>
  </item>
  <item>
    <title>No link</title>
  </item>
</channel>
</rss>`

func TestReaderSortsNewestFirst(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	reader := NewReader(server.Client(), "test-agent", time.Second, nil)
	items, err := reader.Read(context.Background(), server.URL+"/feed")
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "https://example.org/newest", items[0].Link)
	assert.Equal(t, "https://example.org/middle", items[1].Link)
	assert.Equal(t, "https://example.org/older", items[2].Link)

	assert.Equal(t, "Kabar Harian", items[0].Source)
	assert.Equal(t, "https://cdn.example.org/newest.jpg", items[0].Image)
	assert.Equal(t, "https://cdn.example.org/middle.png", items[1].Image)
	assert.Equal(t, "Old news", items[2].Snippet)
}

func TestReaderFailsOnUnreachableFeed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	reader := NewReader(server.Client(), "", time.Second, nil)
	_, err := reader.Read(context.Background(), server.URL)
	assert.Error(t, err)
}

func TestSplitPublisher(t *testing.T) {
	t.Parallel()

	title, source := splitPublisher("Banjir rendam Jakarta Utara - Kompas.com", "Google News")
	assert.Equal(t, "Banjir rendam Jakarta Utara", title)
	assert.Equal(t, "Kompas.com", source)

	title, source = splitPublisher("No publisher here", "Google News")
	assert.Equal(t, "No publisher here", title)
	assert.Equal(t, "Google News", source)
}
