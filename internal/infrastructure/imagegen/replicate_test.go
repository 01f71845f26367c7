package imagegen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsPipeline/internal/config"
	"NewsPipeline/internal/credentials"
)

func newTestClient(endpoint, token string) *Client {
	return NewClient(config.ImageConfig{
		Endpoint:    endpoint,
		AspectRatio: "16:9",
		Timeout:     5 * time.Second,
	}, credentials.Static(token), nil)
}

func TestGenerateSucceeded(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "wait", r.Header.Get("Prefer"))

		var req predictionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a city flood at dawn", req.Input.Prompt)
		assert.Equal(t, "16:9", req.Input.AspectRatio)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"status":"succeeded","output":["https://cdn.example/out-0.webp"]}`))
	}))
	defer server.Close()

	got, err := newTestClient(server.URL, "tok").Generate(context.Background(), "a city flood at dawn")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/out-0.webp", got)
}

func TestGenerateNoImageCases(t *testing.T) {
	t.Parallel()

	responses := map[string]struct {
		status int
		body   string
	}{
		"processing": {http.StatusCreated, `{"status":"processing","output":null}`},
		"failed":     {http.StatusOK, `{"status":"failed","error":"nsfw"}`},
		"http error": {http.StatusUnauthorized, `{"detail":"bad token"}`},
		"garbage":    {http.StatusOK, `not json`},
	}
	for name, tc := range responses {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			got, err := newTestClient(server.URL, "tok").Generate(context.Background(), "prompt")
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestGenerateWithoutTokenSkipsRequest(t *testing.T) {
	t.Parallel()

	called := false
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer server.Close()

	got, err := newTestClient(server.URL, "").Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.False(t, called)
}

func TestFirstOutput(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://x/1.png", firstOutput(json.RawMessage(`"https://x/1.png"`)))
	assert.Equal(t, "https://x/2.png", firstOutput(json.RawMessage(`["", "https://x/2.png"]`)))
	assert.Empty(t, firstOutput(json.RawMessage(`{"a":1}`)))
	assert.Empty(t, firstOutput(nil))
}
