package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsPipeline/internal/config"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	if in.Body != nil {
		f.body, _ = io.ReadAll(in.Body)
	}
	return &s3.PutObjectOutput{}, f.err
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

func TestS3ImageHostRehost(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/webp")
		_, _ = w.Write([]byte("webp-bytes"))
	}))
	defer server.Close()

	putter := &fakePutter{}
	host := newS3ImageHost(putter, "cms-media", "https://cdn.example/", server.Client(), nil)

	got, err := host.Rehost(context.Background(), server.URL+"/out-0.webp?sig=1")
	require.NoError(t, err)

	key := aws.ToString(putter.input.Key)
	assert.True(t, strings.HasPrefix(key, "ai-thumbnails/"))
	assert.True(t, strings.HasSuffix(key, ".webp"))
	assert.Equal(t, "cms-media", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "image/webp", aws.ToString(putter.input.ContentType))
	assert.Equal(t, []byte("webp-bytes"), putter.body)
	assert.Equal(t, "https://cdn.example/"+key, got)
}

func TestS3ImageHostSniffsContentType(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(pngHeader)
	}))
	defer server.Close()

	putter := &fakePutter{}
	host := newS3ImageHost(putter, "b", "https://cdn.example", server.Client(), nil)

	_, err := host.Rehost(context.Background(), server.URL+"/file")
	require.NoError(t, err)
	assert.Equal(t, "image/png", aws.ToString(putter.input.ContentType))
	assert.True(t, strings.HasSuffix(aws.ToString(putter.input.Key), ".png"))
}

func TestS3ImageHostErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/html":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html></html>"))
		default:
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte("jpeg"))
		}
	}))
	defer server.Close()

	host := newS3ImageHost(&fakePutter{}, "b", "https://cdn.example", server.Client(), nil)
	_, err := host.Rehost(context.Background(), server.URL+"/missing")
	assert.Error(t, err)
	_, err = host.Rehost(context.Background(), server.URL+"/html")
	assert.Error(t, err)

	failing := newS3ImageHost(&fakePutter{err: errors.New("access denied")}, "b", "https://cdn.example", server.Client(), nil)
	_, err = failing.Rehost(context.Background(), server.URL+"/photo")
	assert.ErrorContains(t, err, "access denied")
}

func TestDefaultPublicBase(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "http://minio:9000/media",
		defaultPublicBase(config.StorageConfig{Endpoint: "http://minio:9000/", Bucket: "media"}, "us-east-1"))
	assert.Equal(t, "https://media.s3.ap-southeast-1.amazonaws.com",
		defaultPublicBase(config.StorageConfig{Bucket: "media"}, "ap-southeast-1"))
}

func TestNewS3ImageHostRequiresBucket(t *testing.T) {
	t.Parallel()

	_, err := NewS3ImageHost(context.Background(), config.StorageConfig{}, nil)
	assert.Error(t, err)
}
