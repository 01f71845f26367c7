package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"NewsPipeline/internal/config"
	"NewsPipeline/internal/ports"
)

const (
	thumbnailPrefix = "ai-thumbnails"
	maxImageBytes   = 10 << 20
)

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ImageHost copies generated images into an S3-compatible bucket.
type S3ImageHost struct {
	client     objectPutter
	bucket     string
	publicBase string
	http       *http.Client
	logger     *zap.Logger
}

var _ ports.ImageHost = (*S3ImageHost)(nil)

// NewS3ImageHost builds the S3 client from configuration. Bucket must be set.
func NewS3ImageHost(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*S3ImageHost, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	publicBase := cfg.PublicBaseURL
	if publicBase == "" {
		publicBase = defaultPublicBase(cfg, region)
	}
	return newS3ImageHost(client, cfg.Bucket, publicBase, &http.Client{Timeout: 30 * time.Second}, logger), nil
}

func newS3ImageHost(client objectPutter, bucket, publicBase string, httpClient *http.Client, logger *zap.Logger) *S3ImageHost {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &S3ImageHost{
		client:     client,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
		http:       httpClient,
		logger:     logger.Named("imagehost"),
	}
}

func defaultPublicBase(cfg config.StorageConfig, region string) string {
	if cfg.Endpoint != "" {
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, region)
}

// Rehost downloads imageURL and uploads it under ai-thumbnails/<uuid>.<ext>.
func (h *S3ImageHost) Rehost(ctx context.Context, imageURL string) (string, error) {
	data, contentType, err := h.download(ctx, imageURL)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%s%s", thumbnailPrefix, uuid.NewString(), extensionFor(contentType, imageURL))
	_, err = h.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(h.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	h.logger.Debug("image rehosted", zap.String("key", key), zap.Int("bytes", len(data)))
	return h.publicBase + "/" + key, nil
}

func (h *S3ImageHost) download(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("new request: %w", err)
	}

	resp, err := h.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download image: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, "", fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}
	if !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", fmt.Errorf("download image: unsupported content type %q", contentType)
	}
	return data, contentType, nil
}

func extensionFor(contentType, imageURL string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	if ext := path.Ext(strings.SplitN(imageURL, "?", 2)[0]); ext != "" && len(ext) <= 5 {
		return strings.ToLower(ext)
	}
	return ".img"
}
