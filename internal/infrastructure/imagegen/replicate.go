package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"NewsPipeline/internal/config"
	"NewsPipeline/internal/credentials"
	"NewsPipeline/internal/ports"
)

const statusSucceeded = "succeeded"

// Client renders prompts through a hosted text-to-image predictions API.
type Client struct {
	endpoint    string
	aspectRatio string
	token       *credentials.Resolver
	http        *http.Client
	logger      *zap.Logger
}

var _ ports.ImageGenerator = (*Client)(nil)

type predictionRequest struct {
	Input predictionInput `json:"input"`
}

type predictionInput struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
}

type predictionResponse struct {
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  any             `json:"error"`
}

// NewClient wires the provider endpoint; the token is resolved on every call.
func NewClient(cfg config.ImageConfig, token *credentials.Resolver, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		endpoint:    cfg.Endpoint,
		aspectRatio: cfg.AspectRatio,
		token:       token,
		http:        &http.Client{Timeout: timeout},
		logger:      logger.Named("imagegen"),
	}
}

// Generate returns the first output URL. Missing credentials, unfinished predictions and
// provider failures all yield an empty URL and no error.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	token := c.token.Value(ctx)
	if token == "" {
		c.logger.Debug("image token not configured, skipping generation")
		return "", nil
	}

	var resp predictionResponse
	payload := predictionRequest{Input: predictionInput{Prompt: prompt, AspectRatio: c.aspectRatio}}
	if err := c.post(ctx, token, payload, &resp); err != nil {
		c.logger.Warn("image generation failed", zap.Error(err))
		return "", nil
	}

	if resp.Status != statusSucceeded {
		c.logger.Info("image prediction not finished",
			zap.String("status", resp.Status), zap.Any("error", resp.Error))
		return "", nil
	}
	return firstOutput(resp.Output), nil
}

// firstOutput accepts either a single URL or a list of URLs.
func firstOutput(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, u := range list {
			if u = strings.TrimSpace(u); u != "" {
				return u
			}
		}
		return ""
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return strings.TrimSpace(single)
	}
	return ""
}

func (c *Client) post(ctx context.Context, token string, payload, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Prefer", "wait")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
