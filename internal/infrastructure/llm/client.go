package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"NewsPipeline/internal/config"
	"NewsPipeline/internal/credentials"
)

var errMissingAPIKey = errors.New("llm api key is not configured")

// Completer sends one system+user prompt pair and returns the raw text reply.
type Completer interface {
	Complete(ctx context.Context, system, user string, temperature float32) (string, error)
}

// ChatClient implements Completer on top of an OpenAI-compatible chat completion API.
type ChatClient struct {
	baseURL     string
	model       string
	apiKey      *credentials.Resolver
	maxAttempts int
	retryDelay  time.Duration
	httpClient  *http.Client
	logger      *zap.Logger
}

var _ Completer = (*ChatClient)(nil)

// NewChatClient builds a client from configuration. The key resolver is consulted on every call.
func NewChatClient(cfg config.LLMConfig, apiKey *credentials.Resolver, logger *zap.Logger) *ChatClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &ChatClient{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		apiKey:      apiKey,
		maxAttempts: attempts,
		retryDelay:  cfg.RetryDelay,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// Complete retries every failure up to maxAttempts with a constant delay.
func (c *ChatClient) Complete(ctx context.Context, system, user string, temperature float32) (string, error) {
	key := c.apiKey.Value(ctx)
	if key == "" {
		return "", errMissingAPIKey
	}

	clientCfg := openai.DefaultConfig(key)
	clientCfg.BaseURL = c.baseURL
	clientCfg.HTTPClient = c.httpClient
	client := openai.NewClientWithConfig(clientCfg)

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}

	var (
		answer  string
		attempt int
	)
	operation := func() error {
		attempt++
		resp, err := client.CreateChatCompletion(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			if statusCode(err) == http.StatusTooManyRequests {
				c.logger.Warn("llm rate limited", zap.Int("attempt", attempt))
			} else {
				c.logger.Warn("llm request failed", zap.Int("attempt", attempt), zap.Error(err))
			}
			return err
		}
		if len(resp.Choices) == 0 {
			return errors.New("llm returned no choices")
		}
		content := strings.TrimSpace(resp.Choices[0].Message.Content)
		if content == "" {
			return errors.New("llm returned empty content")
		}
		answer = content
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryDelay), uint64(c.maxAttempts-1)),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return "", fmt.Errorf("chat completion after %d attempts: %w", attempt, err)
	}
	return answer, nil
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
