package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"NewsPipeline/internal/domain"
	"NewsPipeline/internal/infrastructure/htmltext"
	"NewsPipeline/internal/ports"
)

// Client talks to the internal content-extraction endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

var _ ports.Extractor = (*Client)(nil)

// Response is the wire shape of the extraction endpoint.
type Response struct {
	Success bool          `json:"success"`
	Data    *ResponseData `json:"data,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// ResponseData carries a successful extraction.
type ResponseData struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	Image         string `json:"image,omitempty"`
	ContentLength int    `json:"contentLength"`
}

// NewClient creates a reusable HTTP client for the endpoint.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

// Extract posts {url} and decodes the extraction result.
func (c *Client) Extract(ctx context.Context, pageURL string) (domain.ExtractedContent, error) {
	var resp Response
	if err := c.post(ctx, map[string]string{"url": pageURL}, &resp); err != nil {
		return domain.ExtractedContent{}, err
	}
	if !resp.Success || resp.Data == nil {
		msg := strings.TrimSpace(resp.Error)
		if msg == "" {
			msg = "unsuccessful extraction"
		}
		return domain.ExtractedContent{}, fmt.Errorf("extract %s: %s", pageURL, msg)
	}

	length := resp.Data.ContentLength
	if length == 0 {
		length = utf8.RuneCountInString(htmltext.PlainText(resp.Data.Content))
	}
	return domain.ExtractedContent{
		Title:         resp.Data.Title,
		Content:       resp.Data.Content,
		ContentLength: length,
		Image:         resp.Data.Image,
	}, nil
}

func (c *Client) post(ctx context.Context, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	// The endpoint reports failures as {success:false} with a non-2xx status; decode either way.
	if resp.StatusCode >= http.StatusInternalServerError {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
