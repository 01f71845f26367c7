package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"NewsPipeline/internal/config"
	"NewsPipeline/internal/domain"
	"NewsPipeline/internal/ports"
)

const (
	defaultAPIBase = "https://api.telegram.org"
	maxListedItems = 10
)

// Notifier posts run summaries to a Telegram chat via bot API.
type Notifier struct {
	apiBase  string
	botToken string
	chatID   string
	client   *http.Client
	logger   *zap.Logger
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(cfg config.TelegramConfig, logger *zap.Logger) *Notifier {
	base := strings.TrimRight(cfg.APIBase, "/")
	if base == "" {
		base = defaultAPIBase
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{
		apiBase:  base,
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		client:   &http.Client{Timeout: 5 * time.Second},
		logger:   logger.Named("telegram"),
	}
}

// NotifyRun sends a short digest of a finished run.
func (n *Notifier) NotifyRun(ctx context.Context, summary domain.RunSummary) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", FormatSummary(summary))
	form.Set("disable_web_page_preview", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	n.logger.Debug("run summary sent", zap.String("run_id", summary.RunID))
	return nil
}

// FormatSummary renders the plain-text message body for a run.
func FormatSummary(s domain.RunSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", s.JobName, s.Status)
	fmt.Fprintf(&b, "%d processed, %d %s in %.2fs\n",
		s.ArticlesProcessed, s.ArticlesPublished, s.PublishStatus, s.Duration.Seconds())

	for i, r := range s.Results {
		if i == maxListedItems {
			fmt.Fprintf(&b, "... and %d more\n", len(s.Results)-maxListedItems)
			break
		}
		fmt.Fprintf(&b, "- [%s] %s\n", r.Status, r.Title)
	}
	return strings.TrimRight(b.String(), "\n")
}
