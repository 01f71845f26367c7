package ports

import (
	"context"
	"time"

	"NewsPipeline/internal/domain"
)

// FeedReader pulls RSS/Atom feeds into candidate items, newest first.
type FeedReader interface {
	Read(ctx context.Context, feedURL string) ([]domain.CandidateItem, error)
}

// NewsDiscovery finds fresh items and trending topics for search-driven jobs.
type NewsDiscovery interface {
	// Search returns past-24h news for a keyword; the products niche turns it into a shopping query.
	Search(ctx context.Context, keyword, niche string, region domain.Region) ([]domain.CandidateItem, error)
	Headlines(ctx context.Context, niche string, region domain.Region) ([]domain.CandidateItem, error)
	TrendingSearches(ctx context.Context, region domain.Region) ([]string, error)
}

// Extractor fetches an article page and extracts its readable content.
type Extractor interface {
	Extract(ctx context.Context, url string) (domain.ExtractedContent, error)
}

// ArticleStore is the CMS article table as seen by the pipeline.
type ArticleStore interface {
	ExistsBySourceURL(ctx context.Context, sourceURL string) (bool, error)
	ExistsByTitleFragment(ctx context.Context, fragment string) (bool, error)
	// Insert returns domain.ErrDuplicate when the source URL is already stored.
	Insert(ctx context.Context, article domain.Article) (domain.Article, error)
}

// JobStore owns the job rows and their run state.
type JobStore interface {
	FindByTriggerKey(ctx context.Context, key string) (domain.Job, error)
	ListActive(ctx context.Context) ([]domain.Job, error)
	List(ctx context.Context) ([]domain.Job, error)
	// ClaimRun flips the job to running; domain.ErrJobBusy when another run holds it.
	ClaimRun(ctx context.Context, jobID int64, now time.Time) error
	CompleteRun(ctx context.Context, jobID int64, completion domain.RunCompletion) error
}

// SettingsStore is the read-only key/value settings table.
type SettingsStore interface {
	Get(ctx context.Context, key string) (string, error)
}

// RewriteOptions carries the editorial knobs of a job.
type RewriteOptions struct {
	Language     string
	WritingStyle string
	ArticleModel string
	Keyword      string
}

// Rewriter turns source documents into publishable articles.
type Rewriter interface {
	// Rewrite never fails: on exhaustion it returns the original text with Fallback set.
	Rewrite(ctx context.Context, doc domain.SourceDocument, opts RewriteOptions) domain.RewriteResult
	Synthesize(ctx context.Context, docs []domain.SourceDocument, opts RewriteOptions) (domain.RewriteResult, error)
}

// ImagePrompter derives an image-generation prompt; it always returns one.
type ImagePrompter interface {
	ImagePrompt(ctx context.Context, title, content string) string
}

// ImageGenerator renders a prompt. An empty URL with a nil error means "no image".
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ImageHost copies a remote image to owned storage and returns its public URL.
type ImageHost interface {
	Rehost(ctx context.Context, imageURL string) (string, error)
}

// Notifier reports finished runs to an outbound channel.
type Notifier interface {
	NotifyRun(ctx context.Context, summary domain.RunSummary) error
}

// Scheduler controls when recurring runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
