package usecase

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"NewsPipeline/internal/domain"
	"NewsPipeline/internal/ports"
	"NewsPipeline/internal/scanner"
	"NewsPipeline/internal/textnorm"
)

const defaultTitlePrefixLength = 25

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Jobs       ports.JobStore
	Articles   ports.ArticleStore
	Strategies *scanner.Registry
	Prompter   ports.ImagePrompter
	Images     ports.ImageGenerator
	// ImageHost is optional; without it generated images keep the provider URL.
	ImageHost         ports.ImageHost
	Notifier          ports.Notifier
	TitlePrefixLength int
	Now               func() time.Time
	Logger            *zap.Logger
}

// Pipeline runs jobs: claim, discover, compose each unit, persist, record the outcome.
type Pipeline struct {
	jobs        ports.JobStore
	articles    ports.ArticleStore
	strategies  *scanner.Registry
	prompter    ports.ImagePrompter
	images      ports.ImageGenerator
	imageHost   ports.ImageHost
	notifier    ports.Notifier
	titlePrefix int
	now         func() time.Time
	logger      *zap.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.TitlePrefixLength <= 0 {
		deps.TitlePrefixLength = defaultTitlePrefixLength
	}
	return &Pipeline{
		jobs:        deps.Jobs,
		articles:    deps.Articles,
		strategies:  deps.Strategies,
		prompter:    deps.Prompter,
		images:      deps.Images,
		imageHost:   deps.ImageHost,
		notifier:    deps.Notifier,
		titlePrefix: deps.TitlePrefixLength,
		now:         deps.Now,
		logger:      deps.Logger.Named("pipeline"),
	}
}

// RunJob executes the job behind triggerKey. Scheduled and manual runs share this path.
// Errors wrap domain.ErrJobNotFound, domain.ErrJobPaused, domain.ErrJobBusy or
// domain.ErrFeedUnavailable; in the last case the summary is still returned.
func (p *Pipeline) RunJob(ctx context.Context, triggerKey string) (domain.RunSummary, error) {
	started := p.now()

	job, err := p.jobs.FindByTriggerKey(ctx, triggerKey)
	if err != nil {
		return domain.RunSummary{}, err
	}
	if !job.IsActive {
		return domain.RunSummary{}, fmt.Errorf("job %q: %w", job.Name, domain.ErrJobPaused)
	}
	strategy, err := p.strategies.Resolve(job.Type)
	if err != nil {
		return domain.RunSummary{}, fmt.Errorf("job %q: %w", job.Name, err)
	}
	if err := p.jobs.ClaimRun(ctx, job.ID, started); err != nil {
		return domain.RunSummary{}, err
	}

	summary := domain.RunSummary{
		RunID:         uuid.NewString(),
		JobName:       job.Name,
		PublishStatus: job.PublishStatus(),
	}
	logger := p.logger.With(
		zap.String("run_id", summary.RunID),
		zap.String("job", job.Name),
		zap.String("type", string(job.Type)),
	)
	logger.Info("job run started")

	units, err := strategy.Discover(ctx, job)
	if err != nil {
		if strategy.FatalDiscovery() {
			logger.Error("discovery failed", zap.Error(err))
			summary.Status = domain.RunFailed
			return p.finish(ctx, logger, job, summary, started, err)
		}
		logger.Warn("discovery failed, nothing to process", zap.Error(err))
	}

	for _, unit := range units {
		outcome := p.processUnit(ctx, logger, job, strategy, unit)
		summary.Results = append(summary.Results, outcome)
		if outcome.Status.Created() {
			summary.ArticlesPublished++
		}
	}
	summary.ArticlesProcessed = len(summary.Results)
	summary.Status = domain.RunSuccess
	return p.finish(ctx, logger, job, summary, started, nil)
}

func (p *Pipeline) finish(ctx context.Context, logger *zap.Logger, job domain.Job,
	summary domain.RunSummary, started time.Time, runErr error) (domain.RunSummary, error) {
	finished := p.now()
	summary.Duration = finished.Sub(started)

	completion := domain.RunCompletion{
		FinishedAt: finished,
		Status:     summary.Status,
		Articles:   summary.ArticlesPublished,
	}
	// The claim must always be released.
	ctx = context.WithoutCancel(ctx)
	if err := p.jobs.CompleteRun(ctx, job.ID, completion); err != nil {
		logger.Error("record run completion", zap.Error(err))
		if runErr == nil {
			runErr = fmt.Errorf("record run completion: %w", err)
		}
	}

	logger.Info("job run finished",
		zap.String("status", string(summary.Status)),
		zap.Int("processed", summary.ArticlesProcessed),
		zap.Int("published", summary.ArticlesPublished),
		zap.Duration("duration", summary.Duration),
	)

	if p.notifier != nil {
		if err := p.notifier.NotifyRun(ctx, summary); err != nil {
			logger.Warn("run notification failed", zap.Error(err))
		}
	}
	return summary, runErr
}

// processUnit never fails the run: every error, panics included, becomes an outcome.
func (p *Pipeline) processUnit(ctx context.Context, logger *zap.Logger, job domain.Job,
	strategy scanner.Strategy, unit scanner.Unit) (outcome domain.ItemOutcome) {
	outcome = domain.ItemOutcome{Title: unit.Label, SourceURL: unit.SourceURL, Keyword: unit.Keyword}
	defer func() {
		if r := recover(); r != nil {
			outcome.Status = domain.OutcomeError
			outcome.Error = fmt.Sprintf("panic: %v", r)
			logger.Error("unit panicked", zap.String("unit", unit.Label), zap.Any("panic", r))
		}
	}()

	comp, err := strategy.Compose(ctx, job, unit)
	if err != nil {
		return p.failed(logger, outcome, err)
	}
	outcome.Title = comp.Result.Title
	if comp.SourceURL != "" {
		outcome.SourceURL = comp.SourceURL
	}

	covered, err := p.articles.ExistsByTitleFragment(ctx, textnorm.TitleFragment(comp.Result.Title, p.titlePrefix))
	if err != nil {
		logger.Warn("title check failed, continuing", zap.String("title", comp.Result.Title), zap.Error(err))
	} else if covered {
		return p.failed(logger, outcome, fmt.Errorf("title %q: %w", comp.Result.Title, domain.ErrDuplicate))
	}

	image := p.selectThumbnail(ctx, logger, job.ThumbnailPriority, comp)
	saved, err := p.articles.Insert(ctx, buildArticle(job, comp, image))
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return p.failed(logger, outcome, err)
		}
		outcome.Status = domain.OutcomeSaveFailed
		outcome.Error = err.Error()
		logger.Warn("article save failed", zap.String("title", outcome.Title), zap.Error(err))
		return outcome
	}

	outcome.Status = job.PublishStatus()
	outcome.ArticleID = saved.ID
	outcome.Slug = saved.Slug
	outcome.Image = saved.FeaturedImage
	logger.Info("article created",
		zap.Int64("article_id", saved.ID),
		zap.String("slug", saved.Slug),
		zap.String("status", string(outcome.Status)),
	)
	return outcome
}

func (p *Pipeline) failed(logger *zap.Logger, outcome domain.ItemOutcome, err error) domain.ItemOutcome {
	outcome.Status = domain.OutcomeFor(err)
	outcome.Error = err.Error()
	if outcome.Status == domain.OutcomeDuplicate {
		logger.Info("duplicate skipped", zap.String("unit", outcome.Title), zap.Error(err))
	} else {
		logger.Warn("unit failed", zap.String("unit", outcome.Title),
			zap.String("status", string(outcome.Status)), zap.Error(err))
	}
	return outcome
}

func buildArticle(job domain.Job, comp scanner.Composition, image string) domain.Article {
	content := comp.Result.Content
	if job.ShowSource && comp.SourceName != "" {
		content += fmt.Sprintf("\n<p><em>%s: %s</em></p>", attributionLabel(job.Language), html.EscapeString(comp.SourceName))
	}
	keyword := comp.Keyword
	if keyword == "" {
		keyword = leadingWords(comp.Result.Title, focusKeywordWords)
	}
	return domain.Article{
		Title:         comp.Result.Title,
		Excerpt:       comp.Result.Excerpt,
		Content:       content,
		CategoryID:    job.CategoryID,
		FeaturedImage: image,
		SourceURL:     comp.SourceURL,
		SourceName:    comp.SourceName,
		IsPublished:   !job.PublishAsDraft,
		FocusKeyword:  keyword,
	}
}

func attributionLabel(language string) string {
	switch strings.ToLower(strings.TrimSpace(language)) {
	case "", "id", "indonesian", "bahasa indonesia":
		return "Sumber"
	default:
		return "Source"
	}
}
