package domain

import (
	"errors"
	"time"
)

// OutcomeStatus enumerates what happened to one unit of work inside a run.
type OutcomeStatus string

const (
	OutcomePublished     OutcomeStatus = "published"
	OutcomeDraft         OutcomeStatus = "draft"
	OutcomeDuplicate     OutcomeStatus = "duplicate"
	OutcomeExtractFailed OutcomeStatus = "extract_failed"
	OutcomeRewriteFailed OutcomeStatus = "rewrite_failed"
	OutcomeSaveFailed    OutcomeStatus = "save_failed"
	OutcomeError         OutcomeStatus = "error"
)

// Created reports whether the outcome produced an article row.
func (s OutcomeStatus) Created() bool {
	return s == OutcomePublished || s == OutcomeDraft
}

// ItemOutcome is one entry of the run summary.
type ItemOutcome struct {
	Title     string        `json:"title"`
	SourceURL string        `json:"sourceUrl,omitempty"`
	Keyword   string        `json:"keyword,omitempty"`
	Status    OutcomeStatus `json:"status"`
	ArticleID int64         `json:"articleId,omitempty"`
	Slug      string        `json:"slug,omitempty"`
	Image     string        `json:"image,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// RunSummary is returned to the invoker once a run completes.
type RunSummary struct {
	RunID             string
	JobName           string
	Status            RunStatus
	ArticlesProcessed int
	ArticlesPublished int
	PublishStatus     OutcomeStatus
	Duration          time.Duration
	Results           []ItemOutcome
}

// RunCompletion is the run-state update persisted at the end of a run.
type RunCompletion struct {
	FinishedAt time.Time
	Status     RunStatus
	Articles   int
}

var (
	ErrJobNotFound     = errors.New("job not found")
	ErrJobPaused       = errors.New("job is paused")
	ErrJobBusy         = errors.New("job is already running")
	ErrFeedUnavailable = errors.New("feed unavailable")
	ErrDuplicate       = errors.New("duplicate article")
	ErrExtractFailed   = errors.New("content extraction failed")
	ErrRewriteFailed   = errors.New("rewrite failed")
)

// OutcomeFor maps an item-level error to its outcome status.
func OutcomeFor(err error) OutcomeStatus {
	switch {
	case errors.Is(err, ErrDuplicate):
		return OutcomeDuplicate
	case errors.Is(err, ErrExtractFailed):
		return OutcomeExtractFailed
	case errors.Is(err, ErrRewriteFailed):
		return OutcomeRewriteFailed
	default:
		return OutcomeError
	}
}
