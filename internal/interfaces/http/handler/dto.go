package handler

import (
	"fmt"
	"time"

	"NewsPipeline/internal/domain"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// RunResponse is returned by the trigger and manual-run endpoints.
type RunResponse struct {
	Success           bool                 `json:"success"`
	RunID             string               `json:"runId"`
	JobName           string               `json:"jobName"`
	Status            domain.RunStatus     `json:"status"`
	ArticlesProcessed int                  `json:"articlesProcessed"`
	ArticlesPublished int                  `json:"articlesPublished"`
	PublishStatus     domain.OutcomeStatus `json:"publishStatus"`
	ExecutionTime     string               `json:"executionTime"`
	Results           []domain.ItemOutcome `json:"results"`
}

// NewRunResponse converts a run summary into its wire shape.
func NewRunResponse(s domain.RunSummary) RunResponse {
	results := s.Results
	if results == nil {
		results = []domain.ItemOutcome{}
	}
	return RunResponse{
		Success:           true,
		RunID:             s.RunID,
		JobName:           s.JobName,
		Status:            s.Status,
		ArticlesProcessed: s.ArticlesProcessed,
		ArticlesPublished: s.ArticlesPublished,
		PublishStatus:     s.PublishStatus,
		ExecutionTime:     FormatDuration(s.Duration),
		Results:           results,
	}
}

// FormatDuration renders seconds with two decimals, e.g. "3.21s".
func FormatDuration(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// JobResponse is one job row with its run state.
type JobResponse struct {
	ID                     int64                    `json:"id"`
	Name                   string                   `json:"name"`
	TriggerKey             string                   `json:"triggerKey"`
	Type                   domain.JobType           `json:"jobType"`
	RSSURL                 string                   `json:"rssUrl,omitempty"`
	SearchKeyword          string                   `json:"searchKeyword,omitempty"`
	Region                 domain.Region            `json:"region,omitempty"`
	Niche                  string                   `json:"niche,omitempty"`
	MaxArticlesPerRun      int                      `json:"maxArticlesPerRun"`
	ThumbnailPriority      domain.ThumbnailPriority `json:"thumbnailPriority"`
	PublishAsDraft         bool                     `json:"publishAsDraft"`
	IsActive               bool                     `json:"isActive"`
	LastRunAt              *time.Time               `json:"lastRunAt"`
	LastRunStatus          domain.RunStatus         `json:"lastRunStatus"`
	LastRunArticles        int                      `json:"lastRunArticles"`
	TotalRuns              int                      `json:"totalRuns"`
	TotalArticlesPublished int                      `json:"totalArticlesPublished"`
}

func newJobResponse(j domain.Job) JobResponse {
	return JobResponse{
		ID:                     j.ID,
		Name:                   j.Name,
		TriggerKey:             j.TriggerKey,
		Type:                   j.Type,
		RSSURL:                 j.RSSURL,
		SearchKeyword:          j.SearchKeyword,
		Region:                 j.Region,
		Niche:                  j.Niche,
		MaxArticlesPerRun:      j.MaxArticlesPerRun,
		ThumbnailPriority:      j.ThumbnailPriority,
		PublishAsDraft:         j.PublishAsDraft,
		IsActive:               j.IsActive,
		LastRunAt:              j.LastRunAt,
		LastRunStatus:          j.LastRunStatus,
		LastRunArticles:        j.LastRunArticles,
		TotalRuns:              j.TotalRuns,
		TotalArticlesPublished: j.TotalArticlesPublished,
	}
}

// JobListResponse wraps the job list.
type JobListResponse struct {
	Success bool          `json:"success"`
	Data    []JobResponse `json:"data"`
}

// ExtractRequest is the body of POST /api/extract.
type ExtractRequest struct {
	URL string `json:"url" binding:"required,url"`
}
