package domain

import "time"

// JobType selects the acquisition strategy of a job.
type JobType string

const (
	JobStandard       JobType = "standard"
	JobKeywordWatcher JobType = "keyword_watcher"
	JobSmartTrend     JobType = "smart_trend"
)

// ThumbnailPriority decides between source and generated images.
type ThumbnailPriority string

const (
	ThumbnailAIPriority     ThumbnailPriority = "ai_priority"
	ThumbnailSourcePriority ThumbnailPriority = "source_priority"
	ThumbnailSourceOnly     ThumbnailPriority = "source_only"
)

// RunStatus is the persisted state of the latest job run.
type RunStatus string

const (
	RunIdle    RunStatus = ""
	RunRunning RunStatus = "running"
	RunSuccess RunStatus = "success"
	RunFailed  RunStatus = "failed"
)

// Region selects the Google News locale for discovery.
type Region string

const (
	RegionLocal   Region = "local"
	RegionWestern Region = "western"
)

// Job is the persisted configuration of one recurring acquisition task.
type Job struct {
	ID                int64
	Name              string
	TriggerKey        string
	Type              JobType
	RSSURL            string
	SearchKeyword     string
	Region            Region
	Niche             string
	CategoryID        *int64
	Language          string
	WritingStyle      string
	ArticleModel      string
	MaxArticlesPerRun int
	ThumbnailPriority ThumbnailPriority
	PublishAsDraft    bool
	ShowSource        bool

	IsActive               bool
	LastRunAt              *time.Time
	LastRunStatus          RunStatus
	LastRunArticles        int
	TotalRuns              int
	TotalArticlesPublished int
}

// Limit returns the effective per-run cap, never below one.
func (j Job) Limit() int {
	if j.MaxArticlesPerRun <= 0 {
		return 1
	}
	return j.MaxArticlesPerRun
}

// PublishStatus reports the status label new articles of this job receive.
func (j Job) PublishStatus() OutcomeStatus {
	if j.PublishAsDraft {
		return OutcomeDraft
	}
	return OutcomePublished
}
