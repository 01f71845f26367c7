package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"NewsPipeline/internal/domain"
	"NewsPipeline/internal/ports"
)

var jobColumns = []string{
	"id", "name", "trigger_key", "job_type", "rss_url", "search_keyword", "region", "niche",
	"category_id", "language", "writing_style", "article_model", "max_articles_per_run",
	"thumbnail_priority", "publish_as_draft", "show_source", "is_active",
	"last_run_at", "last_run_status", "last_run_articles", "total_runs", "total_articles_published",
}

// JobRepository reads job configuration and records run state in rss_jobs.
type JobRepository struct {
	db         *sql.DB
	staleAfter time.Duration
}

var _ ports.JobStore = (*JobRepository)(nil)

// NewJobRepository wires a sql.DB. A running claim older than staleAfter may be taken over;
// zero disables takeover.
func NewJobRepository(db *sql.DB, staleAfter time.Duration) *JobRepository {
	return &JobRepository{db: db, staleAfter: staleAfter}
}

// FindByTriggerKey returns domain.ErrJobNotFound for unknown keys.
func (r *JobRepository) FindByTriggerKey(ctx context.Context, key string) (domain.Job, error) {
	query, args, err := psql.Select(jobColumns...).From("rss_jobs").
		Where(sq.Eq{"trigger_key": key}).Limit(1).ToSql()
	if err != nil {
		return domain.Job{}, fmt.Errorf("build job query: %w", err)
	}

	job, err := scanJob(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Job{}, fmt.Errorf("trigger key %q: %w", key, domain.ErrJobNotFound)
	}
	if err != nil {
		return domain.Job{}, fmt.Errorf("query job: %w", err)
	}
	return job, nil
}

func (r *JobRepository) ListActive(ctx context.Context) ([]domain.Job, error) {
	return r.list(ctx, sq.Eq{"is_active": true})
}

func (r *JobRepository) List(ctx context.Context) ([]domain.Job, error) {
	return r.list(ctx, nil)
}

func (r *JobRepository) list(ctx context.Context, pred sq.Sqlizer) ([]domain.Job, error) {
	builder := psql.Select(jobColumns...).From("rss_jobs").OrderBy("id")
	if pred != nil {
		builder = builder.Where(pred)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build jobs query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}

	var jobs []domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return jobs, nil
}

// ClaimRun marks the job running in a single conditional UPDATE. When another run holds
// the claim the update matches no row and domain.ErrJobBusy is returned.
func (r *JobRepository) ClaimRun(ctx context.Context, jobID int64, now time.Time) error {
	free := sq.Or{
		sq.NotEq{"last_run_status": string(domain.RunRunning)},
		sq.Eq{"last_run_at": nil},
	}
	if r.staleAfter > 0 {
		free = append(free, sq.Lt{"last_run_at": now.Add(-r.staleAfter)})
	}

	query, args, err := psql.Update("rss_jobs").
		Set("last_run_status", string(domain.RunRunning)).
		Set("last_run_at", now).
		Where(sq.And{sq.Eq{"id": jobID}, sq.Eq{"is_active": true}, free}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build claim: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("claim job %d: %w", jobID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("claim job %d rows: %w", jobID, err)
	}
	if n == 0 {
		return fmt.Errorf("claim job %d: %w", jobID, domain.ErrJobBusy)
	}
	return nil
}

// CompleteRun records the final status and bumps the lifetime counters.
func (r *JobRepository) CompleteRun(ctx context.Context, jobID int64, c domain.RunCompletion) error {
	query, args, err := psql.Update("rss_jobs").
		Set("last_run_at", c.FinishedAt).
		Set("last_run_status", string(c.Status)).
		Set("last_run_articles", c.Articles).
		Set("total_runs", sq.Expr("total_runs + 1")).
		Set("total_articles_published", sq.Expr("total_articles_published + ?", c.Articles)).
		Where(sq.Eq{"id": jobID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build completion: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("complete job %d: %w", jobID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (domain.Job, error) {
	var (
		job        domain.Job
		jobType    string
		region     string
		thumbnail  string
		lastStatus string
		categoryID sql.NullInt64
		lastRunAt  sql.NullTime
	)
	err := row.Scan(
		&job.ID, &job.Name, &job.TriggerKey, &jobType, &job.RSSURL, &job.SearchKeyword, &region, &job.Niche,
		&categoryID, &job.Language, &job.WritingStyle, &job.ArticleModel, &job.MaxArticlesPerRun,
		&thumbnail, &job.PublishAsDraft, &job.ShowSource, &job.IsActive,
		&lastRunAt, &lastStatus, &job.LastRunArticles, &job.TotalRuns, &job.TotalArticlesPublished,
	)
	if err != nil {
		return domain.Job{}, err
	}

	job.Type = domain.JobType(jobType)
	job.Region = domain.Region(region)
	job.ThumbnailPriority = domain.ThumbnailPriority(thumbnail)
	job.LastRunStatus = domain.RunStatus(lastStatus)
	if categoryID.Valid {
		id := categoryID.Int64
		job.CategoryID = &id
	}
	if lastRunAt.Valid {
		t := lastRunAt.Time
		job.LastRunAt = &t
	}
	return job, nil
}
