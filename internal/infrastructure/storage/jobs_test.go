package storage

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsPipeline/internal/domain"
)

func jobRows() *sqlmock.Rows {
	return sqlmock.NewRows(jobColumns)
}

func TestJobRepository_FindByTriggerKey(t *testing.T) {
	t.Run("maps columns", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewJobRepository(db, 30*time.Minute)

		lastRun := time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC)
		mock.ExpectQuery(regexp.QuoteMeta("FROM rss_jobs WHERE trigger_key = $1 LIMIT 1")).
			WithArgs("tech-hourly").
			WillReturnRows(jobRows().AddRow(
				int64(3), "Tech", "tech-hourly", "smart_trend", "", "", "western", "technology",
				int64(9), "en", "casual", "feature", 4,
				"ai_priority", true, false, true,
				lastRun, "success", 2, 10, 25,
			))

		job, err := repo.FindByTriggerKey(context.Background(), "tech-hourly")
		require.NoError(t, err)
		assert.Equal(t, int64(3), job.ID)
		assert.Equal(t, domain.JobSmartTrend, job.Type)
		assert.Equal(t, domain.RegionWestern, job.Region)
		require.NotNil(t, job.CategoryID)
		assert.Equal(t, int64(9), *job.CategoryID)
		assert.Equal(t, domain.ThumbnailAIPriority, job.ThumbnailPriority)
		assert.True(t, job.PublishAsDraft)
		require.NotNil(t, job.LastRunAt)
		assert.Equal(t, lastRun, *job.LastRunAt)
		assert.Equal(t, domain.RunSuccess, job.LastRunStatus)
		assert.Equal(t, 25, job.TotalArticlesPublished)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown key", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewJobRepository(db, 0)

		mock.ExpectQuery("FROM rss_jobs").WillReturnError(sql.ErrNoRows)

		_, err := repo.FindByTriggerKey(context.Background(), "nope")
		assert.ErrorIs(t, err, domain.ErrJobNotFound)
	})
}

func TestJobRepository_ListActive(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository(db, 0)

	mock.ExpectQuery(regexp.QuoteMeta("FROM rss_jobs WHERE is_active = $1 ORDER BY id")).
		WithArgs(true).
		WillReturnRows(jobRows().
			AddRow(int64(1), "A", "a", "standard", "https://feed", "", "local", "", nil, "id", "", "", 3,
				"source_only", false, true, true, nil, "", 0, 0, 0).
			AddRow(int64(2), "B", "b", "keyword_watcher", "", "banjir", "local", "", nil, "id", "", "", 1,
				"source_priority", false, true, true, nil, "running", 0, 1, 0))

	jobs, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Nil(t, jobs[0].CategoryID)
	assert.Nil(t, jobs[0].LastRunAt)
	assert.Equal(t, "banjir", jobs[1].SearchKeyword)
	assert.Equal(t, domain.RunRunning, jobs[1].LastRunStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepository_ClaimRun(t *testing.T) {
	now := time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)
	claim := regexp.QuoteMeta("UPDATE rss_jobs SET last_run_status = $1, last_run_at = $2 WHERE (id = $3 AND is_active = $4 AND (last_run_status <> $5 OR last_run_at IS NULL OR last_run_at < $6))")

	t.Run("claims idle job", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewJobRepository(db, 30*time.Minute)

		mock.ExpectExec(claim).
			WithArgs("running", now, int64(5), true, "running", now.Add(-30*time.Minute)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.ClaimRun(context.Background(), 5, now))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("busy when no row matches", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewJobRepository(db, 30*time.Minute)

		mock.ExpectExec(claim).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.ClaimRun(context.Background(), 5, now)
		assert.ErrorIs(t, err, domain.ErrJobBusy)
	})

	t.Run("no stale takeover when disabled", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewJobRepository(db, 0)

		mock.ExpectExec(regexp.QuoteMeta("WHERE (id = $3 AND is_active = $4 AND (last_run_status <> $5 OR last_run_at IS NULL))")).
			WithArgs("running", now, int64(5), true, "running").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.ClaimRun(context.Background(), 5, now))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestJobRepository_CompleteRun(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository(db, 0)

	finished := time.Date(2026, 5, 2, 9, 5, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE rss_jobs SET last_run_at = $1, last_run_status = $2, last_run_articles = $3, total_runs = total_runs + 1, total_articles_published = total_articles_published + $4 WHERE id = $5")).
		WithArgs(finished, "success", 2, 2, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.CompleteRun(context.Background(), 5, domain.RunCompletion{
		FinishedAt: finished, Status: domain.RunSuccess, Articles: 2,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepository_Get(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSettingsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM settings WHERE key = $1")).
		WithArgs("llm_api_key").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("sk-1"))
	mock.ExpectQuery("FROM settings").
		WithArgs("image_api_token").
		WillReturnError(sql.ErrNoRows)

	v, err := repo.Get(context.Background(), "llm_api_key")
	require.NoError(t, err)
	assert.Equal(t, "sk-1", v)

	v, err = repo.Get(context.Background(), "image_api_token")
	require.NoError(t, err)
	assert.Empty(t, v)
	assert.NoError(t, mock.ExpectationsWereMet())
}
