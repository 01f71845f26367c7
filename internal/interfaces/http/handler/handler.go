// Package handler exposes the pipeline over HTTP.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"NewsPipeline/internal/domain"
	"NewsPipeline/internal/infrastructure/extractor"
	"NewsPipeline/internal/logging"
	"NewsPipeline/internal/ports"
)

// JobRunner executes one job run by trigger key.
type JobRunner interface {
	RunJob(ctx context.Context, triggerKey string) (domain.RunSummary, error)
}

// Handler serves job triggers, the job list and the extraction endpoint.
type Handler struct {
	runner    JobRunner
	jobs      ports.JobStore
	extractor ports.Extractor
}

// New builds the handler set.
func New(runner JobRunner, jobs ports.JobStore, ext ports.Extractor) *Handler {
	return &Handler{runner: runner, jobs: jobs, extractor: ext}
}

// RegisterRoutes mounts every route under rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/cron/:triggerKey", h.RunJob)
	rg.POST("/jobs/:triggerKey/run", h.RunJob)
	rg.GET("/jobs", h.ListJobs)
	rg.POST("/extract", h.Extract)
}

// RunJob runs the job synchronously and returns its summary. Client disconnects do not cancel the run.
func (h *Handler) RunJob(c *gin.Context) {
	key := c.Param("triggerKey")
	summary, err := h.runner.RunJob(context.WithoutCancel(c.Request.Context()), key)
	if err != nil {
		status := StatusFor(err)
		if status >= http.StatusInternalServerError {
			logging.FromGin(c).Error("job run failed", zap.String("trigger_key", key), zap.Error(err))
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, NewRunResponse(summary))
}

// ListJobs returns every job with its run counters.
func (h *Handler) ListJobs(c *gin.Context) {
	jobs, err := h.jobs.List(c.Request.Context())
	if err != nil {
		logging.FromGin(c).Error("list jobs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	data := make([]JobResponse, 0, len(jobs))
	for _, j := range jobs {
		data = append(data, newJobResponse(j))
	}
	c.JSON(http.StatusOK, JobListResponse{Success: true, Data: data})
}

// Extract fetches a page and returns its readable content in the extraction wire shape.
func (h *Handler) Extract(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, extractor.Response{Error: "a valid url is required"})
		return
	}

	content, err := h.extractor.Extract(c.Request.Context(), req.URL)
	if err != nil {
		logging.FromGin(c).Info("extraction failed", zap.String("url", req.URL), zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, extractor.Response{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, extractor.Response{
		Success: true,
		Data: &extractor.ResponseData{
			Title:         content.Title,
			Content:       content.Content,
			Image:         content.Image,
			ContentLength: content.ContentLength,
		},
	})
}

// Health reports liveness.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// StatusFor maps run errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrJobPaused):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrJobBusy):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
