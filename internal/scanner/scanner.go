// Package scanner dispatches job runs to the acquisition strategy of their job type.
package scanner

import (
	"context"
	"fmt"

	"NewsPipeline/internal/domain"
)

// Unit is one independent piece of work found during discovery: a feed item for
// standard jobs, a keyword for search-driven jobs.
type Unit struct {
	Label     string
	SourceURL string
	Keyword   string
	Item      domain.CandidateItem
	// Items are the candidate sources of a synthesis unit.
	Items []domain.CandidateItem
}

// Composition is the rewritten article a strategy produced for one unit.
type Composition struct {
	Result      domain.RewriteResult
	SourceImage string
	SourceURL   string
	SourceName  string
	Keyword     string
}

// Strategy captures one job type (standard feed, keyword watcher, smart trend).
type Strategy interface {
	Type() domain.JobType
	// Discover lists the units of a run. An error is fatal to the run only when
	// FatalDiscovery reports true.
	Discover(ctx context.Context, job domain.Job) ([]Unit, error)
	FatalDiscovery() bool
	// Compose turns a unit into an article body. Errors are recorded per unit.
	Compose(ctx context.Context, job domain.Job, unit Unit) (Composition, error)
}

// Registry keeps a mapping from job types to their strategies.
type Registry struct {
	strategies map[domain.JobType]Strategy
}

// NewRegistry builds a registry with the given strategies.
func NewRegistry(strategies ...Strategy) *Registry {
	r := &Registry{strategies: map[domain.JobType]Strategy{}}
	for _, s := range strategies {
		r.Register(s)
	}
	return r
}

// Register adds or replaces a strategy.
func (r *Registry) Register(strategy Strategy) {
	if r.strategies == nil {
		r.strategies = map[domain.JobType]Strategy{}
	}
	r.strategies[strategy.Type()] = strategy
}

// Resolve returns the strategy for a job type or an error if it is absent.
func (r *Registry) Resolve(jobType domain.JobType) (Strategy, error) {
	if strategy, ok := r.strategies[jobType]; ok {
		return strategy, nil
	}
	return nil, fmt.Errorf("strategy for job type %q is not registered", jobType)
}
