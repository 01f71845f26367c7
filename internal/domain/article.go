package domain

import "time"

// CandidateItem is one discovered feed or search entry. It lives for a single job run.
type CandidateItem struct {
	Title       string
	Link        string
	PublishedAt time.Time
	Source      string
	Image       string
	Snippet     string
}

// ExtractedContent is the result of visiting a candidate link.
type ExtractedContent struct {
	Title         string
	Content       string
	ContentLength int
	Image         string
}

// SourceDocument is a single input to the rewriter: either extracted content
// or the candidate's own snippet when extraction was unusable.
type SourceDocument struct {
	Title      string
	Content    string
	SourceName string
	URL        string
	Image      string
}

// RewriteResult is the structured output of a rewrite or synthesis call.
type RewriteResult struct {
	Title   string
	Excerpt string
	Content string
	// Fallback is set when the LLM could not be reached and the original text was kept.
	Fallback bool
}

// Article is the CMS row the pipeline produces.
type Article struct {
	ID            int64
	Title         string
	Slug          string
	Excerpt       string
	Content       string
	CategoryID    *int64
	FeaturedImage string
	SourceURL     string
	SourceName    string
	IsPublished   bool
	FocusKeyword  string
	CreatedAt     time.Time
}
