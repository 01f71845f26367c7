package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"NewsPipeline/internal/domain"
	"NewsPipeline/internal/ports"
)

type fakeJobs struct {
	mu          sync.Mutex
	jobs        map[string]*domain.Job
	claims      int
	completions []domain.RunCompletion
	onClaim     func()
}

func newFakeJobs(jobs ...domain.Job) *fakeJobs {
	f := &fakeJobs{jobs: map[string]*domain.Job{}}
	for i := range jobs {
		j := jobs[i]
		f.jobs[j.TriggerKey] = &j
	}
	return f
}

func (f *fakeJobs) get(key string) domain.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.jobs[key]
}

func (f *fakeJobs) FindByTriggerKey(_ context.Context, key string) (domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[key]
	if !ok {
		return domain.Job{}, fmt.Errorf("trigger key %q: %w", key, domain.ErrJobNotFound)
	}
	return *j, nil
}

func (f *fakeJobs) ListActive(ctx context.Context) ([]domain.Job, error) {
	all, _ := f.List(ctx)
	var active []domain.Job
	for _, j := range all {
		if j.IsActive {
			active = append(active, j)
		}
	}
	return active, nil
}

func (f *fakeJobs) List(context.Context) ([]domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Job
	for _, j := range f.jobs {
		out = append(out, *j)
	}
	return out, nil
}

func (f *fakeJobs) ClaimRun(_ context.Context, jobID int64, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, j := range f.jobs {
		if j.ID != jobID {
			continue
		}
		if j.LastRunStatus == domain.RunRunning {
			return domain.ErrJobBusy
		}
		f.claims++
		j.LastRunStatus = domain.RunRunning
		j.LastRunAt = &now
		if f.onClaim != nil {
			f.onClaim()
		}
		return nil
	}
	return domain.ErrJobBusy
}

func (f *fakeJobs) CompleteRun(ctx context.Context, jobID int64, c domain.RunCompletion) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("complete job %d: %w", jobID, err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completions = append(f.completions, c)
	for _, j := range f.jobs {
		if j.ID == jobID {
			finished := c.FinishedAt
			j.LastRunAt = &finished
			j.LastRunStatus = c.Status
			j.LastRunArticles = c.Articles
			j.TotalRuns++
			j.TotalArticlesPublished += c.Articles
		}
	}
	return nil
}

type fakeArticles struct {
	mu        sync.Mutex
	rows      []domain.Article
	insertErr error
	urlChecks []string
}

func (f *fakeArticles) ExistsBySourceURL(_ context.Context, sourceURL string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urlChecks = append(f.urlChecks, sourceURL)
	for _, a := range f.rows {
		if a.SourceURL != "" && a.SourceURL == sourceURL {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeArticles) ExistsByTitleFragment(_ context.Context, fragment string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.rows {
		if strings.Contains(strings.ToLower(a.Title), strings.ToLower(fragment)) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeArticles) Insert(ctx context.Context, a domain.Article) (domain.Article, error) {
	if err := ctx.Err(); err != nil {
		return domain.Article{}, fmt.Errorf("insert article: %w", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return domain.Article{}, f.insertErr
	}
	for _, existing := range f.rows {
		if a.SourceURL != "" && existing.SourceURL == a.SourceURL {
			return domain.Article{}, domain.ErrDuplicate
		}
	}
	a.ID = int64(len(f.rows) + 1)
	a.Slug = fmt.Sprintf("article-%d", a.ID)
	f.rows = append(f.rows, a)
	return a, nil
}

func (f *fakeArticles) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeFeeds struct {
	items map[string][]domain.CandidateItem
	errs  map[string]error
	reads []string
}

func (f *fakeFeeds) Read(_ context.Context, feedURL string) ([]domain.CandidateItem, error) {
	f.reads = append(f.reads, feedURL)
	if err := f.errs[feedURL]; err != nil {
		return nil, err
	}
	return append([]domain.CandidateItem(nil), f.items[feedURL]...), nil
}

type fakeDiscovery struct {
	search     map[string][]domain.CandidateItem
	searchErr  map[string]error
	headlines  []domain.CandidateItem
	trends     []string
	trendsErr  error
	searchedKw []string
}

func (f *fakeDiscovery) Search(_ context.Context, keyword, _ string, _ domain.Region) ([]domain.CandidateItem, error) {
	f.searchedKw = append(f.searchedKw, keyword)
	if err := f.searchErr[keyword]; err != nil {
		return nil, err
	}
	return append([]domain.CandidateItem(nil), f.search[keyword]...), nil
}

func (f *fakeDiscovery) Headlines(context.Context, string, domain.Region) ([]domain.CandidateItem, error) {
	return f.headlines, nil
}

func (f *fakeDiscovery) TrendingSearches(context.Context, domain.Region) ([]string, error) {
	return f.trends, f.trendsErr
}

type fakeExtractor struct {
	pages map[string]domain.ExtractedContent
	panic map[string]bool
	calls []string
}

func (f *fakeExtractor) Extract(_ context.Context, url string) (domain.ExtractedContent, error) {
	f.calls = append(f.calls, url)
	if f.panic[url] {
		panic("extractor blew up")
	}
	page, ok := f.pages[url]
	if !ok {
		return domain.ExtractedContent{}, errors.New("extraction endpoint: 502")
	}
	return page, nil
}

func (f *fakeExtractor) called(url string) bool {
	for _, c := range f.calls {
		if c == url {
			return true
		}
	}
	return false
}

type fakeRewriter struct {
	synthErr   error
	synthDocs  [][]domain.SourceDocument
	rewriteOps []ports.RewriteOptions
}

func (f *fakeRewriter) Rewrite(_ context.Context, doc domain.SourceDocument, opts ports.RewriteOptions) domain.RewriteResult {
	f.rewriteOps = append(f.rewriteOps, opts)
	return domain.RewriteResult{
		Title:   "Rewritten " + doc.Title,
		Excerpt: "excerpt",
		Content: "<p>" + doc.Content + "</p>",
	}
}

func (f *fakeRewriter) Synthesize(_ context.Context, docs []domain.SourceDocument, opts ports.RewriteOptions) (domain.RewriteResult, error) {
	f.synthDocs = append(f.synthDocs, docs)
	if f.synthErr != nil {
		return domain.RewriteResult{}, f.synthErr
	}
	return domain.RewriteResult{
		Title:   "Laporan lengkap " + opts.Keyword,
		Excerpt: "ringkasan",
		Content: fmt.Sprintf("<p>%d sources</p>", len(docs)),
	}, nil
}

type fakePrompter struct{}

func (fakePrompter) ImagePrompt(_ context.Context, title, _ string) string {
	return "editorial photo of " + title
}

type fakeImages struct {
	url   string
	err   error
	calls int
}

func (f *fakeImages) Generate(context.Context, string) (string, error) {
	f.calls++
	return f.url, f.err
}

type fakeHost struct {
	err error
}

func (f fakeHost) Rehost(_ context.Context, imageURL string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.example/ai-thumbnails/" + imageURL[strings.LastIndex(imageURL, "/")+1:], nil
}

type fakeNotifier struct {
	summaries []domain.RunSummary
}

func (f *fakeNotifier) NotifyRun(_ context.Context, s domain.RunSummary) error {
	f.summaries = append(f.summaries, s)
	return nil
}
