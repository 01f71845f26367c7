package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"NewsPipeline/internal/domain"
	"NewsPipeline/internal/infrastructure/htmltext"
	"NewsPipeline/internal/ports"
)

const (
	rewriteTemperature     float32 = 0.7
	synthesisTemperature   float32 = 0.5
	imagePromptTemperature float32 = 0.8

	minPromptWords = 20
	maxPromptWords = 40
)

// Rewriter implements ports.Rewriter and ports.ImagePrompter over a Completer.
type Rewriter struct {
	llm    Completer
	logger *zap.Logger
}

var (
	_ ports.Rewriter      = (*Rewriter)(nil)
	_ ports.ImagePrompter = (*Rewriter)(nil)
)

func NewRewriter(llm Completer, logger *zap.Logger) *Rewriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Rewriter{llm: llm, logger: logger.Named("rewriter")}
}

// Rewrite restructures one source document. When the model is unreachable the original
// title and content are returned with Fallback set.
func (r *Rewriter) Rewrite(ctx context.Context, doc domain.SourceDocument, opts ports.RewriteOptions) domain.RewriteResult {
	system, user := rewritePrompts(doc, opts)
	raw, err := r.llm.Complete(ctx, system, user, rewriteTemperature)
	if err != nil {
		r.logger.Warn("rewrite failed, publishing original text",
			zap.String("title", doc.Title), zap.Error(err))
		return fallbackResult(doc)
	}

	parsed := ParseResponse(raw, doc.Title)
	r.logger.Debug("rewrite parsed", zap.String("kind", parsed.Kind.String()))
	return domain.RewriteResult{
		Title:   parsed.Title,
		Excerpt: parsed.Excerpt,
		Content: EnsureParagraphs(parsed.Content),
	}
}

// Synthesize merges up to MaxSynthesisSources documents into one article.
func (r *Rewriter) Synthesize(ctx context.Context, docs []domain.SourceDocument, opts ports.RewriteOptions) (domain.RewriteResult, error) {
	if len(docs) == 0 {
		return domain.RewriteResult{}, errors.New("synthesize: no source documents")
	}
	if len(docs) > MaxSynthesisSources {
		docs = docs[:MaxSynthesisSources]
	}

	system, user := synthesisPrompts(docs, opts)
	raw, err := r.llm.Complete(ctx, system, user, synthesisTemperature)
	if err != nil {
		return domain.RewriteResult{}, fmt.Errorf("synthesize %q: %w", opts.Keyword, err)
	}

	fallbackTitle := opts.Keyword
	if fallbackTitle == "" {
		fallbackTitle = docs[0].Title
	}
	parsed := ParseResponse(raw, fallbackTitle)
	r.logger.Debug("synthesis parsed",
		zap.String("kind", parsed.Kind.String()), zap.Int("sources", len(docs)))
	return domain.RewriteResult{
		Title:   parsed.Title,
		Excerpt: parsed.Excerpt,
		Content: EnsureParagraphs(parsed.Content),
	}, nil
}

// ImagePrompt asks the model for a 20-40 word scene description and falls back to a
// templated prompt when the reply is missing or out of range.
func (r *Rewriter) ImagePrompt(ctx context.Context, title, content string) string {
	raw, err := r.llm.Complete(ctx, imagePromptSystem, imagePromptUser(title, content), imagePromptTemperature)
	if err != nil {
		r.logger.Warn("image prompt failed, using template", zap.Error(err))
		return FallbackImagePrompt(title)
	}
	prompt := strings.Join(strings.Fields(strings.Trim(strings.TrimSpace(raw), `"'`)), " ")
	if n := len(strings.Fields(prompt)); n < minPromptWords || n > maxPromptWords {
		r.logger.Debug("image prompt out of range, using template", zap.Int("words", n))
		return FallbackImagePrompt(title)
	}
	return prompt
}

// FallbackImagePrompt is the templated prompt used when the model cannot provide one.
func FallbackImagePrompt(title string) string {
	return fmt.Sprintf("editorial illustration of %s, photorealistic news photography, natural lighting, high detail, no text",
		strings.TrimSpace(title))
}

func fallbackResult(doc domain.SourceDocument) domain.RewriteResult {
	return domain.RewriteResult{
		Title:    doc.Title,
		Excerpt:  htmltext.Truncate(htmltext.PlainText(doc.Content), excerptRunes),
		Content:  EnsureParagraphs(doc.Content),
		Fallback: true,
	}
}
