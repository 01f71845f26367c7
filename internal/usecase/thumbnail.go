package usecase

import (
	"context"

	"go.uber.org/zap"

	"NewsPipeline/internal/domain"
	"NewsPipeline/internal/scanner"
)

// selectThumbnail applies the job's thumbnail policy. Unknown policies behave like
// source_priority.
func (p *Pipeline) selectThumbnail(ctx context.Context, logger *zap.Logger,
	policy domain.ThumbnailPriority, comp scanner.Composition) string {
	switch policy {
	case domain.ThumbnailSourceOnly:
		return comp.SourceImage
	case domain.ThumbnailAIPriority:
		if generated := p.generateImage(ctx, logger, comp); generated != "" {
			return generated
		}
		return comp.SourceImage
	default:
		if comp.SourceImage != "" {
			return comp.SourceImage
		}
		return p.generateImage(ctx, logger, comp)
	}
}

// generateImage returns "" whenever no image could be produced.
func (p *Pipeline) generateImage(ctx context.Context, logger *zap.Logger, comp scanner.Composition) string {
	if p.images == nil || p.prompter == nil {
		return ""
	}

	prompt := p.prompter.ImagePrompt(ctx, comp.Result.Title, comp.Result.Content)
	imageURL, err := p.images.Generate(ctx, prompt)
	if err != nil {
		logger.Warn("image generation failed", zap.Error(err))
		return ""
	}
	if imageURL == "" || p.imageHost == nil {
		return imageURL
	}

	hosted, err := p.imageHost.Rehost(ctx, imageURL)
	if err != nil {
		logger.Warn("image rehost failed, keeping provider url", zap.Error(err))
		return imageURL
	}
	return hosted
}
