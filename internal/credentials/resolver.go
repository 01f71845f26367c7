// Package credentials resolves API secrets from the settings store with a config fallback.
package credentials

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"NewsPipeline/internal/ports"
)

// Settings keys that override process configuration.
const (
	LLMAPIKey     = "llm_api_key"
	ImageAPIToken = "image_api_token"
)

// Resolver looks a secret up on every call so admins can rotate it without a restart.
type Resolver struct {
	settings ports.SettingsStore
	key      string
	fallback string
	logger   *zap.Logger
}

// NewResolver binds a settings key to its fallback value. settings may be nil.
func NewResolver(settings ports.SettingsStore, key, fallback string, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{settings: settings, key: key, fallback: fallback, logger: logger}
}

// Static returns a resolver that always yields value.
func Static(value string) *Resolver {
	return &Resolver{fallback: value, logger: zap.NewNop()}
}

// Value returns the settings override when present, otherwise the fallback.
func (r *Resolver) Value(ctx context.Context) string {
	if r == nil {
		return ""
	}
	if r.settings != nil && r.key != "" {
		v, err := r.settings.Get(ctx, r.key)
		if err != nil {
			r.logger.Warn("settings lookup failed, using configured value", zap.String("key", r.key), zap.Error(err))
		} else if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return strings.TrimSpace(r.fallback)
}
