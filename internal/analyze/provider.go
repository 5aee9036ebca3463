// Package analyze sends review-analysis prompts to an AI provider and
// returns the free-text response. The response grammar is handled by the
// analysis package, not here.
package analyze

import (
	"context"
	"fmt"

	"github.com/kayz/scout/internal/config"
)

type Provider interface {
	Name() string
	Analyze(ctx context.Context, prompt string) (string, error)
}

// NewProvider builds the configured provider. Gemini is the default.
func NewProvider(cfg config.AnalysisConfig) (Provider, error) {
	switch cfg.Provider {
	case "gemini", "":
		return NewGeminiProvider(cfg.APIKey, cfg.Model)
	case "openai":
		return NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model)
	}
	return nil, fmt.Errorf("unknown analysis provider: %s", cfg.Provider)
}
