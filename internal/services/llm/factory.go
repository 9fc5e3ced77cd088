package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/valeo/internal/common"
	"github.com/ternarybob/valeo/internal/interfaces"
)

// NewLLMService creates the appropriate LLM service implementation based on configuration.
// A provider of "none" disables narrative rewriting and returns a nil service.
func NewLLMService(
	cfg *common.Config,
	kvStorage interfaces.KeyValueStorage,
	logger arbor.ILogger,
) (interfaces.LLMService, error) {
	provider := cfg.LLM.Provider
	if provider == "" {
		provider = common.LLMProviderNone
	}

	logger.Info().Str("provider", string(provider)).Msg("Initializing LLM service")

	switch provider {
	case common.LLMProviderNone:
		return nil, nil

	case common.LLMProviderGemini:
		service, err := NewGeminiService(&cfg.Gemini, kvStorage, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini LLM service: %w", err)
		}
		return service, nil

	case common.LLMProviderClaude:
		service, err := NewClaudeService(&cfg.Claude, kvStorage, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Claude LLM service: %w", err)
		}
		return service, nil

	default:
		return nil, fmt.Errorf("invalid LLM provider '%s': must be 'none', 'gemini', or 'claude'", provider)
	}
}
