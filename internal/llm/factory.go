package llm

import (
	"fmt"

	"github.com/ashureev/refine-labs/internal/config"
)

// FromConfig builds the one Client implementation selected by
// configuration. Provider choice is resolved here and nowhere else.
func FromConfig(cfg *config.Config) (Client, error) {
	switch cfg.Provider {
	case config.ProviderOllama:
		return NewOllama(cfg.OllamaBaseURL, cfg.OllamaModel), nil
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
	case config.ProviderDemo:
		return NewDemo(cfg.DemoText, cfg.DemoChunkSize, cfg.DemoDelay), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
