package llm

import (
	"fmt"
	"strings"
)

// DefaultOllamaURL is the OpenAI-compatible endpoint of a local Ollama
const DefaultOllamaURL = "http://localhost:11434/v1"

// NewProvider creates the oracle provider named in config.
// An empty provider name disables the oracles and returns nil.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "ollama":
		if config.BaseURL == "" {
			config.BaseURL = DefaultOllamaURL
		}
		if config.APIKey == "" {
			// Ollama ignores the key but the client sends one
			config.APIKey = "ollama"
		}
		return newChatProvider("ollama", config), nil

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, ollama)", config.Provider)
	}
}
