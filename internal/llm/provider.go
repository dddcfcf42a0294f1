package llm

import (
	"context"

	"github.com/ppiankov/docket/internal/model"
)

// DocumentExtractor reads one court document and returns its canonical
// fields
type DocumentExtractor interface {
	ExtractFields(ctx context.Context, req ExtractRequest) (*model.SourceRecord, error)
}

// EligibilityAssessor decides eligibility from the merged case record and the
// typed intake answers. It never sees raw documents or transcripts.
type EligibilityAssessor interface {
	AssessEligibility(ctx context.Context, req AssessRequest) (*model.Determination, error)
}

// Provider is an oracle backend serving both contracts
type Provider interface {
	// Name returns the provider name
	Name() string

	DocumentExtractor
	EligibilityAssessor
}

// ExtractRequest is the input of one document extraction
type ExtractRequest struct {
	// Source is the document kind (summons, sentencing, police)
	Source string

	// Filename is used in prompts and error messages only
	Filename string

	// Text is the document text, already truncated
	Text string
}

// AssessRequest is the input of an eligibility assessment
type AssessRequest struct {
	Case    *model.CaseRecord
	Answers model.Answers
}

// Config holds oracle provider configuration
type Config struct {
	// Provider name: "openai", "ollama", "" (disabled)
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for OpenAI-compatible endpoints
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(c model.LLMConfig) Config {
	return Config{
		Provider:   c.Provider,
		Model:      c.Model,
		APIKey:     c.APIKey,
		BaseURL:    c.BaseURL,
		Timeout:    c.Timeout,
		MaxTokens:  c.MaxTokens,
		HTTPProxy:  c.HTTPProxy,
		HTTPSProxy: c.HTTPSProxy,
	}
}
