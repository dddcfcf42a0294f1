package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/docket/internal/model"
	"github.com/ppiankov/docket/internal/util"
)

// OpenAIProvider serves both oracles through an OpenAI-compatible chat API
type OpenAIProvider struct {
	name   string
	client *openai.Client
	config Config
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	return newChatProvider("openai", config), nil
}

func newChatProvider(name string, config Config) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = util.NewHTTPClient(0, config.HTTPProxy, config.HTTPSProxy)

	return &OpenAIProvider{
		name:   name,
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return p.name
}

// ExtractFields asks the model for the twelve canonical fields of one document
func (p *OpenAIProvider) ExtractFields(ctx context.Context, req ExtractRequest) (*model.SourceRecord, error) {
	content, err := p.complete(ctx, extractionSystemPrompt, BuildExtractionPrompt(req))
	if err != nil {
		return nil, err
	}
	return DecodeSourceRecord(content)
}

// AssessEligibility asks the model for an eligibility determination
func (p *OpenAIProvider) AssessEligibility(ctx context.Context, req AssessRequest) (*model.Determination, error) {
	if req.Case == nil {
		return nil, fmt.Errorf("case record is required")
	}
	prompt, err := BuildEligibilityPrompt(req)
	if err != nil {
		return nil, err
	}
	content, err := p.complete(ctx, eligibilitySystemPrompt, prompt)
	if err != nil {
		return nil, err
	}
	return DecodeDetermination(content)
}

// complete runs one JSON-mode chat completion and returns the message text
func (p *OpenAIProvider) complete(ctx context.Context, system, prompt string) (string, error) {
	modelName := p.config.Model
	if modelName == "" {
		modelName = openai.GPT4oMini
	}

	maxTokens := p.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2000
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return "", fmt.Errorf("%s API error: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from %s", p.name)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
