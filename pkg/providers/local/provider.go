// Package local provides a completion provider backed by an on-device
// inference server speaking the OpenAI chat completion protocol
// (llama.cpp server, ollama, vLLM and friends).
package local

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/eternnoir/gollmlecture/pkg/logger"
	"github.com/eternnoir/gollmlecture/pkg/providers"
)

const defaultBaseURL = "http://localhost:8080/v1"

// Provider implements the completion provider interface for local models
type Provider struct {
	client       chatCompleter
	baseURL      string
	model        string
	contextLimit int
}

// chatCompleter is the subset of the OpenAI client used by the provider.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ProviderOption allows customizing the provider
type ProviderOption func(*Provider)

// WithBaseURL sets the local server address
func WithBaseURL(url string) ProviderOption {
	return func(p *Provider) {
		p.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithContextLimit overrides the model's context window in tokens
func WithContextLimit(limit int) ProviderOption {
	return func(p *Provider) {
		if limit > 0 {
			p.contextLimit = limit
		}
	}
}

// withChatCompleter sets a custom chat completer (for testing)
func withChatCompleter(cc chatCompleter) ProviderOption {
	return func(p *Provider) {
		p.client = cc
	}
}

// NewProvider creates a provider for the named local model.
// The context window is looked up from the known-model table unless
// overridden with WithContextLimit.
func NewProvider(model string, options ...ProviderOption) (*Provider, error) {
	if model == "" {
		return nil, fmt.Errorf("local: model name is required")
	}

	p := &Provider{
		baseURL:      defaultBaseURL,
		model:        model,
		contextLimit: providers.ContextLimit(model),
	}

	for _, opt := range options {
		opt(p)
	}

	if p.client == nil {
		cfg := openai.DefaultConfig("")
		cfg.BaseURL = p.baseURL
		p.client = openai.NewClientWithConfig(cfg)
	}

	logger.WithComponent("local-provider").Info().
		Str("model", model).
		Str("base_url", p.baseURL).
		Int("context_limit", p.contextLimit).
		Msg("Initialized local model provider")

	return p, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "local"
}

// Complete generates text using the local inference server.
// The output-token budget is capped so that prompt plus completion fit the
// model's context window with a 10% safety margin.
func (p *Provider) Complete(ctx context.Context, req *providers.CompletionRequest) (string, error) {
	if len(req.Messages) == 0 {
		return "", providers.NewProviderError(p.Name(), fmt.Errorf("empty message list"))
	}

	promptTokens := 0
	for _, msg := range req.Messages {
		promptTokens += providers.EstimateTokens(msg.Content)
	}

	maxTokens := providers.SafeMaxOutputTokens(p.contextLimit, promptTokens)
	if req.MaxOutputTokens > 0 && req.MaxOutputTokens < maxTokens {
		maxTokens = req.MaxOutputTokens
	}

	logger.WithComponent("local-provider").Debug().
		Int("prompt_tokens", promptTokens).
		Int("max_tokens", maxTokens).
		Msg("Generating with derived token ceiling")

	chatReq := openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: req.Temperature,
		MaxTokens:   maxTokens,
	}
	for _, msg := range req.Messages {
		role := openai.ChatMessageRoleUser
		if msg.Role == providers.RoleSystem {
			role = openai.ChatMessageRoleSystem
		}
		chatReq.Messages = append(chatReq.Messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", providers.NewProviderError(p.Name(), err)
	}
	if len(resp.Choices) == 0 {
		return "", providers.NewProviderError(p.Name(), fmt.Errorf("no choices in response"))
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", providers.NewProviderError(p.Name(), fmt.Errorf("empty completion result"))
	}

	return text, nil
}

// ValidateConfig validates the provider configuration
func (p *Provider) ValidateConfig() error {
	if p.model == "" {
		return fmt.Errorf("local: model name is required")
	}
	if p.contextLimit <= 0 {
		return fmt.Errorf("local: context limit must be positive")
	}
	return nil
}
