package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/eternnoir/gollmlecture/pkg/providers"
)

const defaultModel = "gpt-4o-mini"

// chatCompleter is the subset of the OpenAI client used by the provider.
// *openai.Client implements it implicitly; tests inject stubs.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Provider implements the completion provider interface for OpenAI-compatible APIs
type Provider struct {
	client  chatCompleter
	apiKey  string
	model   string
	retries int
	backoff providers.RetryConfig
}

// ProviderOption allows customizing the provider
type ProviderOption func(*Provider)

// WithModel sets the model to use
func WithModel(model string) ProviderOption {
	return func(p *Provider) {
		p.model = model
	}
}

// WithBaseURL sets a custom base URL (proxies, Azure, compatible servers)
func WithBaseURL(url string) ProviderOption {
	return func(p *Provider) {
		cfg := openai.DefaultConfig(p.apiKey)
		cfg.BaseURL = strings.TrimSuffix(url, "/")
		p.client = openai.NewClientWithConfig(cfg)
	}
}

// WithRetries sets the number of retry attempts
func WithRetries(retries int) ProviderOption {
	return func(p *Provider) {
		p.retries = retries
		p.backoff.MaxRetries = retries
	}
}

// withChatCompleter sets a custom chat completer (for testing)
func withChatCompleter(cc chatCompleter) ProviderOption {
	return func(p *Provider) {
		p.client = cc
	}
}

// NewProvider creates a new OpenAI provider instance.
// The API key is required; construction fails without it.
func NewProvider(apiKey string, options ...ProviderOption) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: %w", providers.ErrMissingAPIKey)
	}

	p := &Provider{
		client:  openai.NewClient(apiKey),
		apiKey:  apiKey,
		model:   defaultModel,
		retries: 3,
		backoff: providers.RetryConfig{
			MaxRetries: 3,
			BaseDelay:  time.Second,
			MaxDelay:   30 * time.Second,
		},
	}

	for _, opt := range options {
		opt(p)
	}

	return p, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "openai"
}

// Complete generates text using the OpenAI chat completion API
func (p *Provider) Complete(ctx context.Context, req *providers.CompletionRequest) (string, error) {
	if len(req.Messages) == 0 {
		return "", providers.NewProviderError(p.Name(), fmt.Errorf("empty message list"))
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    toChatMessages(req.Messages),
		Temperature: req.Temperature,
	}
	if req.MaxOutputTokens > 0 {
		chatReq.MaxCompletionTokens = req.MaxOutputTokens
	}

	text, err := providers.RetryWithBackoff(ctx, p.backoff, func() (string, error) {
		resp, err := p.client.CreateChatCompletion(ctx, chatReq)
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("no choices in response")
		}
		content := strings.TrimSpace(resp.Choices[0].Message.Content)
		if content == "" {
			return "", fmt.Errorf("empty completion result")
		}
		return content, nil
	}, isRetryable)
	if err != nil {
		return "", providers.NewProviderError(p.Name(), err)
	}

	return text, nil
}

// toChatMessages converts role-tagged messages to the OpenAI wire format
func toChatMessages(messages []providers.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		role := openai.ChatMessageRoleUser
		if msg.Role == providers.RoleSystem {
			role = openai.ChatMessageRoleSystem
		}
		out = append(out, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}
	return out
}

// isRetryable reports whether an API error is transient.
// Rate limits, timeouts, and server errors retry; auth and client errors do not.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	// Network-level errors are worth one more try.
	return true
}

// ValidateConfig validates the provider configuration
func (p *Provider) ValidateConfig() error {
	if p.apiKey == "" {
		return fmt.Errorf("openai: %w", providers.ErrMissingAPIKey)
	}
	if p.model == "" {
		return fmt.Errorf("openai: model name is required")
	}
	return nil
}
