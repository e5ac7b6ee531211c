package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/eternnoir/gollmlecture/pkg/providers"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	apiVersion     = "v1beta"
	defaultModel   = "gemini-2.0-flash-exp"
)

// Provider implements the completion provider interface for Google Gemini
type Provider struct {
	apiKey     string
	baseURL    string
	model      string
	timeout    time.Duration
	retries    int
	httpClient *http.Client
}

// GeminiRequest represents the request structure for Gemini API
type GeminiRequest struct {
	Contents          []Content         `json:"contents"`
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
}

// Content represents a content part in the request
type Content struct {
	Parts []Part `json:"parts"`
	Role  string `json:"role,omitempty"`
}

// Part represents a part of the content
type Part struct {
	Text string `json:"text,omitempty"`
}

// GenerationConfig contains generation parameters
type GenerationConfig struct {
	Temperature     float32 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// GeminiResponse represents the response from Gemini API
type GeminiResponse struct {
	Candidates []Candidate `json:"candidates"`
	Error      *APIError   `json:"error,omitempty"`
}

// Candidate represents a response candidate
type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

// APIError represents an API error response
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ProviderOption allows customizing the provider
type ProviderOption func(*Provider)

// WithBaseURL sets a custom base URL
func WithBaseURL(baseURL string) ProviderOption {
	return func(p *Provider) {
		p.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithModel sets the Gemini model to use
func WithModel(model string) ProviderOption {
	return func(p *Provider) {
		p.model = model
	}
}

// WithTimeout sets the request timeout
func WithTimeout(timeout time.Duration) ProviderOption {
	return func(p *Provider) {
		p.timeout = timeout
		p.httpClient.Timeout = timeout
	}
}

// WithRetries sets the number of retry attempts
func WithRetries(retries int) ProviderOption {
	return func(p *Provider) {
		p.retries = retries
	}
}

// NewProvider creates a new Gemini provider instance.
// The API key is required; construction fails without it.
func NewProvider(apiKey string, options ...ProviderOption) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: %w", providers.ErrMissingAPIKey)
	}

	p := &Provider{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		model:   defaultModel,
		timeout: 5 * time.Minute,
		retries: 3,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}

	for _, opt := range options {
		opt(p)
	}

	return p, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "gemini"
}

// Complete generates text using the Gemini API
func (p *Provider) Complete(ctx context.Context, req *providers.CompletionRequest) (string, error) {
	if len(req.Messages) == 0 {
		return "", providers.NewProviderError(p.Name(), fmt.Errorf("empty message list"))
	}

	geminiReq := p.buildRequest(req)

	// Make the API request with retries
	var resp *GeminiResponse
	var err error
	for attempt := 0; attempt <= p.retries; attempt++ {
		resp, err = p.makeRequest(ctx, geminiReq)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			break
		}
		if attempt < p.retries {
			time.Sleep(time.Duration(attempt+1) * time.Second)
		}
	}

	if err != nil {
		return "", providers.NewProviderError(p.Name(),
			fmt.Errorf("request failed after %d attempts: %w", p.retries+1, err))
	}

	text, err := p.parseResponse(resp)
	if err != nil {
		return "", providers.NewProviderError(p.Name(), err)
	}

	return text, nil
}

// buildRequest maps a completion request onto the Gemini wire format.
// System messages become the systemInstruction block.
func (p *Provider) buildRequest(req *providers.CompletionRequest) *GeminiRequest {
	geminiReq := &GeminiRequest{
		GenerationConfig: &GenerationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxOutputTokens,
		},
	}

	for _, msg := range req.Messages {
		if msg.Role == providers.RoleSystem {
			geminiReq.SystemInstruction = &Content{
				Parts: []Part{{Text: msg.Content}},
			}
			continue
		}
		geminiReq.Contents = append(geminiReq.Contents, Content{
			Parts: []Part{{Text: msg.Content}},
			Role:  "user",
		})
	}

	return geminiReq
}

// makeRequest makes an HTTP request to the Gemini API
func (p *Provider) makeRequest(ctx context.Context, req *GeminiRequest) (*GeminiResponse, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/models/%s:generateContent?key=%s", p.baseURL, apiVersion, p.model, p.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()

	respData, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", httpResp.StatusCode, string(respData))
	}

	var geminiResp GeminiResponse
	if err := json.Unmarshal(respData, &geminiResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if geminiResp.Error != nil {
		return nil, fmt.Errorf("API error %d: %s", geminiResp.Error.Code, geminiResp.Error.Message)
	}

	return &geminiResp, nil
}

// parseResponse extracts the generated text from a Gemini API response
func (p *Provider) parseResponse(resp *GeminiResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content parts in response")
	}

	text := strings.TrimSpace(candidate.Content.Parts[0].Text)
	if text == "" {
		return "", fmt.Errorf("empty completion result")
	}

	return text, nil
}

// ValidateConfig validates the provider configuration
func (p *Provider) ValidateConfig() error {
	if p.apiKey == "" {
		return fmt.Errorf("gemini: %w", providers.ErrMissingAPIKey)
	}
	if p.model == "" {
		return fmt.Errorf("gemini: model name is required")
	}
	return nil
}
