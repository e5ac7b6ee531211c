package providers

import (
	"context"
	"time"
)

// Message roles accepted by completion providers.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message represents a single role-tagged message in a completion request
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest represents a request for text completion
type CompletionRequest struct {
	Messages        []Message
	Temperature     float32
	MaxOutputTokens int
}

// CompletionProvider defines the interface for LLM text completion backends
type CompletionProvider interface {
	// Name returns the provider name (e.g., "gemini", "openai", "local")
	Name() string

	// Complete generates text for the given messages and returns it verbatim
	Complete(ctx context.Context, req *CompletionRequest) (string, error)

	// ValidateConfig validates the provider configuration
	ValidateConfig() error
}

// Settings represents common configuration for providers
type Settings struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	Retries     int
	Temperature float32
	MaxTokens   int
}
