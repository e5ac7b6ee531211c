package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/eternnoir/gollmlecture/pkg/providers"
)

func TestNewProviderRequiresAPIKey(t *testing.T) {
	if _, err := NewProvider(""); !errors.Is(err, providers.ErrMissingAPIKey) {
		t.Errorf("NewProvider(\"\") error = %v, want ErrMissingAPIKey", err)
	}
}

func TestBuildRequest(t *testing.T) {
	p, err := NewProvider("key")
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	req := p.buildRequest(&providers.CompletionRequest{
		Messages: []providers.Message{
			{Role: providers.RoleSystem, Content: "be an educator"},
			{Role: providers.RoleUser, Content: "make a lecture"},
		},
		Temperature:     0.4,
		MaxOutputTokens: 2000,
	})

	if req.SystemInstruction == nil || req.SystemInstruction.Parts[0].Text != "be an educator" {
		t.Errorf("SystemInstruction = %+v, want system message mapped", req.SystemInstruction)
	}
	if len(req.Contents) != 1 {
		t.Fatalf("len(Contents) = %d, want 1", len(req.Contents))
	}
	if req.Contents[0].Role != "user" || req.Contents[0].Parts[0].Text != "make a lecture" {
		t.Errorf("Contents[0] = %+v, want user message", req.Contents[0])
	}
	if req.GenerationConfig.Temperature != 0.4 {
		t.Errorf("Temperature = %v, want 0.4", req.GenerationConfig.Temperature)
	}
	if req.GenerationConfig.MaxOutputTokens != 2000 {
		t.Errorf("MaxOutputTokens = %d, want 2000", req.GenerationConfig.MaxOutputTokens)
	}
}

func TestParseResponse(t *testing.T) {
	p, err := NewProvider("key")
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	tests := []struct {
		name    string
		resp    *GeminiResponse
		want    string
		wantErr bool
	}{
		{
			name: "valid response",
			resp: &GeminiResponse{Candidates: []Candidate{
				{Content: Content{Parts: []Part{{Text: "  generated \n"}}}},
			}},
			want: "generated",
		},
		{
			name:    "no candidates",
			resp:    &GeminiResponse{},
			wantErr: true,
		},
		{
			name: "no parts",
			resp: &GeminiResponse{Candidates: []Candidate{
				{Content: Content{}},
			}},
			wantErr: true,
		},
		{
			name: "whitespace only",
			resp: &GeminiResponse{Candidates: []Candidate{
				{Content: Content{Parts: []Part{{Text: "   "}}}},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.parseResponse(tt.resp)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseResponse() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompleteAgainstServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req GeminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		resp := GeminiResponse{Candidates: []Candidate{
			{Content: Content{Parts: []Part{{Text: "lecture text"}}}},
		}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	p, err := NewProvider("key", WithBaseURL(server.URL), WithRetries(0))
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	got, err := p.Complete(context.Background(), &providers.CompletionRequest{
		Messages: []providers.Message{{Role: providers.RoleUser, Content: "hello"}},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "lecture text" {
		t.Errorf("Complete() = %q, want %q", got, "lecture text")
	}
}

func TestCompleteRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		resp := GeminiResponse{Candidates: []Candidate{
			{Content: Content{Parts: []Part{{Text: "recovered"}}}},
		}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	p, err := NewProvider("key", WithBaseURL(server.URL), WithRetries(1))
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	got, err := p.Complete(context.Background(), &providers.CompletionRequest{
		Messages: []providers.Message{{Role: providers.RoleUser, Content: "hello"}},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "recovered" {
		t.Errorf("Complete() = %q, want %q", got, "recovered")
	}
	if calls.Load() != 2 {
		t.Errorf("server calls = %d, want 2", calls.Load())
	}
}

func TestCompleteEmptyMessages(t *testing.T) {
	p, err := NewProvider("key")
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	if _, err := p.Complete(context.Background(), &providers.CompletionRequest{}); err == nil {
		t.Error("Complete() with no messages succeeded, want error")
	}
}

func TestValidateConfig(t *testing.T) {
	p, err := NewProvider("key")
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	if err := p.ValidateConfig(); err != nil {
		t.Errorf("ValidateConfig() error = %v", err)
	}

	p.model = ""
	if err := p.ValidateConfig(); err == nil {
		t.Error("ValidateConfig() with empty model succeeded, want error")
	}
}
