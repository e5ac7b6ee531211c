package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	// Point at an empty file so no global config leaks into the test.
	path := writeConfigFile(t, "")
	loader := NewLoader(path)

	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Provider.Name != "openai" {
		t.Errorf("Provider.Name = %q, want openai", cfg.Provider.Name)
	}
	if cfg.Provider.Retries != 3 {
		t.Errorf("Provider.Retries = %d, want 3", cfg.Provider.Retries)
	}
	if cfg.Lecture.DurationMinutes != 30 {
		t.Errorf("Lecture.DurationMinutes = %d, want 30", cfg.Lecture.DurationMinutes)
	}
	if cfg.Lecture.WordsPerMinute != 130 {
		t.Errorf("Lecture.WordsPerMinute = %d, want 130", cfg.Lecture.WordsPerMinute)
	}
	if !cfg.Lecture.IncludeExamples {
		t.Error("Lecture.IncludeExamples = false, want true")
	}
	if cfg.Watch.Interval != 5*time.Second {
		t.Errorf("Watch.Interval = %v, want 5s", cfg.Watch.Interval)
	}
	if cfg.Watch.HistoryDB != ".gollmlecture-watch.db" {
		t.Errorf("Watch.HistoryDB = %q, want .gollmlecture-watch.db", cfg.Watch.HistoryDB)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
provider:
  name: gemini
  temperature: 0.3
lecture:
  duration_minutes: 60
  words_per_minute: 110
watch:
  max_workers: 4
  processing_timeout: 10m
`)
	loader := NewLoader(path)

	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Provider.Name != "gemini" {
		t.Errorf("Provider.Name = %q, want gemini", cfg.Provider.Name)
	}
	if cfg.Provider.Temperature != 0.3 {
		t.Errorf("Provider.Temperature = %v, want 0.3", cfg.Provider.Temperature)
	}
	if cfg.Lecture.DurationMinutes != 60 {
		t.Errorf("Lecture.DurationMinutes = %d, want 60", cfg.Lecture.DurationMinutes)
	}
	if cfg.Watch.MaxWorkers != 4 {
		t.Errorf("Watch.MaxWorkers = %d, want 4", cfg.Watch.MaxWorkers)
	}
	if cfg.Watch.ProcessingTimeout != 10*time.Minute {
		t.Errorf("Watch.ProcessingTimeout = %v, want 10m", cfg.Watch.ProcessingTimeout)
	}
	// Unspecified values keep their defaults.
	if cfg.Lecture.WordsPerMinute != 110 {
		t.Errorf("Lecture.WordsPerMinute = %d, want 110", cfg.Lecture.WordsPerMinute)
	}
	if cfg.Provider.MaxTokens != 8000 {
		t.Errorf("Provider.MaxTokens = %d, want default 8000", cfg.Provider.MaxTokens)
	}
}

func TestLoadAPIKeyFromEnv(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
		want    string
	}{
		{
			name: "prefixed nested name",
			env:  map[string]string{"GOLLMLECTURE_PROVIDER_API_KEY": "sk-nested"},
			want: "sk-nested",
		},
		{
			name: "prefixed short name",
			env:  map[string]string{"GOLLMLECTURE_API_KEY": "sk-short"},
			want: "sk-short",
		},
		{
			name: "openai native name",
			env:  map[string]string{"OPENAI_API_KEY": "sk-openai"},
			want: "sk-openai",
		},
		{
			name:    "gemini native name",
			content: "provider:\n  name: gemini\n",
			env:     map[string]string{"GEMINI_API_KEY": "sk-gemini"},
			want:    "sk-gemini",
		},
		{
			name: "prefixed name wins over native",
			env: map[string]string{
				"GOLLMLECTURE_API_KEY": "sk-short",
				"OPENAI_API_KEY":       "sk-openai",
			},
			want: "sk-short",
		},
		{
			name:    "config file wins over fallback names",
			content: "provider:\n  api_key: sk-file\n",
			env:     map[string]string{"GOLLMLECTURE_API_KEY": "sk-short"},
			want:    "sk-file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			loader := NewLoader(writeConfigFile(t, tt.content))
			cfg, err := loader.Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.Provider.APIKey != tt.want {
				t.Errorf("Provider.APIKey = %q, want %q", cfg.Provider.APIKey, tt.want)
			}
		})
	}
}

func TestLoadWithOverrides(t *testing.T) {
	loader := NewLoader(writeConfigFile(t, `
provider:
  name: gemini
`))

	cfg, err := loader.LoadWithOverrides(map[string]interface{}{
		"provider.name":            "local",
		"provider.model":           "phi-4",
		"lecture.duration_minutes": 45,
	})
	if err != nil {
		t.Fatalf("LoadWithOverrides() error = %v", err)
	}

	if cfg.Provider.Name != "local" {
		t.Errorf("Provider.Name = %q, want local", cfg.Provider.Name)
	}
	if cfg.Provider.Model != "phi-4" {
		t.Errorf("Provider.Model = %q, want phi-4", cfg.Provider.Model)
	}
	if cfg.Lecture.DurationMinutes != 45 {
		t.Errorf("Lecture.DurationMinutes = %d, want 45", cfg.Lecture.DurationMinutes)
	}
	// Untouched values keep their loaded defaults.
	if cfg.Lecture.WordsPerMinute != 130 {
		t.Errorf("Lecture.WordsPerMinute = %d, want 130", cfg.Lecture.WordsPerMinute)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "temperature too high",
			content: `
provider:
  temperature: 2.5
`,
		},
		{
			name: "negative temperature",
			content: `
provider:
  temperature: -0.1
`,
		},
		{
			name: "zero duration",
			content: `
lecture:
  duration_minutes: 0
`,
		},
		{
			name: "negative pace",
			content: `
lecture:
  words_per_minute: -10
`,
		},
		{
			name: "zero workers",
			content: `
watch:
  max_workers: 0
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewLoader(writeConfigFile(t, tt.content))
			if _, err := loader.Load(); err == nil {
				t.Error("Load() succeeded, want validation error")
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if _, err := loader.Load(); err == nil {
		t.Error("Load() with missing explicit config file succeeded, want error")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Provider.Name != "openai" {
		t.Errorf("Provider.Name = %q, want openai", cfg.Provider.Name)
	}
	if cfg.Provider.Temperature != 0.7 {
		t.Errorf("Provider.Temperature = %v, want 0.7", cfg.Provider.Temperature)
	}
	if cfg.Lecture.DurationMinutes != 30 || cfg.Lecture.WordsPerMinute != 130 {
		t.Errorf("Lecture defaults = %+v, want 30 minutes at 130 wpm", cfg.Lecture)
	}
	if len(cfg.Watch.Patterns) != 2 {
		t.Errorf("Watch.Patterns = %v, want two defaults", cfg.Watch.Patterns)
	}
}
