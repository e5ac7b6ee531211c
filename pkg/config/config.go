package config

import (
	"time"

	"github.com/eternnoir/gollmlecture/pkg/logger"
)

// Config represents the application configuration
type Config struct {
	// LLM Provider Configuration
	Provider ProviderConfig `yaml:"provider" mapstructure:"provider"`

	// Lecture Generation Configuration
	Lecture LectureConfig `yaml:"lecture" mapstructure:"lecture"`

	// Watch Configuration
	Watch WatchConfig `yaml:"watch" mapstructure:"watch"`

	// Logging Configuration
	Logging logger.Config `yaml:"logging" mapstructure:"logging"`
}

// ProviderConfig contains LLM provider settings
type ProviderConfig struct {
	// Provider name (openai, gemini, local)
	Name string `yaml:"name" mapstructure:"name"`

	// API Configuration
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Request Configuration
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Retries int           `yaml:"retries" mapstructure:"retries"`

	// Model Configuration
	Model        string  `yaml:"model" mapstructure:"model"`
	Temperature  float32 `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens    int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	ContextLimit int     `yaml:"context_limit" mapstructure:"context_limit"`
}

// LectureConfig contains lecture generation settings
type LectureConfig struct {
	// Target spoken duration in minutes
	DurationMinutes int `yaml:"duration_minutes" mapstructure:"duration_minutes"`

	// Speaking pace used to convert duration into a word budget
	WordsPerMinute int `yaml:"words_per_minute" mapstructure:"words_per_minute"`

	// Whether generated sections should include practical examples
	IncludeExamples bool `yaml:"include_examples" mapstructure:"include_examples"`
}

// WatchConfig contains watch mode settings
type WatchConfig struct {
	// File patterns to watch (e.g., "*.txt", "*.md")
	Patterns []string `yaml:"patterns" mapstructure:"patterns"`

	// Whether to watch subdirectories recursively
	Recursive bool `yaml:"recursive" mapstructure:"recursive"`

	// Polling interval for periodic rescans
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// Time to wait for file stability before processing
	StabilityWait time.Duration `yaml:"stability_wait" mapstructure:"stability_wait"`

	// Maximum time allowed for transforming a single transcript
	ProcessingTimeout time.Duration `yaml:"processing_timeout" mapstructure:"processing_timeout"`

	// Directory to move processed transcripts to (optional)
	MoveToDir string `yaml:"move_to_dir" mapstructure:"move_to_dir"`

	// Directory to write generated lectures to
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`

	// Path to the BoltDB history database
	HistoryDB string `yaml:"history_db" mapstructure:"history_db"`

	// Whether to process existing files on startup
	ProcessExisting bool `yaml:"process_existing" mapstructure:"process_existing"`

	// Maximum number of concurrent processing workers
	MaxWorkers int `yaml:"max_workers" mapstructure:"max_workers"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			Name:        "openai",
			Timeout:     300 * time.Second,
			Retries:     3,
			Temperature: 0.7,
			MaxTokens:   8000,
		},
		Lecture: LectureConfig{
			DurationMinutes: 30,
			WordsPerMinute:  130,
			IncludeExamples: true,
		},
		Watch: WatchConfig{
			Patterns:          []string{"*.txt", "*.md"},
			Recursive:         false,
			Interval:          5 * time.Second,
			StabilityWait:     2 * time.Second,
			ProcessingTimeout: 30 * time.Minute,
			HistoryDB:         ".gollmlecture-watch.db",
			ProcessExisting:   true,
			MaxWorkers:        2,
		},
		Logging: *logger.DefaultConfig(),
	}
}
