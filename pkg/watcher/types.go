// Package watcher processes transcript files dropped into a watched
// directory, transforming each into a lecture and recording the outcome
// in a persistent history database.
package watcher

import (
	"time"
)

// ProgressCallback is called to report progress
type ProgressCallback func(event *ProgressEvent)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Type      string // "found", "processing", "completed", "failed", "skipped"
	FilePath  string
	Message   string
	Error     error
	Timestamp time.Time
}

// ProcessedInfo contains information about a successfully processed transcript
type ProcessedInfo struct {
	FileHash    string        `json:"hash"`
	FilePath    string        `json:"filepath"`
	ProcessedAt time.Time     `json:"processed_at"`
	OutputPath  string        `json:"output_path"`
	Elapsed     time.Duration `json:"elapsed"`
	InputWords  int           `json:"input_words"`
	OutputWords int           `json:"output_words"`
}

// FailedInfo contains information about a failed processing attempt
type FailedInfo struct {
	FileHash   string    `json:"hash"`
	FilePath   string    `json:"filepath"`
	FailedAt   time.Time `json:"failed_at"`
	Error      string    `json:"error"`
	RetryCount int       `json:"retry_count"`
}

// Stats contains statistics about the watcher
type Stats struct {
	StartTime      time.Time
	ProcessedCount int
	FailedCount    int
	SkippedCount   int
	InProgress     int
}

// Config contains configuration for the transcript watcher
type Config struct {
	// Directory to watch
	WatchDir string

	// File patterns to match (e.g., "*.txt", "*.md")
	Patterns []string

	// Whether to watch subdirectories recursively
	Recursive bool

	// Interval for periodic rescans that catch missed events
	Interval time.Duration

	// Time to wait for file stability before processing
	StabilityWait time.Duration

	// Maximum time allowed for transforming a single transcript
	ProcessingTimeout time.Duration

	// Directory to move processed transcripts to (optional)
	MoveToDir string

	// Directory to write generated lectures to (default: alongside input)
	OutputDir string

	// Path to the BoltDB history database
	HistoryDB string

	// Whether to process existing files on startup
	ProcessExisting bool

	// Maximum number of concurrent processing workers
	MaxWorkers int

	// Target lecture duration in minutes
	DurationMinutes int

	// Whether generated lectures include practical examples
	IncludeExamples bool
}

// DefaultConfig returns default watcher configuration
func DefaultConfig() *Config {
	return &Config{
		Patterns:          []string{"*.txt", "*.md"},
		Recursive:         false,
		Interval:          5 * time.Second,
		StabilityWait:     2 * time.Second,
		ProcessingTimeout: 30 * time.Minute,
		HistoryDB:         ".gollmlecture-watch.db",
		ProcessExisting:   true,
		MaxWorkers:        2,
		DurationMinutes:   30,
		IncludeExamples:   true,
	}
}
