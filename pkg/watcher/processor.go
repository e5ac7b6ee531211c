package watcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/eternnoir/gollmlecture/pkg/lecture"
	"github.com/eternnoir/gollmlecture/pkg/logger"
	"github.com/eternnoir/gollmlecture/pkg/textproc"
)

// processor transforms a single transcript file into a lecture file
type processor struct {
	config      *Config
	transformer *lecture.Transformer
	tracker     *inflightTracker
	history     History
	pre         *textproc.Preprocessor
	progress    ProgressCallback
}

func newProcessor(config *Config, transformer *lecture.Transformer, tracker *inflightTracker, history History) *processor {
	return &processor{
		config:      config,
		transformer: transformer,
		tracker:     tracker,
		history:     history,
		pre:         textproc.NewPreprocessor(),
	}
}

// ProcessFile transforms one transcript file, writing the generated lecture
// next to it (or into the configured output directory) and recording the
// outcome in the history database.
func (p *processor) ProcessFile(ctx context.Context, filePath string) error {
	log := logger.WithComponent("processor").WithField("file", filePath)

	p.report(&ProgressEvent{Type: "processing", FilePath: filePath, Message: "Starting processing", Timestamp: time.Now()})

	if !p.CanProcess(filePath) {
		p.report(&ProgressEvent{Type: "skipped", FilePath: filePath, Message: "File cannot be processed", Timestamp: time.Now()})
		return nil
	}

	if !p.tracker.TryLock(filePath) {
		p.report(&ProgressEvent{Type: "skipped", FilePath: filePath, Message: "File is already being processed", Timestamp: time.Now()})
		return nil
	}
	defer p.tracker.Unlock(filePath)

	raw, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read transcript: %w", err)
	}

	// Transcripts are small; hash the full content so renames and
	// duplicates are detected.
	hash := contentHash(raw)

	processed, err := p.history.IsProcessed(hash)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to check processing history")
	} else if processed {
		p.report(&ProgressEvent{Type: "skipped", FilePath: filePath, Message: "Transcript already processed", Timestamp: time.Now()})
		return nil
	}

	outputPath := p.outputPath(filePath)
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	start := time.Now()
	log.Info().Int("duration_minutes", p.config.DurationMinutes).Msg("Starting lecture transformation")

	transformCtx, cancel := context.WithTimeout(ctx, p.config.ProcessingTimeout)
	defer cancel()

	content, err := p.transformer.TransformToLecture(transformCtx, string(raw), p.config.DurationMinutes, p.config.IncludeExamples)
	if err != nil {
		failed := FailedInfo{
			FileHash: hash,
			FilePath: filePath,
			FailedAt: time.Now(),
			Error:    err.Error(),
		}
		if histErr := p.history.RecordFailed(hash, &failed); histErr != nil {
			log.Warn().Err(histErr).Msg("Failed to record failure in history")
		}
		p.report(&ProgressEvent{Type: "failed", FilePath: filePath, Message: "Transformation failed", Error: err, Timestamp: time.Now()})
		return fmt.Errorf("transformation failed: %w", err)
	}

	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write lecture file: %w", err)
	}

	info := ProcessedInfo{
		FileHash:    hash,
		FilePath:    filePath,
		ProcessedAt: time.Now(),
		OutputPath:  outputPath,
		Elapsed:     time.Since(start),
		InputWords:  p.pre.CountWords(string(raw)),
		OutputWords: p.pre.CountWords(content),
	}
	if err := p.history.RecordProcessed(hash, &info); err != nil {
		log.Warn().Err(err).Msg("Failed to record success in history")
	}

	if p.config.MoveToDir != "" {
		if err := p.moveFile(filePath); err != nil {
			log.Warn().Err(err).Msg("Failed to move processed transcript")
		}
	}

	p.report(&ProgressEvent{
		Type:      "completed",
		FilePath:  filePath,
		Message:   fmt.Sprintf("Lecture generated in %v (%d words)", info.Elapsed.Round(time.Second), info.OutputWords),
		Timestamp: time.Now(),
	})

	log.Info().
		Dur("elapsed", info.Elapsed).
		Str("output", outputPath).
		Int("output_words", info.OutputWords).
		Msg("Transcript processed successfully")

	return nil
}

// contentHash identifies a transcript by its full content.
func contentHash(raw []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(raw))
}

// CanProcess checks if a file exists, matches the configured patterns, and
// has been stable for the configured wait.
func (p *processor) CanProcess(filePath string) bool {
	if _, err := os.Stat(filePath); err != nil {
		return false
	}

	// Never pick up our own output
	if strings.HasSuffix(filePath, ".lecture.md") {
		return false
	}

	filename := filepath.Base(filePath)
	matched := false
	for _, pattern := range p.config.Patterns {
		if match, _ := filepath.Match(pattern, filename); match {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	return p.isStable(filePath)
}

// isStable checks that size and mtime are unchanged across the stability wait
func (p *processor) isStable(filePath string) bool {
	before, err := os.Stat(filePath)
	if err != nil {
		return false
	}

	time.Sleep(p.config.StabilityWait)

	after, err := os.Stat(filePath)
	if err != nil {
		return false
	}

	return before.Size() == after.Size() && before.ModTime().Equal(after.ModTime())
}

// outputPath derives the lecture output path for an input transcript
func (p *processor) outputPath(inputPath string) string {
	base := filepath.Base(inputPath)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + ".lecture.md"

	if p.config.OutputDir != "" {
		return filepath.Join(p.config.OutputDir, name)
	}
	return filepath.Join(filepath.Dir(inputPath), name)
}

// moveFile moves the processed transcript to the configured directory,
// timestamping the name on collision.
func (p *processor) moveFile(filePath string) error {
	if err := os.MkdirAll(p.config.MoveToDir, 0o755); err != nil {
		return fmt.Errorf("failed to create move-to directory: %w", err)
	}

	destPath := filepath.Join(p.config.MoveToDir, filepath.Base(filePath))
	if _, err := os.Stat(destPath); err == nil {
		ext := filepath.Ext(filePath)
		name := strings.TrimSuffix(filepath.Base(filePath), ext)
		stamp := time.Now().Format("20060102_150405")
		destPath = filepath.Join(p.config.MoveToDir, fmt.Sprintf("%s_%s%s", name, stamp, ext))
	}

	if err := os.Rename(filePath, destPath); err != nil {
		return fmt.Errorf("failed to move file: %w", err)
	}
	return nil
}

// report reports progress if a callback is set
func (p *processor) report(event *ProgressEvent) {
	if p.progress != nil {
		p.progress(event)
	}
}
