package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/eternnoir/gollmlecture/pkg/lecture"
	"github.com/eternnoir/gollmlecture/pkg/logger"
)

// debounce windows for filesystem events
const (
	duplicateEventWindow = 5 * time.Second
	eventCacheTTL        = 30 * time.Second
	staleLockSweep       = 5 * time.Minute
)

// Watcher watches a directory for transcript files and transforms each
// new file into a lecture.
type Watcher struct {
	config    *Config
	tracker   *inflightTracker
	history   History
	processor *processor
	notify    *fsnotify.Watcher
	progress  ProgressCallback

	stats     Stats
	statsLock sync.RWMutex

	recentEvents    map[string]time.Time
	recentEventsMux sync.Mutex

	stopCh      chan struct{}
	workerQueue chan string
	loopWG      sync.WaitGroup
	workerWG    sync.WaitGroup

	// Startup cutoff; files older than this are ignored when
	// ProcessExisting is disabled.
	started time.Time
}

// New creates a watcher that transforms transcripts with the given transformer
func New(config *Config, transformer *lecture.Transformer) (*Watcher, error) {
	if config.WatchDir == "" {
		return nil, fmt.Errorf("watch directory is required")
	}

	history, err := NewHistory(config.HistoryDB)
	if err != nil {
		return nil, fmt.Errorf("failed to create processing history: %w", err)
	}

	notify, err := fsnotify.NewWatcher()
	if err != nil {
		_ = history.Close()
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	tracker := newInflightTracker()

	w := &Watcher{
		config:       config,
		tracker:      tracker,
		history:      history,
		notify:       notify,
		recentEvents: make(map[string]time.Time),
		stopCh:       make(chan struct{}),
		workerQueue:  make(chan string, config.MaxWorkers*2),
		stats:        Stats{StartTime: time.Now()},
	}

	w.processor = newProcessor(config, transformer, tracker, history)
	w.processor.progress = w.handleProgressEvent

	return w, nil
}

// Start begins watching the configured directory
func (w *Watcher) Start(ctx context.Context) error {
	log := logger.WithComponent("watcher")
	w.started = time.Now()

	if err := w.addWatchDir(w.config.WatchDir); err != nil {
		return fmt.Errorf("failed to add watch directory: %w", err)
	}

	for i := 0; i < w.config.MaxWorkers; i++ {
		w.workerWG.Add(1)
		go w.worker(ctx)
	}

	w.loopWG.Add(1)
	go w.sweepLoop()

	if w.config.ProcessExisting {
		log.Info().Msg("Queueing existing transcripts")
		if err := w.scan(); err != nil {
			log.Warn().Err(err).Msg("Failed to scan existing files")
		}
	}

	w.loopWG.Add(1)
	go w.watchLoop(ctx)

	log.Info().
		Str("directory", w.config.WatchDir).
		Bool("recursive", w.config.Recursive).
		Strs("patterns", w.config.Patterns).
		Msg("Transcript watcher started")

	return nil
}

// Stop gracefully shuts down the watcher
func (w *Watcher) Stop() error {
	log := logger.WithComponent("watcher")
	log.Info().Msg("Stopping transcript watcher")

	close(w.stopCh)

	if err := w.notify.Close(); err != nil {
		log.Warn().Err(err).Msg("Error closing fsnotify watcher")
	}

	// Event and sweep loops must stop before the queue closes; they are
	// the only senders.
	w.loopWG.Wait()
	close(w.workerQueue)
	w.workerWG.Wait()

	if err := w.history.Close(); err != nil {
		log.Warn().Err(err).Msg("Error closing history database")
	}

	log.Info().Msg("Transcript watcher stopped")
	return nil
}

// SetProgressCallback sets a callback for progress updates
func (w *Watcher) SetProgressCallback(callback ProgressCallback) {
	w.progress = callback
}

// GetStats returns a snapshot of watcher statistics
func (w *Watcher) GetStats() Stats {
	w.statsLock.RLock()
	defer w.statsLock.RUnlock()

	stats := w.stats
	stats.InProgress = w.tracker.Count()
	return stats
}

// addWatchDir registers the watch directory (and subdirectories when recursive)
func (w *Watcher) addWatchDir(dir string) error {
	if err := w.notify.Add(dir); err != nil {
		return err
	}

	if !w.config.Recursive {
		return nil
	}

	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() && path != dir {
			return w.notify.Add(path)
		}
		return nil
	})
}

// scan walks the watch directory and queues every processable file
func (w *Watcher) scan() error {
	return filepath.Walk(w.config.WatchDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if !w.config.Recursive && path != w.config.WatchDir {
				return filepath.SkipDir
			}
			return nil
		}
		if !w.config.ProcessExisting && info.ModTime().Before(w.started) {
			return nil
		}
		if w.processor.CanProcess(path) {
			w.queueFile(path)
		}
		return nil
	})
}

// watchLoop consumes fsnotify events and runs periodic rescans
func (w *Watcher) watchLoop(ctx context.Context) {
	defer w.loopWG.Done()
	log := logger.WithComponent("watcher")

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.notify.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.notify.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("Watcher error")
		case <-ticker.C:
			// Catch files missed by fsnotify
			_ = w.scan()
		}
	}
}

// handleEvent reacts to a filesystem event for a candidate transcript
func (w *Watcher) handleEvent(event fsnotify.Event) {
	log := logger.WithComponent("watcher").WithField("file", event.Name)

	if w.isDuplicateEvent(event.Name) {
		log.Debug().Msg("Duplicate event ignored")
		return
	}

	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	log.Debug().Str("op", event.Op.String()).Msg("File event")
	if !w.tracker.IsLocked(event.Name) && w.processor.CanProcess(event.Name) {
		w.queueFile(event.Name)
	}
}

// queueFile queues a file for processing, dropping it when the queue is full
// (the periodic rescan will pick it up again)
func (w *Watcher) queueFile(path string) {
	select {
	case w.workerQueue <- path:
		w.report(&ProgressEvent{
			Type:      "found",
			FilePath:  path,
			Message:   "Transcript queued for processing",
			Timestamp: time.Now(),
		})
	default:
		logger.WithComponent("watcher").
			Warn().
			Str("file", path).
			Msg("Worker queue is full, skipping file")
	}
}

// worker processes queued files until the queue closes
func (w *Watcher) worker(ctx context.Context) {
	defer w.workerWG.Done()
	log := logger.WithComponent("worker")

	for path := range w.workerQueue {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		default:
			if err := w.processor.ProcessFile(ctx, path); err != nil {
				log.Error().Err(err).Str("file", path).Msg("Failed to process transcript")
			}
		}
	}
}

// sweepLoop periodically clears stale locks and old event cache entries
func (w *Watcher) sweepLoop() {
	defer w.loopWG.Done()
	ticker := time.NewTicker(staleLockSweep)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			if cleaned := w.tracker.CleanupStale(w.config.ProcessingTimeout); cleaned > 0 {
				logger.WithComponent("watcher").
					Info().
					Int("cleaned", cleaned).
					Msg("Cleaned up stale locks")
			}
			w.cleanupRecentEvents()
		}
	}
}

// handleProgressEvent updates stats and forwards events to the external callback
func (w *Watcher) handleProgressEvent(event *ProgressEvent) {
	w.statsLock.Lock()
	switch event.Type {
	case "completed":
		w.stats.ProcessedCount++
	case "failed":
		w.stats.FailedCount++
	case "skipped":
		w.stats.SkippedCount++
	}
	w.statsLock.Unlock()

	w.report(event)
}

// isDuplicateEvent debounces rapid-fire events for the same path
func (w *Watcher) isDuplicateEvent(path string) bool {
	w.recentEventsMux.Lock()
	defer w.recentEventsMux.Unlock()

	now := time.Now()
	if lastSeen, exists := w.recentEvents[path]; exists && now.Sub(lastSeen) < duplicateEventWindow {
		return true
	}
	w.recentEvents[path] = now
	return false
}

// cleanupRecentEvents drops expired entries from the event cache
func (w *Watcher) cleanupRecentEvents() {
	w.recentEventsMux.Lock()
	defer w.recentEventsMux.Unlock()

	now := time.Now()
	for path, seen := range w.recentEvents {
		if now.Sub(seen) > eventCacheTTL {
			delete(w.recentEvents, path)
		}
	}
}

// report forwards an event to the external callback if one is set
func (w *Watcher) report(event *ProgressEvent) {
	if w.progress != nil {
		w.progress(event)
	}
}
