package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/eternnoir/gollmlecture/pkg/lecture"
)

func testWatcher(t *testing.T, mutate func(*Config)) *Watcher {
	t.Helper()

	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.WatchDir = dir
	cfg.StabilityWait = time.Millisecond
	cfg.Interval = 50 * time.Millisecond
	cfg.HistoryDB = filepath.Join(dir, "history.db")
	if mutate != nil {
		mutate(cfg)
	}

	transformer := lecture.NewTransformer(&fixedProvider{content: "generated lecture content"})
	w, err := New(cfg, transformer)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return w
}

func TestNewRequiresWatchDir(t *testing.T) {
	cfg := DefaultConfig()
	transformer := lecture.NewTransformer(&fixedProvider{content: "x"})

	if _, err := New(cfg, transformer); err == nil {
		t.Error("New() without WatchDir succeeded, want error")
	}
}

func TestWatcherProcessesExistingFiles(t *testing.T) {
	w := testWatcher(t, nil)
	input := filepath.Join(w.config.WatchDir, "talk.txt")
	if err := os.WriteFile(input, []byte("existing transcript"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	outputPath := filepath.Join(w.config.WatchDir, "talk.lecture.md")
	waitForFile(t, outputPath, 5*time.Second)

	deadline := time.Now().Add(time.Second)
	for w.GetStats().ProcessedCount != 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}

	if stats := w.GetStats(); stats.ProcessedCount != 1 {
		t.Errorf("ProcessedCount = %d, want 1", stats.ProcessedCount)
	}
}

func TestWatcherPicksUpNewFiles(t *testing.T) {
	w := testWatcher(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer func() { _ = w.Stop() }()

	input := filepath.Join(w.config.WatchDir, "dropped.txt")
	if err := os.WriteFile(input, []byte("freshly dropped transcript"), 0o644); err != nil {
		t.Fatal(err)
	}

	waitForFile(t, filepath.Join(w.config.WatchDir, "dropped.lecture.md"), 5*time.Second)
}

func TestWatcherSkipsExistingWhenDisabled(t *testing.T) {
	w := testWatcher(t, func(cfg *Config) {
		cfg.ProcessExisting = false
	})
	input := filepath.Join(w.config.WatchDir, "old.txt")
	if err := os.WriteFile(input, []byte("pre-existing transcript"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// The rescan ticker also skips existing files in this mode, so a short
	// settle window is enough to catch a regression.
	time.Sleep(200 * time.Millisecond)
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(w.config.WatchDir, "old.lecture.md")); !os.IsNotExist(err) {
		t.Error("pre-existing file was processed with ProcessExisting disabled")
	}
}

func TestIsDuplicateEvent(t *testing.T) {
	w := testWatcher(t, nil)
	defer func() { _ = w.history.Close() }()

	if w.isDuplicateEvent("/a.txt") {
		t.Error("first event reported as duplicate")
	}
	if !w.isDuplicateEvent("/a.txt") {
		t.Error("immediate repeat not reported as duplicate")
	}
	if w.isDuplicateEvent("/b.txt") {
		t.Error("event for different path reported as duplicate")
	}
}

func waitForFile(t *testing.T, path string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); err == nil {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("file %s did not appear within %v", path, timeout)
}
