package watcher

import (
	"sync"
	"time"
)

// inflightTracker guards against the same file being processed by two
// workers at once.
type inflightTracker struct {
	mu       sync.RWMutex
	inflight map[string]time.Time
}

func newInflightTracker() *inflightTracker {
	return &inflightTracker{
		inflight: make(map[string]time.Time),
	}
}

// TryLock attempts to acquire the processing lock for a file
func (t *inflightTracker) TryLock(path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.inflight[path]; exists {
		return false
	}
	t.inflight[path] = time.Now()
	return true
}

// Unlock releases the processing lock for a file
func (t *inflightTracker) Unlock(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.inflight, path)
}

// IsLocked checks if a file is currently being processed
func (t *inflightTracker) IsLocked(path string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, exists := t.inflight[path]
	return exists
}

// CleanupStale removes locks older than timeout and returns how many
func (t *inflightTracker) CleanupStale(timeout time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	cleaned := 0
	now := time.Now()
	for path, started := range t.inflight {
		if now.Sub(started) > timeout {
			delete(t.inflight, path)
			cleaned++
		}
	}
	return cleaned
}

// Count returns the number of files currently being processed
func (t *inflightTracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.inflight)
}
