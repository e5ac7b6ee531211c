package watcher

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	bucketProcessed = "processed"
	bucketFailed    = "failed"
)

// History is the persistent record of processed and failed transcripts,
// keyed by content hash so renamed or re-dropped files are not reprocessed.
type History interface {
	IsProcessed(fileHash string) (bool, error)
	RecordProcessed(fileHash string, info *ProcessedInfo) error
	RecordFailed(fileHash string, info *FailedInfo) error
	GetProcessedInfo(fileHash string) (*ProcessedInfo, error)
	GetFailedInfo(fileHash string) (*FailedInfo, error)
	Close() error
}

// boltHistory implements History backed by a BoltDB file
type boltHistory struct {
	db *bolt.DB
}

// NewHistory opens (or creates) the history database at dbPath
func NewHistory(dbPath string) (History, error) {
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{bucketProcessed, bucketFailed} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &boltHistory{db: db}, nil
}

// IsProcessed checks if a content hash has been processed
func (h *boltHistory) IsProcessed(fileHash string) (bool, error) {
	var exists bool
	err := h.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketProcessed))
		if bucket == nil {
			return nil
		}
		exists = bucket.Get([]byte(fileHash)) != nil
		return nil
	})
	return exists, err
}

// RecordProcessed records a successfully processed transcript and clears
// any earlier failure record for the same hash.
func (h *boltHistory) RecordProcessed(fileHash string, info *ProcessedInfo) error {
	return h.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketProcessed))
		if bucket == nil {
			return fmt.Errorf("processed bucket not found")
		}

		data, err := json.Marshal(info)
		if err != nil {
			return fmt.Errorf("failed to marshal processed info: %w", err)
		}
		if err := bucket.Put([]byte(fileHash), data); err != nil {
			return fmt.Errorf("failed to store processed info: %w", err)
		}

		if failed := tx.Bucket([]byte(bucketFailed)); failed != nil {
			_ = failed.Delete([]byte(fileHash))
		}
		return nil
	})
}

// RecordFailed records a failed attempt, incrementing the retry count on
// repeated failures of the same content.
func (h *boltHistory) RecordFailed(fileHash string, info *FailedInfo) error {
	return h.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketFailed))
		if bucket == nil {
			return fmt.Errorf("failed bucket not found")
		}

		if existing := bucket.Get([]byte(fileHash)); existing != nil {
			var prev FailedInfo
			if err := json.Unmarshal(existing, &prev); err == nil {
				info.RetryCount = prev.RetryCount + 1
			}
		}

		data, err := json.Marshal(info)
		if err != nil {
			return fmt.Errorf("failed to marshal failed info: %w", err)
		}
		return bucket.Put([]byte(fileHash), data)
	})
}

// GetProcessedInfo retrieves information about a processed transcript
func (h *boltHistory) GetProcessedInfo(fileHash string) (*ProcessedInfo, error) {
	var info *ProcessedInfo
	err := h.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketProcessed))
		if bucket == nil {
			return nil
		}
		data := bucket.Get([]byte(fileHash))
		if data == nil {
			return nil
		}
		var decoded ProcessedInfo
		if err := json.Unmarshal(data, &decoded); err != nil {
			return fmt.Errorf("failed to unmarshal processed info: %w", err)
		}
		info = &decoded
		return nil
	})
	return info, err
}

// GetFailedInfo retrieves information about a failed transcript
func (h *boltHistory) GetFailedInfo(fileHash string) (*FailedInfo, error) {
	var info *FailedInfo
	err := h.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketFailed))
		if bucket == nil {
			return nil
		}
		data := bucket.Get([]byte(fileHash))
		if data == nil {
			return nil
		}
		var decoded FailedInfo
		if err := json.Unmarshal(data, &decoded); err != nil {
			return fmt.Errorf("failed to unmarshal failed info: %w", err)
		}
		info = &decoded
		return nil
	})
	return info, err
}

// Close closes the underlying database
func (h *boltHistory) Close() error {
	return h.db.Close()
}
