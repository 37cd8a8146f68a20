package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// BookUUIDLister provides the set of book UUIDs that currently exist in the
// library.
type BookUUIDLister interface {
	GetBookUUIDs() ([]string, error)
}

// CoverCacheCleaner removes cached cover files that do not belong to any of
// the given UUIDs.
type CoverCacheCleaner interface {
	CleanupExcept(keep []string) (int, error)
}

// CleanupStatusRecorder persists the outcome of a cleanup run so the admin
// endpoints can report it. Optional, may be nil.
type CleanupStatusRecorder interface {
	SetCoverCleanupStatus(status, message string) error
}

// CleanupCoverCacheTask removes cached covers for books that no longer exist
// in the library. Runs on a schedule and can be triggered manually from the
// admin endpoints.
type CleanupCoverCacheTask struct {
	TriggeredBy string `json:"triggered_by"` // "schedule" or "manual"
}

// Config returns the queue configuration for cover cache cleanup tasks.
func (t CleanupCoverCacheTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_cover_cache",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupCoverCacheProcessor creates a processor function for
// CleanupCoverCacheTask. The status recorder may be nil.
func CleanupCoverCacheProcessor(books BookUUIDLister, cache CoverCacheCleaner, status CleanupStatusRecorder) backlite.QueueProcessor[CleanupCoverCacheTask] {
	record := func(outcome, message string) {
		if status == nil {
			return
		}
		if err := status.SetCoverCleanupStatus(outcome, message); err != nil {
			log.Printf("[TASK] Failed to record cleanup status: %v", err)
		}
	}

	return func(ctx context.Context, task CleanupCoverCacheTask) error {
		if books == nil || cache == nil {
			return fmt.Errorf("cover cache cleanup not configured")
		}

		uuids, err := books.GetBookUUIDs()
		if err != nil {
			record("failed", err.Error())
			return fmt.Errorf("list book uuids: %w", err)
		}

		removed, err := cache.CleanupExcept(uuids)
		if err != nil {
			record("failed", err.Error())
			return fmt.Errorf("cleanup cover cache: %w", err)
		}

		message := fmt.Sprintf("Removed %d orphaned covers, %d books kept", removed, len(uuids))
		record("success", message)
		log.Printf("[TASK] Cover cache cleanup (%s): %s", task.TriggeredBy, message)
		return nil
	}
}

// NewCleanupCoverCacheQueue creates a backlite queue for cover cache cleanup.
func NewCleanupCoverCacheQueue(books BookUUIDLister, cache CoverCacheCleaner, status CleanupStatusRecorder) backlite.Queue {
	return backlite.NewQueue(CleanupCoverCacheProcessor(books, cache, status))
}
