package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/avasilyev/shelfserve/internal/entities"
)

// CoveredBookLister provides books that have (or claim to have) covers.
type CoveredBookLister interface {
	GetBooksWithCovers() ([]entities.Book, error)
}

// CoverFetcher downloads and caches a cover image for a book.
type CoverFetcher interface {
	GetCover(bookUUID, coverURL string) (string, error)
}

// WarmCoverCacheTask prefetches cover images for books with remote cover
// URLs so the first page load does not wait on downloads.
type WarmCoverCacheTask struct {
	// BookUUID limits warming to a single book. Empty means all books.
	BookUUID string `json:"book_uuid,omitempty"`
}

// Config returns the queue configuration for cover warming tasks.
func (t WarmCoverCacheTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "warm_cover_cache",
		MaxAttempts: 2,
		Backoff:     10 * time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// WarmCoverCacheProcessor creates a processor function for WarmCoverCacheTask.
// Individual download failures are logged and skipped so one dead URL does
// not fail the whole run.
func WarmCoverCacheProcessor(books CoveredBookLister, cache CoverFetcher) backlite.QueueProcessor[WarmCoverCacheTask] {
	return func(ctx context.Context, task WarmCoverCacheTask) error {
		if books == nil || cache == nil {
			return fmt.Errorf("cover warming not configured")
		}

		candidates, err := books.GetBooksWithCovers()
		if err != nil {
			return fmt.Errorf("list books with covers: %w", err)
		}

		warmed := 0
		failed := 0
		for _, book := range candidates {
			if task.BookUUID != "" && book.UUID != task.BookUUID {
				continue
			}
			if book.CoverURL == "" {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}

			if _, err := cache.GetCover(book.UUID, book.CoverURL); err != nil {
				log.Printf("[TASK] Failed to warm cover for book %s: %v", book.UUID, err)
				failed++
				continue
			}
			warmed++
		}

		log.Printf("[TASK] Cover warming finished: %d cached, %d failed", warmed, failed)
		return nil
	}
}

// NewWarmCoverCacheQueue creates a backlite queue for cover warming.
func NewWarmCoverCacheQueue(books CoveredBookLister, cache CoverFetcher) backlite.Queue {
	return backlite.NewQueue(WarmCoverCacheProcessor(books, cache))
}
