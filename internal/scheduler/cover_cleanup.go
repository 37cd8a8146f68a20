package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/avasilyev/shelfserve/internal/settingsstore"
	"github.com/avasilyev/shelfserve/internal/tasks"
)

// CoverCleanupScheduler periodically enqueues cover cache cleanup tasks
// based on the configured cron schedule.
type CoverCleanupScheduler struct {
	taskClient    *tasks.Client
	settingsStore *settingsstore.SettingsStore

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewCoverCleanupScheduler creates a new scheduler instance
func NewCoverCleanupScheduler(taskClient *tasks.Client, settingsStore *settingsstore.SettingsStore) *CoverCleanupScheduler {
	return &CoverCleanupScheduler{
		taskClient:    taskClient,
		settingsStore: settingsStore,
		cron:          cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if cleanup is enabled
func (s *CoverCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	config := s.settingsStore.GetCoverCleanupConfig()

	if !config.Enabled {
		log.Printf("Cover cleanup scheduler: disabled")
		return nil
	}

	if err := settingsstore.ValidateCronSchedule(config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", config.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(config.Schedule, func() {
		s.runCleanup("schedule")
	})
	if err != nil {
		return fmt.Errorf("failed to schedule cleanup job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := settingsstore.GetNextRunTime(config.Schedule)
	log.Printf("Cover cleanup scheduler: started with schedule '%s' (%s). Next run: %v",
		config.Schedule,
		settingsstore.GetCronDescription(config.Schedule),
		nextRun)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler
func (s *CoverCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.cron.Remove(s.entryID)

	// Release the watcher goroutine started in Start
	if s.cancelFunc != nil {
		s.cancelFunc()
	}

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Cover cleanup scheduler: stopped")
}

// Reschedule updates the schedule (call after settings change)
func (s *CoverCleanupScheduler) Reschedule() error {
	s.mu.Lock()
	wasRunning := s.isRunning
	s.mu.Unlock()

	if wasRunning {
		s.Stop()
	}

	return s.Start(context.Background())
}

// RunNow enqueues an immediate cleanup
func (s *CoverCleanupScheduler) RunNow() error {
	return s.enqueue("manual")
}

// IsRunning returns whether the scheduler is active
func (s *CoverCleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next cleanup will occur
func (s *CoverCleanupScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	entries := s.cron.Entries()
	for _, entry := range entries {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// runCleanup enqueues a cleanup task from a cron trigger
func (s *CoverCleanupScheduler) runCleanup(triggeredBy string) {
	config := s.settingsStore.GetCoverCleanupConfig()
	if !config.Enabled {
		log.Printf("Cover cleanup: skipped (disabled)")
		return
	}

	if err := s.enqueue(triggeredBy); err != nil {
		errMsg := fmt.Sprintf("Failed to enqueue cleanup task: %v", err)
		log.Printf("Cover cleanup: %s", errMsg)
		_ = s.settingsStore.SetCoverCleanupStatus("failed", errMsg)
	}
}

// enqueue submits a cleanup task to the queue. The worker records the run
// outcome, the scheduler only records enqueue failures.
func (s *CoverCleanupScheduler) enqueue(triggeredBy string) error {
	if s.taskClient == nil {
		return fmt.Errorf("task queue not configured")
	}

	_, err := s.taskClient.Add(tasks.CleanupCoverCacheTask{TriggeredBy: triggeredBy}).Save()
	if err != nil {
		return err
	}

	log.Printf("Cover cleanup: task enqueued (%s)", triggeredBy)
	return nil
}
