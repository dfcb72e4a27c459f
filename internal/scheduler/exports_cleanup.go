package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/library-ms/internal/tasks"
)

// TaskEnqueuer enqueues background tasks for processing.
type TaskEnqueuer interface {
	Add(tasks ...backlite.Task) *backlite.TaskAddOp
}

// ExportsCleanupScheduler periodically enqueues a cleanup task that removes
// stale CSV report files from the exports directory.
type ExportsCleanupScheduler struct {
	enqueuer  TaskEnqueuer
	schedule  string
	retention time.Duration

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

// NewExportsCleanupScheduler creates a new scheduler instance.
func NewExportsCleanupScheduler(enqueuer TaskEnqueuer, schedule string, retention time.Duration) *ExportsCleanupScheduler {
	return &ExportsCleanupScheduler{
		enqueuer:  enqueuer,
		schedule:  schedule,
		retention: retention,
		cron:      cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *ExportsCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runCleanup(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule exports cleanup job: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	log.Printf("Exports cleanup scheduler: started with schedule '%s'", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs to complete.
func (s *ExportsCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false

	log.Printf("Exports cleanup scheduler: stopped")
}

// RunNow triggers an immediate cleanup.
func (s *ExportsCleanupScheduler) RunNow(ctx context.Context) error {
	return s.enqueue(ctx)
}

// IsRunning returns whether the scheduler is active.
func (s *ExportsCleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next cleanup will occur.
func (s *ExportsCleanupScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *ExportsCleanupScheduler) runCleanup(ctx context.Context) {
	if err := s.enqueue(ctx); err != nil {
		log.Printf("Exports cleanup: failed to enqueue task: %v", err)
	}
}

func (s *ExportsCleanupScheduler) enqueue(ctx context.Context) error {
	task := tasks.CleanupExportsTask{
		RetentionMinutes: int(s.retention / time.Minute),
	}
	_, err := s.enqueuer.Add(task).Ctx(ctx).Save()
	return err
}
