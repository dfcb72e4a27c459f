package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// ExportSweeper provides the ability to delete stale report files.
type ExportSweeper interface {
	DeleteOlderThan(retention time.Duration) (int, error)
}

// CleanupExportsTask removes generated CSV report files older than the
// configured retention period. Reports are streamed to the client at
// request time, so anything left on disk is leftover from failed downloads.
type CleanupExportsTask struct {
	RetentionMinutes int `json:"retention_minutes"`
}

// Config returns the queue configuration for export cleanup tasks.
func (t CleanupExportsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_exports",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupExportsProcessor creates a processor function for CleanupExportsTask.
func CleanupExportsProcessor(sweeper ExportSweeper) backlite.QueueProcessor[CleanupExportsTask] {
	return func(ctx context.Context, task CleanupExportsTask) error {
		if sweeper == nil {
			return fmt.Errorf("export sweeper not configured")
		}

		retentionMinutes := task.RetentionMinutes
		if retentionMinutes <= 0 {
			retentionMinutes = 60
		}
		retention := time.Duration(retentionMinutes) * time.Minute

		deleted, err := sweeper.DeleteOlderThan(retention)
		if err != nil {
			return fmt.Errorf("cleanup exports: %w", err)
		}

		log.Printf("[TASK] Cleaned up %d export files older than %d minutes", deleted, retentionMinutes)
		return nil
	}
}

// NewCleanupExportsQueue creates a backlite queue for export cleanup tasks.
func NewCleanupExportsQueue(sweeper ExportSweeper) backlite.Queue {
	return backlite.NewQueue(CleanupExportsProcessor(sweeper))
}
