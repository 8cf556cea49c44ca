package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"feedbackradar-engine/internal/jobs"
	"feedbackradar-engine/internal/store"
)

// TriggerOptions wires the periodic default-keyword job. The trigger's
// only coupling to the core is Manager.Create.
type TriggerOptions struct {
	DB          *sql.DB
	Manager     *jobs.Manager
	Fallback    []string // config keywords if no saved query exists
	Concurrency int
	Delay       int
}

// DefaultJobTask returns the task run by Every: load the default saved
// query and submit it as a job.
func DefaultJobTask(opts TriggerOptions) Task {
	return func(ctx context.Context) error {
		keywords := opts.Fallback
		if q, ok, err := store.LoadQuery(ctx, opts.DB, store.DefaultQueryName); err != nil {
			return fmt.Errorf("load default query: %w", err)
		} else if ok && len(q.Keywords) > 0 {
			keywords = q.Keywords
		}

		if len(keywords) == 0 {
			log.Printf("[trigger] no default keywords configured, skipping")
			return nil
		}

		job, err := opts.Manager.Create(ctx, keywords, opts.Concurrency, opts.Delay)
		if err != nil {
			return fmt.Errorf("create scheduled job: %w", err)
		}
		log.Printf("[trigger] scheduled job id=%s keywords=%d total=%d", job.ID, len(keywords), job.Progress.Total)
		return nil
	}
}

// RetentionTask returns the task run by Every: delete posts older than
// the retention window.
func RetentionTask(db *sql.DB, olderThan time.Duration) Task {
	return func(ctx context.Context) error {
		deleted, err := store.CleanupOldPosts(ctx, db, olderThan)
		if err != nil {
			return err
		}
		if deleted > 0 {
			log.Printf("[retention] deleted %d posts older than %s", deleted, olderThan)
		}
		return nil
	}
}
