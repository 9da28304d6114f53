package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"

	"CampusPagosGo/internal/config"
	"CampusPagosGo/internal/logger"
)

// BatchCleanupConfig controls retention of old import batch records.
type BatchCleanupConfig struct {
	Schedule      string
	RetentionDays int
	TimeZone      string
}

func NewDefaultBatchCleanupConfig() *BatchCleanupConfig {
	return &BatchCleanupConfig{
		Schedule:      config.DefaultBatchCleanupSchedule,
		RetentionDays: config.BatchRetentionDays,
		TimeZone:      config.DefaultTimeZone,
	}
}

func RunBatchCleanupScheduler(cfg *BatchCleanupConfig, db *pgxpool.Pool) error {
	if cfg.Schedule == "" {
		cfg.Schedule = config.DefaultBatchCleanupSchedule
	}
	if cfg.RetentionDays == 0 {
		cfg.RetentionDays = config.BatchRetentionDays
	}
	if cfg.TimeZone == "" {
		cfg.TimeZone = config.DefaultTimeZone
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		loc = time.UTC
	}

	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.Schedule, func() {
		if err := CleanupOldBatches(db, cfg.RetentionDays); err != nil {
			logger.GlobalLogger.LogAudit(fmt.Sprintf("Batch cleanup failed: %v", err))
		}
	})
	if err != nil {
		return fmt.Errorf("unable to schedule batch cleanup: %v", err)
	}

	c.Start()
	return nil
}

// CleanupOldBatches removes import batch records past the retention window.
// Payments are never touched, only the batch bookkeeping rows.
func CleanupOldBatches(db *pgxpool.Pool, retentionDays int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	tag, err := db.Exec(ctx, `
		DELETE FROM import_batches
		WHERE created_at < now() - ($1 || ' days')::interval`,
		fmt.Sprint(retentionDays))
	if err != nil {
		return fmt.Errorf("limpiar import_batches: %w", err)
	}
	logger.GlobalLogger.LogAudit(fmt.Sprintf("Batch cleanup done: %d rows removed", tag.RowsAffected()))
	return nil
}
