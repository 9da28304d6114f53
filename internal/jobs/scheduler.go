package jobs

import (
	"fmt"
	"log"

	"CampusPagosGo/internal/logger"
	"CampusPagosGo/internal/serviceiface"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CronService struct {
	config map[string]interface{}
	db     *pgxpool.Pool
}

func NewCronService(cfg map[string]interface{}, db *pgxpool.Pool) serviceiface.Service {
	return &CronService{
		config: cfg,
		db:     db,
	}
}

func (s *CronService) Name() string {
	return "cron"
}

func (s *CronService) Start() error {
	log.Println("Starting cron service...")

	sweepCfg := NewDefaultPromotionSweepConfig()
	if s.config != nil {
		if schedule, ok := s.config["promotion_schedule"].(string); ok && schedule != "" {
			sweepCfg.Schedule = schedule
		}
		if batchSize, ok := s.config["promotion_batch_size"].(int); ok && batchSize > 0 {
			sweepCfg.BatchSize = batchSize
		}
	}
	if err := RunPromotionSweepScheduler(sweepCfg, s.db); err != nil {
		return fmt.Errorf("failed to start promotion sweep scheduler: %v", err)
	}
	logger.GlobalLogger.LogAudit("Promotion sweep scheduler started")
	log.Println("Cron service started — Promotion Sweep scheduled")

	cleanupCfg := NewDefaultBatchCleanupConfig()
	if s.config != nil {
		if schedule, ok := s.config["cleanup_schedule"].(string); ok && schedule != "" {
			cleanupCfg.Schedule = schedule
		}
		if days, ok := s.config["retention_days"].(int); ok && days > 0 {
			cleanupCfg.RetentionDays = days
		}
	}
	if err := RunBatchCleanupScheduler(cleanupCfg, s.db); err != nil {
		return fmt.Errorf("failed to start batch cleanup scheduler: %v", err)
	}
	logger.GlobalLogger.LogAudit("Batch cleanup scheduler started")
	log.Println("Cron service started — Batch Cleanup scheduled")

	return nil
}

func (s *CronService) Stop() error {
	log.Println("Cron service stopped.")
	return nil
}
