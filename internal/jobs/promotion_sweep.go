package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"

	"CampusPagosGo/api/kardex"
	"CampusPagosGo/internal/config"
	"CampusPagosGo/internal/logger"
)

// PromotionSweepConfig controls the nightly retry of placeholder enrollments.
type PromotionSweepConfig struct {
	Schedule  string
	BatchSize int
	TimeZone  string
}

func NewDefaultPromotionSweepConfig() *PromotionSweepConfig {
	return &PromotionSweepConfig{
		Schedule:  config.DefaultPromotionSweepSchedule,
		BatchSize: config.PromotionSweepBatchSize,
		TimeZone:  config.DefaultTimeZone,
	}
}

func RunPromotionSweepScheduler(cfg *PromotionSweepConfig, db *pgxpool.Pool) error {
	if cfg.Schedule == "" {
		cfg.Schedule = config.DefaultPromotionSweepSchedule
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = config.PromotionSweepBatchSize
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
		if err := SweepPlaceholderEnrollments(db, cfg.BatchSize); err != nil {
			logger.GlobalLogger.LogAudit(fmt.Sprintf("Promotion sweep failed: %v", err))
		}
	})
	if err != nil {
		return fmt.Errorf("unable to schedule promotion sweep: %v", err)
	}

	c.Start()
	return nil
}

// SweepPlaceholderEnrollments retries promotion for enrollments still parked
// on the placeholder program whose stored plan code might resolve by now
// (programs are added to the catalog over time).
func SweepPlaceholderEnrollments(db *pgxpool.Pool, batchSize int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	rows, err := db.Query(ctx, `
		SELECT ep.id, ep.codigo_plan_origen
		FROM estudiante_programa ep
		JOIN programas p ON p.id = ep.programa_id
		WHERE p.abreviatura = $1
		  AND ep.codigo_plan_origen IS NOT NULL
		  AND ep.codigo_plan_origen <> ''
		ORDER BY ep.id
		LIMIT $2`,
		config.PlaceholderProgramCode, batchSize)
	if err != nil {
		return fmt.Errorf("listar inscripciones pendientes: %w", err)
	}

	type candidate struct {
		id       int64
		planCode string
	}
	candidates := make([]candidate, 0, batchSize)
	for rows.Next() {
		var c candidate
		if err := rows.Scan(&c.id, &c.planCode); err != nil {
			rows.Close()
			return fmt.Errorf("leer inscripción pendiente: %w", err)
		}
		candidates = append(candidates, c)
	}
	rows.Close()
	if rows.Err() != nil {
		return rows.Err()
	}

	promoted := 0
	for _, c := range candidates {
		ok, err := kardex.PromoteFromPlaceholder(ctx, db, c.id, c.planCode, 1)
		if err != nil {
			logger.GlobalLogger.LogAudit(fmt.Sprintf("Promotion sweep: enrollment %d failed: %v", c.id, err))
			continue
		}
		if ok {
			promoted++
		}
	}

	logger.GlobalLogger.LogAudit(fmt.Sprintf(
		"Promotion sweep done: %d candidates, %d promoted", len(candidates), promoted))
	return nil
}
