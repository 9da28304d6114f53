package kardex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// installmentDueDates yields due dates at startDate + (i-1) months.
func installmentDueDates(start time.Time, count int) []time.Time {
	dates := make([]time.Time, 0, count)
	for i := 0; i < count; i++ {
		dates = append(dates, start.AddDate(0, i, 0))
	}
	return dates
}

// scheduleGuard rejects parameters that would corrupt a schedule. Returns a
// human-readable warning, or "" when generation may proceed.
func scheduleGuard(mensualidad decimal.Decimal, count int) string {
	if mensualidad.LessThanOrEqual(decimal.Zero) {
		return fmt.Sprintf("mensualidad %s no positiva, plan de cuotas omitido", mensualidad)
	}
	if count <= 0 {
		return fmt.Sprintf("número de cuotas %d no positivo, plan de cuotas omitido", count)
	}
	return ""
}

// GenerateScheduleIfAbsent creates installments 1..count for an enrollment
// that has none. An enrollment with any existing installment is left alone;
// only full-replace mode purges before calling this.
func GenerateScheduleIfAbsent(ctx context.Context, db DBTX, enrollmentID int64, mensualidad decimal.Decimal, count int, start time.Time) (int, string, error) {
	var existing int
	err := db.QueryRow(ctx,
		`SELECT COUNT(*) FROM cuotas_programa_estudiante WHERE estudiante_programa_id = $1`,
		enrollmentID).Scan(&existing)
	if err != nil {
		return 0, "", fmt.Errorf("contar cuotas de inscripción %d: %w", enrollmentID, err)
	}
	if existing > 0 {
		return 0, "", nil
	}
	if warn := scheduleGuard(mensualidad, count); warn != "" {
		return 0, warn, nil
	}

	batch := &pgx.Batch{}
	for i, due := range installmentDueDates(start, count) {
		batch.Queue(`
			INSERT INTO cuotas_programa_estudiante
				(estudiante_programa_id, numero_cuota, fecha_vencimiento, monto, estado)
			VALUES ($1, $2, $3, $4, $5)`,
			enrollmentID, i+1, due, mensualidad, EstadoPendiente)
	}
	br := db.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return 0, "", fmt.Errorf("insertar cuota %d de inscripción %d: %w", i+1, enrollmentID, err)
		}
	}
	return count, "", nil
}

// endOfMonth returns the first instant of the month after t; an installment
// due strictly before it belongs to the payment's effective month or earlier.
func endOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, 1, 0)
}

// MatchPendingInstallment locates the earliest pending installment due on or
// before the payment's effective month. Nil means the payment is recorded
// unlinked.
func MatchPendingInstallment(ctx context.Context, db DBTX, enrollmentID int64, fechaPago time.Time) (*Installment, error) {
	var inst Installment
	err := db.QueryRow(ctx, `
		SELECT id, estudiante_programa_id, numero_cuota, fecha_vencimiento, monto, estado
		FROM cuotas_programa_estudiante
		WHERE estudiante_programa_id = $1 AND estado = $2 AND fecha_vencimiento < $3
		ORDER BY numero_cuota
		LIMIT 1`,
		enrollmentID, EstadoPendiente, endOfMonth(fechaPago),
	).Scan(&inst.ID, &inst.EstudianteProgramaID, &inst.NumeroCuota,
		&inst.FechaVencimiento, &inst.Monto, &inst.Estado)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("buscar cuota pendiente de inscripción %d: %w", enrollmentID, err)
	}
	return &inst, nil
}

func MarkInstallmentPaid(ctx context.Context, db DBTX, installmentID int64) error {
	_, err := db.Exec(ctx,
		`UPDATE cuotas_programa_estudiante SET estado = $1 WHERE id = $2`,
		EstadoPagado, installmentID)
	if err != nil {
		return fmt.Errorf("marcar cuota %d pagada: %w", installmentID, err)
	}
	return nil
}

// PurgeSchedule removes an enrollment's installments (and optionally its
// payments) ahead of a full-replace rebuild.
func PurgeSchedule(ctx context.Context, db DBTX, enrollmentID int64, purgePayments bool) error {
	if purgePayments {
		if _, err := db.Exec(ctx,
			`DELETE FROM kardex_pagos WHERE estudiante_programa_id = $1`, enrollmentID); err != nil {
			return fmt.Errorf("purgar pagos de inscripción %d: %w", enrollmentID, err)
		}
	} else {
		// Keep payments but detach them from the installments being purged.
		if _, err := db.Exec(ctx,
			`UPDATE kardex_pagos SET cuota_id = NULL WHERE estudiante_programa_id = $1`, enrollmentID); err != nil {
			return fmt.Errorf("desvincular pagos de inscripción %d: %w", enrollmentID, err)
		}
	}
	if _, err := db.Exec(ctx,
		`DELETE FROM cuotas_programa_estudiante WHERE estudiante_programa_id = $1`, enrollmentID); err != nil {
		return fmt.Errorf("purgar cuotas de inscripción %d: %w", enrollmentID, err)
	}
	return nil
}
