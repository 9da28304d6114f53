package kardex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"CampusPagosGo/internal/config"
)

// FindOrCreateStudent looks a student up by normalized carnet and creates one
// with best-effort defaults from the row when absent. Students are never
// deleted by the import.
func FindOrCreateStudent(ctx context.Context, db DBTX, carnet string, rd RowData, creadoPor string) (Student, error) {
	var s Student
	err := db.QueryRow(ctx,
		`SELECT id, carnet, nombre, creado_por, created_at FROM prospectos WHERE carnet = $1`,
		carnet).Scan(&s.ID, &s.Carnet, &s.Nombre, &s.CreadoPor, &s.CreatedAt)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Student{}, fmt.Errorf("buscar prospecto %q: %w", carnet, err)
	}

	nombre := rd.Nombre
	if nombre == "" {
		nombre = carnet
	}
	err = db.QueryRow(ctx, `
		INSERT INTO prospectos (carnet, nombre, creado_por, created_at)
		VALUES ($1, $2, $3, now())
		RETURNING id, carnet, nombre, creado_por, created_at`,
		carnet, nombre, creadoPor,
	).Scan(&s.ID, &s.Carnet, &s.Nombre, &s.CreadoPor, &s.CreatedAt)
	if err != nil {
		return Student{}, fmt.Errorf("crear prospecto %q: %w", carnet, err)
	}
	return s, nil
}

// enrollmentStart picks the start date: explicit start-month field first, then
// the payment date, then now.
func enrollmentStart(mesInicio string, fechaPago time.Time) time.Time {
	if mesInicio != "" {
		return NormalizeDate(mesInicio)
	}
	if !fechaPago.IsZero() {
		return fechaPago
	}
	return time.Now()
}

func investmentFor(mensualidad decimal.Decimal, meses int) decimal.Decimal {
	return mensualidad.Mul(decimal.NewFromInt(int64(meses)))
}

// FindPlaceholderEnrollment returns the student's enrollment parked on the
// placeholder program, or nil.
func FindPlaceholderEnrollment(ctx context.Context, db DBTX, studentID int64) (*Enrollment, error) {
	var e Enrollment
	err := db.QueryRow(ctx, `
		SELECT ep.id, ep.prospecto_id, ep.programa_id, ep.codigo_plan_origen, ep.mensualidad,
		       ep.duracion_meses, ep.fecha_inicio, ep.fecha_fin, ep.inversion_total
		FROM estudiante_programa ep
		JOIN programas p ON p.id = ep.programa_id
		WHERE ep.prospecto_id = $1 AND p.abreviatura = $2
		LIMIT 1`,
		studentID, placeholderCode(),
	).Scan(&e.ID, &e.ProspectoID, &e.ProgramaID, &e.CodigoPlanOrigen, &e.Mensualidad,
		&e.DuracionMeses, &e.FechaInicio, &e.FechaFin, &e.InversionTotal)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("buscar inscripción pendiente de prospecto %d: %w", studentID, err)
	}
	return &e, nil
}

// FindOrCreateEnrollment returns the enrollment for (student, program),
// creating it from row data when absent. The raw plan code is kept on the row
// so a later import (or the nightly sweep) can retry promotion off the
// placeholder.
func FindOrCreateEnrollment(ctx context.Context, db DBTX, student Student, program Program, rd RowData, creadoPor string) (Enrollment, bool, error) {
	var e Enrollment
	err := db.QueryRow(ctx, `
		SELECT id, prospecto_id, programa_id, codigo_plan_origen, mensualidad,
		       duracion_meses, fecha_inicio, fecha_fin, inversion_total
		FROM estudiante_programa
		WHERE prospecto_id = $1 AND programa_id = $2`,
		student.ID, program.ID,
	).Scan(&e.ID, &e.ProspectoID, &e.ProgramaID, &e.CodigoPlanOrigen, &e.Mensualidad,
		&e.DuracionMeses, &e.FechaInicio, &e.FechaFin, &e.InversionTotal)
	if err == nil {
		return e, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Enrollment{}, false, fmt.Errorf("buscar inscripción (%d,%d): %w", student.ID, program.ID, err)
	}

	meses := rd.NumCuotas
	if meses <= 0 {
		meses = config.DefaultInstallmentCount
	}
	inicio := enrollmentStart(rd.MesInicio, rd.FechaPago)
	fin := inicio.AddDate(0, meses, 0)
	inversion := investmentFor(rd.Mensualidad, meses)

	err = db.QueryRow(ctx, `
		INSERT INTO estudiante_programa
			(prospecto_id, programa_id, codigo_plan_origen, mensualidad,
			 duracion_meses, fecha_inicio, fecha_fin, inversion_total, creado_por, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		RETURNING id, prospecto_id, programa_id, codigo_plan_origen, mensualidad,
		          duracion_meses, fecha_inicio, fecha_fin, inversion_total`,
		student.ID, program.ID, rd.CodigoPlan, rd.Mensualidad,
		meses, inicio, fin, inversion, creadoPor,
	).Scan(&e.ID, &e.ProspectoID, &e.ProgramaID, &e.CodigoPlanOrigen, &e.Mensualidad,
		&e.DuracionMeses, &e.FechaInicio, &e.FechaFin, &e.InversionTotal)
	if err != nil {
		return Enrollment{}, false, fmt.Errorf("crear inscripción (%d,%d): %w", student.ID, program.ID, err)
	}
	return e, true, nil
}
