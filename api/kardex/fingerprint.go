package kardex

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"CampusPagosGo/internal/config"
)

// ComputeFingerprint derives the dedup identity of a payment from the ordered
// tuple bank|receipt|enrollment|date. The enrollment id must be part of the
// tuple: two students can legitimately share a deposit slip, so bank+receipt
// alone collides across unrelated students.
func ComputeFingerprint(banco, boleta string, enrollmentID int64, fechaPago time.Time) string {
	payload := strings.Join([]string{
		banco,
		boleta,
		strconv.FormatInt(enrollmentID, 10),
		fechaPago.Format(config.DateFormat),
	}, "|")
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// FindByFingerprint returns the stored payment with this fingerprint, or nil.
func FindByFingerprint(ctx context.Context, db DBTX, huella string) (*Payment, error) {
	var p Payment
	err := db.QueryRow(ctx, `
		SELECT id, estudiante_programa_id, banco, boleta, monto, fecha_pago, huella
		FROM kardex_pagos
		WHERE huella = $1`,
		huella).Scan(&p.ID, &p.EstudianteProgramaID, &p.Banco, &p.Boleta, &p.Monto, &p.FechaPago, &p.Huella)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("buscar pago por huella: %w", err)
	}
	return &p, nil
}

// FindByFileHash is the secondary dedup for attached receipt files: the same
// content re-uploaded for the same enrollment is a duplicate, but the same
// file under a different enrollment is allowed (siblings sharing a receipt).
func FindByFileHash(ctx context.Context, db DBTX, enrollmentID int64, hash string) (*Payment, error) {
	var p Payment
	err := db.QueryRow(ctx, `
		SELECT id, estudiante_programa_id, banco, boleta, huella
		FROM kardex_pagos
		WHERE estudiante_programa_id = $1 AND archivo_hash = $2`,
		enrollmentID, hash).Scan(&p.ID, &p.EstudianteProgramaID, &p.Banco, &p.Boleta, &p.Huella)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("buscar pago por hash de archivo: %w", err)
	}
	return &p, nil
}

// InsertPayment persists a payment that already passed the dedup checks.
func InsertPayment(ctx context.Context, db DBTX, p *Payment) error {
	err := db.QueryRow(ctx, `
		INSERT INTO kardex_pagos
			(estudiante_programa_id, cuota_id, banco_raw, banco, boleta_raw, boleta,
			 monto, fecha_pago, huella, archivo_hash, archivo_ruta, concepto, creado_por, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now())
		RETURNING id`,
		p.EstudianteProgramaID, p.CuotaID, p.BancoRaw, p.Banco, p.BoletaRaw, p.Boleta,
		p.Monto, p.FechaPago, p.Huella, p.ArchivoHash, p.ArchivoRuta, p.Concepto, p.CreadoPor,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("insertar pago huella=%s: %w", p.Huella, err)
	}
	return nil
}
