package kardex

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"CampusPagosGo/api/utils"
	"CampusPagosGo/internal/checksum"
	"CampusPagosGo/internal/logger"
)

// GetKardexPagos returns recorded payments joined with student and program.
func GetKardexPagos(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		pag, err := utils.ExtractPagination(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		total, err := utils.CountTotal(ctx, pgxPool, `SELECT COUNT(*) FROM kardex_pagos`)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		pag.SetPaginationStats(total)

		query := `
			SELECT
				kp.id,
				kp.estudiante_programa_id,
				kp.cuota_id,
				kp.banco,
				kp.boleta,
				kp.monto,
				kp.fecha_pago,
				kp.huella,
				kp.concepto,
				kp.creado_por,
				kp.created_at,
				pr.carnet,
				pr.nombre,
				pg.abreviatura
			FROM kardex_pagos kp
			JOIN estudiante_programa ep ON ep.id = kp.estudiante_programa_id
			JOIN prospectos pr ON pr.id = ep.prospecto_id
			JOIN programas pg ON pg.id = ep.programa_id
			ORDER BY kp.created_at DESC
			LIMIT $1 OFFSET $2
		`

		rows, err := pgxPool.Query(ctx, query, pag.Limit, pag.Offset)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		defer rows.Close()

		type Item struct {
			ID                   int64           `json:"id"`
			EstudianteProgramaID int64           `json:"estudiante_programa_id"`
			CuotaID              *int64          `json:"cuota_id"`
			Banco                string          `json:"banco"`
			Boleta               string          `json:"boleta"`
			Monto                decimal.Decimal `json:"monto"`
			FechaPago            time.Time       `json:"fecha_pago"`
			Huella               string          `json:"huella"`
			Concepto             *string         `json:"concepto"`
			CreadoPor            *string         `json:"creado_por"`
			CreatedAt            time.Time       `json:"created_at"`
			Carnet               string          `json:"carnet"`
			Nombre               string          `json:"nombre"`
			Programa             string          `json:"programa"`
		}

		results := make([]Item, 0)
		for rows.Next() {
			var it Item
			if err := rows.Scan(
				&it.ID, &it.EstudianteProgramaID, &it.CuotaID, &it.Banco, &it.Boleta,
				&it.Monto, &it.FechaPago, &it.Huella, &it.Concepto, &it.CreadoPor,
				&it.CreatedAt, &it.Carnet, &it.Nombre, &it.Programa,
			); err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			results = append(results, it)
		}
		if rows.Err() != nil {
			writeError(w, http.StatusInternalServerError, rows.Err().Error())
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": results, "pagination": pag})
	}
}

// AttachReceipt stores the content hash (and storage path) of a receipt file
// on an existing payment. The same file content for the same enrollment is
// rejected; the client may declare an expected checksum to catch truncated
// uploads.
func AttachReceipt(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, "Failed to parse multipart form", http.StatusBadRequest)
			return
		}
		paymentID, err := strconv.ParseInt(r.FormValue("payment_id"), 10, 64)
		if err != nil || paymentID <= 0 {
			http.Error(w, "payment_id required in form", http.StatusBadRequest)
			return
		}
		files := r.MultipartForm.File["file"]
		if len(files) == 0 {
			http.Error(w, "No file uploaded", http.StatusBadRequest)
			return
		}
		file, err := files[0].Open()
		if err != nil {
			http.Error(w, "Failed to open file", http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			http.Error(w, "Failed to read file", http.StatusBadRequest)
			return
		}

		if expected := r.FormValue("checksum"); expected != "" {
			ok, err := checksum.NewMatcher(expected).Match(data)
			if err != nil || !ok {
				writeError(w, http.StatusBadRequest, ErrChecksumMismatch.Error())
				return
			}
		}
		hash := checksum.Sum(data)

		var enrollmentID int64
		err = pgxPool.QueryRow(ctx,
			`SELECT estudiante_programa_id FROM kardex_pagos WHERE id = $1`, paymentID,
		).Scan(&enrollmentID)
		if err != nil {
			writeError(w, http.StatusNotFound, "pago no encontrado")
			return
		}

		if existing, err := FindByFileHash(ctx, pgxPool, enrollmentID, hash); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		} else if existing != nil {
			writeError(w, http.StatusConflict, ErrFileAlreadyAttached.Error())
			return
		}

		// The storage path itself belongs to the file-storage collaborator;
		// only the reference and the hash live here.
		ruta := r.FormValue("storage_path")
		_, err = pgxPool.Exec(ctx,
			`UPDATE kardex_pagos SET archivo_hash = $1, archivo_ruta = NULLIF($2, '') WHERE id = $3`,
			hash, ruta, paymentID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if logger.GlobalLogger != nil {
			logger.GlobalLogger.LogAudit(fmt.Sprintf("recibo %s adjuntado al pago %d", hash[:12], paymentID))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "archivo_hash": hash})
	}
}

// ManualPromote retries moving one enrollment off the placeholder program.
func ManualPromote(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req struct {
			EnrollmentID int64  `json:"enrollment_id"`
			PlanCode     string `json:"plan_code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EnrollmentID == 0 {
			http.Error(w, "Invalid JSON or missing fields", http.StatusBadRequest)
			return
		}
		promoted, err := PromoteFromPlaceholder(ctx, pgxPool, req.EnrollmentID, req.PlanCode, 1)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "promoted": promoted})
	}
}

// GetImportBatches returns the import history with per-batch counts.
func GetImportBatches(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		pag, err := utils.ExtractPagination(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		total, err := utils.CountTotal(ctx, pgxPool, `SELECT COUNT(*) FROM import_batches`)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		pag.SetPaginationStats(total)

		rows, err := pgxPool.Query(ctx, `
			SELECT batch_id, archivo, subido_por, modo, estado, procesados,
			       cuotas_creadas, pagos_creados, pagos_actualizados, duplicados, created_at
			FROM import_batches
			ORDER BY created_at DESC
			LIMIT $1 OFFSET $2`, pag.Limit, pag.Offset)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		defer rows.Close()

		type Item struct {
			BatchID           string    `json:"batch_id"`
			Archivo           string    `json:"archivo"`
			SubidoPor         string    `json:"subido_por"`
			Modo              string    `json:"modo"`
			Estado            string    `json:"estado"`
			Procesados        *int      `json:"procesados"`
			CuotasCreadas     *int      `json:"cuotas_creadas"`
			PagosCreados      *int      `json:"pagos_creados"`
			PagosActualizados *int      `json:"pagos_actualizados"`
			Duplicados        *int      `json:"duplicados"`
			CreatedAt         time.Time `json:"created_at"`
		}
		results := make([]Item, 0)
		for rows.Next() {
			var it Item
			if err := rows.Scan(&it.BatchID, &it.Archivo, &it.SubidoPor, &it.Modo, &it.Estado,
				&it.Procesados, &it.CuotasCreadas, &it.PagosCreados, &it.PagosActualizados,
				&it.Duplicados, &it.CreatedAt); err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			results = append(results, it)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": results, "pagination": pag})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": msg})
}
