package kardex

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"CampusPagosGo/internal/config"
	"CampusPagosGo/internal/logger"
	"CampusPagosGo/internal/resource"
)

// RowData is one source row after normalization.
type RowData struct {
	RowNum      int
	Carnet      string
	Nombre      string
	BancoRaw    string
	Banco       string
	BoletaRaw   string
	Boleta      string
	Monto       decimal.Decimal
	FechaPago   time.Time
	Mensualidad decimal.Decimal
	CodigoPlan  string
	MesInicio   string
	NumCuotas   int
	Concepto    string
}

// columnGuesses maps each canonical field to the header spellings seen across
// historical files. Matching is case-insensitive with spaces collapsed.
var columnGuesses = map[string][]string{
	"carnet":      {"carnet", "carne", "codigo", "código", "no. carnet", "codigo estudiante"},
	"nombre":      {"nombre", "estudiante", "nombre completo", "alumno"},
	"banco":       {"banco"},
	"boleta":      {"boleta", "no. boleta", "no boleta", "recibo", "no. recibo", "numero de boleta"},
	"monto":       {"monto", "pago", "cantidad", "importe", "monto pagado"},
	"fecha":       {"fecha", "fecha de pago", "fecha pago", "fecha deposito"},
	"mensualidad": {"mensualidad", "mensualidad aprobada", "cuota aprobada", "cuota mensual"},
	"plan":        {"plan", "plan de estudios", "programa", "codigo plan", "código plan"},
	"mes_inicio":  {"mes inicio", "mes de inicio", "inicio"},
	"num_cuotas":  {"no. cuotas", "numero de cuotas", "cuotas", "no cuotas"},
	"concepto":    {"concepto", "observaciones", "notas", "descripcion"},
}

// requiredFields must all be present in the header; validated once against the
// first row, never per row.
var requiredFields = []string{"carnet", "boleta", "monto", "fecha", "mensualidad", "banco", "concepto"}

func canonHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(strings.TrimSpace(h)), " "))
}

// mapHeader resolves each canonical field to a column index and reports the
// required fields that could not be located.
func mapHeader(header []string) (map[string]int, []string) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		if c := canonHeader(h); c != "" {
			if _, seen := byName[c]; !seen {
				byName[c] = i
			}
		}
	}
	idx := make(map[string]int)
	for field, guesses := range columnGuesses {
		for _, g := range guesses {
			if i, ok := byName[g]; ok {
				idx[field] = i
				break
			}
		}
	}
	var missing []string
	for _, f := range requiredFields {
		if _, ok := idx[f]; !ok {
			missing = append(missing, f)
		}
	}
	return idx, missing
}

func cell(row []string, idx map[string]int, field string) string {
	i, ok := idx[field]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// buildRowData normalizes one raw row. Total by construction: every
// normalizer degrades instead of failing.
func buildRowData(row []string, idx map[string]int, rowNum int) RowData {
	bancoRaw := cell(row, idx, "banco")
	boletaRaw := cell(row, idx, "boleta")
	numCuotas := 0
	if s := keepAlnum(cell(row, idx, "num_cuotas")); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			numCuotas = n
		}
	}
	return RowData{
		RowNum:      rowNum,
		Carnet:      NormalizeStudentCode(cell(row, idx, "carnet")),
		Nombre:      cell(row, idx, "nombre"),
		BancoRaw:    bancoRaw,
		Banco:       NormalizeBankName(bancoRaw),
		BoletaRaw:   boletaRaw,
		Boleta:      NormalizeReceiptNumber(boletaRaw),
		Monto:       NormalizeAmount(cell(row, idx, "monto")),
		FechaPago:   NormalizeDate(cell(row, idx, "fecha")),
		Mensualidad: NormalizeAmount(cell(row, idx, "mensualidad")),
		CodigoPlan:  cell(row, idx, "plan"),
		MesInicio:   cell(row, idx, "mes_inicio"),
		NumCuotas:   numCuotas,
		Concepto:    cell(row, idx, "concepto"),
	}
}

// chunkRows splits data rows into fixed-size batches to bound memory per
// transaction.
func chunkRows(rows [][]string, size int) [][][]string {
	if size <= 0 {
		size = config.ImportChunkSize
	}
	var chunks [][][]string
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		chunks = append(chunks, rows[start:end])
	}
	return chunks
}

// finalizeStatus: an import where not a single row succeeded is Failed even
// when nothing raised — it almost always means a misconfigured column mapping,
// not genuinely empty input.
func finalizeStatus(res *ImportResult) string {
	if res.ProcessedCount == 0 {
		return StatusFailed
	}
	return StatusCompleted
}

// RunImport drives one batch import end to end. Row-level failures are
// accumulated in the result and never abort the run; only header validation
// and whole-chunk storage errors are fatal to their scope.
func RunImport(ctx context.Context, pool *pgxpool.Pool, fileName string, rows [][]string, opts ImportOptions) (ImportResult, error) {
	res := ImportResult{BatchID: uuid.New().String(), Status: StatusValidating}
	if err := opts.Validate(); err != nil {
		res.Status = StatusFailed
		return res, err
	}
	if len(rows) < 2 {
		res.Status = StatusFailed
		return res, ErrEmptyFile
	}
	idx, missing := mapHeader(rows[0])
	if len(missing) > 0 {
		res.Status = StatusFailed
		return res, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	dataRows := rows[1:]
	start := time.Now()
	if rm := resource.Global(); rm != nil {
		rm.TrackJob(res.BatchID, string(opts.Mode), len(dataRows))
		defer rm.UntrackJob(res.BatchID)
	}
	if err := insertBatchRecord(ctx, pool, &res, fileName, opts); err != nil {
		log.Printf("ERROR: registrar batch %s: %v", res.BatchID, err)
	}
	res.Status = StatusProcessing

	// Enrollments already purged this run; full-replace purges each touched
	// enrollment exactly once so repeated rows rebuild onto the same schedule.
	purged := make(map[int64]bool)

	rowNum := 1 // header is row 1; data starts at 2
	for _, chunk := range chunkRows(dataRows, config.ImportChunkSize) {
		firstRow := rowNum + 1
		tx, err := pool.Begin(ctx)
		if err != nil {
			for i := range chunk {
				res.Errors = append(res.Errors, RowError{Row: firstRow + i, Reason: "transacción no disponible: " + err.Error()})
			}
			rowNum += len(chunk)
			continue
		}

		chunkRes := res // snapshot counters in case the chunk rolls back
		chunkFailed := false
		for i, raw := range chunk {
			rd := buildRowData(raw, idx, firstRow+i)
			if err := processRow(ctx, tx, rd, opts, &res, purged); err != nil {
				if isStorageErr(err) {
					// Storage-level failure poisons the whole chunk.
					chunkFailed = true
					tx.Rollback(ctx)
					res = chunkRes
					for j := range chunk {
						res.Errors = append(res.Errors, RowError{Row: firstRow + j, Reason: "lote revertido: " + err.Error()})
					}
					break
				}
				res.Errors = append(res.Errors, RowError{Row: rd.RowNum, Reason: err.Error()})
				if !opts.Silent {
					log.Printf("[kardex] fila %d omitida: %v", rd.RowNum, err)
				}
			}
		}
		if !chunkFailed {
			if err := tx.Commit(ctx); err != nil {
				res = chunkRes
				for j := range chunk {
					res.Errors = append(res.Errors, RowError{Row: firstRow + j, Reason: "commit fallido: " + err.Error()})
				}
			}
		}
		rowNum += len(chunk)
	}

	if rm := resource.Global(); rm != nil {
		res.Warnings = append(res.Warnings, rm.BudgetWarnings(start)...)
	}
	res.Status = finalizeStatus(&res)

	summary := fmt.Sprintf("import %s %s: procesados=%d cuotas=%d pagos=%d actualizados=%d duplicados=%d errores=%d en %v",
		res.BatchID, res.Status, res.ProcessedCount, res.InstallmentsCreated, res.PaymentsCreated,
		res.PaymentsUpdated, res.DuplicatesSkipped, len(res.Errors), time.Since(start).Round(time.Millisecond))
	log.Printf("[kardex] %s", summary)
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit(summary)
	}
	if err := finishBatchRecord(ctx, pool, &res); err != nil {
		log.Printf("ERROR: cerrar batch %s: %v", res.BatchID, err)
	}
	return res, nil
}

// rowError marks failures local to one row; anything else coming out of
// processRow is treated as a storage failure that aborts the chunk.
type rowError struct{ msg string }

func (e rowError) Error() string { return e.msg }

func rowErrorf(format string, args ...any) error {
	return rowError{msg: fmt.Sprintf(format, args...)}
}

func isStorageErr(err error) bool {
	_, ok := err.(rowError)
	return !ok
}

// processRow runs the per-row pipeline: resolve program and enrollment,
// rebuild or extend the schedule, dedup, persist.
func processRow(ctx context.Context, tx DBTX, rd RowData, opts ImportOptions, res *ImportResult, purged map[int64]bool) error {
	if rd.Monto.LessThanOrEqual(decimal.Zero) {
		return rowErrorf("monto %s inválido", rd.Monto)
	}

	program, err := ResolveProgram(ctx, tx, rd.CodigoPlan)
	if err != nil {
		return err
	}
	if program.IsPlaceholder() && !opts.ForcedInsertion {
		return rowErrorf("plan %q no resuelto", rd.CodigoPlan)
	}

	student, err := FindOrCreateStudent(ctx, tx, rd.Carnet, rd, opts.UploaderName)
	if err != nil {
		return err
	}
	if !program.IsPlaceholder() {
		// An earlier import may have left this student parked on the
		// placeholder; this row carries a resolvable code, so attempt one
		// guarded promotion before the enrollment lookup.
		if pending, err := FindPlaceholderEnrollment(ctx, tx, student.ID); err != nil {
			return err
		} else if pending != nil {
			if _, err := PromoteFromPlaceholder(ctx, tx, pending.ID, rd.CodigoPlan, 1); err != nil {
				return err
			}
		}
	}
	enrollment, _, err := FindOrCreateEnrollment(ctx, tx, student, program, rd, opts.UploaderName)
	if err != nil {
		return err
	}

	if opts.Mode == ModeFullReplace && !purged[enrollment.ID] {
		if err := PurgeSchedule(ctx, tx, enrollment.ID, opts.PurgePayments); err != nil {
			return err
		}
		purged[enrollment.ID] = true
		if !opts.Silent {
			log.Printf("[kardex] inscripción %d purgada para reconstrucción", enrollment.ID)
		}
	}

	count := rd.NumCuotas
	if count <= 0 {
		count = enrollment.DuracionMeses
	}
	mensualidad := rd.Mensualidad
	if mensualidad.LessThanOrEqual(decimal.Zero) {
		mensualidad = enrollment.Mensualidad
	}
	createdCount, warn, err := GenerateScheduleIfAbsent(ctx, tx, enrollment.ID, mensualidad, count, enrollment.FechaInicio)
	if err != nil {
		return err
	}
	if warn != "" {
		res.Warnings = append(res.Warnings, fmt.Sprintf("fila %d: %s", rd.RowNum, warn))
	}
	res.InstallmentsCreated += createdCount

	huella := ComputeFingerprint(rd.Banco, rd.Boleta, enrollment.ID, rd.FechaPago)
	if existing, err := FindByFingerprint(ctx, tx, huella); err != nil {
		return err
	} else if existing != nil {
		res.DuplicatesSkipped++
		if !opts.Silent {
			log.Printf("[kardex] fila %d duplicada: huella %s ya registrada como pago %d", rd.RowNum, huella[:12], existing.ID)
		}
		res.ProcessedCount++
		return nil
	}

	payment := &Payment{
		EstudianteProgramaID: enrollment.ID,
		BancoRaw:             rd.BancoRaw,
		Banco:                rd.Banco,
		BoletaRaw:            rd.BoletaRaw,
		Boleta:               rd.Boleta,
		Monto:                rd.Monto,
		FechaPago:            rd.FechaPago,
		Huella:               huella,
		Concepto:             rd.Concepto,
		CreadoPor:            opts.UploaderName,
	}
	if opts.Mode == ModeReplacePending || opts.Mode == ModeFullReplace {
		inst, err := MatchPendingInstallment(ctx, tx, enrollment.ID, rd.FechaPago)
		if err != nil {
			return err
		}
		if inst != nil {
			if err := MarkInstallmentPaid(ctx, tx, inst.ID); err != nil {
				return err
			}
			payment.CuotaID = &inst.ID
			res.PaymentsUpdated++
		}
	}
	if err := InsertPayment(ctx, tx, payment); err != nil {
		return err
	}
	res.PaymentsCreated++
	res.ProcessedCount++
	if !opts.Silent {
		log.Printf("[kardex] fila %d: pago %d registrado (%s %s)", rd.RowNum, payment.ID, rd.Banco, rd.Boleta)
	}
	return nil
}

func insertBatchRecord(ctx context.Context, pool *pgxpool.Pool, res *ImportResult, fileName string, opts ImportOptions) error {
	_, err := pool.Exec(ctx, `
		INSERT INTO import_batches (batch_id, archivo, subido_por, modo, estado, created_at)
		VALUES ($1, $2, $3, $4, $5, now())`,
		res.BatchID, fileName, opts.UploaderName, string(opts.Mode), StatusProcessing)
	return err
}

func finishBatchRecord(ctx context.Context, pool *pgxpool.Pool, res *ImportResult) error {
	errsJSON, err := json.Marshal(res.Errors)
	if err != nil {
		errsJSON = []byte("[]")
	}
	warnJSON, err := json.Marshal(res.Warnings)
	if err != nil {
		warnJSON = []byte("[]")
	}
	_, err = pool.Exec(ctx, `
		UPDATE import_batches
		SET estado = $2, procesados = $3, cuotas_creadas = $4, pagos_creados = $5,
		    pagos_actualizados = $6, duplicados = $7, errores = $8, advertencias = $9
		WHERE batch_id = $1`,
		res.BatchID, res.Status, res.ProcessedCount, res.InstallmentsCreated,
		res.PaymentsCreated, res.PaymentsUpdated, res.DuplicatesSkipped, errsJSON, warnJSON)
	return err
}
