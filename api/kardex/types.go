package kardex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx so resolvers run the
// same inside a chunk transaction and in standalone endpoints.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type Student struct {
	ID        int64     `json:"id"`
	Carnet    string    `json:"carnet"`
	Nombre    string    `json:"nombre"`
	Correo    *string   `json:"correo,omitempty"`
	Telefono  *string   `json:"telefono,omitempty"`
	CreadoPor string    `json:"creado_por"`
	CreatedAt time.Time `json:"created_at"`
}

type Program struct {
	ID          int64  `json:"id"`
	Abreviatura string `json:"abreviatura"`
	Nombre      string `json:"nombre"`
	Activo      bool   `json:"activo"`
}

// IsPlaceholder reports whether this program is the reserved unresolved slot.
func (p Program) IsPlaceholder() bool {
	return p.Abreviatura == placeholderCode()
}

type Enrollment struct {
	ID               int64           `json:"id"`
	ProspectoID      int64           `json:"prospecto_id"`
	ProgramaID       int64           `json:"programa_id"`
	CodigoPlanOrigen string          `json:"codigo_plan_origen"`
	Mensualidad      decimal.Decimal `json:"mensualidad"`
	DuracionMeses    int             `json:"duracion_meses"`
	FechaInicio      time.Time       `json:"fecha_inicio"`
	FechaFin         time.Time       `json:"fecha_fin"`
	InversionTotal   decimal.Decimal `json:"inversion_total"`
}

const (
	EstadoPendiente = "pendiente"
	EstadoPagado    = "pagado"
)

type Installment struct {
	ID                   int64           `json:"id"`
	EstudianteProgramaID int64           `json:"estudiante_programa_id"`
	NumeroCuota          int             `json:"numero_cuota"`
	FechaVencimiento     time.Time       `json:"fecha_vencimiento"`
	Monto                decimal.Decimal `json:"monto"`
	Estado               string          `json:"estado"`
}

type Payment struct {
	ID                   int64           `json:"id"`
	EstudianteProgramaID int64           `json:"estudiante_programa_id"`
	CuotaID              *int64          `json:"cuota_id,omitempty"`
	BancoRaw             string          `json:"banco_raw"`
	Banco                string          `json:"banco"`
	BoletaRaw            string          `json:"boleta_raw"`
	Boleta               string          `json:"boleta"`
	Monto                decimal.Decimal `json:"monto"`
	FechaPago            time.Time       `json:"fecha_pago"`
	Huella               string          `json:"huella"`
	ArchivoHash          *string         `json:"archivo_hash,omitempty"`
	ArchivoRuta          *string         `json:"archivo_ruta,omitempty"`
	Concepto             string          `json:"concepto"`
	CreadoPor            string          `json:"creado_por"`
}

// ImportMode selects the replay semantics for one run. Modes are fixed at job
// start; nothing toggles them mid-run.
type ImportMode string

const (
	ModeNormal         ImportMode = "normal"
	ModeReplacePending ImportMode = "replace-pending"
	ModeFullReplace    ImportMode = "full-replace"
)

// ImportOptions is the immutable configuration for one import job.
type ImportOptions struct {
	UploaderID      string
	UploaderName    string
	Mode            ImportMode
	Silent          bool
	ForcedInsertion bool
	PurgePayments   bool
}

func (o ImportOptions) Validate() error {
	switch o.Mode {
	case ModeNormal, ModeReplacePending, ModeFullReplace:
	default:
		return fmt.Errorf("modo de importación desconocido: %q", o.Mode)
	}
	if o.PurgePayments && o.Mode != ModeFullReplace {
		return errors.New("purge_payments solo aplica en modo full-replace")
	}
	return nil
}

type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

const (
	StatusValidating = "Validating"
	StatusProcessing = "Processing"
	StatusCompleted  = "Completed"
	StatusFailed     = "Failed"
)

// ImportResult is what the caller always gets back, partial failures included.
type ImportResult struct {
	BatchID             string     `json:"batch_id"`
	Status              string     `json:"status"`
	ProcessedCount      int        `json:"processed_count"`
	InstallmentsCreated int        `json:"installments_created"`
	PaymentsCreated     int        `json:"payments_created"`
	PaymentsUpdated     int        `json:"payments_updated"`
	DuplicatesSkipped   int        `json:"duplicates_skipped"`
	Errors              []RowError `json:"errors"`
	Warnings            []string   `json:"warnings,omitempty"`
}

var (
	ErrEmptyFile           = errors.New("el archivo no contiene filas de datos")
	ErrMissingColumns      = errors.New("faltan columnas requeridas")
	ErrFileAlreadyAttached = errors.New("el archivo ya fue registrado para este estudiante")
	ErrChecksumMismatch    = errors.New("el contenido del archivo no coincide con el checksum declarado")
)
