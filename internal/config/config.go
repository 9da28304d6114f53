package config

const (
	DefaultTimeZone = "America/Guatemala"

	// Import pipeline
	ImportChunkSize         = 500
	DefaultInstallmentCount = 12
	MaxPromotionDepth       = 1
	ImportTimeBudgetSeconds = 270
	ImportMemoryBudgetMB    = 256
	BatchRetentionDays      = 90
	SyntheticCarnetPrefix   = "SIN-CARNET-"

	// Placeholder program used when a study-plan code cannot be resolved.
	PlaceholderProgramCode = "TEMP"
	PlaceholderProgramName = "PROGRAMA PENDIENTE"

	// Cron schedules
	DefaultPromotionSweepSchedule = "0 2 * * *"
	DefaultBatchCleanupSchedule   = "30 3 * * 0"
	PromotionSweepBatchSize       = 200

	DateFormat = "2006-01-02"
)

// BankAliases maps raw bank spellings (uppercased, trimmed) to one canonical
// label so the same bank never yields two fingerprints.
var BankAliases = map[string]string{
	"BI":                        "BANCO INDUSTRIAL",
	"INDUSTRIAL":                "BANCO INDUSTRIAL",
	"BANCO IND.":                "BANCO INDUSTRIAL",
	"BANCO INDUSTRIAL":          "BANCO INDUSTRIAL",
	"BANRURAL":                  "BANRURAL",
	"BAN RURAL":                 "BANRURAL",
	"BANCO DE DESARROLLO RURAL": "BANRURAL",
	"BAM":                       "BANCO AGROMERCANTIL",
	"AGROMERCANTIL":             "BANCO AGROMERCANTIL",
	"BANCO AGROMERCANTIL":       "BANCO AGROMERCANTIL",
	"G&T":                       "BANCO G&T CONTINENTAL",
	"GYT":                       "BANCO G&T CONTINENTAL",
	"G&T CONTINENTAL":           "BANCO G&T CONTINENTAL",
	"BANCO G&T CONTINENTAL":     "BANCO G&T CONTINENTAL",
	"BAC":                       "BAC CREDOMATIC",
	"BAC CREDOMATIC":            "BAC CREDOMATIC",
	"PROMERICA":                 "BANCO PROMERICA",
	"BANCO PROMERICA":           "BANCO PROMERICA",
	"BANTRAB":                   "BANTRAB",
	"BANCO DE LOS TRABAJADORES": "BANTRAB",
}

// ProgramAliases maps legacy study-plan codes to the canonical abbreviation.
var ProgramAliases = map[string]string{
	"MAESTRIARRHH": "MRH",
	"MKD":          "MKT",
	"PAE":          "PAP",
}
