package kardex

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCanonHeader(t *testing.T) {
	tests := []struct{ in, want string }{
		{" Fecha  de   Pago ", "fecha de pago"},
		{"CARNET", "carnet"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := canonHeader(tt.in); got != tt.want {
			t.Errorf("canonHeader(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMapHeaderComplete(t *testing.T) {
	header := []string{"Carnet", "Nombre Completo", "Banco", "No. Boleta", "Monto", "Fecha de Pago", "Mensualidad Aprobada", "Plan de Estudios", "Mes Inicio", "No. Cuotas", "Concepto"}
	idx, missing := mapHeader(header)
	if len(missing) != 0 {
		t.Fatalf("no field should be missing, got %v", missing)
	}
	wantIdx := map[string]int{
		"carnet": 0, "nombre": 1, "banco": 2, "boleta": 3, "monto": 4,
		"fecha": 5, "mensualidad": 6, "plan": 7, "mes_inicio": 8, "num_cuotas": 9, "concepto": 10,
	}
	for field, want := range wantIdx {
		if idx[field] != want {
			t.Errorf("field %q mapped to column %d, want %d", field, idx[field], want)
		}
	}
}

func TestMapHeaderMissing(t *testing.T) {
	header := []string{"Carnet", "Monto", "Fecha", "Mensualidad", "Banco", "Concepto"}
	_, missing := mapHeader(header)
	if len(missing) != 1 || missing[0] != "boleta" {
		t.Errorf("want [boleta] missing, got %v", missing)
	}
}

func TestMapHeaderDuplicateTakesFirst(t *testing.T) {
	header := []string{"Monto", "Monto"}
	idx, _ := mapHeader(header)
	if idx["monto"] != 0 {
		t.Errorf("duplicate header should resolve to first column, got %d", idx["monto"])
	}
}

func TestBuildRowData(t *testing.T) {
	header := []string{"Carnet", "Nombre", "Banco", "Boleta", "Monto", "Fecha", "Mensualidad", "Plan", "Mes Inicio", "Cuotas", "Concepto"}
	idx, missing := mapHeader(header)
	if len(missing) != 0 {
		t.Fatalf("unexpected missing fields: %v", missing)
	}
	row := []string{" ab-12/x ", "Juana Pérez", "bi", "545109 / 1740192", "Q1,500.00", "15/03/2024", "Q500", "MBA2024", "", "12", "Pago marzo"}
	rd := buildRowData(row, idx, 2)

	if rd.Carnet != "AB12" {
		t.Errorf("Carnet = %q, want AB12", rd.Carnet)
	}
	if rd.Banco != "BANCO INDUSTRIAL" {
		t.Errorf("Banco = %q, want BANCO INDUSTRIAL", rd.Banco)
	}
	if rd.BancoRaw != "bi" {
		t.Errorf("BancoRaw = %q, want bi", rd.BancoRaw)
	}
	if rd.Boleta != "545109" {
		t.Errorf("Boleta = %q, want 545109", rd.Boleta)
	}
	if !rd.Monto.Equal(decimal.RequireFromString("1500")) {
		t.Errorf("Monto = %s, want 1500", rd.Monto)
	}
	if rd.FechaPago.Format("2006-01-02") != "2024-03-15" {
		t.Errorf("FechaPago = %v, want 2024-03-15", rd.FechaPago)
	}
	if rd.NumCuotas != 12 {
		t.Errorf("NumCuotas = %d, want 12", rd.NumCuotas)
	}
	if rd.RowNum != 2 {
		t.Errorf("RowNum = %d, want 2", rd.RowNum)
	}
}

func TestBuildRowDataShortRow(t *testing.T) {
	header := []string{"Carnet", "Boleta", "Monto"}
	idx, _ := mapHeader(header)
	// Row shorter than the header must not panic; missing cells degrade.
	rd := buildRowData([]string{"123"}, idx, 5)
	if rd.Carnet != "123" {
		t.Errorf("Carnet = %q, want 123", rd.Carnet)
	}
	if !rd.Monto.Equal(decimal.Zero) {
		t.Errorf("Monto = %s, want 0", rd.Monto)
	}
}

func TestChunkRows(t *testing.T) {
	rows := [][]string{{"1"}, {"2"}, {"3"}, {"4"}, {"5"}}
	chunks := chunkRows(rows, 2)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	if len(chunks[0]) != 2 || len(chunks[1]) != 2 || len(chunks[2]) != 1 {
		t.Errorf("chunk sizes = %d,%d,%d, want 2,2,1", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
	if chunks[2][0][0] != "5" {
		t.Errorf("last chunk should hold the last row")
	}
}

func TestChunkRowsDefaultSize(t *testing.T) {
	rows := [][]string{{"1"}, {"2"}}
	chunks := chunkRows(rows, 0)
	if len(chunks) != 1 || len(chunks[0]) != 2 {
		t.Errorf("size 0 should fall back to the default chunk size")
	}
}

func TestFinalizeStatus(t *testing.T) {
	tests := []struct {
		name string
		res  ImportResult
		want string
	}{
		{"nothing processed", ImportResult{}, StatusFailed},
		{"errors only", ImportResult{Errors: []RowError{{Row: 2, Reason: "x"}}}, StatusFailed},
		{"some processed", ImportResult{ProcessedCount: 3}, StatusCompleted},
		{"all duplicates still completes", ImportResult{ProcessedCount: 5, DuplicatesSkipped: 5}, StatusCompleted},
		{"partial failure completes", ImportResult{ProcessedCount: 1, Errors: []RowError{{Row: 2, Reason: "x"}}}, StatusCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := finalizeStatus(&tt.res); got != tt.want {
				t.Errorf("finalizeStatus = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestImportOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    ImportOptions
		wantErr bool
	}{
		{"normal", ImportOptions{Mode: ModeNormal}, false},
		{"replace-pending", ImportOptions{Mode: ModeReplacePending}, false},
		{"full-replace", ImportOptions{Mode: ModeFullReplace}, false},
		{"unknown mode", ImportOptions{Mode: "turbo"}, true},
		{"empty mode", ImportOptions{}, true},
		{"purge with full-replace", ImportOptions{Mode: ModeFullReplace, PurgePayments: true}, false},
		{"purge with normal", ImportOptions{Mode: ModeNormal, PurgePayments: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRowErrorClassification(t *testing.T) {
	if isStorageErr(rowErrorf("monto inválido")) {
		t.Error("rowError must not be a storage error")
	}
	if !isStorageErr(ErrEmptyFile) {
		t.Error("non-row errors are storage errors")
	}
}

func TestParseCSV(t *testing.T) {
	data := []byte("Carnet,Monto\n123,Q500\n456,\"1,000\"\n")
	rows, err := parseCSV(data)
	if err != nil {
		t.Fatalf("parseCSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[2][1] != "1,000" {
		t.Errorf("quoted cell = %q, want 1,000", rows[2][1])
	}
}

func TestParseCSVRaggedRows(t *testing.T) {
	// Historical exports often have trailing rows with fewer columns.
	data := []byte("a,b,c\n1,2\n")
	rows, err := parseCSV(data)
	if err != nil {
		t.Fatalf("parseCSV: %v", err)
	}
	if len(rows[1]) != 2 {
		t.Errorf("ragged row should survive, got %v", rows[1])
	}
}

func TestGetFileExt(t *testing.T) {
	tests := []struct{ in, want string }{
		{"pagos.XLSX", ".xlsx"},
		{"pagos.xls", ".xls"},
		{"pagos.csv", ".csv"},
		{"pagos", ""},
	}
	for _, tt := range tests {
		if got := getFileExt(tt.in); got != tt.want {
			t.Errorf("getFileExt(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRequiredFieldsCovered(t *testing.T) {
	for _, f := range requiredFields {
		if _, ok := columnGuesses[f]; !ok {
			t.Errorf("required field %q has no header guesses", f)
		}
	}
	if strings.Join(requiredFields, ",") == "" {
		t.Fatal("required fields must not be empty")
	}
}
