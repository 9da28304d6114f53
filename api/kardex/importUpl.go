package kardex

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xuri/excelize/v2"

	"CampusPagosGo/api/auth"
)

func getFileExt(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// parseKardexFile reads the upload into [][]string. Tries xlsx first, then
// legacy xls, then csv, matching whatever the colegio actually exports.
func parseKardexFile(data []byte, ext string) ([][]string, error) {
	if ext == ".csv" {
		return parseCSV(data)
	}

	if xl, err := excelize.OpenReader(bytes.NewReader(data)); err == nil {
		defer xl.Close()
		sheet := xl.GetSheetName(0)
		return xl.GetRows(sheet)
	}

	if wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8"); err == nil {
		if sheet := wb.GetSheet(0); sheet != nil {
			rows := make([][]string, 0, sheet.MaxRow+1)
			for i := 0; i <= int(sheet.MaxRow); i++ {
				row := sheet.Row(i)
				if row == nil {
					rows = append(rows, nil)
					continue
				}
				vals := make([]string, 0, row.LastCol())
				for j := 0; j < row.LastCol(); j++ {
					vals = append(vals, row.Col(j))
				}
				rows = append(rows, vals)
			}
			return rows, nil
		}
	}

	return parseCSV(data)
}

func parseCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.New("archivo no reconocido como xlsx, xls ni csv")
	}
	return rows, nil
}

// UploadKardexPagos handles POST /kardex/import: a multipart upload with the
// spreadsheet plus mode flags, returning the full ImportResult.
func UploadKardexPagos(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, "Failed to parse multipart form", http.StatusBadRequest)
			return
		}
		userID := r.FormValue("user_id")
		if userID == "" {
			http.Error(w, "user_id required in form", http.StatusBadRequest)
			return
		}
		userName := ""
		for _, s := range auth.GetActiveSessions() {
			if s.UserID == userID {
				userName = s.Name
				break
			}
		}
		if userName == "" {
			http.Error(w, "User not found in active sessions", http.StatusUnauthorized)
			return
		}

		mode := ImportMode(r.FormValue("mode"))
		if mode == "" {
			mode = ModeNormal
		}
		opts := ImportOptions{
			UploaderID:      userID,
			UploaderName:    userName,
			Mode:            mode,
			Silent:          r.FormValue("silent") == "true",
			ForcedInsertion: r.FormValue("forced_insertion") == "true",
			PurgePayments:   r.FormValue("purge_payments") == "true",
		}

		files := r.MultipartForm.File["file"]
		if len(files) == 0 {
			http.Error(w, "No files uploaded", http.StatusBadRequest)
			return
		}
		fileHeader := files[0]
		file, err := fileHeader.Open()
		if err != nil {
			http.Error(w, "Failed to open file: "+fileHeader.Filename, http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			http.Error(w, "Failed to read file: "+fileHeader.Filename, http.StatusBadRequest)
			return
		}

		rows, err := parseKardexFile(data, getFileExt(fileHeader.Filename))
		if err != nil {
			http.Error(w, "Invalid file: "+err.Error(), http.StatusBadRequest)
			return
		}

		result, err := RunImport(ctx, pgxPool, fileHeader.Filename, rows, opts)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": false,
				"error":   err.Error(),
				"result":  result,
			})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": result.Status == StatusCompleted,
			"result":  result,
		})
	}
}
