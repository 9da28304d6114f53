package kardex

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jackc/pgx/v5"

	"CampusPagosGo/internal/config"
)

func placeholderCode() string { return config.PlaceholderProgramCode }

// NormalizeProgramCode keeps only letters, uppercases and applies the legacy
// alias table.
func NormalizeProgramCode(raw string) string {
	code := strings.ToUpper(keepLetters(raw))
	if canonical, ok := config.ProgramAliases[code]; ok {
		return canonical
	}
	return code
}

// ResolveProgram maps a free-text study-plan code to a Program. Unresolvable
// codes land on the placeholder program, which is created lazily on first use.
func ResolveProgram(ctx context.Context, db DBTX, rawCode string) (Program, error) {
	code := NormalizeProgramCode(rawCode)
	if code == "" || code == placeholderCode() {
		return getOrCreatePlaceholder(ctx, db)
	}

	var p Program
	err := db.QueryRow(ctx,
		`SELECT id, abreviatura, nombre, activo FROM programas WHERE abreviatura = $1`,
		code).Scan(&p.ID, &p.Abreviatura, &p.Nombre, &p.Activo)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Program{}, fmt.Errorf("buscar programa %q: %w", code, err)
	}

	// Prefix match: messy codes like "MBA2024" should still land on "MBA".
	// Longest abbreviation wins; the placeholder never matches here.
	err = db.QueryRow(ctx, `
		SELECT id, abreviatura, nombre, activo
		FROM programas
		WHERE $1 LIKE abreviatura || '%' AND abreviatura <> $2
		ORDER BY length(abreviatura) DESC
		LIMIT 1`,
		code, placeholderCode()).Scan(&p.ID, &p.Abreviatura, &p.Nombre, &p.Activo)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Program{}, fmt.Errorf("buscar programa por prefijo %q: %w", code, err)
	}

	log.Printf("[kardex] plan %q no resuelto, usando programa pendiente", rawCode)
	return getOrCreatePlaceholder(ctx, db)
}

func getOrCreatePlaceholder(ctx context.Context, db DBTX) (Program, error) {
	var p Program
	err := db.QueryRow(ctx, `
		INSERT INTO programas (abreviatura, nombre, activo)
		VALUES ($1, $2, true)
		ON CONFLICT (abreviatura) DO UPDATE SET abreviatura = EXCLUDED.abreviatura
		RETURNING id, abreviatura, nombre, activo`,
		placeholderCode(), config.PlaceholderProgramName,
	).Scan(&p.ID, &p.Abreviatura, &p.Nombre, &p.Activo)
	if err != nil {
		return Program{}, fmt.Errorf("crear programa pendiente: %w", err)
	}
	return p, nil
}

// shouldPromote is the three-way skip that keeps promotion from looping
// forever: the raw code being the placeholder code itself, a resolution miss,
// and a target that is again the placeholder all refuse the move.
func shouldPromote(normalizedCode string, target Program) bool {
	if normalizedCode == "" || normalizedCode == placeholderCode() {
		return false
	}
	if target.ID == 0 || target.IsPlaceholder() {
		return false
	}
	return true
}

// PromoteFromPlaceholder moves an enrollment off the placeholder program once
// a resolvable plan code is available. depth counts resolution attempts for
// this enrollment within the current call chain; anything beyond
// config.MaxPromotionDepth short-circuits and keeps the current state.
func PromoteFromPlaceholder(ctx context.Context, db DBTX, enrollmentID int64, rawCode string, depth int) (bool, error) {
	if depth > config.MaxPromotionDepth {
		return false, nil
	}
	code := NormalizeProgramCode(rawCode)
	if code == "" || code == placeholderCode() {
		return false, nil
	}
	target, err := ResolveProgram(ctx, db, rawCode)
	if err != nil {
		return false, err
	}
	if !shouldPromote(code, target) {
		return false, nil
	}

	tag, err := db.Exec(ctx, `
		UPDATE estudiante_programa ep
		SET programa_id = $1
		WHERE ep.id = $2
		  AND ep.programa_id = (SELECT id FROM programas WHERE abreviatura = $3)`,
		target.ID, enrollmentID, placeholderCode())
	if err != nil {
		return false, fmt.Errorf("promover inscripción %d: %w", enrollmentID, err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	log.Printf("[kardex] inscripción %d promovida a %s", enrollmentID, target.Abreviatura)
	return true, nil
}
