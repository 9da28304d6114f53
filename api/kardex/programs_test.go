package kardex

import "testing"

func TestNormalizeProgramCode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "MBA", "MBA"},
		{"lowercase", "mba", "MBA"},
		{"digits stripped", "MBA2024", "MBA"},
		{"punctuation stripped", "m-k-t", "MKT"},
		{"legacy alias", "MAESTRIARRHH", "MRH"},
		{"legacy alias mkd", "mkd", "MKT"},
		{"legacy alias pae", "PAE", "PAP"},
		{"only digits", "2024", ""},
		{"placeholder passes through", "TEMP", "TEMP"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeProgramCode(tt.in); got != tt.want {
				t.Errorf("NormalizeProgramCode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestShouldPromote(t *testing.T) {
	mba := Program{ID: 7, Abreviatura: "MBA", Nombre: "Maestría en Administración", Activo: true}
	temp := Program{ID: 1, Abreviatura: "TEMP", Nombre: "PROGRAMA PENDIENTE", Activo: true}

	tests := []struct {
		name   string
		code   string
		target Program
		want   bool
	}{
		{"resolvable code and real target", "MBA", mba, true},
		{"empty code", "", mba, false},
		{"placeholder code", "TEMP", temp, false},
		{"unresolved target", "MBA", Program{}, false},
		{"target is placeholder", "MBA", temp, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldPromote(tt.code, tt.target); got != tt.want {
				t.Errorf("shouldPromote(%q, %v) = %v, want %v", tt.code, tt.target.Abreviatura, got, tt.want)
			}
		})
	}
}

func TestIsPlaceholder(t *testing.T) {
	if !(Program{Abreviatura: "TEMP"}).IsPlaceholder() {
		t.Error("TEMP should be the placeholder")
	}
	if (Program{Abreviatura: "MBA"}).IsPlaceholder() {
		t.Error("MBA is not the placeholder")
	}
}
