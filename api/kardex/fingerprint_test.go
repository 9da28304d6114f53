package kardex

import (
	"testing"
	"time"
)

func TestComputeFingerprintDeterministic(t *testing.T) {
	fecha := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	a := ComputeFingerprint("BANCO INDUSTRIAL", "545109", 42, fecha)
	b := ComputeFingerprint("BANCO INDUSTRIAL", "545109", 42, fecha)
	if a != b {
		t.Fatalf("same tuple produced different fingerprints: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("fingerprint should be hex sha256 (64 chars), got %d", len(a))
	}
}

func TestComputeFingerprintTimeOfDayIgnored(t *testing.T) {
	morning := time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 3, 15, 20, 30, 0, 0, time.UTC)
	if ComputeFingerprint("BI", "1", 1, morning) != ComputeFingerprint("BI", "1", 1, evening) {
		t.Error("fingerprints should only depend on the calendar date, not the time")
	}
}

func TestComputeFingerprintSensitivity(t *testing.T) {
	fecha := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	base := ComputeFingerprint("BANCO INDUSTRIAL", "545109", 42, fecha)

	tests := []struct {
		name string
		got  string
	}{
		{"bank changes", ComputeFingerprint("BANRURAL", "545109", 42, fecha)},
		{"receipt changes", ComputeFingerprint("BANCO INDUSTRIAL", "545110", 42, fecha)},
		{"enrollment changes", ComputeFingerprint("BANCO INDUSTRIAL", "545109", 43, fecha)},
		{"date changes", ComputeFingerprint("BANCO INDUSTRIAL", "545109", 42, fecha.AddDate(0, 0, 1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got == base {
				t.Error("fingerprint did not change")
			}
		})
	}
}

// Two students paying with the same physical deposit slip must not collide:
// the enrollment id is part of the identity tuple.
func TestComputeFingerprintSharedSlip(t *testing.T) {
	fecha := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	hermano := ComputeFingerprint("BANCO INDUSTRIAL", "545109", 10, fecha)
	hermana := ComputeFingerprint("BANCO INDUSTRIAL", "545109", 11, fecha)
	if hermano == hermana {
		t.Error("same slip under different enrollments must have distinct fingerprints")
	}
}
