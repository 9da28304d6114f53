package resource

import (
	"testing"
	"time"
)

func TestBudgetWarnings(t *testing.T) {
	timeBudget := 270 * time.Second
	var memBudget uint64 = 256

	tests := []struct {
		name    string
		elapsed time.Duration
		allocMB uint64
		want    int
	}{
		{"within budgets", 60 * time.Second, 100, 0},
		{"time exceeded", 300 * time.Second, 100, 1},
		{"memory exceeded", 60 * time.Second, 512, 1},
		{"both exceeded", 300 * time.Second, 512, 2},
		{"exactly at budget", 270 * time.Second, 256, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := budgetWarnings(tt.elapsed, tt.allocMB, timeBudget, memBudget)
			if len(got) != tt.want {
				t.Errorf("got %d warnings %v, want %d", len(got), got, tt.want)
			}
		})
	}
}

func TestBudgetWarningsDisabled(t *testing.T) {
	// A zero budget means no monitoring for that dimension.
	if got := budgetWarnings(time.Hour, 10000, 0, 0); len(got) != 0 {
		t.Errorf("zero budgets should yield no warnings, got %v", got)
	}
}

func TestTrackUntrack(t *testing.T) {
	rm := &ResourceManager{jobs: make(map[string]*JobStats), stopChan: make(chan struct{})}
	rm.TrackJob("batch-1", "normal", 120)
	if _, ok := rm.jobs["batch-1"]; !ok {
		t.Fatal("job should be tracked")
	}
	rm.UntrackJob("batch-1")
	if _, ok := rm.jobs["batch-1"]; ok {
		t.Error("job should be untracked")
	}
}
