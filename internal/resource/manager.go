package resource

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"CampusPagosGo/internal/config"
	"CampusPagosGo/internal/logger"
	"CampusPagosGo/internal/serviceiface"
)

// JobStats tracks one in-flight import job for the heartbeat log.
type JobStats struct {
	BatchID   string
	Mode      string
	StartedAt time.Time
	Rows      int
}

// ResourceManager watches import jobs against their time and memory budgets.
// Budgets are monitored, never enforced: a job that exceeds them finishes and
// carries the warnings in its summary.
type ResourceManager struct {
	jobs              map[string]*JobStats
	mu                sync.RWMutex
	stopChan          chan struct{}
	heartbeatInterval time.Duration
	timeBudget        time.Duration
	memBudgetMB       uint64
}

func NewResourceManagerService(cfg map[string]interface{}) serviceiface.Service {
	toSeconds := func(val interface{}) time.Duration {
		switch v := val.(type) {
		case int:
			return time.Duration(v) * time.Second
		case int64:
			return time.Duration(v) * time.Second
		case float64:
			return time.Duration(v) * time.Second
		case string:
			if d, err := time.ParseDuration(v); err == nil {
				return d
			}
		}
		return 0
	}
	interval := 30 * time.Second
	if val, ok := cfg["heartbeat_interval"]; ok {
		if d := toSeconds(val); d > 0 {
			interval = d
		}
	}
	timeBudget := time.Duration(config.ImportTimeBudgetSeconds) * time.Second
	if val, ok := cfg["time_budget_seconds"]; ok {
		if d := toSeconds(val); d > 0 {
			timeBudget = d
		}
	}
	memBudget := uint64(config.ImportMemoryBudgetMB)
	switch v := cfg["memory_budget_mb"].(type) {
	case int:
		if v > 0 {
			memBudget = uint64(v)
		}
	case float64:
		if v > 0 {
			memBudget = uint64(v)
		}
	}
	rm := &ResourceManager{
		jobs:              make(map[string]*JobStats),
		stopChan:          make(chan struct{}),
		heartbeatInterval: interval,
		timeBudget:        timeBudget,
		memBudgetMB:       memBudget,
	}
	SetGlobal(rm)
	return rm
}

func (rm *ResourceManager) Name() string { return "resourcemanager" }

func (rm *ResourceManager) Start() error {
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit("ResourceManager started")
	}
	go rm.heartbeatLoop()
	return nil
}

func (rm *ResourceManager) Stop() error {
	close(rm.stopChan)
	return nil
}

func (rm *ResourceManager) heartbeatLoop() {
	ticker := time.NewTicker(rm.heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-rm.stopChan:
			return
		case <-ticker.C:
			rm.mu.RLock()
			for id, job := range rm.jobs {
				if logger.GlobalLogger != nil {
					logger.GlobalLogger.LogAudit(fmt.Sprintf(
						"import job %s mode=%s rows=%d elapsed=%v",
						id, job.Mode, job.Rows, time.Since(job.StartedAt).Round(time.Second)))
				}
			}
			rm.mu.RUnlock()
		}
	}
}

// TrackJob registers an import job so the heartbeat can report it.
func (rm *ResourceManager) TrackJob(batchID, mode string, rows int) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.jobs[batchID] = &JobStats{BatchID: batchID, Mode: mode, StartedAt: time.Now(), Rows: rows}
}

func (rm *ResourceManager) UntrackJob(batchID string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	delete(rm.jobs, batchID)
}

// BudgetWarnings reports ceiling breaches for a job started at the given time.
func (rm *ResourceManager) BudgetWarnings(startedAt time.Time) []string {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return budgetWarnings(time.Since(startedAt), ms.Alloc/(1024*1024), rm.timeBudget, rm.memBudgetMB)
}

func budgetWarnings(elapsed time.Duration, allocMB uint64, timeBudget time.Duration, memBudgetMB uint64) []string {
	var warnings []string
	if timeBudget > 0 && elapsed > timeBudget {
		warnings = append(warnings, fmt.Sprintf(
			"tiempo de ejecución %v excede el presupuesto de %v", elapsed.Round(time.Second), timeBudget))
	}
	if memBudgetMB > 0 && allocMB > memBudgetMB {
		warnings = append(warnings, fmt.Sprintf(
			"memoria en uso %dMB excede el presupuesto de %dMB", allocMB, memBudgetMB))
	}
	return warnings
}

var (
	global   *ResourceManager
	globalMu sync.Mutex
)

func SetGlobal(rm *ResourceManager) {
	globalMu.Lock()
	defer globalMu.Unlock()
	global = rm
}

func Global() *ResourceManager {
	globalMu.Lock()
	defer globalMu.Unlock()
	return global
}
