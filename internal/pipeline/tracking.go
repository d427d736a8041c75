package pipeline

import (
	"fmt"
	"sync"
	"time"
)

// RunMetrics summarises one dashboard run
type RunMetrics struct {
	RunID      string                  `json:"run_id"`
	StartTime  time.Time               `json:"start_time"`
	EndTime    *time.Time              `json:"end_time,omitempty"`
	DurationMs int64                   `json:"duration_ms"`
	Status     string                  `json:"status"`
	Stages     map[string]StageMetrics `json:"stages"`
	ErrorCount int                     `json:"error_count"`
}

// StageMetrics tracks metrics for individual run stages
type StageMetrics struct {
	Events     int    `json:"events"`
	ErrorCount int    `json:"error_count"`
	LastEvent  string `json:"last_event"`
}

// Tracker counts stage events of a run and forwards them to an optional
// downstream recorder, such as the run ledger.
type Tracker struct {
	mu      sync.Mutex
	metrics RunMetrics
	next    StageRecorder
}

// NewTracker creates a tracker for runID
func NewTracker(runID string, next StageRecorder) *Tracker {
	return &Tracker{
		next: next,
		metrics: RunMetrics{
			RunID:     runID,
			StartTime: time.Now(),
			Status:    "running",
			Stages:    make(map[string]StageMetrics),
		},
	}
}

// RecordStage implements StageRecorder
func (t *Tracker) RecordStage(stage, level, message string, details map[string]interface{}) {
	t.mu.Lock()
	sm := t.metrics.Stages[stage]
	sm.Events++
	sm.LastEvent = message
	if level == "error" {
		sm.ErrorCount++
		t.metrics.ErrorCount++
	}
	t.metrics.Stages[stage] = sm
	t.mu.Unlock()

	if t.next != nil {
		t.next.RecordStage(stage, level, message, details)
	}
}

// Complete marks the run as completed and returns its metrics
func (t *Tracker) Complete() RunMetrics {
	return t.finish("completed")
}

// Fail marks the run as failed and returns its metrics
func (t *Tracker) Fail() RunMetrics {
	return t.finish("failed")
}

func (t *Tracker) finish(status string) RunMetrics {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	t.metrics.EndTime = &now
	t.metrics.Status = status
	t.metrics.DurationMs = now.Sub(t.metrics.StartTime).Milliseconds()

	if status == "failed" {
		fmt.Printf("❌ Run %s failed after %dms\n", t.metrics.RunID, t.metrics.DurationMs)
	} else {
		fmt.Printf("📊 Run %s completed in %dms, %d stage errors\n", t.metrics.RunID, t.metrics.DurationMs, t.metrics.ErrorCount)
	}
	return t.snapshot()
}

func (t *Tracker) snapshot() RunMetrics {
	m := t.metrics
	m.Stages = make(map[string]StageMetrics, len(t.metrics.Stages))
	for k, v := range t.metrics.Stages {
		m.Stages[k] = v
	}
	return m
}
