package models

import (
	"sync"
	"time"
)

// BatchResult records the outcome of one (student, platform) unit of work.
type BatchResult struct {
	RollNumber string    `json:"roll_number"`
	Platform   Platform  `json:"platform"`
	Username   string    `json:"username"`
	OK         bool      `json:"ok"`
	Reason     string    `json:"reason,omitempty"`
	Metrics    any       `json:"metrics,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// BatchReport accumulates results for one batch run. Add is safe for
// concurrent use so a parallelized coordinator can share one report.
type BatchReport struct {
	RunID      string        `json:"run_id"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Updated    int           `json:"updated"`
	Failed     int           `json:"failed"`
	Total      int           `json:"total"`
	Results    []BatchResult `json:"results"`

	mu sync.Mutex
}

// Add appends one unit result.
func (r *BatchReport) Add(res BatchResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Results = append(r.Results, res)
}

// CountStudent tallies one student into the aggregate counters. A student
// counts as updated when at least one platform succeeded; as failed when at
// least one platform failed and none succeeded.
func (r *BatchReport) CountStudent(succeeded, failed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Total++
	switch {
	case succeeded > 0:
		r.Updated++
	case failed > 0:
		r.Failed++
	}
}

// Failures returns the unit results that did not succeed.
func (r *BatchReport) Failures() []BatchResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []BatchResult
	for _, res := range r.Results {
		if !res.OK {
			out = append(out, res)
		}
	}
	return out
}
