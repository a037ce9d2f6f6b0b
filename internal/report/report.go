// Package report derives operational statistics from the entity store.
// Everything here is read-only and never blocks writers longer than a
// snapshot read.
package report

import (
	"time"

	"field-service-compliance/internal/models"
	"field-service-compliance/internal/store"
	"field-service-compliance/internal/telemetry"
)

// blockedAfter is the staleness threshold for blocked-job detection. Fixed
// policy, independent of checklist completion: an open job past this age is
// blocked even with all but one step done.
const blockedAfter = 48 * time.Hour

// Stats is a point-in-time summary of the job population.
// Active + Completed always equals Total.
type Stats struct {
	Total     int `json:"total_jobs"`
	Completed int `json:"completed_jobs"`
	Active    int `json:"active_jobs"`
	Blocked   int `json:"blocked_jobs"`
}

// Aggregator computes reporting views over the store.
type Aggregator struct {
	store *store.Store
}

func New(st *store.Store) *Aggregator {
	return &Aggregator{store: st}
}

// DashboardStats counts jobs by status and flags open jobs older than the
// staleness threshold as blocked.
func (a *Aggregator) DashboardStats() Stats {
	now := time.Now().UTC()
	var stats Stats
	for _, job := range a.store.Jobs() {
		stats.Total++
		if job.Status == models.StatusClosed {
			stats.Completed++
			continue
		}
		stats.Active++
		if now.Sub(job.CreatedAt) > blockedAfter {
			stats.Blocked++
		}
	}
	telemetry.BlockedJobsGauge.Set(float64(stats.Blocked))
	return stats
}

// AuditTrail returns every audit entry, most recent first. Display only;
// nothing in the engine reads it back for correctness.
func (a *Aggregator) AuditTrail() []models.AuditLog {
	return a.store.AuditLogs()
}
