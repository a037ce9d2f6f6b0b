package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	JobsCreated          = prometheus.NewCounter(prometheus.CounterOpts{Name: "compliance_jobs_created_total", Help: "Jobs dispatched from templates"})
	JobsClosed           = prometheus.NewCounter(prometheus.CounterOpts{Name: "compliance_jobs_closed_total", Help: "Jobs closed through the gate"})
	CloseLocked          = prometheus.NewCounter(prometheus.CounterOpts{Name: "compliance_close_locked_total", Help: "Close attempts denied by the compliance gate"})
	ChecklistToggles     = prometheus.NewCounter(prometheus.CounterOpts{Name: "compliance_checklist_toggles_total", Help: "Checklist item completion toggles"})
	SnapshotSaves        = prometheus.NewCounter(prometheus.CounterOpts{Name: "compliance_snapshot_saves_total", Help: "Snapshot documents written to the sink"})
	SnapshotSaveFailures = prometheus.NewCounter(prometheus.CounterOpts{Name: "compliance_snapshot_save_failures_total", Help: "Snapshot writes that failed"})
	RateLimitRejects     = prometheus.NewCounter(prometheus.CounterOpts{Name: "compliance_rate_limit_rejects_total", Help: "Mutating requests rejected by the write limiter"})
	BlockedJobsGauge     = prometheus.NewGauge(prometheus.GaugeOpts{Name: "compliance_blocked_jobs", Help: "Open jobs older than the staleness threshold at last stats computation"})
)

// Handler exposes the /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			JobsCreated,
			JobsClosed,
			CloseLocked,
			ChecklistToggles,
			SnapshotSaves,
			SnapshotSaveFailures,
			RateLimitRejects,
			BlockedJobsGauge,
		)
	})
	return promhttp.Handler()
}
