package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments the agent exposes. Names are
// prefixed jeevan_ so a scrape of several field tools stays readable.
type Metrics struct {
	VerificationsCompleted prometheus.Counter
	SyncAttempts           prometheus.Counter
	SyncFailures           prometheus.Counter
	PendingRecords         prometheus.Gauge
	QueueDepth             prometheus.Gauge
}

// New creates and registers all instruments on reg. Passing a fresh registry
// keeps tests isolated from the global default.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		VerificationsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "jeevan_verifications_completed_total",
			Help: "Total number of verification actions committed locally",
		}),
		SyncAttempts: factory.NewCounter(prometheus.CounterOpts{
			Name: "jeevan_sync_attempts_total",
			Help: "Total number of upload batches attempted",
		}),
		SyncFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "jeevan_sync_failures_total",
			Help: "Total number of upload batches that failed",
		}),
		PendingRecords: factory.NewGauge(prometheus.GaugeOpts{
			Name: "jeevan_vault_pending_records",
			Help: "Current number of vault records awaiting sync",
		}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "jeevan_offline_queue_depth",
			Help: "Current number of submissions in the offline queue",
		}),
	}
}
