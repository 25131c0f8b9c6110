package update

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	archives    *prometheus.CounterVec
	files       *prometheus.CounterVec
	nodesPruned prometheus.Counter
	duration    prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		archives: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bulk_updater_archives_total",
			Help: "Count of archives with result (updated, unchanged, failed)",
		}, []string{"result"}),

		files: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bulk_updater_files_total",
			Help: "Count of archive entries by kind (processed, copied)",
		}, []string{"kind"}),

		nodesPruned: factory.NewCounter(prometheus.CounterOpts{
			Name: "bulk_updater_nodes_pruned_total",
			Help: "Count of XML nodes removed",
		}),

		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name: "bulk_updater_archive_duration_seconds",
			Help: "Histogram of time spent updating a single archive",
		}),
	}
}
