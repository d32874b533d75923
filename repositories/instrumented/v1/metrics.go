package v1

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	lookupTotal    *prometheus.CounterVec
	lookupDuration *prometheus.HistogramVec
	available      *prometheus.GaugeVec
)

// RegisterMetrics registers the lookup metrics of all instrumented
// repositories with registerer.
func RegisterMetrics(registerer prometheus.Registerer) error {
	return errors.Join(
		registerer.Register(lookupTotal),
		registerer.Register(lookupDuration),
		registerer.Register(available),
	)
}

func init() {
	lookupTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "page_repository_lookups_total",
			Help: "Number of page lookups by repository, operation and result",
		},
		[]string{"repository", "operation", "result"},
	)
	lookupDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "page_repository_lookup_duration_seconds",
			Help:    "Duration of page lookups",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"repository", "operation"},
	)
	available = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "page_repository_available",
		Help: "Whether the repository was available when last checked (1) or not (0)",
	}, []string{"repository"})
}
