package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests            *prometheus.CounterVec
	CounterHandleRequestPanic  prometheus.Counter
	CounterRateLimitedRequests prometheus.Counter
	CounterSavedEntries        *prometheus.CounterVec
	CounterSavedVolume         *prometheus.CounterVec
	CounterStorageCorrupt      prometheus.Counter
	CounterSummaryCache        *prometheus.CounterVec
	CounterArchiveFailures     prometheus.Counter
	CounterArchiveMismatch     *prometheus.CounterVec

	// gauges
	GaugeRequests        prometheus.Gauge
	GaugeLifeSignal      prometheus.Gauge
	GaugeNeglectedGroups *prometheus.GaugeVec

	// histograms
	HistogramRequestDuration *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager("gymbalance", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("gymbalance", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterHandleRequestPanic := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "handle_request_panic",
		Help:      "The total number of serve request panics",
	})
	counterRateLimitedRequests := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "rate_limited_requests",
		Help:      "The total number of rate limited requests",
	})
	counterSavedEntries := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "saved_entries",
		Help:      "The total number of saved workout entries",
	}, []string{"muscle_group"})
	counterSavedVolume := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "saved_volume",
		Help:      "The total training volume of saved workout entries",
	}, []string{"muscle_group"})
	counterStorageCorrupt := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "storage_corrupt",
		Help:      "Number of operations failed because the workouts file could not be parsed",
	})
	counterSummaryCache := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "summary_cache",
		Help:      "Summary cache lookups by result",
	}, []string{"result"})
	counterArchiveFailures := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "archive_failures",
		Help:      "Number of entries that could not be mirrored to the archive db",
	})
	counterArchiveMismatch := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "archive_volume_mismatch",
		Help:      "Muscle groups whose archived weekly volume differs from the csv, per weekly report",
	}, []string{"muscle_group"})

	gaugeRequests := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "current_requests",
		Help:      "Current number of requests served",
	})
	gaugeLifeSignal := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "life_signal",
		Help:      "Shows whether the service is alive",
	})
	gaugeNeglectedGroups := factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "neglected_muscle_group",
		Help:      "1 if the muscle group was neglected in the last weekly report, 0 otherwise",
	}, []string{"muscle_group"})

	histogramRequestDuration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_duration_seconds",
		Help:      "Histogram of response time for requests in seconds",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"route", "method", "status_code"})

	return &Manager{
		CounterRequests:            counterRequests,
		CounterHandleRequestPanic:  counterHandleRequestPanic,
		CounterRateLimitedRequests: counterRateLimitedRequests,
		CounterSavedEntries:        counterSavedEntries,
		CounterSavedVolume:         counterSavedVolume,
		CounterStorageCorrupt:      counterStorageCorrupt,
		CounterSummaryCache:        counterSummaryCache,
		CounterArchiveFailures:     counterArchiveFailures,
		CounterArchiveMismatch:     counterArchiveMismatch,
		GaugeRequests:              gaugeRequests,
		GaugeLifeSignal:            gaugeLifeSignal,
		GaugeNeglectedGroups:       gaugeNeglectedGroups,
		HistogramRequestDuration:   histogramRequestDuration,
	}
}
