package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "solar_portal_"

	// ResultSuccess labels a successful operation.
	ResultSuccess = "success"
	// ResultError labels a failed operation.
	ResultError = "error"
)

var (
	registerOnce sync.Once

	sizingRequests *prometheus.CounterVec
	sizingLatency  prometheus.Histogram

	applicationSubmissions *prometheus.CounterVec
	applicationTransitions *prometheus.CounterVec
	transitionLatency      *prometheus.HistogramVec

	statusLookups *prometheus.CounterVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	maintenanceRequests *prometheus.CounterVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		sizingRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "sizing_requests_total",
				Help: "Total sizing calculator requests by result",
			},
			[]string{"result"},
		)
		sizingLatency = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "sizing_latency_seconds",
				Help:    "Sizing calculator latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
		)

		applicationSubmissions = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "application_submissions_total",
				Help: "Total metering application submissions by type and result",
			},
			[]string{"type", "result"},
		)
		applicationTransitions = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "application_transitions_total",
				Help: "Total lifecycle transitions by transition and result",
			},
			[]string{"transition", "result"},
		)
		transitionLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "application_transition_latency_seconds",
				Help:    "Lifecycle transition latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"transition"},
		)

		statusLookups = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "status_lookups_total",
				Help: "Total status tracker lookups by result",
			},
			[]string{"result"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "application_export_total",
				Help: "Total application export operations by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "application_export_latency_seconds",
				Help:    "Application export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		maintenanceRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "maintenance_requests_total",
				Help: "Total maintenance requests by type and result",
			},
			[]string{"type", "result"},
		)

		prometheus.MustRegister(
			sizingRequests,
			sizingLatency,
			applicationSubmissions,
			applicationTransitions,
			transitionLatency,
			statusLookups,
			exportTotal,
			exportLatency,
			maintenanceRequests,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveSizing records a sizing calculator request.
func ObserveSizing(result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if sizingRequests != nil {
		sizingRequests.WithLabelValues(result).Inc()
	}
	if sizingLatency != nil {
		sizingLatency.Observe(duration.Seconds())
	}
}

// IncSubmission increments the submission counter.
func IncSubmission(appType, result string) {
	if appType == "" {
		appType = "unknown"
	}
	if result == "" {
		result = ResultSuccess
	}
	if applicationSubmissions != nil {
		applicationSubmissions.WithLabelValues(appType, result).Inc()
	}
}

// ObserveTransition records a lifecycle transition attempt.
func ObserveTransition(transition, result string, duration time.Duration) {
	if transition == "" {
		transition = "unknown"
	}
	if result == "" {
		result = ResultSuccess
	}
	if applicationTransitions != nil {
		applicationTransitions.WithLabelValues(transition, result).Inc()
	}
	if transitionLatency != nil {
		transitionLatency.WithLabelValues(transition).Observe(duration.Seconds())
	}
}

// IncStatusLookup increments the status lookup counter.
func IncStatusLookup(result string) {
	if result == "" {
		result = ResultSuccess
	}
	if statusLookups != nil {
		statusLookups.WithLabelValues(result).Inc()
	}
}

// ObserveExport records export latency and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = ResultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// IncMaintenanceRequest increments the maintenance request counter.
func IncMaintenanceRequest(requestType, result string) {
	if requestType == "" {
		requestType = "unknown"
	}
	if result == "" {
		result = ResultSuccess
	}
	if maintenanceRequests != nil {
		maintenanceRequests.WithLabelValues(requestType, result).Inc()
	}
}

func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "applications_open",
			Help: "Applications not yet in a terminal state",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM metering_applications WHERE status NOT IN ('rejected', 'completed')")
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "maintenance_open",
			Help: "Maintenance requests not yet in a terminal state",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM maintenance_requests WHERE status NOT IN ('completed', 'cancelled')")
		},
	))
}

func queryCount(db *sql.DB, logger *log.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		if logger != nil {
			logger.Printf("metrics query failed: %v", err)
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}
