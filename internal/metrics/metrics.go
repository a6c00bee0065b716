package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database metrics
	dbQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapwatch_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"db", "operation"},
	)

	dbQueryTime = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swapwatch_db_query_duration_seconds",
			Help:    "Duration of database queries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"db", "operation"},
	)

	dbErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapwatch_db_errors_total",
			Help: "Total number of database errors",
		},
		[]string{"db", "error_type"},
	)

	// Pipeline metrics
	HeadHeight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "swapwatch_head_height",
			Help: "Height of the newest block observed by the ledger",
		},
	)

	ConfirmedHeight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "swapwatch_confirmed_height",
			Help: "Highest block height whose swap events have been emitted",
		},
	)

	BlocksObserved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapwatch_blocks_observed_total",
			Help: "Total number of blocks observed by result kind",
		},
		[]string{"result"},
	)

	SwapsDecoded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "swapwatch_swaps_decoded_total",
			Help: "Total number of swap events decoded from logs",
		},
	)

	SwapsConfirmed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapwatch_swaps_confirmed_total",
			Help: "Total number of confirmed swap events by direction",
		},
		[]string{"direction"},
	)

	MalformedLogs = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "swapwatch_malformed_logs_total",
			Help: "Total number of logs skipped because they could not be decoded",
		},
	)

	GapsDetected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "swapwatch_gaps_detected_total",
			Help: "Total number of height gaps detected in the head stream",
		},
	)

	BlockProcessingTime = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "swapwatch_block_processing_duration_seconds",
			Help:    "Time taken to process a single observed block",
			Buckets: prometheus.DefBuckets,
		},
	)

	WatcherState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "swapwatch_watcher_state",
			Help: "Current watcher state (1 for the active state, 0 otherwise)",
		},
		[]string{"state"},
	)

	// System metrics
	Uptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "swapwatch_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)

	Errors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapwatch_errors_total",
			Help: "Total number of errors by component and severity",
		},
		[]string{"component", "severity"},
	)

	ComponentHealth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "swapwatch_component_health",
			Help: "Component health status (1=healthy, 0=unhealthy)",
		},
		[]string{"component"},
	)

	Goroutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "swapwatch_goroutines",
			Help: "Number of active goroutines",
		},
	)

	MemoryUsage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "swapwatch_memory_usage_bytes",
			Help: "Memory usage statistics",
		},
		[]string{"type"},
	)

	startTime = time.Now()
)

func DBQueryInc(db string, operation string) {
	dbQueries.WithLabelValues(db, operation).Inc()
}

func DBQueryDuration(db string, operation string, duration time.Duration) {
	dbQueryTime.WithLabelValues(db, operation).Observe(duration.Seconds())
}

func DBErrorsInc(db string, errorType string) {
	dbErrors.WithLabelValues(db, errorType).Inc()
}

func BlockObservedInc(result string) {
	BlocksObserved.WithLabelValues(result).Inc()
}

func SwapsDecodedInc(count int) {
	SwapsDecoded.Add(float64(count))
}

func SwapConfirmedInc(direction string) {
	SwapsConfirmed.WithLabelValues(direction).Inc()
}

func HeadHeightSet(height uint64) {
	HeadHeight.Set(float64(height))
}

func ConfirmedHeightSet(height uint64) {
	ConfirmedHeight.Set(float64(height))
}

func BlockProcessingTimeLog(duration time.Duration) {
	BlockProcessingTime.Observe(duration.Seconds())
}

func WatcherStateSet(active string, all []string) {
	for _, state := range all {
		v := float64(0)
		if state == active {
			v = 1
		}
		WatcherState.WithLabelValues(state).Set(v)
	}
}

func ErrorsInc(component string, severity string) {
	Errors.WithLabelValues(component, severity).Inc()
}

func ComponentHealthSet(component string, healthy bool) {
	boolAsFloat := float64(1)
	if !healthy {
		boolAsFloat = 0
	}

	ComponentHealth.WithLabelValues(component).Set(boolAsFloat)
}

// UpdateSystemMetrics updates runtime system metrics.
// This should be called periodically (e.g., every 15 seconds).
func UpdateSystemMetrics() {
	// Update uptime
	Uptime.Set(time.Since(startTime).Seconds())

	// Update goroutine count
	Goroutines.Set(float64(runtime.NumGoroutine()))

	// Update memory statistics
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	MemoryUsage.WithLabelValues("alloc").Set(float64(m.Alloc))
	MemoryUsage.WithLabelValues("total_alloc").Set(float64(m.TotalAlloc))
	MemoryUsage.WithLabelValues("sys").Set(float64(m.Sys))
	MemoryUsage.WithLabelValues("heap_inuse").Set(float64(m.HeapInuse))
}
