package reorg

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reorgsDetected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "swapwatch_reorgs_detected_total",
			Help: "Total number of blockchain reorganizations detected",
		},
	)

	reorgDepth = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "swapwatch_reorg_depth_blocks",
			Help:    "Depth of blockchain reorganizations in blocks",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		},
	)

	reorgLastDetected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "swapwatch_reorg_last_detected_timestamp",
			Help: "Unix timestamp of last reorg detection",
		},
	)

	reorgFromBlock = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "swapwatch_reorg_from_block",
			Help:    "Block numbers where reorgs started",
			Buckets: prometheus.ExponentialBuckets(1e6, 2, 8),
		},
	)

	recoveriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "swapwatch_reorg_recoveries_total",
			Help: "Total number of reorgs recovered within the retained window",
		},
	)

	fatalTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "swapwatch_reorg_fatal_total",
			Help: "Total number of reorgs too deep to recover from",
		},
	)
)

func observeReorg(depth, atHeight uint64) {
	reorgsDetected.Inc()
	reorgDepth.Observe(float64(depth))
	reorgLastDetected.Set(float64(time.Now().UTC().Unix()))
	reorgFromBlock.Observe(float64(atHeight))
}
