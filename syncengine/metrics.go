package syncengine

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is one struct of collectors for the sync engine's control
// loop, covering the counters and histograms it can usefully expose.
// NewMetrics registers them as soon as it builds them.
type Metrics struct {
	ChunksScanned   prometheus.Counter
	ScanDuration    prometheus.Histogram
	ReorgsDetected  prometheus.Counter
	BlocksRewound   prometheus.Counter
}

// NewMetrics constructs and registers the engine's collectors against
// reg. Passing a nil registry is fine -- NewMetrics still returns usable
// (if unregistered) collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ChunksScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "zeclightsync",
			Subsystem: "syncengine",
			Name:      "chunks_scanned_total",
			Help:      "Number of scan-range chunks successfully downloaded and scanned.",
		}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "zeclightsync",
			Subsystem: "syncengine",
			Name:      "scan_duration_seconds",
			Help:      "Wall-clock time spent downloading and scanning one chunk.",
		}),
		ReorgsDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "zeclightsync",
			Subsystem: "syncengine",
			Name:      "reorgs_detected_total",
			Help:      "Number of chain continuity errors that triggered a local rewind.",
		}),
		BlocksRewound: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "zeclightsync",
			Subsystem: "syncengine",
			Name:      "blocks_rewound_total",
			Help:      "Total number of blocks discarded by reorg-triggered rewinds.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.ChunksScanned, m.ScanDuration, m.ReorgsDetected, m.BlocksRewound)
	}

	return m
}
