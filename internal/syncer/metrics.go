package syncer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics aggregates the counters and timings published during a sync run.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	assets  *prometheus.CounterVec
	uploads prometheus.Histogram
}

// NewMetrics builds the sync metric set and registers it with reg when
// non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		assets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "presetsync_assets_total",
			Help: "Preset assets handled per run, labelled by outcome.",
		}, []string{"result"}),
		uploads: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "presetsync_upload_duration_seconds",
			Help:    "Wall time spent uploading one asset's objects.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.assets, m.uploads)
	}
	return m
}

func (m *Metrics) countAsset(result string) {
	if m == nil {
		return
	}
	m.assets.WithLabelValues(result).Inc()
}

func (m *Metrics) observeUpload(d time.Duration) {
	if m == nil {
		return
	}
	m.uploads.Observe(d.Seconds())
}
