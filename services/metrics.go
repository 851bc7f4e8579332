package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the Quick-Share counters. A nil *Metrics records nothing.
type Metrics struct {
	uploads     *prometheus.CounterVec
	uploadBytes prometheus.Counter
	removals    *prometheus.CounterVec
	snapshots   prometheus.Counter
	sharedFiles prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quickshare_uploads_total",
				Help: "Quick-Share uploads by outcome",
			},
			[]string{"result"},
		),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quickshare_upload_bytes_total",
			Help: "Bytes of successfully shared files",
		}),
		removals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quickshare_removals_total",
				Help: "Quick-Share removals by outcome",
			},
			[]string{"result"},
		),
		snapshots: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quickshare_snapshots_total",
			Help: "Snapshots received from the Quick-Share listener",
		}),
		sharedFiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quickshare_shared_files",
			Help: "Files in the latest Quick-Share snapshot",
		}),
	}
	reg.MustRegister(m.uploads, m.uploadBytes, m.removals, m.snapshots, m.sharedFiles)
	return m
}

func (m *Metrics) uploadDone(size int64, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.uploads.WithLabelValues("failed").Inc()
		return
	}
	m.uploads.WithLabelValues("completed").Inc()
	m.uploadBytes.Add(float64(size))
}

func (m *Metrics) removalDone(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "failed"
	}
	m.removals.WithLabelValues(result).Inc()
}

func (m *Metrics) snapshot(n int) {
	if m == nil {
		return
	}
	m.snapshots.Inc()
	m.sharedFiles.Set(float64(n))
}
