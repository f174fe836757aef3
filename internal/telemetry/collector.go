// Package telemetry exposes registry state and gateway outcomes to Prometheus.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"modelcore/internal/registry"
)

// Source yields consistent registry snapshots.
type Source interface {
	Snapshot() registry.Snapshot
}

// RegistryCollector reads one registry snapshot per scrape.
type RegistryCollector struct {
	src Source

	models         *prometheus.Desc
	bytes          *prometheus.Desc
	inferences     *prometheus.Desc
	loadedAt       *prometheus.Desc
	lastInferenceT *prometheus.Desc
}

// NewRegistryCollector returns a collector over src.
func NewRegistryCollector(src Source) *RegistryCollector {
	return &RegistryCollector{
		src:            src,
		models:         prometheus.NewDesc("modelcore_registry_models", "Number of loaded models", nil, nil),
		bytes:          prometheus.NewDesc("modelcore_registry_bytes", "Sum of loaded model sizes in bytes", nil, nil),
		inferences:     prometheus.NewDesc("modelcore_model_inferences_total", "Inference dispatches per loaded model", []string{"model"}, nil),
		loadedAt:       prometheus.NewDesc("modelcore_model_loaded_timestamp_seconds", "Load time per model", []string{"model"}, nil),
		lastInferenceT: prometheus.NewDesc("modelcore_model_last_inference_timestamp_seconds", "Most recent dispatch per model", []string{"model"}, nil),
	}
}

func (c *RegistryCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.models
	ch <- c.bytes
	ch <- c.inferences
	ch <- c.loadedAt
	ch <- c.lastInferenceT
}

func (c *RegistryCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Snapshot()
	ch <- prometheus.MustNewConstMetric(c.models, prometheus.GaugeValue, float64(len(s.Models)))
	ch <- prometheus.MustNewConstMetric(c.bytes, prometheus.GaugeValue, float64(s.TotalBytes))
	for _, m := range s.Models {
		ch <- prometheus.MustNewConstMetric(c.inferences, prometheus.CounterValue, float64(m.InferenceCount), m.Name)
		ch <- prometheus.MustNewConstMetric(c.loadedAt, prometheus.GaugeValue, float64(m.LoadedAt), m.Name)
		if m.LastInferenceTime > 0 {
			ch <- prometheus.MustNewConstMetric(c.lastInferenceT, prometheus.GaugeValue, float64(m.LastInferenceTime)/1e9, m.Name)
		}
	}
}

// AuditSource reports audit buffer occupancy and overflow losses.
type AuditSource interface {
	Len() int
	Dropped() uint64
	Rejected() uint64
}

// AuditCollector exports the audit buffer's counters per scrape.
type AuditCollector struct {
	src AuditSource

	bytes    *prometheus.Desc
	dropped  *prometheus.Desc
	rejected *prometheus.Desc
}

func NewAuditCollector(src AuditSource) *AuditCollector {
	return &AuditCollector{
		src:      src,
		bytes:    prometheus.NewDesc("modelcore_audit_bytes", "Bytes currently held in the audit buffer", nil, nil),
		dropped:  prometheus.NewDesc("modelcore_audit_dropped_bytes_total", "Oldest audit bytes evicted to make room", nil, nil),
		rejected: prometheus.NewDesc("modelcore_audit_rejected_bytes_total", "Audit bytes refused because the buffer was full", nil, nil),
	}
}

func (c *AuditCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.bytes
	ch <- c.dropped
	ch <- c.rejected
}

func (c *AuditCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.bytes, prometheus.GaugeValue, float64(c.src.Len()))
	ch <- prometheus.MustNewConstMetric(c.dropped, prometheus.CounterValue, float64(c.src.Dropped()))
	ch <- prometheus.MustNewConstMetric(c.rejected, prometheus.CounterValue, float64(c.src.Rejected()))
}
