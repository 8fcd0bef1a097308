// Package metrics exposes Prometheus instruments for the chunking pipeline
// and the HTTP API.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline Prometheus metrics.
var (
	DocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lexchunk",
			Name:      "documents_processed_total",
			Help:      "Documents run through the chunking pipeline",
		},
		[]string{"result"}, // "ok" / "fallback" / "error"
	)

	ChunksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lexchunk",
			Name:      "chunks_emitted_total",
			Help:      "Chunks accepted by the quality gate",
		},
	)

	RejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lexchunk",
			Name:      "chunks_rejected_total",
			Help:      "Chunks dropped by the quality gate",
		},
		[]string{"reason"},
	)

	StructureAnomaliesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lexchunk",
			Name:      "structure_anomalies_total",
			Help:      "Non-monotonic hierarchy ordinals seen while parsing",
		},
	)

	ProcessDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "lexchunk",
			Name:      "document_process_duration_seconds",
			Help:      "Time to normalize, parse and chunk one document",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	ChunkLength = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "lexchunk",
			Name:      "chunk_length_runes",
			Help:      "Rendered chunk text length in runes",
			Buckets:   []float64{50, 100, 200, 400, 600, 800, 1000, 1200, 1600, 2400},
		},
	)

	JobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lexchunk",
			Name:      "ingest_jobs_total",
			Help:      "Ingest jobs by terminal status",
		},
		[]string{"status"},
	)

	QueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "lexchunk",
			Name:      "ingest_queue_depth",
			Help:      "Jobs waiting for a worker",
		},
	)

	SinkRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lexchunk",
			Name:      "sink_retries_total",
			Help:      "Retried chunk store writes",
		},
	)
)

func init() {
	prometheus.MustRegister(DocumentsTotal)
	prometheus.MustRegister(ChunksTotal)
	prometheus.MustRegister(RejectionsTotal)
	prometheus.MustRegister(StructureAnomaliesTotal)
	prometheus.MustRegister(ProcessDuration)
	prometheus.MustRegister(ChunkLength)
	prometheus.MustRegister(JobsTotal)
	prometheus.MustRegister(QueueDepth)
	prometheus.MustRegister(SinkRetriesTotal)
}
