package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	ingestionRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promotore_ingestion_runs_total",
		Help: "Ingestion pipeline runs by outcome",
	}, []string{"outcome"})

	documentExtractions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promotore_document_extractions_total",
		Help: "Per-document extraction attempts by outcome",
	}, []string{"outcome"})

	ingestionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "promotore_ingestion_duration_seconds",
		Help:    "Ingestion pipeline duration in seconds",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	})

	uploadedDocuments = promauto.NewCounter(prometheus.CounterOpts{
		Name: "promotore_uploaded_documents_total",
		Help: "Documents accepted by the upload endpoint",
	})
)

// IncIngestionRun counts a finished pipeline run.
func IncIngestionRun(outcome string) {
	ingestionRuns.WithLabelValues(outcome).Inc()
}

// IncDocumentExtraction counts one extraction attempt.
func IncDocumentExtraction(outcome string) {
	documentExtractions.WithLabelValues(outcome).Inc()
}

// ObserveIngestionSeconds records a pipeline duration.
func ObserveIngestionSeconds(value float64) {
	if value < 0 {
		value = 0
	}
	ingestionDuration.Observe(value)
}

// AddUploadedDocuments counts accepted uploads.
func AddUploadedDocuments(n int) {
	if n <= 0 {
		return
	}
	uploadedDocuments.Add(float64(n))
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
