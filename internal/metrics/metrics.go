// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upload pipeline stages, in order.
const (
	StageReceived  = "received"
	StageStaged    = "staged"
	StageUploaded  = "uploaded"
	StagePersisted = "persisted"
	StageCompleted = "completed"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postline_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "postline_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	PipelineTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postline_pipeline_total",
			Help: "Media post creations by the stage they ended in and outcome",
		},
		[]string{"stage", "outcome"},
	)

	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "postline_pipeline_stage_seconds",
			Help:    "Time spent in each media pipeline stage",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"stage"},
	)

	UploadedBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "postline_uploaded_bytes_total",
			Help: "Bytes accepted by the media store",
		},
	)
)

// RecordPipeline counts a finished media create. stage is the last stage entered.
func RecordPipeline(stage string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	PipelineTotal.WithLabelValues(stage, outcome).Inc()
}

// ObserveStage records how long a stage took since start.
func ObserveStage(stage string, start time.Time) {
	PipelineStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
