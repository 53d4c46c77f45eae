package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loggate_records_total",
		Help: "The total number of queue records handled by the worker",
	}, []string{"outcome"}) // stored | duplicate | malformed | transient

	BatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loggate_batches_total",
		Help: "Batch invocations by final status",
	}, []string{"status"}) // ok | redelivered

	EnqueuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loggate_enqueued_total",
		Help: "Records accepted by the front door and enqueued",
	})

	LatencyBucket = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "loggate_latency_bucket",
		Help:    "Request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	BatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "loggate_batch_duration_seconds",
		Help:    "Wall time of one batch invocation",
		Buckets: prometheus.DefBuckets,
	})
)
