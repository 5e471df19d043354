package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts counts login and registration outcomes.
	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "album_auth_attempts_total",
		Help: "Total number of authentication attempts by result",
	}, []string{"result"})

	// Uploads counts upload outcomes per storage backend.
	Uploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "album_uploads_total",
		Help: "Total number of uploads by backend and result",
	}, []string{"backend", "result"})

	// UploadBytes counts bytes accepted by the upload ingestor.
	UploadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "album_upload_bytes_total",
		Help: "Total number of bytes stored by the upload ingestor",
	})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "album_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "album_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)
