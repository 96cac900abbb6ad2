package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docsync",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docsync",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)
	decodes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docsync",
			Subsystem: "codec",
			Name:      "decodes_total",
			Help:      "Wire messages decoded, by message and outcome.",
		},
		[]string{"message", "success"},
	)
	decodeBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docsync",
			Subsystem: "codec",
			Name:      "decode_bytes",
			Help:      "Size of decoded wire messages in bytes.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		},
		[]string{"message"},
	)
	lookupMerges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docsync",
			Subsystem: "lookup",
			Name:      "merges_total",
			Help:      "Lookup response merges, by outcome.",
		},
		[]string{"success"},
	)
	lookupChunks = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "docsync",
			Subsystem: "lookup",
			Name:      "merge_chunks",
			Help:      "Chunks per lookup merge.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
	lookupDuplicates = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docsync",
			Subsystem: "lookup",
			Name:      "duplicate_keys_total",
			Help:      "Chunks dropped because a later chunk carried the same key.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests, httpDuration,
			decodes, decodeBytes,
			lookupMerges, lookupChunks, lookupDuplicates,
		)
	})
}

func RecordHTTPRequest(service, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(service, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(service, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordDecode counts one decode of message over n input bytes.
func RecordDecode(message string, n int, success bool) {
	RegisterMetrics()
	decodes.WithLabelValues(message, strconv.FormatBool(success)).Inc()
	decodeBytes.WithLabelValues(message).Observe(float64(n))
}

// RecordLookupMerge counts one merge of chunks into docs documents.
func RecordLookupMerge(chunks, docs int, success bool) {
	RegisterMetrics()
	lookupMerges.WithLabelValues(strconv.FormatBool(success)).Inc()
	lookupChunks.Observe(float64(chunks))
	if success && chunks > docs {
		lookupDuplicates.Add(float64(chunks - docs))
	}
}
