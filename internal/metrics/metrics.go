// Package metrics holds the Prometheus collectors for the classifier service.
package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ad-tracker/video-harm-classifier-go/internal/models"
)

const namespace = "harmclassifier"

// Metrics groups every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	VideosClassified   *prometheus.CounterVec
	ExtractionFailures prometheus.Counter
	ClassifierErrors   prometheus.Counter
	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter
	BatchDuration      prometheus.Histogram
	BatchSize          prometheus.Histogram
	RequestDuration    *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		VideosClassified: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "videos_classified_total",
				Help:      "Videos classified, by category and verdict.",
			},
			[]string{"category", "classification"},
		),
		ExtractionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_failures_total",
			Help:      "Metadata extractions that fell back to sentinel metadata.",
		}),
		ClassifierErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifier_errors_total",
			Help:      "Emotion model calls that failed and were treated as benign.",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Metadata cache hits.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Metadata cache misses.",
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Wall time to classify one batch.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of URLs per batch.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100},
		}),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds, by route, method and status.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method", "status"},
		),
	}

	reg.MustRegister(
		m.VideosClassified,
		m.ExtractionFailures,
		m.ClassifierErrors,
		m.CacheHits,
		m.CacheMisses,
		m.BatchDuration,
		m.BatchSize,
		m.RequestDuration,
	)

	return m
}

// ObserveResult counts one classified video.
func (m *Metrics) ObserveResult(r models.ClassificationResult) {
	if m == nil {
		return
	}
	m.VideosClassified.WithLabelValues(string(r.Category), string(r.Classification)).Inc()
}

// ObserveBatch records the size and duration of a finished batch.
func (m *Metrics) ObserveBatch(size int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.BatchSize.Observe(float64(size))
	m.BatchDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ExtractionFailed() {
	if m == nil {
		return
	}
	m.ExtractionFailures.Inc()
}

func (m *Metrics) ClassifierFailed() {
	if m == nil {
		return
	}
	m.ClassifierErrors.Inc()
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.CacheMisses.Inc()
}

// Middleware records the duration of every request except /metrics itself.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil || strings.HasPrefix(c.Request.URL.Path, "/metrics") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		// FullPath is the route template, which keeps label cardinality bounded.
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestDuration.
			WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
