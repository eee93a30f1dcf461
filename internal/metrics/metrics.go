// Package metrics exposes Prometheus collectors for ETL runs and pushes them
// to a Pushgateway at the end of a batch.
package metrics

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	sourceFetchTotal           *prometheus.CounterVec
	sourceFetchDurationSeconds *prometheus.HistogramVec
	publishTotal               *prometheus.CounterVec
	artifactBytesTotal         *prometheus.CounterVec
	latestPeriod               *prometheus.GaugeVec
	seriesFailuresTotal        *prometheus.CounterVec
	lastRunTimestampSeconds    prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		sourceFetchTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "indexetl_source_fetch_total",
				Help: "Total number of source fetches, labeled by site, kind and status.",
			},
			[]string{"site", "kind", "status"},
		)

		sourceFetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "indexetl_source_fetch_duration_seconds",
				Help:    "Histogram of source fetch latencies including retries, labeled by kind.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"kind"},
		)

		publishTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "indexetl_publish_total",
				Help: "Publish decisions per destination, labeled by series, state and action.",
			},
			[]string{"series", "state", "action"},
		)

		artifactBytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "indexetl_artifact_bytes_total",
				Help: "Total bytes of CSV artifacts written, labeled by series.",
			},
			[]string{"series"},
		)

		latestPeriod = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "indexetl_latest_period",
				Help: "Latest reference period seen at the source as YYYYMM.",
			},
			[]string{"series"},
		)

		seriesFailuresTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "indexetl_series_failures_total",
				Help: "Series that failed before publishing, labeled by series.",
			},
			[]string{"series"},
		)

		lastRunTimestampSeconds = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "indexetl_last_run_timestamp_seconds",
				Help: "Unix time at which the last run finished.",
			},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// ObserveFetch records one source fetch.
func ObserveFetch(site, kind, status string, duration time.Duration) {
	Init()
	sourceFetchTotal.WithLabelValues(SanitizeSite(site), kind, status).Inc()
	sourceFetchDurationSeconds.WithLabelValues(kind).Observe(duration.Seconds())
}

// ObservePublish records one destination decision and the bytes written, if any.
func ObservePublish(seriesName, state, action string, bytesWritten int) {
	Init()
	publishTotal.WithLabelValues(seriesName, state, action).Inc()
	if bytesWritten > 0 {
		artifactBytesTotal.WithLabelValues(seriesName).Add(float64(bytesWritten))
	}
}

// SetLatestPeriod records the newest period a source offered.
func SetLatestPeriod(seriesName string, yyyymm int) {
	Init()
	latestPeriod.WithLabelValues(seriesName).Set(float64(yyyymm))
}

// ObserveSeriesFailure counts a series that could not be loaded.
func ObserveSeriesFailure(seriesName string) {
	Init()
	seriesFailuresTotal.WithLabelValues(seriesName).Inc()
}

// MarkRunFinished stamps the run completion time.
func MarkRunFinished(at time.Time) {
	Init()
	lastRunTimestampSeconds.Set(float64(at.Unix()))
}

// Push sends every registered collector to the Pushgateway at gatewayURL under job.
func Push(ctx context.Context, gatewayURL, job string) error {
	if strings.TrimSpace(gatewayURL) == "" {
		return nil
	}
	Init()
	if err := push.New(gatewayURL, job).Gatherer(prometheus.DefaultGatherer).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
