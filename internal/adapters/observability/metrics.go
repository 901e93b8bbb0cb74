package observability

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "harvest", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "harvest", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	SiteRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "harvest", Name: "site_requests_total", Help: "Outbound requests to listing sites."},
		[]string{"site", "endpoint", "status"},
	)
	SiteLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "harvest", Name: "site_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"site", "endpoint"},
	)
	ScrapeRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "harvest", Name: "scrape_records_total", Help: "Records normalized or skipped per site."},
		[]string{"site", "outcome"}, // outcome: normalized|skipped
	)
	SourceFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "harvest", Name: "source_failures_total", Help: "Whole-source scrape failures."},
		[]string{"site"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "harvest", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
)

// Serve starts the standalone metrics listener when METRICS_ADDR is set.
func Serve() {
	addr := os.Getenv("METRICS_ADDR")
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, SiteRequests, SiteLatency, ScrapeRecords, SourceFailures, CacheEvents)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveSite(site, endpoint string, status int, dur time.Duration) {
	SiteRequests.WithLabelValues(site, endpoint, strconv.Itoa(status)).Inc()
	SiteLatency.WithLabelValues(site, endpoint).Observe(dur.Seconds())
}

func ObserveScrapeRecord(site, outcome string) { // outcome: normalized|skipped
	ScrapeRecords.WithLabelValues(site, outcome).Inc()
}

func ObserveSourceFailure(site string) {
	SourceFailures.WithLabelValues(site).Inc()
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}
