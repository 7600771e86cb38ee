// Package transport wraps the HTTP client used for SoundCloud calls with
// request logging and Prometheus metrics.
package transport

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Metrics holds the collectors recorded for outgoing requests
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

// NewMetrics creates the request collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scloud",
			Name:      "api_requests_total",
			Help:      "SoundCloud API requests by status code and method.",
		}, []string{"code", "method"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "scloud",
			Name:      "api_request_duration_seconds",
			Help:      "SoundCloud API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "scloud",
			Name:      "api_requests_in_flight",
			Help:      "SoundCloud API requests currently in flight.",
		}),
	}
	m.registry.MustRegister(m.requests, m.duration, m.inFlight)
	return m
}

// Registry exposes the registry so callers can add their own collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collected metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Instrument wraps next with the request collectors.
func (m *Metrics) Instrument(next http.RoundTripper) http.RoundTripper {
	return promhttp.InstrumentRoundTripperInFlight(m.inFlight,
		promhttp.InstrumentRoundTripperCounter(m.requests,
			promhttp.InstrumentRoundTripperDuration(m.duration, next)))
}

// loggingTransport logs every request at debug level
type loggingTransport struct {
	next   http.RoundTripper
	logger zerolog.Logger
}

// Logging wraps next so every request is logged. Query strings are never
// logged since they carry tokens.
func Logging(next http.RoundTripper, logger zerolog.Logger) http.RoundTripper {
	return &loggingTransport{
		next:   next,
		logger: logger.With().Str("component", "http").Logger(),
	}
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	elapsed := time.Since(start)

	if err != nil {
		t.logger.Debug().
			Err(err).
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Dur("elapsed", elapsed).
			Msg("Request failed")
		return nil, err
	}

	t.logger.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Msg("Request completed")
	return resp, nil
}

// Options configures NewClient
type Options struct {
	Timeout time.Duration     // Zero means no timeout
	Base    http.RoundTripper // Defaults to http.DefaultTransport
	Metrics *Metrics          // Optional
	Logger  zerolog.Logger
}

// NewClient builds an http.Client whose transport logs and, when
// opts.Metrics is set, records every request.
func NewClient(opts Options) *http.Client {
	rt := opts.Base
	if rt == nil {
		rt = http.DefaultTransport
	}
	if opts.Metrics != nil {
		rt = opts.Metrics.Instrument(rt)
	}
	rt = Logging(rt, opts.Logger)

	return &http.Client{
		Transport: rt,
		Timeout:   opts.Timeout,
	}
}
