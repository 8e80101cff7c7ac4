// Package metrics holds the Prometheus collectors of the bot and the
// /metrics endpoint that exposes them.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Reply and provider outcomes
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics groups the bot's collectors. A nil *Metrics records nothing.
type Metrics struct {
	events           *prometheus.CounterVec
	replies          *prometheus.CounterVec
	providerRequests *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pmikbot_events_total",
			Help: "Inbound chat events by routing kind.",
		}, []string{"kind"}),
		replies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pmikbot_replies_total",
			Help: "Outbound replies by delivery outcome.",
		}, []string{"outcome"}),
		providerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pmikbot_provider_requests_total",
			Help: "Completion requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pmikbot_provider_latency_seconds",
			Help:    "Completion request latency.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		}, []string{"provider"}),
	}
	reg.MustRegister(m.events, m.replies, m.providerRequests, m.providerLatency)
	return m
}

// Event counts one inbound event of the given kind.
func (m *Metrics) Event(kind string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(kind).Inc()
}

// Reply counts one reply delivery attempt.
func (m *Metrics) Reply(err error) {
	if m == nil {
		return
	}
	m.replies.WithLabelValues(outcome(err)).Inc()
}

// ProviderRequest records one completion call.
func (m *Metrics) ProviderRequest(provider string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.providerRequests.WithLabelValues(provider, outcome(err)).Inc()
	m.providerLatency.WithLabelValues(provider).Observe(elapsed.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.InfoContext(ctx, "metrics server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
