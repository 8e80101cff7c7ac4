package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Event("command")
	m.Event("command")
	m.Event("room_text")
	m.Reply(nil)
	m.Reply(errors.New("send failed"))
	m.ProviderRequest("deepseek", 2*time.Second, nil)
	m.ProviderRequest("deepseek", time.Second, errors.New("boom"))

	if got := testutil.ToFloat64(m.events.WithLabelValues("command")); got != 2 {
		t.Errorf("events{command} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.events.WithLabelValues("room_text")); got != 1 {
		t.Errorf("events{room_text} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.replies.WithLabelValues(OutcomeError)); got != 1 {
		t.Errorf("replies{error} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.providerRequests.WithLabelValues("deepseek", OutcomeOK)); got != 1 {
		t.Errorf("provider_requests{deepseek,ok} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.providerRequests.WithLabelValues("deepseek", OutcomeError)); got != 1 {
		t.Errorf("provider_requests{deepseek,error} = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.providerLatency); got != 1 {
		t.Errorf("latency series = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Event("command")
	m.Reply(nil)
	m.ProviderRequest("deepseek", time.Second, nil)
}
