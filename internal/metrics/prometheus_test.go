package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewPrometheusRecorder_NilRegistry(t *testing.T) {
	if _, err := NewPrometheusRecorder(nil); err == nil {
		t.Error("Expected error for nil registry")
	}
}

func TestNewPrometheusRecorder_DoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPrometheusRecorder(reg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := NewPrometheusRecorder(reg); err == nil {
		t.Error("Expected duplicate registration error")
	}
}

func TestPrometheusRecorder_Counters(t *testing.T) {
	r, err := NewPrometheusRecorder(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r.QuoteComputed("ok")
	r.QuoteComputed("ok")
	r.QuoteComputed("rejected")
	r.PricingRejected("invalid_quantity")
	r.OrderCreated("mobile")
	r.StatusChanged("draft", "approved")
	r.CacheLookup("catalog", true)
	r.CacheLookup("catalog", false)
	r.CacheLookup("catalog", false)

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"quotes ok", testutil.ToFloat64(r.quotes.WithLabelValues("ok")), 2},
		{"quotes rejected", testutil.ToFloat64(r.quotes.WithLabelValues("rejected")), 1},
		{"rejections", testutil.ToFloat64(r.rejections.WithLabelValues("invalid_quantity")), 1},
		{"orders", testutil.ToFloat64(r.ordersCreated.WithLabelValues("mobile")), 1},
		{"transitions", testutil.ToFloat64(r.transitions.WithLabelValues("draft", "approved")), 1},
		{"cache hits", testutil.ToFloat64(r.cacheLookups.WithLabelValues("catalog", "hit")), 1},
		{"cache misses", testutil.ToFloat64(r.cacheLookups.WithLabelValues("catalog", "miss")), 2},
	}

	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestPrometheusRecorder_Handler(t *testing.T) {
	r, err := NewPrometheusRecorder(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r.ObserveHTTP("POST", "/api/v1/quotes", 200, 15*time.Millisecond)

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	if !strings.Contains(w.Body.String(), `sales_http_request_duration_seconds_count{method="POST",route="/api/v1/quotes",status="200"} 1`) {
		t.Errorf("Expected HTTP histogram in output, got:\n%s", w.Body.String())
	}
}
