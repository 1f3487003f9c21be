package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder reports pricing and order workflow metrics.
type PrometheusRecorder struct {
	quotes        *prometheus.CounterVec
	rejections    *prometheus.CounterVec
	ordersCreated *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
	httpDurations *prometheus.HistogramVec
	registry      *prometheus.Registry
}

func NewPrometheusRecorder(registry *prometheus.Registry) (*PrometheusRecorder, error) {
	if registry == nil {
		return nil, fmt.Errorf("prometheus registry is nil")
	}

	r := &PrometheusRecorder{
		quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sales_quotes_total",
			Help: "Total quote computations by outcome",
		}, []string{"outcome"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sales_pricing_rejections_total",
			Help: "Total pricing rejections by error kind",
		}, []string{"kind"}),
		ordersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sales_orders_created_total",
			Help: "Total orders created by channel",
		}, []string{"channel"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sales_order_status_transitions_total",
			Help: "Total order status transitions",
		}, []string{"from", "to"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sales_cache_lookups_total",
			Help: "Total cache lookups by cache and result",
		}, []string{"cache", "result"}),
		httpDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sales_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		registry: registry,
	}

	for _, collector := range []prometheus.Collector{
		r.quotes, r.rejections, r.ordersCreated, r.transitions, r.cacheLookups, r.httpDurations,
	} {
		if err := registry.Register(collector); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return r, nil
}

func (r *PrometheusRecorder) QuoteComputed(outcome string) {
	r.quotes.WithLabelValues(outcome).Inc()
}

func (r *PrometheusRecorder) PricingRejected(kind string) {
	r.rejections.WithLabelValues(kind).Inc()
}

func (r *PrometheusRecorder) OrderCreated(channel string) {
	r.ordersCreated.WithLabelValues(channel).Inc()
}

func (r *PrometheusRecorder) StatusChanged(from, to string) {
	r.transitions.WithLabelValues(from, to).Inc()
}

func (r *PrometheusRecorder) CacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(cache, result).Inc()
}

func (r *PrometheusRecorder) ObserveHTTP(method, route string, status int, duration time.Duration) {
	r.httpDurations.WithLabelValues(method, route, fmt.Sprint(status)).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
