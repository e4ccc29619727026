package observability

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/yungbote/housing-predictor/internal/platform/logger"
)

const namespace = "housing"

// Metrics owns a private registry so several instances can coexist in tests.
// Every method is safe on a nil receiver.
type Metrics struct {
	reg *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	predictions       *prometheus.CounterVec
	predictionLatency *prometheus.HistogramVec
	predictedValue    prometheus.Histogram
	cacheLookups      *prometheus.CounterVec

	modelLoaded prometheus.Gauge
	modelLoads  *prometheus.CounterVec

	dataQuality *prometheus.CounterVec
	storeStats  *prometheus.GaugeVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "api", Name: "requests_total",
			Help: "API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "api", Name: "request_duration_seconds",
			Help:    "API request latency by method/route/status.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"method", "route", "status"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "api", Name: "inflight_requests",
			Help: "In-flight API requests.",
		}),
		predictions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "model", Name: "predictions_total",
			Help: "Rows predicted, by outcome.",
		}, []string{"status"}),
		predictionLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "model", Name: "prediction_duration_seconds",
			Help:    "Time spent in transform + predict per call.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"status"}),
		predictedValue: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "model", Name: "predicted_value",
			Help:    "Predicted median house value in units of $100k.",
			Buckets: []float64{0.5, 1, 1.5, 2, 2.5, 3, 4, 5},
		}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "cache", Name: "lookups_total",
			Help: "Prediction cache lookups by result.",
		}, []string{"result"}),
		modelLoaded: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "model", Name: "loaded",
			Help: "1 when a model and preprocessor are loaded.",
		}),
		modelLoads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "model", Name: "loads_total",
			Help: "Model load attempts by outcome.",
		}, []string{"status"}),
		dataQuality: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "pipeline", Name: "data_quality_issues_total",
			Help: "Rejected inputs by stage, issue and column.",
		}, []string{"stage", "issue", "column"}),
		storeStats: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "store", Name: "connections",
			Help: "database/sql pool statistics.",
		}, []string{"stat"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObservePredictions records one predict call covering rows inputs.
func (m *Metrics) ObservePredictions(status string, rows int, dur time.Duration, values []float64) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(status).Add(float64(rows))
	m.predictionLatency.WithLabelValues(status).Observe(dur.Seconds())
	for _, v := range values {
		m.predictedValue.Observe(v)
	}
}

func (m *Metrics) IncCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveModelLoad(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.modelLoads.WithLabelValues("error").Inc()
		return
	}
	m.modelLoads.WithLabelValues("ok").Inc()
	m.modelLoaded.Set(1)
}

func (m *Metrics) IncDataQuality(stage, issue, column string) {
	if m == nil {
		return
	}
	m.dataQuality.WithLabelValues(stage, issue, column).Inc()
}

// StartStoreCollector samples the sql pool until ctx is done.
func (m *Metrics) StartStoreCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: store stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.storeStats.WithLabelValues("open_connections").Set(float64(stats.OpenConnections))
				m.storeStats.WithLabelValues("in_use").Set(float64(stats.InUse))
				m.storeStats.WithLabelValues("idle").Set(float64(stats.Idle))
				m.storeStats.WithLabelValues("wait_count").Set(float64(stats.WaitCount))
				m.storeStats.WithLabelValues("wait_duration_seconds").Set(stats.WaitDuration.Seconds())
			}
		}
	}()
}

func scrapeInterval() time.Duration {
	v := strings.TrimSpace(os.Getenv("METRICS_SCRAPE_INTERVAL_SECONDS"))
	if v == "" {
		return 10 * time.Second
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 10 * time.Second
	}
	return time.Duration(n) * time.Second
}
