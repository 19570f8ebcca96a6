package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sanskarmk/NutritionTracker/internal/domain"
)

const namespace = "nutritracker"

// Collector records tracker activity and HTTP traffic on its own registry.
// It implements domain.Recorder.
type Collector struct {
	registry *prometheus.Registry

	selectionAdded   *prometheus.CounterVec
	mealsCommitted   prometheus.Counter
	mealsRemoved     prometheus.Counter
	historyExports   *prometheus.CounterVec
	historyImports   *prometheus.CounterVec
	importedDays     prometheus.Counter
	historyDays      prometheus.Gauge
	requestDurations *prometheus.HistogramVec
}

// NewCollector creates a collector and registers every metric
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		selectionAdded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "selection_entries_added_total",
				Help:      "Entries added to the selection",
			},
			[]string{"type"},
		),
		mealsCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "meals_committed_total",
			Help:      "Meal records written to the daily log by commit",
		}),
		mealsRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "meals_removed_total",
			Help:      "Meal records deleted from the daily log",
		}),
		historyExports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "history_exports_total",
				Help:      "History exports by format",
			},
			[]string{"format"},
		),
		historyImports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "history_imports_total",
				Help:      "History imports by format and strategy",
			},
			[]string{"format", "strategy"},
		),
		importedDays: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_imported_days_total",
			Help:      "Days read from import files",
		}),
		historyDays: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_days",
			Help:      "Distinct dates in the daily log history",
		}),
		requestDurations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}

	registry.MustRegister(
		c.selectionAdded,
		c.mealsCommitted,
		c.mealsRemoved,
		c.historyExports,
		c.historyImports,
		c.importedDays,
		c.historyDays,
		c.requestDurations,
	)

	return c
}

func (c *Collector) SelectionAdded(kind domain.EntryKind) {
	c.selectionAdded.WithLabelValues(string(kind)).Inc()
}

func (c *Collector) MealsCommitted(count int) {
	c.mealsCommitted.Add(float64(count))
}

func (c *Collector) MealRemoved() {
	c.mealsRemoved.Inc()
}

func (c *Collector) HistoryExported(format string) {
	c.historyExports.WithLabelValues(format).Inc()
}

func (c *Collector) HistoryImported(format, strategy string, days int) {
	c.historyImports.WithLabelValues(format, strategy).Inc()
	c.importedDays.Add(float64(days))
}

func (c *Collector) HistorySize(days int) {
	c.historyDays.Set(float64(days))
}

// ObserveRequest records one served HTTP request
func (c *Collector) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	c.requestDurations.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler exposes the collector's registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
