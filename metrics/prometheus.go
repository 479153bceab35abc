package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Generation outcomes recorded by ObserveGeneration.
const (
	OutcomeSuccess          = "success"
	OutcomeAlreadyGenerated = "already_generated"
	OutcomeNoEligible       = "no_eligible"
	OutcomeInvalid          = "invalid"
	OutcomePersistence      = "persistence_error"
	OutcomeError            = "error"
)

// Manager owns every metric of the service. A nil *Manager is valid and
// records nothing, so components can run without metrics in tests.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// Award generation
	generations        *prometheus.CounterVec
	generationDuration prometheus.Histogram
	eligibleCandidates *prometheus.GaugeVec
	awardsCreated      prometheus.Counter

	// Score ledger
	scoreEvents *prometheus.CounterVec

	// Statistics cache
	cacheLookups *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewManager creates a manager on its own registry unless WithRegistry is given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "hr",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.generations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "award_generations_total",
		Help:      "Award generation runs by outcome",
	}, []string{"outcome"})

	m.generationDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "award_generation_duration_seconds",
		Help:      "Duration of award generation runs",
		Buckets:   m.histogramBuckets,
	})

	m.eligibleCandidates = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "award_eligible_candidates",
		Help:      "Eligible candidates in the last generation run per year",
	}, []string{"year"})

	m.awardsCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "awards_created_total",
		Help:      "Award records written by generation runs and manual creates",
	})

	m.scoreEvents = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "score_events_total",
		Help:      "Score events recorded by kind",
	}, []string{"kind"})

	m.cacheLookups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_lookups_total",
		Help:      "Statistics cache lookups by result",
	}, []string{"result"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status code",
	}, []string{"route", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration by route and method",
		Buckets:   m.histogramBuckets,
	}, []string{"route", "method"})
}

// Registry returns the registry metrics are registered on.
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveGeneration records one generation run.
func (m *Manager) ObserveGeneration(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(outcome).Inc()
	m.generationDuration.Observe(d.Seconds())
}

// SetEligible records the eligible candidate count of the last run for year.
func (m *Manager) SetEligible(year, n int) {
	if m == nil {
		return
	}
	m.eligibleCandidates.WithLabelValues(strconv.Itoa(year)).Set(float64(n))
}

// AddAwardsCreated counts written award records.
func (m *Manager) AddAwardsCreated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.awardsCreated.Add(float64(n))
}

// RecordScoreEvent counts a score event by kind (addition or deduction).
func (m *Manager) RecordScoreEvent(kind string) {
	if m == nil {
		return
	}
	m.scoreEvents.WithLabelValues(kind).Inc()
}

// RecordCacheLookup counts a cache hit or miss.
func (m *Manager) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records one served request.
func (m *Manager) RecordHTTPRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}
