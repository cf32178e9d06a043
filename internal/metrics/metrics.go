// Package metrics exposes prometheus instruments for extraction, retrieval
// and community detection. All methods are safe on a nil *Metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "graphrag"

type Metrics struct {
	registry *prometheus.Registry

	ChunksTotal        *prometheus.CounterVec
	ExtractionDuration prometheus.Histogram
	EntitiesExtracted  prometheus.Counter
	RelationsExtracted prometheus.Counter

	RelevanceRankings *prometheus.CounterVec
	AnswersTotal      *prometheus.CounterVec
	Degradations      *prometheus.CounterVec

	LLMCalls    *prometheus.CounterVec
	LLMDuration *prometheus.HistogramVec

	Communities prometheus.Gauge
	Modularity  prometheus.Gauge
}

// New creates the instruments on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		ChunksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "extraction",
				Name:      "chunks_total",
				Help:      "Text chunks processed, by outcome",
			},
			[]string{"status"},
		),
		ExtractionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "extraction",
				Name:      "duration_seconds",
				Help:      "Wall time of a full extraction",
				Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
			},
		),
		EntitiesExtracted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "extraction",
				Name:      "entities_total",
				Help:      "Entities produced after merging",
			},
		),
		RelationsExtracted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "extraction",
				Name:      "relations_total",
				Help:      "Relations produced after merging",
			},
		),
		RelevanceRankings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "relevance",
				Name:      "rankings_total",
				Help:      "Community rankings, by path (llm, keyword, empty)",
			},
			[]string{"path"},
		),
		AnswersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "retrieval",
				Name:      "answers_total",
				Help:      "Answered questions, by requested and terminal strategy",
			},
			[]string{"requested", "used"},
		),
		Degradations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "retrieval",
				Name:      "degradations_total",
				Help:      "Strategy fallbacks taken",
			},
			[]string{"from", "to"},
		),
		LLMCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "llm",
				Name:      "calls_total",
				Help:      "Generation calls, by provider and outcome",
			},
			[]string{"provider", "status"},
		),
		LLMDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "llm",
				Name:      "duration_seconds",
				Help:      "Generation call latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		Communities: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "community",
				Name:      "count",
				Help:      "Communities found by the last detection run",
			},
		),
		Modularity: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "community",
				Name:      "modularity",
				Help:      "Modularity of the last detection run",
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ChunksTotal, m.ExtractionDuration, m.EntitiesExtracted, m.RelationsExtracted,
		m.RelevanceRankings, m.AnswersTotal, m.Degradations,
		m.LLMCalls, m.LLMDuration,
		m.Communities, m.Modularity,
	)
	return m
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (m *Metrics) ObserveChunk(ok bool) {
	if m == nil {
		return
	}
	m.ChunksTotal.WithLabelValues(status(ok)).Inc()
}

func (m *Metrics) ObserveExtraction(elapsed time.Duration, entities, relations int) {
	if m == nil {
		return
	}
	m.ExtractionDuration.Observe(elapsed.Seconds())
	m.EntitiesExtracted.Add(float64(entities))
	m.RelationsExtracted.Add(float64(relations))
}

func (m *Metrics) ObserveRanking(path string) {
	if m == nil {
		return
	}
	m.RelevanceRankings.WithLabelValues(path).Inc()
}

func (m *Metrics) ObserveAnswer(requested, used string) {
	if m == nil {
		return
	}
	m.AnswersTotal.WithLabelValues(requested, used).Inc()
}

func (m *Metrics) ObserveDegradation(from, to string) {
	if m == nil {
		return
	}
	m.Degradations.WithLabelValues(from, to).Inc()
}

func (m *Metrics) ObserveLLMCall(provider string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.LLMCalls.WithLabelValues(provider, status(err == nil)).Inc()
	m.LLMDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveCommunities(count int, modularity float64) {
	if m == nil {
		return
	}
	m.Communities.Set(float64(count))
	m.Modularity.Set(modularity)
}

func status(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
