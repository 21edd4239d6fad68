package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/habitutor/habitutor-api/internal/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "habitutor"

// Metrics owns a private registry with the service's collectors.
type Metrics struct {
	registry *prometheus.Registry

	sessionsStarted   prometheus.Counter
	answersSaved      *prometheus.CounterVec
	sessionsSubmitted prometheus.Counter
	streakIncrements  prometheus.Counter
	requestDuration   *prometheus.HistogramVec
}

var _ events.EventHandler = (*Metrics)(nil)

// New creates the collectors and registers them, together with the Go runtime
// and process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "flashcard",
			Name:      "sessions_started_total",
			Help:      "Flashcard attempts started.",
		}),
		answersSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "flashcard",
			Name:      "answers_saved_total",
			Help:      "Flashcard answers saved, by correctness.",
		}, []string{"correct"}),
		sessionsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "flashcard",
			Name:      "sessions_submitted_total",
			Help:      "Flashcard attempts submitted.",
		}),
		streakIncrements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "flashcard",
			Name:      "streak_increments_total",
			Help:      "Submissions that advanced a user's daily streak.",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route, method and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.sessionsStarted,
		m.answersSaved,
		m.sessionsSubmitted,
		m.streakIncrements,
		m.requestDuration,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// HandleEvent counts flashcard lifecycle events.
func (m *Metrics) HandleEvent(_ context.Context, event *events.Event) error {
	switch event.Type {
	case events.TypeSessionStarted:
		m.sessionsStarted.Inc()
	case events.TypeAnswerSaved:
		var p events.AnswerSavedPayload
		if err := event.UnmarshalPayload(&p); err != nil {
			return err
		}
		m.answersSaved.WithLabelValues(strconv.FormatBool(p.Correct)).Inc()
	case events.TypeSessionSubmitted:
		var p events.SessionSubmittedPayload
		if err := event.UnmarshalPayload(&p); err != nil {
			return err
		}
		m.sessionsSubmitted.Inc()
		if p.StreakIncremented {
			m.streakIncrements.Inc()
		}
	}
	return nil
}

// Middleware observes request latency. Routes are labelled by their chi
// pattern so path parameters do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestDuration.
			WithLabelValues(route, r.Method, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}
