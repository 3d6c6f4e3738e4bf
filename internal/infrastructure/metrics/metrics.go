// Package metrics expone las métricas Prometheus del servicio: HTTP, motor de planeación
// y publicación de eventos.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appplanning "github.com/jhoicas/scm-api/internal/application/planning"
	"github.com/jhoicas/scm-api/internal/domain/planning"
)

var _ appplanning.Metrics = (*Metrics)(nil)

const namespace = "scm"

// Metrics registro propio (no el global) con todos los colectores del servicio.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	projections     *prometheus.CounterVec
	stockoutWeeks   prometheus.Counter
	suggestions     *prometheus.CounterVec
	eventsPublished *prometheus.CounterVec
}

// New crea el registro con los colectores de Go y de proceso.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP atendidas.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latencia de las peticiones HTTP.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"method", "route"}),
		projections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planning",
			Name:      "projections_total",
			Help:      "Proyecciones de SKU calculadas, por peor estado del horizonte.",
		}, []string{"worst_status"}),
		stockoutWeeks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planning",
			Name:      "stockout_weeks_total",
			Help:      "Semanas proyectadas en quiebre de stock.",
		}),
		suggestions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planning",
			Name:      "replenishment_suggestions_total",
			Help:      "Sugerencias de reposición emitidas, por urgencia.",
		}, []string{"urgency"}),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Eventos de dominio enviados al broker.",
		}, []string{"event_type", "status"}),
	}
	reg.MustRegister(m.httpRequests, m.httpDuration, m.projections, m.stockoutWeeks, m.suggestions, m.eventsPublished)
	return m
}

// Registry devuelve el registro (tests y colectores adicionales).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ProjectionComputed implementa planning.Metrics.
func (m *Metrics) ProjectionComputed(worst planning.StockStatus) {
	m.projections.WithLabelValues(string(worst)).Inc()
}

// StockoutWeeks implementa planning.Metrics.
func (m *Metrics) StockoutWeeks(n int) {
	if n > 0 {
		m.stockoutWeeks.Add(float64(n))
	}
}

// SuggestionEmitted implementa planning.Metrics.
func (m *Metrics) SuggestionEmitted(u planning.Urgency) {
	m.suggestions.WithLabelValues(string(u)).Inc()
}

// EventPublished implementa events.Recorder.
func (m *Metrics) EventPublished(eventType string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.eventsPublished.WithLabelValues(eventType, status).Inc()
}

// Middleware registra conteo y latencia por ruta. Usa el patrón de la ruta
// (/api/shipments/:id), no la URL, para no disparar la cardinalidad.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler expone el registro en formato Prometheus para GET /metrics.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
