package metrics_test

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/scm-api/internal/domain/planning"
	"github.com/jhoicas/scm-api/internal/infrastructure/metrics"
)

func TestMetrics_ContadoresDePlaneacion(t *testing.T) {
	m := metrics.New()
	m.ProjectionComputed(planning.StatusStockout)
	m.StockoutWeeks(3)
	m.StockoutWeeks(0)
	m.SuggestionEmitted(planning.UrgencyOverdue)
	m.SuggestionEmitted(planning.UrgencyOverdue)
	m.EventPublished("shipment.arrived", errors.New("broker caído"))

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, f := range families {
		for _, metric := range f.GetMetric() {
			values[f.GetName()] += metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 1.0, values["scm_planning_projections_total"])
	assert.Equal(t, 3.0, values["scm_planning_stockout_weeks_total"])
	assert.Equal(t, 2.0, values["scm_planning_replenishment_suggestions_total"])
	assert.Equal(t, 1.0, values["scm_events_published_total"])
}

func TestMetrics_MiddlewareYEndpoint(t *testing.T) {
	m := metrics.New()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/api/shipments/:id", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/metrics", m.Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/api/shipments/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `scm_http_requests_total{method="GET",route="/api/shipments/:id",status="200"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
