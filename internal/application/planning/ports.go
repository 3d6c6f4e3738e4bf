// Package planning casos de uso del motor de proyección de inventario y de sugerencias de reposición.
// El cálculo es síncrono por solicitud; cada SKU se proyecta de forma independiente.
package planning

import "github.com/jhoicas/scm-api/internal/domain/planning"

// Metrics contadores del motor de planeación (implementación Prometheus en infrastructure/metrics).
type Metrics interface {
	ProjectionComputed(worst planning.StockStatus)
	StockoutWeeks(n int)
	SuggestionEmitted(urgency planning.Urgency)
}

type nopMetrics struct{}

func (nopMetrics) ProjectionComputed(planning.StockStatus) {}
func (nopMetrics) StockoutWeeks(int)                       {}
func (nopMetrics) SuggestionEmitted(planning.Urgency)      {}
