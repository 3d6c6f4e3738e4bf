package planning

import "github.com/shopspring/decimal"

// StockStatus clasificación de riesgo del saldo proyectado de una semana.
type StockStatus string

const (
	StatusOK       StockStatus = "OK"
	StatusRisk     StockStatus = "Risk"
	StatusStockout StockStatus = "Stockout"
)

// Severity ordena los estados: mayor número, más grave.
func (s StockStatus) Severity() int {
	switch s {
	case StatusStockout:
		return 2
	case StatusRisk:
		return 1
	default:
		return 0
	}
}

// ClassifyStock clasifica un saldo contra el umbral de stock de seguridad:
// saldo <= 0 → Stockout; saldo < umbral → Risk; en otro caso OK.
// Para un umbral fijo la gravedad nunca disminuye al bajar el saldo.
func ClassifyStock(balance, threshold decimal.Decimal) StockStatus {
	switch {
	case balance.LessThanOrEqual(decimal.Zero):
		return StatusStockout
	case balance.LessThan(threshold):
		return StatusRisk
	default:
		return StatusOK
	}
}

// SafetyThreshold = semanas de stock de seguridad × demanda semanal promedio (nunca negativo).
func SafetyThreshold(safetyWeeks, avgWeeklyDemand decimal.Decimal) decimal.Decimal {
	t := safetyWeeks.Mul(avgWeeklyDemand)
	if t.IsNegative() {
		return decimal.Zero
	}
	return t
}

// AverageWeeklyDemand promedio simple de la serie; cero si está vacía.
func AverageWeeklyDemand(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	return decimal.Sum(decimal.Zero, values...).Div(decimal.NewFromInt(int64(len(values))))
}
