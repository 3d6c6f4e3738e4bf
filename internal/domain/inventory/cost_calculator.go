// Package inventory contiene reglas de dominio del inventario físico.
package inventory

import "github.com/shopspring/decimal"

// WeightedAverageCost recalcula el costo unitario de un SKU al recibir mercancía:
//
//	nuevo = (existencia × costoActual + entrada × costoEntrada) / (existencia + entrada)
//
// Con existencia negativa o nula el costo pasa a ser el de la entrada.
func WeightedAverageCost(onHand, currentCost, inQty, inCost decimal.Decimal) decimal.Decimal {
	if onHand.LessThanOrEqual(decimal.Zero) {
		return inCost
	}
	total := onHand.Add(inQty)
	if total.LessThanOrEqual(decimal.Zero) {
		return currentCost
	}
	return onHand.Mul(currentCost).Add(inQty.Mul(inCost)).Div(total).Round(4)
}

// VarianceValue valoriza una diferencia de conteo al costo unitario vigente.
func VarianceValue(variance, unitCost decimal.Decimal) decimal.Decimal {
	return variance.Mul(unitCost).Round(2)
}
