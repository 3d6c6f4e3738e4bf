package planning_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/scm-api/internal/domain"
	"github.com/jhoicas/scm-api/internal/domain/planning"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func dp(v int64) *decimal.Decimal {
	x := decimal.NewFromInt(v)
	return &x
}

func forecastSeries(start planning.Week, weeks int, qty int64) []planning.WeekDemand {
	out := make([]planning.WeekDemand, 0, weeks)
	for i := 0; i < weeks; i++ {
		out = append(out, planning.WeekDemand{Week: start.AddWeeks(i), Forecast: d(qty)})
	}
	return out
}

func closings(p *planning.Projection) []string {
	out := make([]string, 0, len(p.Rows))
	for _, r := range p.Rows {
		out = append(out, r.ClosingBalance.String())
	}
	return out
}

func statuses(p *planning.Projection) []planning.StockStatus {
	out := make([]planning.StockStatus, 0, len(p.Rows))
	for _, r := range p.Rows {
		out = append(out, r.Status)
	}
	return out
}

// Saldo 100, pronóstico 30 por semana y sin entradas durante 4 semanas.
func TestProject_EjemploSinOferta(t *testing.T) {
	start := wk(2026, 10)
	p, err := planning.Project(planning.ProjectionInput{
		SKU:             "SKU-RED",
		Start:           start,
		Horizon:         4,
		OpeningBalance:  d(100),
		Demand:          forecastSeries(start, 4, 30),
		SafetyThreshold: planning.SafetyThreshold(d(1), d(30)),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"70", "40", "10", "-20"}, closings(p))
	assert.Equal(t, []planning.StockStatus{
		planning.StatusOK, planning.StatusOK, planning.StatusRisk, planning.StatusStockout,
	}, statuses(p))
	require.NotNil(t, p.FirstStockout())
	assert.Equal(t, wk(2026, 13), p.FirstStockout().Week)
	assert.Equal(t, wk(2026, 12), p.FirstAtRisk().Week)
	assert.Equal(t, planning.StatusStockout, p.WorstStatus())
}

func TestProject_AperturaEsCierreAnterior(t *testing.T) {
	start := wk(2026, 50)
	planned := wk(2027, 2).Start().AddDate(0, 0, 2)
	p, err := planning.Project(planning.ProjectionInput{
		SKU:            "SKU-BLUE",
		Start:          start,
		Horizon:        10,
		OpeningBalance: d(40),
		Demand: []planning.WeekDemand{
			{Week: start, Forecast: d(25), Actual: dp(31)},
			{Week: start.AddWeeks(1), Forecast: d(25)},
			{Week: start.AddWeeks(3), Forecast: d(12)},
			{Week: start.AddWeeks(6), Forecast: d(60)},
		},
		Supply: []planning.SupplyEvent{
			{Source: planning.SupplyShipment, Reference: "SHP-1", Quantity: d(80), PlannedDate: planned},
			{Source: planning.SupplyPurchaseOrder, Reference: "PO-7", Quantity: d(15), PlannedDate: start.AddWeeks(5).Start()},
		},
		SafetyThreshold: d(20),
	})
	require.NoError(t, err)
	require.Len(t, p.Rows, 10)

	assert.True(t, p.Rows[0].OpeningBalance.Equal(d(40)))
	for n := 1; n < len(p.Rows); n++ {
		assert.True(t, p.Rows[n].OpeningBalance.Equal(p.Rows[n-1].ClosingBalance),
			"semana %s debe abrir con el cierre de %s", p.Rows[n].Week, p.Rows[n-1].Week)
	}
	for _, r := range p.Rows {
		assert.True(t, r.ClosingBalance.Equal(r.OpeningBalance.Add(r.Incoming).Sub(r.Demand)))
	}
	// 2026-W50 + 5 semanas cruza la semana 53 de 2026.
	assert.Equal(t, wk(2027, 2), p.Rows[5].Week)
	assert.True(t, p.Rows[5].Incoming.Equal(d(95)), "embarque y OC llegan en 2027-W02")
}

func TestProject_DoblePistaUsaRealSobrePronostico(t *testing.T) {
	start := wk(2026, 20)
	p, err := planning.Project(planning.ProjectionInput{
		SKU:            "SKU-1",
		Start:          start,
		Horizon:        3,
		OpeningBalance: d(100),
		Demand: []planning.WeekDemand{
			{Week: start, Forecast: d(50), Actual: dp(0)},
			{Week: start.AddWeeks(1), Forecast: d(50), Actual: dp(70)},
			{Week: start.AddWeeks(2), Forecast: d(10)},
		},
	})
	require.NoError(t, err)

	assert.True(t, p.Rows[0].Demand.IsZero(), "venta real 0 reemplaza al pronóstico de 50")
	assert.Equal(t, planning.DemandActual, p.Rows[0].DemandSource)
	assert.True(t, p.Rows[1].Demand.Equal(d(70)))
	assert.Equal(t, planning.DemandActual, p.Rows[1].DemandSource)
	assert.True(t, p.Rows[2].Demand.Equal(d(10)))
	assert.Equal(t, planning.DemandForecast, p.Rows[2].DemandSource)
}

func TestProject_SemanaSinDemanda(t *testing.T) {
	p, err := planning.Project(planning.ProjectionInput{
		SKU: "SKU-1", Start: wk(2026, 1), Horizon: 2, OpeningBalance: d(5),
	})
	require.NoError(t, err)
	assert.Equal(t, planning.DemandNone, p.Rows[0].DemandSource)
	assert.True(t, p.Rows[1].ClosingBalance.Equal(d(5)))
}

func TestProject_OfertaPorSemanaDestino(t *testing.T) {
	start := wk(2026, 30)
	actual := start.AddWeeks(3).Start().AddDate(0, 0, 4)
	produced := start.Start().AddDate(0, 0, -3) // semana anterior al inicio

	p, err := planning.Project(planning.ProjectionInput{
		SKU:            "SKU-1",
		Start:          start,
		Horizon:        6,
		OpeningBalance: d(0),
		Supply: []planning.SupplyEvent{
			// la fecha real tiene precedencia sobre la planeada
			{Source: planning.SupplyShipment, Reference: "SHP-late", Quantity: d(10), PlannedDate: start.AddWeeks(1).Start(), ActualDate: &actual},
			// entrega de fábrica de la semana pasada que aún debe viajar 4 semanas
			{Source: planning.SupplyProduction, Reference: "DLV-1", Quantity: d(7), PlannedDate: produced, OffsetWeeks: 4},
			// vencida y sin llegar: se reporta, no se suma
			{Source: planning.SupplyPurchaseOrder, Reference: "PO-old", Quantity: d(5), PlannedDate: start.AddWeeks(-2).Start()},
			// fuera del horizonte
			{Source: planning.SupplyPurchaseOrder, Reference: "PO-far", Quantity: d(100), PlannedDate: start.AddWeeks(6).Start()},
			{Source: planning.SupplyPurchaseOrder, Reference: "PO-zero", Quantity: d(0), PlannedDate: start.Start()},
		},
	})
	require.NoError(t, err)

	assert.True(t, p.Rows[1].Incoming.IsZero())
	assert.True(t, p.Rows[3].Incoming.Equal(d(17)), "SHP-late (real) y DLV-1 (+4) caen en la semana 3")
	require.Len(t, p.PastDueSupply, 1)
	assert.Equal(t, "PO-old", p.PastDueSupply[0].Reference)
	assert.True(t, p.PastDueQty.Equal(d(5)))
	assert.True(t, p.Rows[5].ClosingBalance.Equal(d(17)), "PO-far no entra en la ventana")
}

func TestProject_Errores(t *testing.T) {
	start := wk(2026, 5)

	_, err := planning.Project(planning.ProjectionInput{SKU: "X", Start: start, Horizon: 0})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = planning.Project(planning.ProjectionInput{SKU: "X", Start: wk(2025, 53), Horizon: 4})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = planning.Project(planning.ProjectionInput{
		SKU: "X", Start: start, Horizon: 4,
		Demand: []planning.WeekDemand{{Week: start, Forecast: d(1)}, {Week: start, Forecast: d(2)}},
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "demanda duplicada")

	_, err = planning.Project(planning.ProjectionInput{
		SKU: "X", Start: start, Horizon: 4,
		Supply: []planning.SupplyEvent{{Reference: "neg", Quantity: d(-3), PlannedDate: time.Now()}},
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "oferta negativa")
}

func TestClassifyStock_MonotonoEnSaldo(t *testing.T) {
	threshold := d(40)
	prev := planning.ClassifyStock(d(-100), threshold)
	assert.Equal(t, planning.StatusStockout, prev)
	for b := int64(-99); b <= 150; b++ {
		cur := planning.ClassifyStock(d(b), threshold)
		assert.LessOrEqual(t, cur.Severity(), prev.Severity(), "saldo %d no puede ser más grave que %d", b, b-1)
		prev = cur
	}
	assert.Equal(t, planning.StatusStockout, planning.ClassifyStock(d(0), threshold))
	assert.Equal(t, planning.StatusRisk, planning.ClassifyStock(d(39), threshold))
	assert.Equal(t, planning.StatusOK, planning.ClassifyStock(d(40), threshold))
	assert.Equal(t, planning.StatusOK, planning.ClassifyStock(d(1), decimal.Zero), "sin umbral no hay Risk")
}

func TestSafetyThresholdYPromedio(t *testing.T) {
	avg := planning.AverageWeeklyDemand([]decimal.Decimal{d(10), d(20), d(30), d(40)})
	assert.True(t, avg.Equal(d(25)))
	assert.True(t, planning.AverageWeeklyDemand(nil).IsZero())
	assert.True(t, planning.SafetyThreshold(decimal.NewFromFloat(1.5), avg).Equal(decimal.NewFromFloat(37.5)))
	assert.True(t, planning.SafetyThreshold(d(-1), avg).IsZero())
}
