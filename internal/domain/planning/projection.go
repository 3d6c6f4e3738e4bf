package planning

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/scm-api/internal/domain"
)

// DemandSource indica qué pista de la demanda se usó en una semana.
type DemandSource string

const (
	DemandActual   DemandSource = "actual"
	DemandForecast DemandSource = "forecast"
	DemandNone     DemandSource = "none"
)

// WeekDemand demanda de una semana: pronóstico y, si la semana cerró, venta real.
type WeekDemand struct {
	Week     Week
	Forecast decimal.Decimal
	Actual   *decimal.Decimal
}

// Effective aplica la doble pista: la venta real, si existe, reemplaza por completo al pronóstico.
func (d WeekDemand) Effective() (decimal.Decimal, DemandSource) {
	if d.Actual != nil {
		return *d.Actual, DemandActual
	}
	return d.Forecast, DemandForecast
}

// SupplySource origen de un evento de oferta.
type SupplySource string

const (
	SupplyPurchaseOrder SupplySource = "purchase_order"
	SupplyProduction    SupplySource = "production"
	SupplyShipment      SupplySource = "shipment"
)

// SupplyEvent cantidad abierta (aún no incluida en el saldo en bodega) que llegará en una semana.
// La semana destino es la de ActualDate si existe, si no la de PlannedDate, desplazada OffsetWeeks
// (las entregas de fábrica todavía deben cargar, viajar y recibirse).
type SupplyEvent struct {
	Source      SupplySource
	Reference   string
	Quantity    decimal.Decimal
	PlannedDate time.Time
	ActualDate  *time.Time
	OffsetWeeks int
}

// TargetWeek semana en la que el evento suma al saldo.
func (e SupplyEvent) TargetWeek() Week {
	d := e.PlannedDate
	if e.ActualDate != nil {
		d = *e.ActualDate
	}
	return WeekOf(d).AddWeeks(e.OffsetWeeks)
}

// ProjectionInput datos de un SKU para proyectar su saldo semana a semana.
type ProjectionInput struct {
	SKU             string
	Start           Week
	Horizon         int
	OpeningBalance  decimal.Decimal // existencia actual sumando todas las bodegas
	Demand          []WeekDemand
	Supply          []SupplyEvent
	SafetyThreshold decimal.Decimal
}

// ProjectionRow fila derivada (no persistida) de una semana.
type ProjectionRow struct {
	Week           Week            `json:"week"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Incoming       decimal.Decimal `json:"incoming"`
	Demand         decimal.Decimal `json:"demand"`
	DemandSource   DemandSource    `json:"demand_source"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	Status         StockStatus     `json:"status"`
}

// Projection traza completa de un SKU.
type Projection struct {
	SKU             string
	Start           Week
	SafetyThreshold decimal.Decimal
	Rows            []ProjectionRow
	// PastDueSupply oferta abierta cuya semana destino ya pasó: no se suma a ninguna semana.
	PastDueSupply []SupplyEvent
	PastDueQty    decimal.Decimal
}

// FirstStockout primera semana con saldo <= 0, o nil.
func (p *Projection) FirstStockout() *ProjectionRow {
	for i := range p.Rows {
		if p.Rows[i].Status == StatusStockout {
			return &p.Rows[i]
		}
	}
	return nil
}

// FirstAtRisk primera semana en Risk o Stockout, o nil.
func (p *Projection) FirstAtRisk() *ProjectionRow {
	for i := range p.Rows {
		if p.Rows[i].Status != StatusOK {
			return &p.Rows[i]
		}
	}
	return nil
}

// WorstStatus estado más grave de toda la ventana.
func (p *Projection) WorstStatus() StockStatus {
	worst := StatusOK
	for _, r := range p.Rows {
		if r.Status.Severity() > worst.Severity() {
			worst = r.Status
		}
	}
	return worst
}

// Project recorre las semanas en orden cronológico:
//
//	cierre = apertura + entradas − demanda
//
// y la apertura de cada semana es el cierre de la anterior. Cada fila solo usa datos de su
// propia semana y el cierre previo.
func Project(in ProjectionInput) (*Projection, error) {
	if err := in.Start.Validate(); err != nil {
		return nil, err
	}
	if in.Horizon < 1 {
		return nil, fmt.Errorf("%w: horizonte de proyección debe ser >= 1 (recibido %d)", domain.ErrInvalidInput, in.Horizon)
	}
	end := in.Start.AddWeeks(in.Horizon - 1)

	demand := make(map[Week]WeekDemand, len(in.Demand))
	for _, d := range in.Demand {
		if _, dup := demand[d.Week]; dup {
			return nil, fmt.Errorf("%w: demanda duplicada para %s en %s", domain.ErrInvalidInput, in.SKU, d.Week)
		}
		demand[d.Week] = d
	}

	threshold := in.SafetyThreshold
	if threshold.IsNegative() {
		threshold = decimal.Zero
	}

	out := &Projection{
		SKU:             in.SKU,
		Start:           in.Start,
		SafetyThreshold: threshold,
		Rows:            make([]ProjectionRow, 0, in.Horizon),
		PastDueQty:      decimal.Zero,
	}

	incoming := make(map[Week]decimal.Decimal)
	for _, ev := range in.Supply {
		if ev.Quantity.IsNegative() {
			return nil, fmt.Errorf("%w: oferta negativa en %s (%s)", domain.ErrInvalidInput, in.SKU, ev.Reference)
		}
		if ev.Quantity.IsZero() {
			continue
		}
		target := ev.TargetWeek()
		switch {
		case target.Before(in.Start):
			out.PastDueSupply = append(out.PastDueSupply, ev)
			out.PastDueQty = out.PastDueQty.Add(ev.Quantity)
		case target.After(end):
			// fuera del horizonte
		default:
			incoming[target] = incoming[target].Add(ev.Quantity)
		}
	}

	balance := in.OpeningBalance
	week := in.Start
	for i := 0; i < in.Horizon; i++ {
		qty, source := decimal.Zero, DemandNone
		if d, ok := demand[week]; ok {
			qty, source = d.Effective()
		}
		arriving := incoming[week]
		closing := balance.Add(arriving).Sub(qty)
		out.Rows = append(out.Rows, ProjectionRow{
			Week:           week,
			OpeningBalance: balance,
			Incoming:       arriving,
			Demand:         qty,
			DemandSource:   source,
			ClosingBalance: closing,
			Status:         ClassifyStock(closing, threshold),
		})
		balance = closing
		week = week.AddWeeks(1)
	}
	return out, nil
}
