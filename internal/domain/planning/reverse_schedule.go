package planning

import (
	"fmt"
	"time"

	"github.com/jhoicas/scm-api/internal/domain"
)

// LeadTimes cadena de tiempos de entrega, en semanas, desde el pedido hasta la disponibilidad:
// producción → carga → tránsito → recepción en bodega.
type LeadTimes struct {
	ProductionWeeks    int `json:"production_weeks"`
	LoadingBufferWeeks int `json:"loading_buffer_weeks"`
	TransitWeeks       int `json:"transit_weeks"`
	InboundBufferWeeks int `json:"inbound_buffer_weeks"`
}

// Total suma de todos los desplazamientos.
func (l LeadTimes) Total() int {
	return l.ProductionWeeks + l.LoadingBufferWeeks + l.TransitWeeks + l.InboundBufferWeeks
}

// Validate rechaza desplazamientos negativos.
func (l LeadTimes) Validate() error {
	if l.ProductionWeeks < 0 || l.LoadingBufferWeeks < 0 || l.TransitWeeks < 0 || l.InboundBufferWeeks < 0 {
		return fmt.Errorf("%w: los tiempos de entrega no pueden ser negativos", domain.ErrInvalidInput)
	}
	return nil
}

// Urgency estado de una sugerencia respecto a la semana actual.
type Urgency string

const (
	UrgencyOnTrack  Urgency = "on_track"  // la semana de pedido aún no llega
	UrgencyOrderNow Urgency = "order_now" // hay que pedir esta semana
	UrgencyOverdue  Urgency = "overdue"   // la semana de pedido ya pasó: crítico
)

// Schedule resultado de la programación inversa. Las fechas son el lunes de cada semana.
type Schedule struct {
	TargetWeek   Week      `json:"target_week"`  // stock disponible para venta
	ArrivalWeek  Week      `json:"arrival_week"` // llegada a bodega (antes de recepción)
	ShipWeek     Week      `json:"ship_week"`    // zarpe / despacho
	ReadyWeek    Week      `json:"ready_week"`   // entrega de fábrica
	OrderWeek    Week      `json:"order_week"`   // emisión de la OC
	OrderDate    time.Time `json:"order_date"`
	ReadyDate    time.Time `json:"ready_date"`
	ShipDate     time.Time `json:"ship_date"`
	ArrivalDate  time.Time `json:"arrival_date"`
	Urgency      Urgency   `json:"urgency"`
	OverdueWeeks int       `json:"overdue_weeks"`
	// EarliestTarget primera semana alcanzable si se pide en la semana actual (solo si overdue).
	EarliestTarget *Week `json:"earliest_target,omitempty"`
}

// ReverseSchedule resta los desplazamientos a la semana objetivo para obtener las semanas de
// recepción, zarpe, entrega de fábrica y pedido. Si la semana de pedido ya pasó respecto a
// current, la sugerencia se marca overdue (no se recorta a la semana actual).
func ReverseSchedule(target Week, lt LeadTimes, current Week) (Schedule, error) {
	if err := target.Validate(); err != nil {
		return Schedule{}, err
	}
	if err := current.Validate(); err != nil {
		return Schedule{}, err
	}
	if err := lt.Validate(); err != nil {
		return Schedule{}, err
	}

	arrival := target.AddWeeks(-lt.InboundBufferWeeks)
	ship := arrival.AddWeeks(-lt.TransitWeeks)
	ready := ship.AddWeeks(-lt.LoadingBufferWeeks)
	order := ready.AddWeeks(-lt.ProductionWeeks)

	s := Schedule{
		TargetWeek:  target,
		ArrivalWeek: arrival,
		ShipWeek:    ship,
		ReadyWeek:   ready,
		OrderWeek:   order,
		OrderDate:   order.Start(),
		ReadyDate:   ready.Start(),
		ShipDate:    ship.Start(),
		ArrivalDate: arrival.Start(),
	}

	switch diff := order.WeeksUntil(current); {
	case diff > 0:
		s.Urgency = UrgencyOverdue
		s.OverdueWeeks = diff
		earliest := ForwardSchedule(current, lt)
		s.EarliestTarget = &earliest
	case diff == 0:
		s.Urgency = UrgencyOrderNow
	default:
		s.Urgency = UrgencyOnTrack
	}
	return s, nil
}

// ForwardSchedule semana de disponibilidad si se pide en orderWeek.
func ForwardSchedule(orderWeek Week, lt LeadTimes) Week {
	return orderWeek.AddWeeks(lt.Total())
}
