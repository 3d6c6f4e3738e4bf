// Package ports define contratos hacia servicios externos que consume la capa de aplicación.
package ports

import (
	"context"
	"time"
)

// Tipos de evento de dominio publicados por procurement y logistics.
const (
	EventPOCreated          = "purchase_order.created"
	EventPOStatusChanged    = "purchase_order.status_changed"
	EventDeliveryRecorded   = "purchase_order.delivery_recorded"
	EventShipmentCreated    = "shipment.created"
	EventShipmentDeparted   = "shipment.departed"
	EventShipmentArrived    = "shipment.arrived"
	EventInventoryReconcile = "inventory.reconciled"
)

// Event evento de dominio. Subject es el ID del agregado (OC, embarque, bodega) y se usa
// como clave de partición.
type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	CompanyID  string         `json:"company_id"`
	Subject    string         `json:"subject"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data,omitempty"`
}

// EventPublisher publica eventos de dominio. Un fallo al publicar no revierte la operación
// que lo originó; el caso de uso solo lo registra.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
