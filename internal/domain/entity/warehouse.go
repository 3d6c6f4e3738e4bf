package entity

import "time"

// Warehouse representa una bodega propia o de un operador logístico (3PL).
type Warehouse struct {
	ID        string
	CompanyID string
	Code      string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
