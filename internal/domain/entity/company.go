package entity

import "time"

// Company representa una organización/tenant del sistema (multi-tenant).
type Company struct {
	ID        string
	Name      string
	TaxID     string
	Address   string
	Phone     string
	Email     string
	Status    string // active, suspended, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Módulos disponibles (deben coincidir con el CHECK de la tabla company_modules).
const (
	ModuleInventory  = "inventory"
	ModulePurchasing = "purchasing"
	ModuleLogistics  = "logistics"
	ModulePlanning   = "planning"
)

// CompanyModule representa la activación de un módulo en una empresa.
type CompanyModule struct {
	ID          string
	CompanyID   string
	ModuleName  string // ver constantes Module*
	IsActive    bool
	ActivatedAt time.Time
	ExpiresAt   *time.Time // nil = sin vencimiento
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
