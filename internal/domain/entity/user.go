package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin     = "admin"
	RolePlanner   = "planner"
	RoleBuyer     = "buyer"
	RoleWarehouse = "warehouse"
)

// User representa un usuario del sistema (pertenece a una Company).
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string // bcrypt hash
	Name         string
	Role         string // admin, planner, buyer, warehouse
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
