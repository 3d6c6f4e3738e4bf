package repository

import (
	"context"

	"github.com/jhoicas/scm-api/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para Company (DIP).
// La implementación vive en infrastructure.
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	GetByTaxID(ctx context.Context, taxID string) (*entity.Company, error)
	Update(ctx context.Context, company *entity.Company) error
	List(ctx context.Context, limit, offset int) ([]*entity.Company, error)

	// HasActiveModule indica si el módulo está activo y sin vencer para la empresa.
	HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error)
	ListModules(ctx context.Context, companyID string) ([]*entity.CompanyModule, error)
	UpsertModule(ctx context.Context, module *entity.CompanyModule) error
}
