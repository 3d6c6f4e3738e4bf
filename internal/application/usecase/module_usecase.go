package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/scm-api/internal/application/dto"
	"github.com/jhoicas/scm-api/internal/domain"
	"github.com/jhoicas/scm-api/internal/domain/entity"
	"github.com/jhoicas/scm-api/internal/domain/repository"
)

// ModuleService verifica y administra qué módulos tiene activos una empresa
// (inventory, purchasing, logistics, planning).
type ModuleService struct {
	companyRepo repository.CompanyRepository
}

// NewModuleService construye el servicio de módulos.
func NewModuleService(companyRepo repository.CompanyRepository) *ModuleService {
	return &ModuleService{companyRepo: companyRepo}
}

// HasActiveModule informa si la empresa tiene el módulo activo y sin vencer.
// Devuelve false (sin error) si la empresa no tiene el módulo contratado.
// Devuelve error solo ante fallos de infraestructura (DB caída, timeout, etc.).
func (s *ModuleService) HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error) {
	if companyID == "" || moduleName == "" {
		return false, fmt.Errorf("module: companyID y moduleName son obligatorios")
	}
	return s.companyRepo.HasActiveModule(ctx, companyID, moduleName)
}

// List módulos registrados para la empresa.
func (s *ModuleService) List(ctx context.Context, companyID string) ([]dto.ModuleResponse, error) {
	mods, err := s.companyRepo.ListModules(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ModuleResponse, 0, len(mods))
	for _, m := range mods {
		out = append(out, dto.ModuleResponse{
			Module:      m.ModuleName,
			Active:      m.IsActive,
			ActivatedAt: m.ActivatedAt,
			ExpiresAt:   m.ExpiresAt,
		})
	}
	return out, nil
}

// Set activa o desactiva un módulo.
func (s *ModuleService) Set(ctx context.Context, companyID string, in dto.SetModuleRequest) (*dto.ModuleResponse, error) {
	switch in.Module {
	case entity.ModuleInventory, entity.ModulePurchasing, entity.ModuleLogistics, entity.ModulePlanning:
	default:
		return nil, fmt.Errorf("%w: módulo desconocido %q", domain.ErrInvalidInput, in.Module)
	}
	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	now := time.Now()
	m := &entity.CompanyModule{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		ModuleName:  in.Module,
		IsActive:    in.Active,
		ActivatedAt: now,
		ExpiresAt:   in.ExpiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.companyRepo.UpsertModule(ctx, m); err != nil {
		return nil, err
	}
	return &dto.ModuleResponse{Module: m.ModuleName, Active: m.IsActive, ActivatedAt: m.ActivatedAt, ExpiresAt: m.ExpiresAt}, nil
}
