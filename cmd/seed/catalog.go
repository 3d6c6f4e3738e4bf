package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/jhoicas/scm-api/internal/domain/entity"
	"github.com/jhoicas/scm-api/internal/domain/planning"
)

// Catalog contenido del archivo YAML.
type Catalog struct {
	Company struct {
		Name    string `yaml:"name"`
		TaxID   string `yaml:"tax_id"`
		Address string `yaml:"address"`
		Email   string `yaml:"email"`
	} `yaml:"company"`
	Modules    []string           `yaml:"modules"`
	Warehouses []CatalogWarehouse `yaml:"warehouses"`
	Products   []CatalogProduct   `yaml:"products"`
}

type CatalogWarehouse struct {
	Code    string `yaml:"code"`
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
}

type CatalogProduct struct {
	SKU                 string          `yaml:"sku"`
	Name                string          `yaml:"name"`
	Variant             string          `yaml:"variant"`
	UnitCost            decimal.Decimal `yaml:"unit_cost"`
	ProductionLeadWeeks int             `yaml:"production_lead_weeks"`
	SafetyStockWeeks    decimal.Decimal `yaml:"safety_stock_weeks"`
	OrderMultiple       decimal.Decimal `yaml:"order_multiple"`
	Forecast            []CatalogWeek   `yaml:"forecast"`
}

// CatalogWeek pronóstico de una semana ISO ("2026-W43").
type CatalogWeek struct {
	Week planning.Week   `yaml:"week"`
	Qty  decimal.Decimal `yaml:"qty"`
}

var knownModules = map[string]bool{
	entity.ModuleInventory:  true,
	entity.ModulePurchasing: true,
	entity.ModuleLogistics:  true,
	entity.ModulePlanning:   true,
}

// ParseCatalog decodifica y valida el catálogo. Sin módulos se activan los cuatro.
func ParseCatalog(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	if strings.TrimSpace(c.Company.Name) == "" || strings.TrimSpace(c.Company.TaxID) == "" {
		return nil, fmt.Errorf("company.name y company.tax_id son obligatorios")
	}
	if len(c.Modules) == 0 {
		c.Modules = []string{entity.ModuleInventory, entity.ModulePurchasing, entity.ModuleLogistics, entity.ModulePlanning}
	}
	for _, m := range c.Modules {
		if !knownModules[m] {
			return nil, fmt.Errorf("módulo desconocido %q", m)
		}
	}

	codes := make(map[string]bool, len(c.Warehouses))
	for _, w := range c.Warehouses {
		if w.Code == "" || w.Name == "" {
			return nil, fmt.Errorf("bodega sin code o name")
		}
		if codes[w.Code] {
			return nil, fmt.Errorf("bodega %s duplicada", w.Code)
		}
		codes[w.Code] = true
	}

	skus := make(map[string]bool, len(c.Products))
	for _, p := range c.Products {
		if p.SKU == "" || p.Name == "" {
			return nil, fmt.Errorf("producto sin sku o name")
		}
		if skus[p.SKU] {
			return nil, fmt.Errorf("sku %s duplicado", p.SKU)
		}
		skus[p.SKU] = true
		if p.UnitCost.IsNegative() || p.SafetyStockWeeks.IsNegative() || p.OrderMultiple.IsNegative() || p.ProductionLeadWeeks < 0 {
			return nil, fmt.Errorf("sku %s: parámetros negativos", p.SKU)
		}
		for _, f := range p.Forecast {
			if f.Week.IsZero() {
				return nil, fmt.Errorf("sku %s: pronóstico sin semana", p.SKU)
			}
			if f.Qty.IsNegative() {
				return nil, fmt.Errorf("sku %s %s: pronóstico negativo", p.SKU, f.Week)
			}
		}
	}
	return &c, nil
}

// stableID deriva un UUID v5 del RUT de la empresa y la clave del registro.
func (c *Catalog) stableID(kind, key string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("scm:"+c.Company.TaxID+":"+kind+":"+key)).String()
}

func (c *Catalog) CompanyID() string { return c.stableID("company", "") }
