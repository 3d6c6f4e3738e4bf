package main

import (
	"fmt"
	"io"
	"strings"
)

// WriteSQL escribe el script en una sola transacción; cada INSERT es idempotente (ON CONFLICT).
func WriteSQL(w io.Writer, c *Catalog) error {
	companyID := c.CompanyID()
	var b strings.Builder

	b.WriteString("-- Catálogo de ejemplo generado por cmd/seed\n")
	b.WriteString("BEGIN;\n\n")

	fmt.Fprintf(&b, "INSERT INTO companies (id, name, tax_id, address, email)\nVALUES ('%s', '%s', '%s', '%s', '%s')\n",
		companyID, escapeSQL(c.Company.Name), escapeSQL(c.Company.TaxID), escapeSQL(c.Company.Address), escapeSQL(c.Company.Email))
	b.WriteString("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, address = EXCLUDED.address, email = EXCLUDED.email;\n\n")

	for _, m := range c.Modules {
		fmt.Fprintf(&b, "INSERT INTO company_modules (id, company_id, module_name, is_active) VALUES ('%s', '%s', '%s', true)\n",
			c.stableID("module", m), companyID, m)
		b.WriteString("ON CONFLICT (company_id, module_name) DO UPDATE SET is_active = true, updated_at = now();\n")
	}
	b.WriteString("\n")

	for _, wh := range c.Warehouses {
		fmt.Fprintf(&b, "INSERT INTO warehouses (id, company_id, code, name, address) VALUES ('%s', '%s', '%s', '%s', '%s')\n",
			c.stableID("warehouse", wh.Code), companyID, escapeSQL(wh.Code), escapeSQL(wh.Name), escapeSQL(wh.Address))
		b.WriteString("ON CONFLICT (company_id, code) DO UPDATE SET name = EXCLUDED.name, address = EXCLUDED.address;\n")
	}
	b.WriteString("\n")

	for _, p := range c.Products {
		productID := c.stableID("product", p.SKU)
		fmt.Fprintf(&b, "INSERT INTO products (id, company_id, sku, name, variant, unit_cost, production_lead_weeks, safety_stock_weeks, order_multiple)\n")
		fmt.Fprintf(&b, "VALUES ('%s', '%s', '%s', '%s', '%s', %s, %d, %s, %s)\n",
			productID, companyID, escapeSQL(p.SKU), escapeSQL(p.Name), escapeSQL(p.Variant),
			p.UnitCost.String(), p.ProductionLeadWeeks, p.SafetyStockWeeks.String(), p.OrderMultiple.String())
		b.WriteString("ON CONFLICT (company_id, sku) DO UPDATE SET name = EXCLUDED.name, variant = EXCLUDED.variant,\n")
		b.WriteString("  unit_cost = EXCLUDED.unit_cost, production_lead_weeks = EXCLUDED.production_lead_weeks,\n")
		b.WriteString("  safety_stock_weeks = EXCLUDED.safety_stock_weeks, order_multiple = EXCLUDED.order_multiple;\n")

		if len(p.Forecast) == 0 {
			continue
		}
		b.WriteString("INSERT INTO weekly_demand (company_id, product_id, iso_year, iso_week, forecast_qty) VALUES\n")
		for i, f := range p.Forecast {
			sep := ","
			if i == len(p.Forecast)-1 {
				sep = ""
			}
			fmt.Fprintf(&b, "  ('%s', '%s', %d, %d, %s)%s\n", companyID, productID, f.Week.Year, f.Week.Week, f.Qty.String(), sep)
		}
		b.WriteString("ON CONFLICT (product_id, iso_year, iso_week) DO UPDATE SET forecast_qty = EXCLUDED.forecast_qty, updated_at = now();\n")
	}

	b.WriteString("\nCOMMIT;\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
