package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const catalogoEjemplo = `
company:
  name: Textiles O'Neill
  tax_id: "900123456"
modules: [inventory, planning]
warehouses:
  - code: BOG
    name: Bodega Bogotá
products:
  - sku: CAM-AZUL-M
    name: Camiseta azul
    variant: M
    unit_cost: 12500
    production_lead_weeks: 4
    safety_stock_weeks: "1.5"
    order_multiple: 50
    forecast:
      - week: 2026-W52
        qty: 120
      - week: 2026-W53
        qty: 80
`

func TestParseCatalog_Valido(t *testing.T) {
	cat, err := ParseCatalog(strings.NewReader(catalogoEjemplo))
	require.NoError(t, err)

	require.Len(t, cat.Products, 1)
	p := cat.Products[0]
	assert.Equal(t, "12500", p.UnitCost.String())
	assert.Equal(t, "1.5", p.SafetyStockWeeks.String())
	require.Len(t, p.Forecast, 2)
	assert.Equal(t, 53, p.Forecast[1].Week.Week, "2026 tiene semana 53")
	assert.Equal(t, []string{"inventory", "planning"}, cat.Modules)
}

func TestParseCatalog_SinModulosActivaTodos(t *testing.T) {
	cat, err := ParseCatalog(strings.NewReader("company: {name: X, tax_id: '1'}\n"))
	require.NoError(t, err)
	assert.Len(t, cat.Modules, 4)
}

func TestParseCatalog_Errores(t *testing.T) {
	casos := map[string]string{
		"sin empresa":        "products: []\n",
		"módulo desconocido": "company: {name: X, tax_id: '1'}\nmodules: [billing]\n",
		"sku duplicado": `company: {name: X, tax_id: '1'}
products:
  - {sku: A, name: A}
  - {sku: A, name: B}
`,
		"semana inexistente": `company: {name: X, tax_id: '1'}
products:
  - sku: A
    name: A
    forecast: [{week: 2027-W53, qty: 1}]
`,
		"campo desconocido": "company: {name: X, tax_id: '1'}\ncolor: rojo\n",
		"costo negativo": `company: {name: X, tax_id: '1'}
products:
  - {sku: A, name: A, unit_cost: -1}
`,
	}
	for nombre, yml := range casos {
		t.Run(nombre, func(t *testing.T) {
			_, err := ParseCatalog(strings.NewReader(yml))
			assert.Error(t, err)
		})
	}
}

func TestWriteSQL_IdempotenteYEscapado(t *testing.T) {
	cat, err := ParseCatalog(strings.NewReader(catalogoEjemplo))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSQL(&buf, cat))
	sql := buf.String()

	assert.True(t, strings.HasPrefix(strings.TrimSpace(strings.SplitN(sql, "\n", 2)[1]), "BEGIN;"))
	assert.Contains(t, sql, "Textiles O''Neill", "las comillas simples se escapan")
	assert.Contains(t, sql, "ON CONFLICT (company_id, sku)")
	assert.Contains(t, sql, ", 2026, 53, 80)")
	assert.Equal(t, 2, strings.Count(sql, "INSERT INTO company_modules"))
	assert.True(t, strings.HasSuffix(sql, "COMMIT;\n"))

	// Mismo catálogo, mismos IDs.
	var otra bytes.Buffer
	require.NoError(t, WriteSQL(&otra, cat))
	assert.Equal(t, sql, otra.String())
	assert.Contains(t, sql, cat.CompanyID())
}

func TestParseCatalog_Latin1(t *testing.T) {
	latin1, err := charmap.ISO8859_1.NewEncoder().String("company: {name: Confecciones Ñandú, tax_id: '1'}\n")
	require.NoError(t, err)

	cat, err := ParseCatalog(transform.NewReader(strings.NewReader(latin1), charmap.ISO8859_1.NewDecoder()))
	require.NoError(t, err)
	assert.Equal(t, "Confecciones Ñandú", cat.Company.Name)
}
