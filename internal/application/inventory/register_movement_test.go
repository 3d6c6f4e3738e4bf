package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/scm-api/internal/application/apptest"
	"github.com/jhoicas/scm-api/internal/application/inventory"
	"github.com/jhoicas/scm-api/internal/domain"
	"github.com/jhoicas/scm-api/internal/domain/entity"
)

const (
	companyID = "c1"
	whMain    = "wh-main"
	whThreePL = "wh-3pl"
	prodA     = "p-a"
	prodB     = "p-b"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func newStore() *apptest.Store {
	s := apptest.NewStore()
	s.AddWarehouse(&entity.Warehouse{ID: whMain, CompanyID: companyID, Code: "BOG"})
	s.AddWarehouse(&entity.Warehouse{ID: whThreePL, CompanyID: companyID, Code: "3PL"})
	s.AddWarehouse(&entity.Warehouse{ID: "wh-otra", CompanyID: "c2", Code: "X"})
	s.AddProduct(&entity.Product{ID: prodA, CompanyID: companyID, SKU: "CAM-AZUL", UnitCost: dec("100"), Active: true})
	s.AddProduct(&entity.Product{ID: prodB, CompanyID: companyID, SKU: "CAM-ROJA", UnitCost: dec("80"), Active: true})
	return s
}

func newMovementUC(s *apptest.Store) *inventory.RegisterMovementUseCase {
	return inventory.NewRegisterMovementUseCase(apptest.TxRunner{S: s}, apptest.Products{S: s}, apptest.Warehouses{S: s})
}

func TestEntrada_RecalculaCostoPromedio(t *testing.T) {
	s := newStore()
	s.SetStock(prodA, whMain, dec("10"))
	uc := newMovementUC(s)

	txID, err := uc.RegisterMovement(context.Background(), inventory.MovementInputDTO{
		CompanyID: companyID, ProductID: prodA, WarehouseID: whMain,
		Type: entity.MovementTypeIN, Quantity: dec("10"), UnitCost: decPtr("200"), Reference: "OC-0001",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, txID)

	assert.True(t, dec("20").Equal(s.StockOf(prodA, whMain)))
	assert.True(t, dec("150").Equal(s.Product(prodA).UnitCost), "promedio de 10@100 y 10@200")
	require.Len(t, s.Movements(), 1)
	m := s.Movements()[0]
	assert.Equal(t, "OC-0001", m.Reference)
	assert.Equal(t, txID, m.TransactionID)
	assert.True(t, dec("2000").Equal(m.TotalCost))
}

func TestEntrada_SinCostoEsInvalida(t *testing.T) {
	uc := newMovementUC(newStore())
	_, err := uc.RegisterMovement(context.Background(), inventory.MovementInputDTO{
		CompanyID: companyID, ProductID: prodA, WarehouseID: whMain,
		Type: entity.MovementTypeIN, Quantity: dec("5"),
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestSalida_StockInsuficienteNoModificaNada(t *testing.T) {
	s := newStore()
	s.SetStock(prodA, whMain, dec("5"))
	uc := newMovementUC(s)

	_, err := uc.RegisterMovement(context.Background(), inventory.MovementInputDTO{
		CompanyID: companyID, ProductID: prodA, WarehouseID: whMain,
		Type: entity.MovementTypeOUT, Quantity: dec("10"),
	})
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.True(t, dec("5").Equal(s.StockOf(prodA, whMain)))
	assert.Empty(t, s.Movements())
}

func TestSalida_UsaCostoVigente(t *testing.T) {
	s := newStore()
	s.SetStock(prodB, whMain, dec("30"))
	uc := newMovementUC(s)

	_, err := uc.RegisterMovement(context.Background(), inventory.MovementInputDTO{
		CompanyID: companyID, ProductID: prodB, WarehouseID: whMain,
		Type: entity.MovementTypeOUT, Quantity: dec("12"),
	})
	require.NoError(t, err)
	assert.True(t, dec("18").Equal(s.StockOf(prodB, whMain)))
	m := s.Movements()[0]
	assert.True(t, dec("-12").Equal(m.Quantity))
	assert.True(t, dec("-960").Equal(m.TotalCost))
}

func TestTraslado_DosRegistrosMismaTransaccion(t *testing.T) {
	s := newStore()
	s.SetStock(prodA, whMain, dec("40"))
	uc := newMovementUC(s)

	txID, err := uc.RegisterMovement(context.Background(), inventory.MovementInputDTO{
		CompanyID: companyID, ProductID: prodA, FromWarehouseID: whMain, ToWarehouseID: whThreePL,
		Type: entity.MovementTypeTRANSFER, Quantity: dec("15"),
	})
	require.NoError(t, err)
	assert.True(t, dec("25").Equal(s.StockOf(prodA, whMain)))
	assert.True(t, dec("15").Equal(s.StockOf(prodA, whThreePL)))
	require.Len(t, s.Movements(), 2)
	for _, m := range s.Movements() {
		assert.Equal(t, txID, m.TransactionID)
	}
}

func TestTraslado_MismaBodegaEsInvalido(t *testing.T) {
	uc := newMovementUC(newStore())
	_, err := uc.RegisterMovement(context.Background(), inventory.MovementInputDTO{
		CompanyID: companyID, ProductID: prodA, FromWarehouseID: whMain, ToWarehouseID: whMain,
		Type: entity.MovementTypeTRANSFER, Quantity: dec("1"),
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestMovimiento_BodegaDeOtraEmpresa(t *testing.T) {
	uc := newMovementUC(newStore())
	_, err := uc.RegisterMovement(context.Background(), inventory.MovementInputDTO{
		CompanyID: companyID, ProductID: prodA, WarehouseID: "wh-otra",
		Type: entity.MovementTypeIN, Quantity: dec("1"), UnitCost: decPtr("1"),
	})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestAjusteNegativo_NoDejaStockNegativo(t *testing.T) {
	s := newStore()
	s.SetStock(prodA, whMain, dec("3"))
	uc := newMovementUC(s)

	_, err := uc.RegisterMovement(context.Background(), inventory.MovementInputDTO{
		CompanyID: companyID, ProductID: prodA, WarehouseID: whMain,
		Type: entity.MovementTypeADJUSTMENT, Quantity: dec("-4"),
	})
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
}
