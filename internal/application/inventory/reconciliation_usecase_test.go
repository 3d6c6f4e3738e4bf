package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/scm-api/internal/application/apptest"
	"github.com/jhoicas/scm-api/internal/application/dto"
	"github.com/jhoicas/scm-api/internal/application/inventory"
	"github.com/jhoicas/scm-api/internal/application/ports"
	"github.com/jhoicas/scm-api/internal/domain"
	"github.com/jhoicas/scm-api/internal/domain/entity"
)

func newReconciliation(s *apptest.Store, pub *apptest.Publisher) *inventory.ReconciliationUseCase {
	return inventory.NewReconciliationUseCase(
		newMovementUC(s), apptest.TxRunner{S: s},
		apptest.Products{S: s}, apptest.Warehouses{S: s}, apptest.Stock{S: s},
		pub, nil,
	)
}

func conteo() dto.ReconciliationRequest {
	return dto.ReconciliationRequest{
		WarehouseID: whMain,
		Reference:   "CONTEO-OCT",
		Lines: []dto.CountLine{
			{ProductID: prodA, CountedQty: dec("8")},
			{ProductID: prodB, CountedQty: dec("5")},
		},
	}
}

func TestConciliacion_VistaPreviaNoAjusta(t *testing.T) {
	s := newStore()
	s.SetStock(prodA, whMain, dec("10"))
	s.SetStock(prodB, whMain, dec("5"))
	pub := &apptest.Publisher{}

	out, err := newReconciliation(s, pub).Preview(context.Background(), companyID, conteo())
	require.NoError(t, err)

	require.Len(t, out.Lines, 2)
	assert.Equal(t, 1, out.LinesWithVariance)
	assert.True(t, dec("-2").Equal(out.Lines[0].Variance))
	assert.True(t, dec("-200").Equal(out.TotalVarianceValue))
	assert.False(t, out.Lines[0].Applied)
	assert.Empty(t, out.TransactionID)

	assert.True(t, dec("10").Equal(s.StockOf(prodA, whMain)), "la vista previa no toca el stock")
	assert.Empty(t, s.Movements())
	assert.Empty(t, pub.Events)
}

func TestConciliacion_AplicaAjustesYPublica(t *testing.T) {
	s := newStore()
	s.SetStock(prodA, whMain, dec("10"))
	s.SetStock(prodB, whMain, dec("5"))
	pub := &apptest.Publisher{}

	out, err := newReconciliation(s, pub).Apply(context.Background(), companyID, "u1", conteo())
	require.NoError(t, err)

	assert.NotEmpty(t, out.TransactionID)
	assert.True(t, out.Lines[0].Applied)
	assert.False(t, out.Lines[1].Applied, "sin diferencia no se registra ajuste")
	assert.True(t, dec("8").Equal(s.StockOf(prodA, whMain)))

	require.Len(t, s.Movements(), 1)
	m := s.Movements()[0]
	assert.Equal(t, entity.MovementTypeADJUSTMENT, m.Type)
	assert.Equal(t, "CONTEO-OCT", m.Reference)
	assert.Equal(t, out.TransactionID, m.TransactionID)

	assert.Equal(t, []string{ports.EventInventoryReconcile}, pub.Types())
	assert.Equal(t, whMain, pub.Events[0].Subject)
}

func TestConciliacion_SobranteConservaCosto(t *testing.T) {
	s := newStore()
	s.SetStock(prodA, whMain, dec("10"))

	req := dto.ReconciliationRequest{WarehouseID: whMain, Lines: []dto.CountLine{{ProductID: prodA, CountedQty: dec("13")}}}
	out, err := newReconciliation(s, &apptest.Publisher{}).Apply(context.Background(), companyID, "u1", req)
	require.NoError(t, err)

	assert.True(t, dec("300").Equal(out.TotalVarianceValue))
	assert.True(t, dec("13").Equal(s.StockOf(prodA, whMain)))
	assert.True(t, dec("100").Equal(s.Product(prodA).UnitCost))
}

func TestConciliacion_FalloDePublicacionNoRevierte(t *testing.T) {
	s := newStore()
	s.SetStock(prodA, whMain, dec("10"))
	pub := &apptest.Publisher{Err: errors.New("broker caído")}

	_, err := newReconciliation(s, pub).Apply(context.Background(), companyID, "u1", conteo())
	require.NoError(t, err)
	assert.True(t, dec("8").Equal(s.StockOf(prodA, whMain)))
}

func TestConciliacion_Validaciones(t *testing.T) {
	s := newStore()
	uc := newReconciliation(s, &apptest.Publisher{})
	ctx := context.Background()

	dup := conteo()
	dup.Lines = append(dup.Lines, dto.CountLine{ProductID: prodA, CountedQty: dec("1")})
	_, err := uc.Preview(ctx, companyID, dup)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "producto repetido")

	neg := conteo()
	neg.Lines[0].CountedQty = dec("-1")
	_, err = uc.Preview(ctx, companyID, neg)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "conteo negativo")

	ajena := conteo()
	ajena.WarehouseID = "wh-otra"
	_, err = uc.Apply(ctx, companyID, "u1", ajena)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	desconocido := conteo()
	desconocido.Lines[1].ProductID = "p-x"
	_, err = uc.Apply(ctx, companyID, "u1", desconocido)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Empty(t, s.Movements())
}
