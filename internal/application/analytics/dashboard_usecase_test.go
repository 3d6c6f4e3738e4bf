package analytics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/scm-api/internal/application/analytics"
	"github.com/jhoicas/scm-api/internal/application/apptest"
	appplanning "github.com/jhoicas/scm-api/internal/application/planning"
	"github.com/jhoicas/scm-api/internal/domain"
	"github.com/jhoicas/scm-api/internal/domain/entity"
	"github.com/jhoicas/scm-api/internal/domain/planning"
	"github.com/jhoicas/scm-api/internal/domain/repository"
	"github.com/jhoicas/scm-api/pkg/config"
)

const companyID = "c1"

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ordenesCaidas y embarquesCaidos fallan al contar.
type ordenesCaidas struct{ apptest.PurchaseOrders }

func (ordenesCaidas) CountOpen(context.Context, string) (int, error) {
	return 0, errors.New(`relation "purchase_orders" does not exist`)
}

type embarquesCaidos struct{ apptest.Shipments }

func (embarquesCaidos) CountByStatus(context.Context, string, string) (int, error) {
	return 0, errors.New("dial tcp: i/o timeout")
}

func newDashboard(s *apptest.Store) *analytics.DashboardUseCase {
	return newDashboardWith(s, apptest.PurchaseOrders{S: s}, apptest.Shipments{S: s})
}

func newDashboardWith(s *apptest.Store, pos repository.PurchaseOrderRepository, ships repository.ShipmentRepository) *analytics.DashboardUseCase {
	cfg := config.PlanningConfig{HorizonWeeks: 12, MaxHorizonWeeks: 52, DemandLookbackWeeks: 8, LoadingBufferWeeks: 1, TransitWeeks: 5, InboundBufferWeeks: 2}
	proj := appplanning.NewProjectionUseCase(apptest.Products{S: s}, apptest.Stock{S: s}, s.Demand(), apptest.Supply{S: s}, cfg, nil, nil)
	proj.SetClock(func() time.Time { return time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC) })
	repl := appplanning.NewReplenishmentUseCase(proj, apptest.Products{S: s}, cfg, nil)
	return analytics.NewDashboardUseCase(proj, repl, pos, ships, nil)
}

func addProduct(t *testing.T, s *apptest.Store, id, sku, onHand, weekly string) {
	t.Helper()
	s.AddProduct(&entity.Product{ID: id, CompanyID: companyID, SKU: sku, Active: true, SafetyStockWeeks: dec("2"), ProductionLeadWeeks: 6})
	s.SetStock(id, "wh-1", dec(onHand))
	start := planning.Week{Year: 2026, Week: 43}
	for i := 0; i < 12; i++ {
		w := start.AddWeeks(i)
		require.NoError(t, s.Demand().UpsertForecast(context.Background(), &entity.WeeklyDemand{
			CompanyID: companyID, ProductID: id, Year: w.Year, Week: w.Week, ForecastQty: dec(weekly),
		}))
	}
}

func TestTablero_Resumen(t *testing.T) {
	s := apptest.NewStore()
	ctx := context.Background()
	addProduct(t, s, "p-ok", "OK", "10000", "10")
	addProduct(t, s, "p-risk", "RIESGO", "25", "10")
	addProduct(t, s, "p-out", "AGOTADO", "0", "10")

	require.NoError(t, apptest.PurchaseOrders{S: s}.Create(ctx, &entity.PurchaseOrder{ID: "po-1", CompanyID: companyID, Status: entity.POStatusConfirmed}))
	require.NoError(t, apptest.PurchaseOrders{S: s}.Create(ctx, &entity.PurchaseOrder{ID: "po-2", CompanyID: companyID, Status: entity.POStatusDraft}))
	require.NoError(t, apptest.Shipments{S: s}.Create(ctx, &entity.Shipment{ID: "s-1", CompanyID: companyID, Status: entity.ShipmentStatusInTransit}))

	out, err := newDashboard(s).GetSummary(ctx, companyID)
	require.NoError(t, err)

	assert.Equal(t, planning.Week{Year: 2026, Week: 43}, out.CurrentWeek)
	assert.Equal(t, "Semana 43 · Octubre 2026", out.WeekLabel)
	assert.Equal(t, 3, out.SKUsTotal)
	assert.Equal(t, 1, out.SKUsOK)
	assert.Equal(t, 1, out.SKUsRisk)
	assert.Equal(t, 1, out.SKUsStockout)
	assert.Equal(t, 1, out.OpenPurchaseOrders, "el borrador no cuenta")
	assert.Equal(t, 1, out.ShipmentsInTransit)

	require.Len(t, out.UpcomingStockouts, 2)
	assert.Equal(t, "AGOTADO", out.UpcomingStockouts[0].SKU)
	assert.Equal(t, 0, out.UpcomingStockouts[0].WeeksAway)
	assert.Equal(t, "RIESGO", out.UpcomingStockouts[1].SKU)
	assert.Equal(t, 2, out.UpcomingStockouts[1].WeeksAway)
	assert.Equal(t, 2, out.OverdueSuggestions)
}

func TestTablero_FuenteNoDisponible(t *testing.T) {
	s := apptest.NewStore()
	addProduct(t, s, "p-ok", "OK", "100", "10")
	s.FailStockReads = errors.New("conexión rechazada")

	_, err := newDashboard(s).GetSummary(context.Background(), companyID)
	assert.True(t, errors.Is(err, domain.ErrDataNotAvailable))
}

func TestTablero_ConteosNoDisponibles(t *testing.T) {
	s := apptest.NewStore()
	addProduct(t, s, "p-ok", "OK", "100", "10")
	ctx := context.Background()

	_, err := newDashboardWith(s, ordenesCaidas{apptest.PurchaseOrders{S: s}}, apptest.Shipments{S: s}).GetSummary(ctx, companyID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDataNotAvailable))
	assert.NotContains(t, err.Error(), "relation")

	_, err = newDashboardWith(s, apptest.PurchaseOrders{S: s}, embarquesCaidos{apptest.Shipments{S: s}}).GetSummary(ctx, companyID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDataNotAvailable))
}
