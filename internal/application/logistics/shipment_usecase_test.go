package logistics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/scm-api/internal/application/apptest"
	"github.com/jhoicas/scm-api/internal/application/dto"
	"github.com/jhoicas/scm-api/internal/application/inventory"
	"github.com/jhoicas/scm-api/internal/application/logistics"
	"github.com/jhoicas/scm-api/internal/application/ports"
	"github.com/jhoicas/scm-api/internal/domain"
	"github.com/jhoicas/scm-api/internal/domain/entity"
	"github.com/jhoicas/scm-api/internal/domain/repository"
)

const (
	companyID = "c1"
	whMain    = "wh-main"
	prodA     = "p-a"
	delivery  = "d-1"
)

var (
	zarpe   = time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	llegada = time.Date(2026, 12, 7, 0, 0, 0, 0, time.UTC)
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store *apptest.Store
	pub   *apptest.Publisher
	uc    *logistics.ShipmentUseCase
}

func newFixture() fixture {
	s := apptest.NewStore()
	s.AddWarehouse(&entity.Warehouse{ID: whMain, CompanyID: companyID})
	s.AddProduct(&entity.Product{ID: prodA, CompanyID: companyID, SKU: "CAM-AZUL", UnitCost: dec("18000"), Active: true})
	ctx := context.Background()
	_ = apptest.Deliveries{S: s}.Create(ctx, &entity.ProductionDelivery{
		ID: delivery, CompanyID: companyID, ProductID: prodA, Quantity: dec("300"), ShippedQty: decimal.Zero,
		PlannedDate: zarpe,
	})
	pub := &apptest.Publisher{}
	tx := apptest.TxRunner{S: s}
	mov := inventory.NewRegisterMovementUseCase(tx, apptest.Products{S: s}, apptest.Warehouses{S: s})
	uc := logistics.NewShipmentUseCase(tx, mov, apptest.Shipments{S: s}, apptest.Deliveries{S: s},
		apptest.Products{S: s}, apptest.Warehouses{S: s}, pub, nil)
	return fixture{store: s, pub: pub, uc: uc}
}

// entregasDesactualizadas devuelve la entrega tal como estaba al leerla por primera vez,
// como lo vería una petición concurrente que leyó antes del commit de otra.
type entregasDesactualizadas struct {
	apptest.Deliveries
	vista entity.ProductionDelivery
}

func (e entregasDesactualizadas) GetByID(context.Context, string) (*entity.ProductionDelivery, error) {
	c := e.vista
	return &c, nil
}

func embarque(qty string) dto.CreateShipmentRequest {
	return dto.CreateShipmentRequest{
		TrackingNumber: "MSKU1234567", Carrier: "Maersk", WarehouseID: whMain,
		PlannedDeparture: zarpe, PlannedArrival: llegada,
		Lines: []dto.ShipmentLine{{ProductID: prodA, DeliveryID: delivery, Quantity: dec(qty)}},
	}
}

func TestCrearEmbarque_DescuentaEntrega(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	sh, err := f.uc.Create(ctx, companyID, "u1", embarque("200"))
	require.NoError(t, err)
	assert.Equal(t, entity.ShipmentStatusPlanned, sh.Status)

	supply := apptest.Supply{S: f.store}
	dels, _ := supply.ListOpenDeliveries(ctx, companyID, nil)
	require.Len(t, dels, 1)
	assert.True(t, dec("100").Equal(dels[0].Unshipped))
	inbound, _ := supply.ListInboundLines(ctx, companyID, nil)
	require.Len(t, inbound, 1)
	assert.True(t, dec("200").Equal(inbound[0].Quantity))
	assert.Equal(t, []string{ports.EventShipmentCreated}, f.pub.Types())
}

func TestCrearEmbarque_SuperaLoEntregado(t *testing.T) {
	f := newFixture()
	req := embarque("200")
	req.Lines = append(req.Lines, dto.ShipmentLine{ProductID: prodA, DeliveryID: delivery, Quantity: dec("150")})

	_, err := f.uc.Create(context.Background(), companyID, "u1", req)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "dos líneas suman más que la entrega")
}

func TestCrearEmbarque_FechasInvertidas(t *testing.T) {
	f := newFixture()
	req := embarque("10")
	req.PlannedArrival = zarpe.AddDate(0, 0, -1)
	_, err := f.uc.Create(context.Background(), companyID, "u1", req)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestZarpeYLlegada_IngresaInventario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sh, err := f.uc.Create(ctx, companyID, "u1", embarque("200"))
	require.NoError(t, err)

	_, err = f.uc.Arrive(ctx, companyID, "u1", sh.ID, dto.ArriveShipmentRequest{})
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition), "no llega sin zarpar")

	salida := zarpe.AddDate(0, 0, 7)
	sh, err = f.uc.Depart(ctx, companyID, sh.ID, dto.DepartShipmentRequest{ActualDeparture: &salida})
	require.NoError(t, err)
	assert.Equal(t, entity.ShipmentStatusInTransit, sh.Status)
	require.NotNil(t, sh.EstimatedArrival)
	assert.Equal(t, llegada.AddDate(0, 0, 7), *sh.EstimatedArrival, "el atraso del zarpe corre la llegada")

	arribo := llegada.AddDate(0, 0, 9)
	sh, err = f.uc.Arrive(ctx, companyID, "u1", sh.ID, dto.ArriveShipmentRequest{ActualArrival: &arribo})
	require.NoError(t, err)
	assert.Equal(t, entity.ShipmentStatusArrived, sh.Status)

	assert.True(t, dec("200").Equal(f.store.StockOf(prodA, whMain)))
	require.Len(t, f.store.Movements(), 1)
	assert.Equal(t, "EMB MSKU1234567", f.store.Movements()[0].Reference)

	inbound, _ := apptest.Supply{S: f.store}.ListInboundLines(ctx, companyID, nil)
	assert.Empty(t, inbound, "lo recibido deja de ser oferta en tránsito")
	assert.Equal(t, []string{ports.EventShipmentCreated, ports.EventShipmentDeparted, ports.EventShipmentArrived}, f.pub.Types())
}

func TestAnular_DevuelvePendienteALaEntrega(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sh, err := f.uc.Create(ctx, companyID, "u1", embarque("120"))
	require.NoError(t, err)

	sh, err = f.uc.Cancel(ctx, companyID, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ShipmentStatusCancelled, sh.Status)

	d, _ := apptest.Deliveries{S: f.store}.GetByID(ctx, delivery)
	assert.True(t, d.ShippedQty.IsZero())

	_, err = f.uc.Depart(ctx, companyID, sh.ID, dto.DepartShipmentRequest{})
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
}

func TestListar_PorEstado(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.uc.Create(ctx, companyID, "u1", embarque("10"))
	require.NoError(t, err)

	out, err := f.uc.List(ctx, companyID, entity.ShipmentStatusInTransit, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, out.Items)

	out, err = f.uc.List(ctx, companyID, "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, out.Items, 1)
}

func TestCrearEmbarque_LecturaConcurrenteNoSobreEmbarca(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	antes, err := apptest.Deliveries{S: f.store}.GetByID(ctx, delivery)
	require.NoError(t, err)

	_, err = f.uc.Create(ctx, companyID, "u1", embarque("300"))
	require.NoError(t, err)

	tx := apptest.TxRunner{S: f.store}
	mov := inventory.NewRegisterMovementUseCase(tx, apptest.Products{S: f.store}, apptest.Warehouses{S: f.store})
	otra := logistics.NewShipmentUseCase(tx, mov, apptest.Shipments{S: f.store},
		entregasDesactualizadas{Deliveries: apptest.Deliveries{S: f.store}, vista: *antes},
		apptest.Products{S: f.store}, apptest.Warehouses{S: f.store}, f.pub, nil)

	req := embarque("300")
	req.TrackingNumber = "MSKU7654321"
	_, err = otra.Create(ctx, companyID, "u2", req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))

	d, err := apptest.Deliveries{S: f.store}.GetByID(ctx, delivery)
	require.NoError(t, err)
	assert.True(t, dec("300").Equal(d.ShippedQty), "lo embarcado no supera lo entregado")
	list, err := apptest.Shipments{S: f.store}.List(ctx, companyID, repository.ShipmentFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1, "el segundo embarque se deshace")
}
