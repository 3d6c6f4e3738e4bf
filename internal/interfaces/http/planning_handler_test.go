package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/scm-api/internal/application/apptest"
	"github.com/jhoicas/scm-api/internal/application/dto"
	appplanning "github.com/jhoicas/scm-api/internal/application/planning"
	"github.com/jhoicas/scm-api/internal/domain/entity"
	"github.com/jhoicas/scm-api/internal/domain/repository"
	apphttp "github.com/jhoicas/scm-api/internal/interfaces/http"
	"github.com/jhoicas/scm-api/pkg/config"
)

// hoy cae en 2026-W43.
var hoy = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

const testProductID = "11111111-1111-1111-1111-111111111111"

type moduleStub struct {
	active bool
	err    error
}

func (m moduleStub) HasActiveModule(context.Context, string, string) (bool, error) {
	return m.active, m.err
}

// productosCaidos simula la base de datos de productos sin servicio.
type productosCaidos struct{ apptest.Products }

func (productosCaidos) GetByID(context.Context, string) (*entity.Product, error) {
	return nil, errors.New("conexión rechazada")
}

func planningCfg() config.PlanningConfig {
	return config.PlanningConfig{
		HorizonWeeks: 12, MaxHorizonWeeks: 52, DemandLookbackWeeks: 8,
		LoadingBufferWeeks: 1, TransitWeeks: 5, InboundBufferWeeks: 2,
	}
}

func newPlanningApp(t *testing.T, modules moduleStub, products repository.ProductRepository) (*fiber.App, *apptest.Store) {
	t.Helper()
	s := apptest.NewStore()
	s.AddProduct(&entity.Product{
		ID: testProductID, CompanyID: testCompanyID, SKU: "CAM-AZUL", Name: "Camiseta azul", Active: true,
		UnitCost: decimal.NewFromInt(1000), SafetyStockWeeks: decimal.NewFromInt(1),
		ProductionLeadWeeks: 4, OrderMultiple: decimal.NewFromInt(10),
	})
	productRepo := apptest.Products{S: s}
	if products == nil {
		products = productRepo
	}

	projections := appplanning.NewProjectionUseCase(products, apptest.Stock{S: s}, s.Demand(), apptest.Supply{S: s}, planningCfg(), nil, nil)
	projections.SetClock(func() time.Time { return hoy })
	replenishment := appplanning.NewReplenishmentUseCase(projections, productRepo, planningCfg(), nil)

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	h := apphttp.NewPlanningHandler(projections, replenishment)
	g := app.Group("/api/planning", apphttp.AuthMiddleware(testJWTSecret), apphttp.RequireModule(entity.ModulePlanning, modules))
	g.Get("/projections", h.ListProjections)
	g.Get("/projections/:product_id", h.GetProjection)
	g.Get("/replenishment", h.GetReplenishment)
	g.Post("/reverse-schedule", h.ReverseSchedule)
	return app, s
}

func send(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, entity.RolePlanner))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeError(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	var out dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestPlanning_ProyeccionDeUnSKU(t *testing.T) {
	app, s := newPlanningApp(t, moduleStub{active: true}, nil)
	s.SetStock(testProductID, "wh-1", decimal.NewFromInt(100))

	resp := send(t, app, http.MethodGet, "/api/planning/projections/"+testProductID+"?horizon=4", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "2026-W43", body["start_week"], "sin start_week se usa la semana actual")
	rows, ok := body["rows"].([]any)
	require.True(t, ok)
	assert.Len(t, rows, 4)
}

func TestPlanning_ProductoInexistenteDevuelve404(t *testing.T) {
	app, _ := newPlanningApp(t, moduleStub{active: true}, nil)

	resp := send(t, app, http.MethodGet, "/api/planning/projections/22222222-2222-2222-2222-222222222222", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Code)
}

func TestPlanning_FuenteCaidaDevuelve503(t *testing.T) {
	app, _ := newPlanningApp(t, moduleStub{active: true}, productosCaidos{})

	resp := send(t, app, http.MethodGet, "/api/planning/projections/"+testProductID, nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	body := decodeError(t, resp)
	assert.Equal(t, "DATA_NOT_AVAILABLE", body.Code)
	assert.NotContains(t, body.Message, "conexión rechazada", "el detalle de infraestructura no se expone")
}

func TestPlanning_SemanaInicialInvalidaDevuelve400(t *testing.T) {
	app, _ := newPlanningApp(t, moduleStub{active: true}, nil)

	resp := send(t, app, http.MethodGet, "/api/planning/projections?start_week=2026-W60", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_INPUT", decodeError(t, resp).Code)
}

func TestPlanning_ModuloInactivoDevuelve403(t *testing.T) {
	app, _ := newPlanningApp(t, moduleStub{active: false}, nil)

	resp := send(t, app, http.MethodGet, "/api/planning/replenishment", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "MODULE_DISABLED", decodeError(t, resp).Code)
}

func TestPlanning_FalloAlVerificarModuloDevuelve503(t *testing.T) {
	app, _ := newPlanningApp(t, moduleStub{err: errors.New("timeout")}, nil)

	resp := send(t, app, http.MethodGet, "/api/planning/replenishment", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "MODULE_CHECK_FAILED", decodeError(t, resp).Code)
}

func TestPlanning_ProgramacionInversaConTiemposDelProducto(t *testing.T) {
	app, _ := newPlanningApp(t, moduleStub{active: true}, nil)

	resp := send(t, app, http.MethodPost, "/api/planning/reverse-schedule", map[string]any{
		"target_week": "2027-W03",
		"product_id":  testProductID,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		CurrentWeek string `json:"current_week"`
		Schedule    struct {
			ArrivalWeek string `json:"arrival_week"`
			ShipWeek    string `json:"ship_week"`
			ReadyWeek   string `json:"ready_week"`
			OrderWeek   string `json:"order_week"`
			Urgency     string `json:"urgency"`
		} `json:"schedule"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "2026-W43", out.CurrentWeek)
	// 2026 tiene 53 semanas: 2027-W03 − 2 = 2027-W01, − 5 = 2026-W49, − 1 = 2026-W48, − 4 = 2026-W44.
	assert.Equal(t, "2027-W01", out.Schedule.ArrivalWeek)
	assert.Equal(t, "2026-W49", out.Schedule.ShipWeek)
	assert.Equal(t, "2026-W48", out.Schedule.ReadyWeek)
	assert.Equal(t, "2026-W44", out.Schedule.OrderWeek)
	assert.Equal(t, "on_track", out.Schedule.Urgency)
}

func TestPlanning_ProgramacionInversaValidaCampos(t *testing.T) {
	app, _ := newPlanningApp(t, moduleStub{active: true}, nil)

	resp := send(t, app, http.MethodPost, "/api/planning/reverse-schedule", map[string]any{
		"target_week":   "2027-W03",
		"product_id":    "no-es-uuid",
		"transit_weeks": -1,
	})
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeError(t, resp)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Contains(t, body.Fields, "product_id")
	assert.Contains(t, body.Fields, "transit_weeks")
}

func TestPlanning_SemanaMalFormadaEnCuerpo(t *testing.T) {
	app, _ := newPlanningApp(t, moduleStub{active: true}, nil)

	resp := send(t, app, http.MethodPost, "/api/planning/reverse-schedule", map[string]any{"target_week": "mañana"})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", decodeError(t, resp).Code)
}
