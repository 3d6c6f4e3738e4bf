package usecase_test

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
	"github.com/jhoicas/scm-api/internal/application/usecase"
	"github.com/jhoicas/scm-api/internal/domain"
	"github.com/jhoicas/scm-api/internal/domain/entity"
	"github.com/jhoicas/scm-api/internal/domain/planning"
)

const (
	empresa  = "c1"
	producto = "p-1"
)

// lunes de 2026-W43
var lunes = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func wk(year, week int) planning.Week { return planning.Week{Year: year, Week: week} }

func newDemand(t *testing.T) (*usecase.DemandUseCase, *apptest.Store) {
	t.Helper()
	s := apptest.NewStore()
	s.AddProduct(&entity.Product{ID: producto, CompanyID: empresa, SKU: "CAM-1", Active: true})
	s.AddProduct(&entity.Product{ID: "p-ajeno", CompanyID: "c2", SKU: "X", Active: true})
	uc := usecase.NewDemandUseCase(s.Demand(), apptest.Products{S: s})
	uc.SetClock(func() time.Time { return lunes })
	return uc, s
}

func TestDemanda_PronosticoConservaVentaReal(t *testing.T) {
	uc, _ := newDemand(t)
	ctx := context.Background()

	require.NoError(t, uc.RecordActual(ctx, empresa, dto.RecordActualRequest{ProductID: producto, Week: wk(2026, 42), ActualQty: dec("18")}))

	n, err := uc.UpsertForecast(ctx, empresa, dto.UpsertForecastRequest{ProductID: producto, Weeks: []dto.ForecastEntry{
		{Week: wk(2026, 42), ForecastQty: dec("20")},
		{Week: wk(2026, 43), ForecastQty: dec("25")},
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	serie, err := uc.ListSeries(ctx, empresa, producto, wk(2026, 42), wk(2026, 43))
	require.NoError(t, err)
	require.Len(t, serie, 2)
	assert.True(t, dec("20").Equal(serie[0].ForecastQty))
	require.NotNil(t, serie[0].ActualQty, "el pronóstico no borra la venta real")
	assert.True(t, dec("18").Equal(*serie[0].ActualQty))
	assert.Nil(t, serie[1].ActualQty)
}

func TestDemanda_PronosticoInvalido(t *testing.T) {
	uc, _ := newDemand(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    dto.UpsertForecastRequest
		error error
	}{
		{"semana repetida", dto.UpsertForecastRequest{ProductID: producto, Weeks: []dto.ForecastEntry{
			{Week: wk(2026, 44), ForecastQty: dec("1")}, {Week: wk(2026, 44), ForecastQty: dec("2")},
		}}, domain.ErrInvalidInput},
		{"pronóstico negativo", dto.UpsertForecastRequest{ProductID: producto, Weeks: []dto.ForecastEntry{
			{Week: wk(2026, 44), ForecastQty: dec("-1")},
		}}, domain.ErrInvalidInput},
		{"semana 53 en año de 52", dto.UpsertForecastRequest{ProductID: producto, Weeks: []dto.ForecastEntry{
			{Week: wk(2027, 53), ForecastQty: dec("1")},
		}}, domain.ErrInvalidInput},
		{"producto de otra empresa", dto.UpsertForecastRequest{ProductID: "p-ajeno", Weeks: []dto.ForecastEntry{
			{Week: wk(2026, 44), ForecastQty: dec("1")},
		}}, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := uc.UpsertForecast(ctx, empresa, tt.in)
			assert.True(t, errors.Is(err, tt.error), "error: %v", err)
			assert.Zero(t, n)
		})
	}
}

func TestDemanda_VentaRealSoloSemanasCerradas(t *testing.T) {
	uc, s := newDemand(t)
	ctx := context.Background()

	err := uc.RecordActual(ctx, empresa, dto.RecordActualRequest{ProductID: producto, Week: wk(2026, 43), ActualQty: dec("1")})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "la semana en curso no ha cerrado")

	err = uc.RecordActual(ctx, empresa, dto.RecordActualRequest{ProductID: producto, Week: wk(2026, 44), ActualQty: dec("1")})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "semana futura")

	err = uc.RecordActual(ctx, empresa, dto.RecordActualRequest{ProductID: producto, Week: wk(2026, 42), ActualQty: dec("-3")})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	rows, err := s.Demand().ListRange(ctx, empresa, []string{producto}, wk(2026, 40), wk(2026, 45))
	require.NoError(t, err)
	assert.Empty(t, rows, "ningún intento inválido deja rastro")

	// el domingo sigue siendo W43; el lunes siguiente ya cerró
	uc.SetClock(func() time.Time { return time.Date(2026, 10, 25, 23, 0, 0, 0, time.UTC) })
	assert.Error(t, uc.RecordActual(ctx, empresa, dto.RecordActualRequest{ProductID: producto, Week: wk(2026, 43), ActualQty: dec("1")}))
	uc.SetClock(func() time.Time { return time.Date(2026, 10, 26, 0, 0, 0, 0, time.UTC) })
	assert.NoError(t, uc.RecordActual(ctx, empresa, dto.RecordActualRequest{ProductID: producto, Week: wk(2026, 43), ActualQty: dec("1")}))
}

func TestDemanda_SerieRangoInvertido(t *testing.T) {
	uc, _ := newDemand(t)
	ctx := context.Background()

	_, err := uc.ListSeries(ctx, empresa, producto, wk(2026, 50), wk(2026, 40))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.ListSeries(ctx, empresa, "p-ajeno", wk(2026, 40), wk(2026, 50))
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	serie, err := uc.ListSeries(ctx, empresa, producto, wk(2026, 52), wk(2027, 2))
	require.NoError(t, err)
	assert.Empty(t, serie)
}
