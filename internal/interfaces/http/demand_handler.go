package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/scm-api/internal/application/dto"
	"github.com/jhoicas/scm-api/internal/application/usecase"
	"github.com/jhoicas/scm-api/internal/domain/planning"
)

// Ventana por defecto de la serie cuando no llegan from/to.
const (
	defaultSeriesPastWeeks   = 8
	defaultSeriesFutureWeeks = 12
)

// DemandHandler pronóstico y demanda real semanal por SKU.
type DemandHandler struct {
	uc  *usecase.DemandUseCase
	now func() time.Time
}

func NewDemandHandler(uc *usecase.DemandUseCase) *DemandHandler {
	return &DemandHandler{uc: uc, now: time.Now}
}

// UpsertForecast godoc
// @Summary      Cargar pronóstico semanal
// @Tags         demand
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpsertForecastRequest  true  "SKU y semanas"
// @Success      200   {object}  map[string]int
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/demand/forecast [put]
func (h *DemandHandler) UpsertForecast(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return missingCompany(c)
	}
	var in dto.UpsertForecastRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}
	n, err := h.uc.UpsertForecast(c.UserContext(), companyID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"weeks_saved": n})
}

// RecordActual godoc
// @Summary      Registrar demanda real de una semana
// @Tags         demand
// @Security     Bearer
// @Accept       json
// @Param        body  body  dto.RecordActualRequest  true  "SKU, semana y cantidad"
// @Success      204
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/demand/actual [post]
func (h *DemandHandler) RecordActual(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return missingCompany(c)
	}
	var in dto.RecordActualRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}
	if err := h.uc.RecordActual(c.UserContext(), companyID, in); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListSeries godoc
// @Summary      Serie de demanda de un SKU
// @Tags         demand
// @Security     Bearer
// @Produce      json
// @Param        product_id  path   string  true   "ID del producto"
// @Param        from        query  string  false  "Semana inicial (2026-W01)"
// @Param        to          query  string  false  "Semana final (2026-W20)"
// @Success      200  {array}  dto.DemandWeekResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/demand/{product_id} [get]
func (h *DemandHandler) ListSeries(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return missingCompany(c)
	}
	current := planning.WeekOf(h.now())
	from, err := weekQuery(c, "from", current.AddWeeks(-defaultSeriesPastWeeks))
	if err != nil {
		return respondError(c, err)
	}
	to, err := weekQuery(c, "to", current.AddWeeks(defaultSeriesFutureWeeks))
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.ListSeries(c.UserContext(), companyID, c.Params("product_id"), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func weekQuery(c *fiber.Ctx, key string, def planning.Week) (planning.Week, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return planning.ParseWeek(raw)
}
