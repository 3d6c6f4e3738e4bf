package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/scm-api/internal/application/dto"
	appplanning "github.com/jhoicas/scm-api/internal/application/planning"
)

// PlanningHandler proyección semanal de inventario, sugerencias de reposición y programación inversa.
type PlanningHandler struct {
	projections   *appplanning.ProjectionUseCase
	replenishment *appplanning.ReplenishmentUseCase
}

// NewPlanningHandler construye el handler.
func NewPlanningHandler(projections *appplanning.ProjectionUseCase, replenishment *appplanning.ReplenishmentUseCase) *PlanningHandler {
	return &PlanningHandler{projections: projections, replenishment: replenishment}
}

// ListProjections godoc
// @Summary      Proyección de todos los SKUs
// @Description  Ordenada por el quiebre más cercano.
// @Tags         planning
// @Security     Bearer
// @Produce      json
// @Param        start_week  query  string  false  "Semana inicial (2026-W05); vacío = semana actual"
// @Param        horizon     query  int     false  "Semanas a proyectar"
// @Success      200  {array}   dto.ProjectionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/planning/projections [get]
func (h *PlanningHandler) ListProjections(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return missingCompany(c)
	}
	var q dto.ProjectionQuery
	if err := bindQuery(c, &q); err != nil {
		return respondError(c, err)
	}
	out, err := h.projections.ProjectAll(c.UserContext(), companyID, q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetProjection godoc
// @Summary      Proyección de un SKU
// @Tags         planning
// @Security     Bearer
// @Produce      json
// @Param        product_id  path   string  true   "ID del producto"
// @Param        start_week  query  string  false  "Semana inicial (2026-W05)"
// @Param        horizon     query  int     false  "Semanas a proyectar"
// @Success      200  {object}  dto.ProjectionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/planning/projections/{product_id} [get]
func (h *PlanningHandler) GetProjection(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return missingCompany(c)
	}
	var q dto.ProjectionQuery
	if err := bindQuery(c, &q); err != nil {
		return respondError(c, err)
	}
	out, err := h.projections.Project(c.UserContext(), companyID, c.Params("product_id"), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetReplenishment godoc
// @Summary      Lista de reposición
// @Description  Cantidad sugerida por SKU y semana límite para ordenar; vencidas primero.
// @Tags         planning
// @Security     Bearer
// @Produce      json
// @Param        start_week  query  string  false  "Semana inicial"
// @Param        horizon     query  int     false  "Semanas a proyectar"
// @Success      200  {object}  dto.ReplenishmentResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/planning/replenishment [get]
func (h *PlanningHandler) GetReplenishment(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return missingCompany(c)
	}
	var q dto.ProjectionQuery
	if err := bindQuery(c, &q); err != nil {
		return respondError(c, err)
	}
	out, err := h.replenishment.GenerateReplenishmentList(c.UserContext(), companyID, q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ReverseSchedule godoc
// @Summary      Programación inversa
// @Description  A partir de la semana objetivo calcula cuándo ordenar, despachar y recibir.
// @Tags         planning
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReverseScheduleRequest  true  "Semana objetivo y tiempos"
// @Success      200   {object}  dto.ReverseScheduleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/planning/reverse-schedule [post]
func (h *PlanningHandler) ReverseSchedule(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return missingCompany(c)
	}
	var in dto.ReverseScheduleRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.replenishment.ReverseSchedule(c.UserContext(), companyID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
