package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/scm-api/internal/application/dto"
	"github.com/jhoicas/scm-api/internal/application/logistics"
)

// ShipmentHandler embarques en tránsito hacia las bodegas.
type ShipmentHandler struct {
	uc *logistics.ShipmentUseCase
}

func NewShipmentHandler(uc *logistics.ShipmentUseCase) *ShipmentHandler {
	return &ShipmentHandler{uc: uc}
}

// Create godoc
// @Summary      Crear embarque
// @Tags         shipments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateShipmentRequest  true  "Guía, transportista, bodega destino y líneas"
// @Success      201   {object}  dto.ShipmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/shipments [post]
func (h *ShipmentHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return missingCompany(c)
	}
	var in dto.CreateShipmentRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), companyID, GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar embarques
// @Tags         shipments
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "planned, in_transit, arrived, cancelled"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.ShipmentListResponse
// @Router       /api/shipments [get]
func (h *ShipmentHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return missingCompany(c)
	}
	var page dto.PageRequest
	if err := bindQuery(c, &page); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), companyID, c.Query("status"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener embarque
// @Tags         shipments
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del embarque"
// @Success      200  {object}  dto.ShipmentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/shipments/{id} [get]
func (h *ShipmentHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Depart godoc
// @Summary      Marcar zarpe
// @Tags         shipments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del embarque"
// @Param        body  body  dto.DepartShipmentRequest  false  "Fecha real de salida y ETA"
// @Success      200   {object}  dto.ShipmentResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/shipments/{id}/depart [post]
func (h *ShipmentHandler) Depart(c *fiber.Ctx) error {
	var in dto.DepartShipmentRequest
	if len(c.Body()) > 0 {
		if err := bindJSON(c, &in); err != nil {
			return respondError(c, err)
		}
	}
	out, err := h.uc.Depart(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Arrive godoc
// @Summary      Marcar llegada a bodega
// @Description  Registra entradas IN en la bodega destino por cada línea del embarque.
// @Tags         shipments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del embarque"
// @Param        body  body  dto.ArriveShipmentRequest  false  "Fecha real de llegada"
// @Success      200   {object}  dto.ShipmentResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/shipments/{id}/arrive [post]
func (h *ShipmentHandler) Arrive(c *fiber.Ctx) error {
	var in dto.ArriveShipmentRequest
	if len(c.Body()) > 0 {
		if err := bindJSON(c, &in); err != nil {
			return respondError(c, err)
		}
	}
	out, err := h.uc.Arrive(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar embarque
// @Tags         shipments
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del embarque"
// @Success      200  {object}  dto.ShipmentResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/shipments/{id}/cancel [post]
func (h *ShipmentHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.uc.Cancel(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
