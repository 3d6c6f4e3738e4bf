package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/scm-api/internal/application/dto"
	"github.com/jhoicas/scm-api/internal/application/inventory"
	"github.com/jhoicas/scm-api/internal/domain"
)

// InventoryHandler movimientos, existencias y conciliación de conteos físicos (protegido).
type InventoryHandler struct {
	movements *inventory.RegisterMovementUseCase
	stock     *inventory.StockQueryUseCase
	recon     *inventory.ReconciliationUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	movements *inventory.RegisterMovementUseCase,
	stock *inventory.StockQueryUseCase,
	recon *inventory.ReconciliationUseCase,
) *InventoryHandler {
	return &InventoryHandler{movements: movements, stock: stock, recon: recon}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "product_id, warehouse_id (o from/to para TRANSFER), type, quantity, unit_cost (entradas)"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RegisterMovementRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}
	txID, err := h.movements.RegisterMovementFromRequest(c.UserContext(), companyID, userID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "movimiento registrado", "transaction_id": txID})
}

// ListMovements godoc
// @Summary      Kardex
// @Description  Movimientos por producto o por bodega; se exige uno de los dos filtros.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "ID del producto"
// @Param        warehouse_id  query  string  false  "ID de la bodega"
// @Param        from          query  string  false  "Fecha inicial (YYYY-MM-DD o RFC3339)"
// @Param        to            query  string  false  "Fecha final (YYYY-MM-DD o RFC3339)"
// @Param        limit         query  int     false  "Límite"  default(20)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {array}   dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return missingCompany(c)
	}
	var page dto.PageRequest
	if err := bindQuery(c, &page); err != nil {
		return respondError(c, err)
	}
	from, err := dateQuery(c, "from")
	if err != nil {
		return respondError(c, err)
	}
	to, err := dateQuery(c, "to")
	if err != nil {
		return respondError(c, err)
	}
	// "to" en formato fecha incluye el día completo.
	if to != nil && len(c.Query("to")) == len(time.DateOnly) {
		end := to.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	out, err := h.stock.ListMovements(c.UserContext(), companyID, inventory.MovementFilter{
		ProductID:   c.Query("product_id"),
		WarehouseID: c.Query("warehouse_id"),
		From:        from,
		To:          to,
		PageRequest: page,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// OnHand godoc
// @Summary      Existencias por SKU
// @Description  Cantidad total en todas las bodegas de la empresa, valorizada al costo promedio.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.OnHandResponse
// @Router       /api/inventory/on-hand [get]
func (h *InventoryHandler) OnHand(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return missingCompany(c)
	}
	out, err := h.stock.OnHand(c.UserContext(), companyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// PreviewReconciliation godoc
// @Summary      Vista previa de conciliación
// @Description  Compara el conteo físico con la existencia del sistema sin modificar el inventario.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReconciliationRequest  true  "Bodega y conteos"
// @Success      200   {object}  dto.ReconciliationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/reconciliation/preview [post]
func (h *InventoryHandler) PreviewReconciliation(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return missingCompany(c)
	}
	var in dto.ReconciliationRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.recon.Preview(c.UserContext(), companyID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ApplyReconciliation godoc
// @Summary      Aplicar conciliación
// @Description  Registra un ajuste por cada SKU con diferencia, todo en una sola transacción.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReconciliationRequest  true  "Bodega y conteos"
// @Success      200   {object}  dto.ReconciliationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/reconciliation/apply [post]
func (h *InventoryHandler) ApplyReconciliation(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return missingCompany(c)
	}
	var in dto.ReconciliationRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.recon.Apply(c.UserContext(), companyID, GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// dateQuery acepta YYYY-MM-DD o RFC3339; vacío = sin filtro.
func dateQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s=%q no es una fecha válida", domain.ErrInvalidInput, key, raw)
}
