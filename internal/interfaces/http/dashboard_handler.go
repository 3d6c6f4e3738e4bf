package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/scm-api/internal/application/analytics"
)

// DashboardHandler maneja los endpoints del tablero.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary godoc
// @Summary      Resumen de la cadena de suministro
// @Description  SKUs por estado en la semana actual, próximos quiebres, OCs abiertas,
// @Description  embarques en tránsito y sugerencias vencidas.
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardSummaryDTO
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return missingCompany(c)
	}
	summary, err := h.uc.GetSummary(c.UserContext(), companyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}
