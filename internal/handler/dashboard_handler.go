package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campusworks/coursework-api/internal/service"
	"github.com/campusworks/coursework-api/internal/utils"
)

// DashboardHandler serves the student dashboard.
type DashboardHandler struct {
	dashboards service.StudentDashboardService
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(dashboards service.StudentDashboardService) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards}
}

// Student returns the acting student's aggregated standing.
func (h *DashboardHandler) Student(c *fiber.Ctx) error {
	claim, ok := requireClaim(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, utils.KindUnauthenticated, "authentication required")
	}

	response, err := h.dashboards.GetDashboard(c.UserContext(), claim.ID)
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, utils.KindUnavailable, "failed to build dashboard")
	}

	return utils.SendSuccess(c, "dashboard retrieved", response)
}
