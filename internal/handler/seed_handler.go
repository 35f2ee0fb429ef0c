package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/campusworks/coursework-api/internal/service"
	"github.com/campusworks/coursework-api/internal/utils"
)

// SeedHandler serves the token-gated bootstrap endpoint.
type SeedHandler struct {
	seeder service.SeedService
}

// NewSeedHandler constructs a SeedHandler.
func NewSeedHandler(seeder service.SeedService) *SeedHandler {
	return &SeedHandler{seeder: seeder}
}

// Seed applies a schema-validated bootstrap payload. The token travels in the
// X-Seed-Token header.
func (h *SeedHandler) Seed(c *fiber.Ctx) error {
	result, err := h.seeder.Seed(c.UserContext(), c.Get("X-Seed-Token"), c.Body())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSeedDisabled):
			return utils.SendError(c, fiber.StatusNotFound, utils.KindNotFound, "not found")
		case errors.Is(err, service.ErrSeedUnauthorized):
			return utils.SendError(c, fiber.StatusUnauthorized, utils.KindUnauthenticated, "invalid seed token")
		case errors.Is(err, service.ErrSeedPayloadInvalid):
			return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, err.Error())
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, utils.KindUnavailable, "failed to apply seed")
		}
	}

	return utils.SendSuccess(c, "seed applied", result)
}
