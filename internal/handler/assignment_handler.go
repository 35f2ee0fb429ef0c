package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/campusworks/coursework-api/internal/dto"
	"github.com/campusworks/coursework-api/internal/service"
	"github.com/campusworks/coursework-api/internal/utils"
)

// AssignmentHandler serves assignment-definition CRUD.
type AssignmentHandler struct {
	assignments service.AssignmentService
}

// NewAssignmentHandler constructs an AssignmentHandler.
func NewAssignmentHandler(assignments service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

// List returns the caller's view of the definition catalog.
func (h *AssignmentHandler) List(c *fiber.Ctx) error {
	claim, ok := requireClaim(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, utils.KindUnauthenticated, "authentication required")
	}

	response, err := h.assignments.List(c.UserContext(), claim.ID, claim.Role)
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, utils.KindUnavailable, "failed to list assignment definitions")
	}

	return utils.SendSuccess(c, "assignment definitions retrieved", response)
}

// Get returns a single definition.
func (h *AssignmentHandler) Get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, err.Error())
	}

	response, err := h.assignments.Get(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, service.ErrAssignmentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, utils.KindNotFound, "assignment definition not found")
		}
		return utils.SendError(c, fiber.StatusInternalServerError, utils.KindUnavailable, "failed to get assignment definition")
	}

	return utils.SendSuccess(c, "assignment definition retrieved", response)
}

// Create publishes a new definition owned by the acting instructor.
func (h *AssignmentHandler) Create(c *fiber.Ctx) error {
	claim, ok := requireClaim(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, utils.KindUnauthenticated, "authentication required")
	}

	var payload dto.AssignmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, "invalid request body")
	}

	response, err := h.assignments.Create(c.UserContext(), claim.ID, payload)
	if err != nil {
		switch {
		case isValidationError(err), isInvalidDueDate(err):
			return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, err.Error())
		case errors.Is(err, service.ErrCourseNotFound):
			return utils.SendError(c, fiber.StatusNotFound, utils.KindNotFound, "course not found")
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, utils.KindUnavailable, "failed to create assignment definition")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assignment definition created", response)
}

// Update edits a definition the acting instructor owns.
func (h *AssignmentHandler) Update(c *fiber.Ctx) error {
	claim, ok := requireClaim(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, utils.KindUnauthenticated, "authentication required")
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, err.Error())
	}

	var payload dto.AssignmentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, "invalid request body")
	}

	response, err := h.assignments.Update(c.UserContext(), id, claim.ID, payload)
	if err != nil {
		switch {
		case isValidationError(err), isInvalidDueDate(err):
			return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, err.Error())
		case errors.Is(err, service.ErrAssignmentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, utils.KindNotFound, "assignment definition not found")
		case errors.Is(err, service.ErrNotAssignmentOwner):
			return utils.SendError(c, fiber.StatusForbidden, utils.KindForbidden, "not the owner of this assignment definition")
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, utils.KindUnavailable, "failed to update assignment definition")
		}
	}

	return utils.SendSuccess(c, "assignment definition updated", response)
}

// Delete removes a definition that has no submissions yet.
func (h *AssignmentHandler) Delete(c *fiber.Ctx) error {
	claim, ok := requireClaim(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, utils.KindUnauthenticated, "authentication required")
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, err.Error())
	}

	if err := h.assignments.Delete(c.UserContext(), id, claim.ID); err != nil {
		switch {
		case errors.Is(err, service.ErrAssignmentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, utils.KindNotFound, "assignment definition not found")
		case errors.Is(err, service.ErrNotAssignmentOwner):
			return utils.SendError(c, fiber.StatusForbidden, utils.KindForbidden, "not the owner of this assignment definition")
		case errors.Is(err, service.ErrAssignmentHasSubmissions):
			return utils.SendError(c, fiber.StatusConflict, utils.KindConflict, "assignment definition has submissions")
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, utils.KindUnavailable, "failed to delete assignment definition")
		}
	}

	return utils.SendSuccess(c, "assignment definition deleted", nil)
}

func isInvalidDueDate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "invalid due date")
}
