package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/campusworks/coursework-api/internal/dto"
	"github.com/campusworks/coursework-api/internal/models"
	"github.com/campusworks/coursework-api/internal/service"
	"github.com/campusworks/coursework-api/internal/utils"
)

// UserHandler serves the admin roster. Each instance is bound to one role so
// the same handlers back both /admin/students and /admin/instructors.
type UserHandler struct {
	users service.UserService
	role  models.Role
}

// NewUserHandler constructs a roster handler for the given role.
func NewUserHandler(users service.UserService, role models.Role) *UserHandler {
	return &UserHandler{users: users, role: role}
}

// List returns the roster, optionally filtered by a name/email search term.
func (h *UserHandler) List(c *fiber.Ctx) error {
	search := strings.TrimSpace(c.Query("search"))

	response, err := h.users.List(c.UserContext(), h.role, search)
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, utils.KindUnavailable, "failed to list accounts")
	}

	return utils.SendSuccess(c, "accounts retrieved", response)
}

// Create provisions an account in this handler's role.
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var payload dto.UserCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, "invalid request body")
	}

	response, err := h.users.Create(c.UserContext(), h.role, payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, err.Error())
		case errors.Is(err, service.ErrDuplicateEmail):
			return utils.SendError(c, fiber.StatusConflict, utils.KindConflict, "email already registered")
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, utils.KindUnavailable, "failed to create account")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "account created", response)
}

// Update edits profile fields on an account in this handler's role.
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, err.Error())
	}

	var payload dto.UserUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, "invalid request body")
	}

	response, err := h.users.Update(c.UserContext(), id, h.role, payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			return utils.SendError(c, fiber.StatusNotFound, utils.KindNotFound, "account not found")
		case errors.Is(err, service.ErrDuplicateEmail):
			return utils.SendError(c, fiber.StatusConflict, utils.KindConflict, "email already registered")
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, utils.KindUnavailable, "failed to update account")
		}
	}

	return utils.SendSuccess(c, "account updated", response)
}

// ResetPassword sets a fresh password on an account in this handler's role.
func (h *UserHandler) ResetPassword(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, err.Error())
	}

	var payload dto.UserResetPasswordRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, "invalid request body")
	}

	if err := h.users.ResetPassword(c.UserContext(), id, h.role, payload); err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			return utils.SendError(c, fiber.StatusNotFound, utils.KindNotFound, "account not found")
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, utils.KindUnavailable, "failed to reset password")
		}
	}

	return utils.SendSuccess(c, "password reset", nil)
}

// Delete removes an account in this handler's role, provided no coursework
// records still reference it.
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, err.Error())
	}

	if err := h.users.Delete(c.UserContext(), id, h.role); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return utils.SendError(c, fiber.StatusNotFound, utils.KindNotFound, "account not found")
		case errors.Is(err, service.ErrUserHasDependents):
			return utils.SendError(c, fiber.StatusConflict, utils.KindConflict, "account is referenced by coursework records")
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, utils.KindUnavailable, "failed to delete account")
		}
	}

	return utils.SendSuccess(c, "account deleted", nil)
}
