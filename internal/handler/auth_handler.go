package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/campusworks/coursework-api/internal/dto"
	"github.com/campusworks/coursework-api/internal/service"
	"github.com/campusworks/coursework-api/internal/utils"
)

// AuthHandler serves login, self-registration and password changes.
type AuthHandler struct {
	auth service.AuthService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(auth service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login authenticates a user by email, password and role and returns a token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, "invalid request body")
	}

	response, err := h.auth.Login(c.UserContext(), payload)
	if err != nil {
		switch {
		case isValidationError(err), errors.Is(err, service.ErrInvalidRole):
			return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, err.Error())
		case errors.Is(err, service.ErrInvalidCredentials):
			return utils.SendError(c, fiber.StatusUnauthorized, utils.KindUnauthenticated, "invalid credentials")
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, utils.KindUnavailable, "failed to log in")
		}
	}

	return utils.SendSuccess(c, "login successful", response)
}

// Register creates a student account from a public sign-up.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, "invalid request body")
	}

	response, err := h.auth.RegisterStudent(c.UserContext(), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, err.Error())
		case errors.Is(err, service.ErrDuplicateEmail):
			return utils.SendError(c, fiber.StatusConflict, utils.KindConflict, "email already registered")
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, utils.KindUnavailable, "failed to register")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "registration successful", response)
}

// ChangePassword updates the authenticated user's own password.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	claim, ok := requireClaim(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, utils.KindUnauthenticated, "authentication required")
	}

	var payload dto.ChangePasswordRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, "invalid request body")
	}

	if err := h.auth.ChangePassword(c.UserContext(), claim.ID, payload); err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, err.Error())
		case errors.Is(err, service.ErrPasswordMismatch):
			return utils.SendError(c, fiber.StatusForbidden, utils.KindForbidden, "current password does not match")
		case errors.Is(err, service.ErrUserNotFound):
			return utils.SendError(c, fiber.StatusNotFound, utils.KindNotFound, "user not found")
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, utils.KindUnavailable, "failed to change password")
		}
	}

	return utils.SendSuccess(c, "password changed", nil)
}
