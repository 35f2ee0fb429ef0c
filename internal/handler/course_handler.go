package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/campusworks/coursework-api/internal/dto"
	"github.com/campusworks/coursework-api/internal/service"
	"github.com/campusworks/coursework-api/internal/utils"
)

// CourseHandler serves the course catalog. Reads are open to any authenticated
// user; mutations are admin-only and gated at the router.
type CourseHandler struct {
	courses service.CourseService
}

// NewCourseHandler constructs a CourseHandler.
func NewCourseHandler(courses service.CourseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// List returns every course.
func (h *CourseHandler) List(c *fiber.Ctx) error {
	response, err := h.courses.List(c.UserContext())
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, utils.KindUnavailable, "failed to list courses")
	}

	return utils.SendSuccess(c, "courses retrieved", response)
}

// Get returns a single course by id.
func (h *CourseHandler) Get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, err.Error())
	}

	response, err := h.courses.Get(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, utils.KindNotFound, "course not found")
		}
		return utils.SendError(c, fiber.StatusInternalServerError, utils.KindUnavailable, "failed to get course")
	}

	return utils.SendSuccess(c, "course retrieved", response)
}

// Create adds a course to the catalog.
func (h *CourseHandler) Create(c *fiber.Ctx) error {
	var payload dto.CourseCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, "invalid request body")
	}

	response, err := h.courses.Create(c.UserContext(), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, err.Error())
		case errors.Is(err, service.ErrDuplicateCourseCode):
			return utils.SendError(c, fiber.StatusConflict, utils.KindConflict, "course code already in use")
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, utils.KindUnavailable, "failed to create course")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "course created", response)
}

// Update renames a course. The code is immutable once assigned.
func (h *CourseHandler) Update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, err.Error())
	}

	var payload dto.CourseUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, "invalid request body")
	}

	response, err := h.courses.Update(c.UserContext(), id, payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, err.Error())
		case errors.Is(err, service.ErrCourseNotFound):
			return utils.SendError(c, fiber.StatusNotFound, utils.KindNotFound, "course not found")
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, utils.KindUnavailable, "failed to update course")
		}
	}

	return utils.SendSuccess(c, "course updated", response)
}

// Delete removes a course that no assignment definitions reference.
func (h *CourseHandler) Delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, err.Error())
	}

	if err := h.courses.Delete(c.UserContext(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			return utils.SendError(c, fiber.StatusNotFound, utils.KindNotFound, "course not found")
		case errors.Is(err, service.ErrCourseInUse):
			return utils.SendError(c, fiber.StatusConflict, utils.KindConflict, "course is referenced by assignment definitions")
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, utils.KindUnavailable, "failed to delete course")
		}
	}

	return utils.SendSuccess(c, "course deleted", nil)
}
