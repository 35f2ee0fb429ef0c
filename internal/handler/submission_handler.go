package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/campusworks/coursework-api/internal/dto"
	"github.com/campusworks/coursework-api/internal/service"
	"github.com/campusworks/coursework-api/internal/utils"
)

// SubmissionHandler serves the submission ledger: creating submissions,
// listing them per student or per definition, grading, and file download.
type SubmissionHandler struct {
	submissions service.SubmissionService
	grading     service.GradingService
}

// NewSubmissionHandler constructs a SubmissionHandler.
func NewSubmissionHandler(submissions service.SubmissionService, grading service.GradingService) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions, grading: grading}
}

// Create records the acting student's submission against a definition. The
// body is multipart: an optional submission_text field plus an optional file.
func (h *SubmissionHandler) Create(c *fiber.Ctx) error {
	claim, ok := requireClaim(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, utils.KindUnauthenticated, "authentication required")
	}

	assignmentDefID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, err.Error())
	}

	var payload dto.SubmissionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, "invalid request body")
	}

	// Absent file part is fine; submissions may be text-only.
	file, err := c.FormFile("file")
	if err != nil {
		file = nil
	}

	response, err := h.submissions.Create(c.UserContext(), claim.ID, assignmentDefID, payload, file)
	if err != nil {
		switch {
		case isValidationError(err), errors.Is(err, service.ErrEmptySubmission):
			return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, "submission must include text or a file")
		case errors.Is(err, service.ErrAssignmentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, utils.KindNotFound, "assignment definition not found")
		case errors.Is(err, service.ErrDuplicateSubmission):
			return utils.SendError(c, fiber.StatusConflict, utils.KindConflict, "submission already exists for this assignment")
		case errors.Is(err, service.ErrSubmissionFileTooLarge):
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, utils.KindInvalidInput, "file exceeds maximum allowed size")
		case errors.Is(err, service.ErrSubmissionFileType):
			return utils.SendError(c, fiber.StatusUnsupportedMediaType, utils.KindInvalidInput, "unsupported file type")
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, utils.KindUnavailable, "failed to create submission")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission created", response)
}

// ListMine returns the acting student's submissions, newest first.
func (h *SubmissionHandler) ListMine(c *fiber.Ctx) error {
	claim, ok := requireClaim(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, utils.KindUnauthenticated, "authentication required")
	}

	response, err := h.submissions.ListByStudent(c.UserContext(), claim.ID)
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, utils.KindUnavailable, "failed to list submissions")
	}

	return utils.SendSuccess(c, "submissions retrieved", response)
}

// ListByAssignment returns every submission against a definition the acting
// instructor owns.
func (h *SubmissionHandler) ListByAssignment(c *fiber.Ctx) error {
	claim, ok := requireClaim(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, utils.KindUnauthenticated, "authentication required")
	}

	assignmentDefID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, err.Error())
	}

	response, err := h.submissions.ListByAssignment(c.UserContext(), assignmentDefID, claim.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssignmentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, utils.KindNotFound, "assignment definition not found")
		case errors.Is(err, service.ErrNotAssignmentOwner):
			return utils.SendError(c, fiber.StatusForbidden, utils.KindForbidden, "not the owner of this assignment definition")
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, utils.KindUnavailable, "failed to list submissions")
		}
	}

	return utils.SendSuccess(c, "submissions retrieved", response)
}

// Grade records or overwrites the grade and feedback on a submission whose
// parent definition the acting instructor owns.
func (h *SubmissionHandler) Grade(c *fiber.Ctx) error {
	claim, ok := requireClaim(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, utils.KindUnauthenticated, "authentication required")
	}

	submissionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, err.Error())
	}

	var payload dto.GradeSubmissionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, "invalid request body")
	}

	response, err := h.grading.Grade(c.UserContext(), submissionID, claim.ID, payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, "grade and feedback are required")
		case errors.Is(err, service.ErrGradeOutOfRange):
			return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, "grade outside the assignment's points range")
		case errors.Is(err, service.ErrSubmissionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, utils.KindNotFound, "submission not found")
		case errors.Is(err, service.ErrNotAssignmentOwner):
			return utils.SendError(c, fiber.StatusForbidden, utils.KindForbidden, "not the owner of this assignment definition")
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, utils.KindUnavailable, "failed to grade submission")
		}
	}

	return utils.SendSuccess(c, "submission graded", response)
}

// DownloadFile streams the submission's attached file to the owning student
// or the instructor owning the parent definition.
func (h *SubmissionHandler) DownloadFile(c *fiber.Ctx) error {
	claim, ok := requireClaim(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, utils.KindUnauthenticated, "authentication required")
	}

	submissionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.KindInvalidInput, err.Error())
	}

	meta, reader, err := h.submissions.OpenFile(c.UserContext(), submissionID, claim.ID, claim.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubmissionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, utils.KindNotFound, "submission not found")
		case errors.Is(err, service.ErrSubmissionAccessDenied):
			return utils.SendError(c, fiber.StatusForbidden, utils.KindForbidden, "not allowed to access this submission")
		case errors.Is(err, service.ErrNoSubmittedFile):
			return utils.SendError(c, fiber.StatusNotFound, utils.KindNotFound, "submission has no attached file")
		case errors.Is(err, service.ErrStoredFileMissing):
			return utils.SendError(c, fiber.StatusNotFound, utils.KindNotFound, "submission file missing from storage")
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, utils.KindUnavailable, "failed to open submission file")
		}
	}

	c.Set(fiber.HeaderContentType, meta.MimeType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", meta.OriginalName))

	return c.SendStream(reader, int(meta.SizeBytes))
}
