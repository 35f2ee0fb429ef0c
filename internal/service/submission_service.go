package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/campusworks/coursework-api/internal/dto"
	"github.com/campusworks/coursework-api/internal/models"
	"github.com/campusworks/coursework-api/internal/observability"
	"github.com/campusworks/coursework-api/internal/repository"
	"github.com/campusworks/coursework-api/pkg/filestore"
)

var (
	// ErrSubmissionNotFound indicates a submission could not be found.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrDuplicateSubmission indicates the student already submitted for the
	// assignment definition. Raised by the pre-check and by the unique-index
	// backstop alike.
	ErrDuplicateSubmission = errors.New("submission already exists for this assignment")
	// ErrEmptySubmission indicates neither text nor file was supplied.
	ErrEmptySubmission = errors.New("submission must include text or a file")
	// ErrSubmissionAccessDenied indicates the requester is neither the owning
	// student nor the instructor owning the parent definition.
	ErrSubmissionAccessDenied = errors.New("not allowed to access this submission")
	// ErrSubmissionFileTooLarge indicates the upload exceeded the limit.
	ErrSubmissionFileTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrSubmissionFileType indicates a disallowed upload content type.
	ErrSubmissionFileType = errors.New("unsupported file type")
	// ErrNoSubmittedFile indicates a download was requested for a text-only
	// submission.
	ErrNoSubmittedFile = errors.New("submission has no attached file")
	// ErrStoredFileMissing indicates the submission references a file that has
	// vanished from backing storage.
	ErrStoredFileMissing = errors.New("submission file missing from storage")
)

// DashboardInvalidator drops a student's cached dashboard after a write.
type DashboardInvalidator interface {
	Invalidate(ctx context.Context, studentID uint)
}

// SubmissionService is the ledger: one submission per (student, definition)
// pair, lateness fixed at creation, content write-once.
type SubmissionService interface {
	Create(ctx context.Context, studentID, assignmentDefID uint, payload dto.SubmissionCreateRequest, file *multipart.FileHeader) (dto.SubmissionResponse, error)
	ListByStudent(ctx context.Context, studentID uint) ([]dto.SubmissionResponse, error)
	ListByAssignment(ctx context.Context, assignmentDefID, instructorID uint) ([]dto.SubmissionResponse, error)
	OpenFile(ctx context.Context, submissionID, requesterID uint, role models.Role) (dto.SubmittedFileResponse, io.ReadCloser, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	store       filestore.Store
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	events      EventPublisher
	dashboards  DashboardInvalidator
	maxSize     int64
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance. events and
// dashboards may be nil.
func NewSubmissionService(subRepo repository.SubmissionRepository, assignmentRepo repository.AssignmentRepository, store filestore.Store, validate *validator.Validate, events EventPublisher, dashboards DashboardInvalidator, maxSizeMB int, logger zerolog.Logger) SubmissionService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}

	return &submissionService{
		submissions: subRepo,
		assignments: assignmentRepo,
		store:       store,
		validator:   validate,
		sanitizer:   bluemonday.UGCPolicy(),
		events:      events,
		dashboards:  dashboards,
		maxSize:     int64(maxSizeMB) * 1024 * 1024,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		tracer:      otel.Tracer("github.com/campusworks/coursework-api/internal/service/submission"),
		now:         time.Now,
	}
}

func (s *submissionService) Create(ctx context.Context, studentID, assignmentDefID uint, payload dto.SubmissionCreateRequest, file *multipart.FileHeader) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	text := strings.TrimSpace(payload.SubmissionText)
	if text == "" && file == nil {
		return dto.SubmissionResponse{}, ErrEmptySubmission
	}

	definition, err := s.assignments.GetByID(ctx, assignmentDefID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	// Optimization only; the unique index is the safety mechanism.
	if _, err := s.submissions.GetByPair(ctx, assignmentDefID, studentID); err == nil {
		return dto.SubmissionResponse{}, ErrDuplicateSubmission
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.SubmissionResponse{}, err
	}

	now := s.now()
	submission := models.Submission{
		AssignmentDefinitionID: definition.ID,
		StudentID:              studentID,
		// Snapshot: never re-derived if the definition's course changes later.
		CourseID:       definition.CourseID,
		SubmissionText: s.sanitizer.Sanitize(text),
		SubmissionDate: now,
		IsLate:         definition.IsPastDue(now),
	}

	var stored filestore.StoredFile
	if file != nil {
		stored, err = s.storeFile(ctx, file)
		if err != nil {
			return dto.SubmissionResponse{}, err
		}
		submission.SubmittedFile = models.SubmittedFile{
			OriginalName: stored.OriginalName,
			MimeType:     stored.MimeType,
			StoredName:   stored.StoredName,
			StoredPath:   stored.StoredPath,
			SizeBytes:    stored.SizeBytes,
		}
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		// The row did not commit, so the stored artifact must not survive.
		if file != nil {
			if removeErr := s.store.Remove(ctx, stored); removeErr != nil {
				s.logger.Warn().Err(removeErr).Str("stored_name", stored.StoredName).Msg("failed to remove orphaned upload")
			}
		}

		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.SubmissionResponse{}, ErrDuplicateSubmission
		}
		return dto.SubmissionResponse{}, err
	}

	created, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	response := dto.NewSubmissionResponse(created)
	observability.SubmissionsAccepted().WithLabelValues(strconv.FormatBool(created.IsLate)).Inc()

	s.logger.Info().
		Uint("submission_id", created.ID).
		Uint("student_id", studentID).
		Uint("assignment_definition_id", assignmentDefID).
		Bool("is_late", created.IsLate).
		Msg("submission created")

	if s.events != nil {
		s.events.SubmissionCreated(ctx, response)
	}
	if s.dashboards != nil {
		s.dashboards.Invalidate(ctx, studentID)
	}

	return response, nil
}

func (s *submissionService) ListByStudent(ctx context.Context, studentID uint) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) ListByAssignment(ctx context.Context, assignmentDefID, instructorID uint) ([]dto.SubmissionResponse, error) {
	definition, err := s.assignments.GetByID(ctx, assignmentDefID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	if !definition.OwnedBy(instructorID) {
		return nil, ErrNotAssignmentOwner
	}

	submissions, err := s.submissions.ListByAssignment(ctx, assignmentDefID)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) OpenFile(ctx context.Context, submissionID, requesterID uint, role models.Role) (dto.SubmittedFileResponse, io.ReadCloser, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmittedFileResponse{}, nil, ErrSubmissionNotFound
		}
		return dto.SubmittedFileResponse{}, nil, err
	}

	switch role {
	case models.RoleStudent:
		if submission.StudentID != requesterID {
			return dto.SubmittedFileResponse{}, nil, ErrSubmissionAccessDenied
		}
	case models.RoleInstructor:
		if !submission.AssignmentDefinition.OwnedBy(requesterID) {
			return dto.SubmittedFileResponse{}, nil, ErrSubmissionAccessDenied
		}
	case models.RoleAdmin:
		return dto.SubmittedFileResponse{}, nil, ErrSubmissionAccessDenied
	default:
		return dto.SubmittedFileResponse{}, nil, ErrSubmissionAccessDenied
	}

	if !submission.SubmittedFile.Present() {
		return dto.SubmittedFileResponse{}, nil, ErrNoSubmittedFile
	}

	reader, err := s.store.Open(ctx, filestore.StoredFile{
		OriginalName: submission.SubmittedFile.OriginalName,
		MimeType:     submission.SubmittedFile.MimeType,
		StoredName:   submission.SubmittedFile.StoredName,
		StoredPath:   submission.SubmittedFile.StoredPath,
		SizeBytes:    submission.SubmittedFile.SizeBytes,
	})
	if err != nil {
		if errors.Is(err, filestore.ErrFileMissing) {
			s.logger.Warn().
				Uint("submission_id", submission.ID).
				Str("stored_name", submission.SubmittedFile.StoredName).
				Msg("stored file missing from backing storage")
			return dto.SubmittedFileResponse{}, nil, ErrStoredFileMissing
		}
		return dto.SubmittedFileResponse{}, nil, err
	}

	meta := dto.SubmittedFileResponse{
		OriginalName: submission.SubmittedFile.OriginalName,
		MimeType:     submission.SubmittedFile.MimeType,
		SizeBytes:    submission.SubmittedFile.SizeBytes,
	}

	return meta, reader, nil
}

func (s *submissionService) storeFile(ctx context.Context, file *multipart.FileHeader) (filestore.StoredFile, error) {
	ctx, span := s.tracer.Start(ctx, "submission.store_file")
	defer span.End()

	span.SetAttributes(
		attribute.String("upload.original_name", strings.TrimSpace(file.Filename)),
		attribute.Int64("upload.request_size", file.Size),
	)

	if file.Size > s.maxSize {
		span.RecordError(ErrSubmissionFileTooLarge)
		return filestore.StoredFile{}, ErrSubmissionFileTooLarge
	}

	detected, err := detectFileType(file)
	if err != nil {
		span.RecordError(err)
		return filestore.StoredFile{}, err
	}
	span.SetAttributes(attribute.String("upload.detected_mime", detected))

	handle, err := file.Open()
	if err != nil {
		return filestore.StoredFile{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer handle.Close()

	stored, err := s.store.Save(ctx, file.Filename, detected, io.LimitReader(handle, s.maxSize))
	if err != nil {
		span.RecordError(err)
		return filestore.StoredFile{}, fmt.Errorf("failed to store file: %w", err)
	}

	return stored, nil
}

func detectFileType(file *multipart.FileHeader) (string, error) {
	handle, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer handle.Close()

	mime, err := mimetype.DetectReader(handle)
	if err != nil {
		return "", fmt.Errorf("failed to detect file type: %w", err)
	}

	allowed := []string{
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/zip",
		"application/x-zip-compressed",
		"text/plain",
	}
	for _, candidate := range allowed {
		if mime.Is(candidate) {
			return mime.String(), nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrSubmissionFileType, mime.String())
}
