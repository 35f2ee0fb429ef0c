package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/campusworks/coursework-api/internal/dto"
	"github.com/campusworks/coursework-api/internal/models"
	"github.com/campusworks/coursework-api/internal/repository"
)

var (
	// ErrAssignmentNotFound indicates the requested definition does not exist.
	ErrAssignmentNotFound = errors.New("assignment definition not found")
	// ErrNotAssignmentOwner indicates the acting instructor does not own the
	// definition.
	ErrNotAssignmentOwner = errors.New("not the owner of this assignment definition")
	// ErrAssignmentHasSubmissions blocks deleting a definition that students
	// have already submitted against.
	ErrAssignmentHasSubmissions = errors.New("assignment definition has submissions")
)

// AssignmentService exposes assignment-definition use cases. Mutations are
// restricted to the creating instructor.
type AssignmentService interface {
	List(ctx context.Context, actorID uint, role models.Role) ([]dto.AssignmentResponse, error)
	Get(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	Create(ctx context.Context, instructorID uint, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Update(ctx context.Context, id, instructorID uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, id, instructorID uint) error
}

type assignmentService struct {
	repo        repository.AssignmentRepository
	courses     repository.CourseRepository
	submissions repository.SubmissionRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssignmentService builds a new assignment service.
func NewAssignmentService(repo repository.AssignmentRepository, courseRepo repository.CourseRepository, submissionRepo repository.SubmissionRepository, validate *validator.Validate, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		repo:        repo,
		courses:     courseRepo,
		submissions: submissionRepo,
		validator:   validate,
		sanitizer:   bluemonday.UGCPolicy(),
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		now:         time.Now,
	}
}

// List returns the caller's view of the catalog: instructors see only their
// own definitions, students and admins see everything.
func (s *assignmentService) List(ctx context.Context, actorID uint, role models.Role) ([]dto.AssignmentResponse, error) {
	filter := repository.AssignmentFilter{}
	if role == models.RoleInstructor {
		filter.InstructorID = &actorID
	}

	definitions, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(definitions), nil
}

func (s *assignmentService) Get(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	definition, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(definition), nil
}

func (s *assignmentService) Create(ctx context.Context, instructorID uint, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	dueDate, err := time.Parse(time.RFC3339, payload.DueDate)
	if err != nil {
		return dto.AssignmentResponse{}, fmt.Errorf("invalid due date: %w", err)
	}

	if _, err := s.courses.GetByID(ctx, payload.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrCourseNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	points := float64(models.DefaultPointsPossible)
	if payload.PointsPossible != nil {
		points = *payload.PointsPossible
	}

	definition := models.AssignmentDefinition{
		Title:          payload.Title,
		Description:    s.sanitizer.Sanitize(payload.Description),
		CourseID:       payload.CourseID,
		InstructorID:   instructorID,
		DueDate:        dueDate,
		PointsPossible: points,
	}

	if err := s.repo.Create(ctx, &definition); err != nil {
		return dto.AssignmentResponse{}, err
	}

	created, err := s.repo.GetByID(ctx, definition.ID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_definition_id", created.ID).Uint("instructor_id", instructorID).Msg("assignment definition created")

	return dto.NewAssignmentResponse(created), nil
}

func (s *assignmentService) Update(ctx context.Context, id, instructorID uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	definition, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	if !definition.OwnedBy(instructorID) {
		return dto.AssignmentResponse{}, ErrNotAssignmentOwner
	}

	if payload.Title != nil {
		definition.Title = *payload.Title
	}

	if payload.Description != nil {
		definition.Description = s.sanitizer.Sanitize(*payload.Description)
	}

	if payload.DueDate != nil {
		dueDate, err := time.Parse(time.RFC3339, *payload.DueDate)
		if err != nil {
			return dto.AssignmentResponse{}, fmt.Errorf("invalid due date: %w", err)
		}
		// Lateness of existing submissions is fixed at their creation and is
		// deliberately not recomputed here.
		definition.DueDate = dueDate
	}

	if payload.PointsPossible != nil {
		definition.PointsPossible = *payload.PointsPossible
	}

	if err := s.repo.Update(ctx, &definition); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_definition_id", definition.ID).Msg("assignment definition updated")

	return dto.NewAssignmentResponse(definition), nil
}

func (s *assignmentService) Delete(ctx context.Context, id, instructorID uint) error {
	definition, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	if !definition.OwnedBy(instructorID) {
		return ErrNotAssignmentOwner
	}

	count, err := s.submissions.CountByAssignment(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrAssignmentHasSubmissions
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	s.logger.Info().Uint("assignment_definition_id", id).Msg("assignment definition deleted")
	return nil
}
