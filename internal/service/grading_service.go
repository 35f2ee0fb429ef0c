package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/campusworks/coursework-api/internal/dto"
	"github.com/campusworks/coursework-api/internal/models"
	"github.com/campusworks/coursework-api/internal/observability"
	"github.com/campusworks/coursework-api/internal/repository"
)

// ErrGradeOutOfRange indicates the grade falls outside [0, pointsPossible].
var ErrGradeOutOfRange = errors.New("grade outside the assignment's points range")

// GradingService records grades on submissions. Repeated grading calls
// overwrite grade and feedback wholesale; every call appends a history event.
type GradingService interface {
	Grade(ctx context.Context, submissionID, instructorID uint, payload dto.GradeSubmissionRequest) (dto.SubmissionResponse, error)
}

type gradingService struct {
	submissions repository.SubmissionRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	events      EventPublisher
	logger      zerolog.Logger
}

// NewGradingService constructs a GradingService instance. events may be nil.
func NewGradingService(subRepo repository.SubmissionRepository, validate *validator.Validate, events EventPublisher, logger zerolog.Logger) GradingService {
	return &gradingService{
		submissions: subRepo,
		validator:   validate,
		sanitizer:   bluemonday.UGCPolicy(),
		events:      events,
		logger:      logger.With().Str("component", "grading_service").Logger(),
	}
}

func (s *gradingService) Grade(ctx context.Context, submissionID, instructorID uint, payload dto.GradeSubmissionRequest) (dto.SubmissionResponse, error) {
	// Both fields are required; empty-string feedback is valid, an absent
	// feedback field is not.
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if !submission.AssignmentDefinition.OwnedBy(instructorID) {
		return dto.SubmissionResponse{}, ErrNotAssignmentOwner
	}

	grade := *payload.Grade
	if grade < 0 || grade > submission.AssignmentDefinition.PointsPossible {
		return dto.SubmissionResponse{}, ErrGradeOutOfRange
	}

	feedback := s.sanitizer.Sanitize(*payload.Feedback)

	event := &models.GradeEvent{
		SubmissionID: submission.ID,
		GradedBy:     instructorID,
		Score:        grade,
		Feedback:     feedback,
	}
	if previous := submission.Grade; previous != nil {
		payload, marshalErr := json.Marshal(map[string]interface{}{
			"previous_grade": *previous,
		})
		if marshalErr != nil {
			// The event still records the new score; only the history payload
			// is lost.
			s.logger.Warn().
				Err(marshalErr).
				Uint("submission_id", submission.ID).
				Msg("failed to encode previous grade payload")
		} else {
			event.Payload = datatypes.JSON(payload)
		}
	}

	graded, err := s.submissions.UpdateGrade(ctx, submission.ID, grade, feedback, event)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	response := dto.NewSubmissionResponse(graded)
	observability.GradesRecorded().Inc()

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("instructor_id", instructorID).
		Float64("grade", grade).
		Msg("submission graded")

	if s.events != nil {
		s.events.SubmissionGraded(ctx, response)
	}

	return response, nil
}
