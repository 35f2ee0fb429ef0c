package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/campusworks/coursework-api/internal/dto"
	"github.com/campusworks/coursework-api/internal/models"
	"github.com/campusworks/coursework-api/internal/repository"
)

func gradePayload(grade float64, feedback string) dto.GradeSubmissionRequest {
	return dto.GradeSubmissionRequest{Grade: &grade, Feedback: &feedback}
}

func TestGradeRecordsAndOverwrites(t *testing.T) {
	db := openTestDB(t)
	student, instructor, definition := seedCoursework(t, db, time.Now().Add(24*time.Hour))

	submission := models.Submission{
		AssignmentDefinitionID: definition.ID,
		StudentID:              student.ID,
		CourseID:               definition.CourseID,
		SubmissionText:         "work",
		SubmissionDate:         time.Now(),
	}
	require.NoError(t, db.Create(&submission).Error)

	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewGradingService(repository.NewSubmissionRepository(db), validate, nil, zerolog.Nop())

	first, err := svc.Grade(context.Background(), submission.ID, instructor.ID, gradePayload(72, "solid start"))
	require.NoError(t, err)
	require.NotNil(t, first.Grade)
	require.Equal(t, 72.0, *first.Grade)
	require.Equal(t, "solid start", *first.Feedback)

	// Regrading overwrites both fields wholesale.
	second, err := svc.Grade(context.Background(), submission.ID, instructor.ID, gradePayload(88, ""))
	require.NoError(t, err)
	require.Equal(t, 88.0, *second.Grade)
	require.Equal(t, "", *second.Feedback)

	var events []models.GradeEvent
	require.NoError(t, db.Where("submission_id = ?", submission.ID).Order("id ASC").Find(&events).Error)
	require.Len(t, events, 2)
	require.Equal(t, 72.0, events[0].Score)
	require.Empty(t, events[0].Payload)
	require.Equal(t, 88.0, events[1].Score)
	require.Contains(t, string(events[1].Payload), "previous_grade")
}

func TestGradeRejectsOutOfRange(t *testing.T) {
	db := openTestDB(t)
	student, instructor, definition := seedCoursework(t, db, time.Now().Add(24*time.Hour))

	submission := models.Submission{
		AssignmentDefinitionID: definition.ID,
		StudentID:              student.ID,
		CourseID:               definition.CourseID,
		SubmissionText:         "work",
		SubmissionDate:         time.Now(),
	}
	require.NoError(t, db.Create(&submission).Error)

	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewGradingService(repository.NewSubmissionRepository(db), validate, nil, zerolog.Nop())

	_, err := svc.Grade(context.Background(), submission.ID, instructor.ID, gradePayload(-1, "no"))
	require.ErrorIs(t, err, ErrGradeOutOfRange)

	_, err = svc.Grade(context.Background(), submission.ID, instructor.ID, gradePayload(definition.PointsPossible+0.5, "no"))
	require.ErrorIs(t, err, ErrGradeOutOfRange)

	// The bound is inclusive at both ends.
	_, err = svc.Grade(context.Background(), submission.ID, instructor.ID, gradePayload(definition.PointsPossible, "full marks"))
	require.NoError(t, err)
}

func TestGradeRequiresOwnership(t *testing.T) {
	db := openTestDB(t)
	student, _, definition := seedCoursework(t, db, time.Now().Add(24*time.Hour))

	submission := models.Submission{
		AssignmentDefinitionID: definition.ID,
		StudentID:              student.ID,
		CourseID:               definition.CourseID,
		SubmissionText:         "work",
		SubmissionDate:         time.Now(),
	}
	require.NoError(t, db.Create(&submission).Error)

	other := models.User{Name: "Omar Other", Email: "omar@example.com", PasswordHash: "x", Role: models.RoleInstructor}
	require.NoError(t, db.Create(&other).Error)

	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewGradingService(repository.NewSubmissionRepository(db), validate, nil, zerolog.Nop())

	_, err := svc.Grade(context.Background(), submission.ID, other.ID, gradePayload(50, "not yours"))
	require.ErrorIs(t, err, ErrNotAssignmentOwner)
}

func TestGradeUnknownSubmission(t *testing.T) {
	db := openTestDB(t)
	_, instructor, _ := seedCoursework(t, db, time.Now().Add(24*time.Hour))

	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewGradingService(repository.NewSubmissionRepository(db), validate, nil, zerolog.Nop())

	_, err := svc.Grade(context.Background(), 9999, instructor.ID, gradePayload(10, "?"))
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestGradeRequiresBothFields(t *testing.T) {
	db := openTestDB(t)
	student, instructor, definition := seedCoursework(t, db, time.Now().Add(24*time.Hour))

	submission := models.Submission{
		AssignmentDefinitionID: definition.ID,
		StudentID:              student.ID,
		CourseID:               definition.CourseID,
		SubmissionText:         "work",
		SubmissionDate:         time.Now(),
	}
	require.NoError(t, db.Create(&submission).Error)

	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewGradingService(repository.NewSubmissionRepository(db), validate, nil, zerolog.Nop())

	grade := 50.0
	_, err := svc.Grade(context.Background(), submission.ID, instructor.ID, dto.GradeSubmissionRequest{Grade: &grade})
	require.Error(t, err)
}
