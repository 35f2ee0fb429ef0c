package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/campusworks/coursework-api/internal/dto"
	"github.com/campusworks/coursework-api/internal/models"
	"github.com/campusworks/coursework-api/internal/repository"
)

func newUserServiceForTest(t *testing.T, db *gorm.DB) UserService {
	t.Helper()

	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewUserService(
		repository.NewUserRepository(db),
		repository.NewAssignmentRepository(db),
		repository.NewSubmissionRepository(db),
		validate,
		zerolog.Nop(),
	)
}

func TestRosterCreateAndSearch(t *testing.T) {
	db := openTestDB(t)
	svc := newUserServiceForTest(t, db)

	created, err := svc.Create(context.Background(), models.RoleInstructor, dto.UserCreateRequest{
		Name:     "Ines Instructor",
		Email:    "Ines@Example.com",
		Password: "provisioned",
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleInstructor, created.Role)
	require.Equal(t, "ines@example.com", created.Email)

	found, err := svc.List(context.Background(), models.RoleInstructor, "ines")
	require.NoError(t, err)
	require.Len(t, found, 1)

	// The same search against the student roster finds nothing.
	none, err := svc.List(context.Background(), models.RoleStudent, "ines")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestRosterRoleMismatchReadsAsNotFound(t *testing.T) {
	db := openTestDB(t)
	student, _, _ := seedCoursework(t, db, time.Now().Add(24*time.Hour))
	svc := newUserServiceForTest(t, db)

	name := "Renamed"
	_, err := svc.Update(context.Background(), student.ID, models.RoleInstructor, dto.UserUpdateRequest{Name: &name})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestRosterDeleteGuardsDependents(t *testing.T) {
	db := openTestDB(t)
	student, instructor, definition := seedCoursework(t, db, time.Now().Add(24*time.Hour))
	svc := newUserServiceForTest(t, db)

	submission := models.Submission{
		AssignmentDefinitionID: definition.ID,
		StudentID:              student.ID,
		CourseID:               definition.CourseID,
		SubmissionText:         "work",
		SubmissionDate:         time.Now(),
	}
	require.NoError(t, db.Create(&submission).Error)

	err := svc.Delete(context.Background(), instructor.ID, models.RoleInstructor)
	require.ErrorIs(t, err, ErrUserHasDependents)

	err = svc.Delete(context.Background(), student.ID, models.RoleStudent)
	require.ErrorIs(t, err, ErrUserHasDependents)

	require.NoError(t, db.Delete(&submission).Error)
	require.NoError(t, svc.Delete(context.Background(), student.ID, models.RoleStudent))
}

func TestRosterResetPassword(t *testing.T) {
	db := openTestDB(t)
	svc := newUserServiceForTest(t, db)

	created, err := svc.Create(context.Background(), models.RoleStudent, dto.UserCreateRequest{
		Name:     "Jane Student",
		Email:    "jane@example.com",
		Password: "initial pass",
	})
	require.NoError(t, err)

	err = svc.ResetPassword(context.Background(), created.ID, models.RoleStudent, dto.UserResetPasswordRequest{
		NewPassword: "reset by admin",
	})
	require.NoError(t, err)

	auth := newAuthServiceForTest(t, db)
	_, err = auth.Login(context.Background(), dto.LoginRequest{
		Email:    "jane@example.com",
		Password: "reset by admin",
		Role:     "student",
	})
	require.NoError(t, err)
}
