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

func newCourseServiceForTest(t *testing.T, db *gorm.DB) CourseService {
	t.Helper()

	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewCourseService(
		repository.NewCourseRepository(db),
		repository.NewAssignmentRepository(db),
		validate,
		zerolog.Nop(),
	)
}

func TestCourseCreateNormalizesCode(t *testing.T) {
	db := openTestDB(t)
	svc := newCourseServiceForTest(t, db)

	created, err := svc.Create(context.Background(), dto.CourseCreateRequest{
		Name: "Operating Systems",
		Code: "  os201  ",
	})
	require.NoError(t, err)
	require.Equal(t, "OS201", created.Code)
}

func TestCourseCreateRejectsDuplicateCode(t *testing.T) {
	db := openTestDB(t)
	svc := newCourseServiceForTest(t, db)

	_, err := svc.Create(context.Background(), dto.CourseCreateRequest{Name: "Networks", Code: "NET300"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), dto.CourseCreateRequest{Name: "Networks Again", Code: "net300"})
	require.ErrorIs(t, err, ErrDuplicateCourseCode)
}

func TestCourseUpdateKeepsCodeImmutable(t *testing.T) {
	db := openTestDB(t)
	svc := newCourseServiceForTest(t, db)

	created, err := svc.Create(context.Background(), dto.CourseCreateRequest{Name: "Compilers", Code: "CC400"})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, dto.CourseUpdateRequest{Name: "Compiler Construction"})
	require.NoError(t, err)
	require.Equal(t, "Compiler Construction", updated.Name)
	require.Equal(t, "CC400", updated.Code)
}

func TestCourseDeleteBlockedWhileReferenced(t *testing.T) {
	db := openTestDB(t)
	_, _, definition := seedCoursework(t, db, time.Now().Add(24*time.Hour))
	svc := newCourseServiceForTest(t, db)

	err := svc.Delete(context.Background(), definition.CourseID)
	require.ErrorIs(t, err, ErrCourseInUse)

	require.NoError(t, db.Delete(&models.AssignmentDefinition{}, definition.ID).Error)
	require.NoError(t, svc.Delete(context.Background(), definition.CourseID))

	_, err = svc.Get(context.Background(), definition.CourseID)
	require.ErrorIs(t, err, ErrCourseNotFound)
}
