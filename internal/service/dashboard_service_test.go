package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/campusworks/coursework-api/internal/models"
	"github.com/campusworks/coursework-api/internal/repository"
)

func TestStudentDashboardAggregationAndCaching(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	db := openTestDB(t)
	student, instructor, definition := seedCoursework(t, db, time.Now().Add(24*time.Hour))

	second := models.AssignmentDefinition{
		Title:          "Query Tuning",
		Description:    "Tune the slow queries",
		CourseID:       definition.CourseID,
		InstructorID:   instructor.ID,
		DueDate:        time.Now().Add(48 * time.Hour),
		PointsPossible: 100,
	}
	require.NoError(t, db.Create(&second).Error)

	third := models.AssignmentDefinition{
		Title:          "Backup Plan",
		Description:    "Design the backup strategy",
		CourseID:       definition.CourseID,
		InstructorID:   instructor.ID,
		DueDate:        time.Now().Add(-24 * time.Hour),
		PointsPossible: 100,
	}
	require.NoError(t, db.Create(&third).Error)

	grade := 91.0
	feedback := "well done"
	submissions := []models.Submission{
		{
			AssignmentDefinitionID: definition.ID,
			StudentID:              student.ID,
			CourseID:               definition.CourseID,
			SubmissionText:         "on time, graded",
			SubmissionDate:         time.Now(),
			Grade:                  &grade,
			Feedback:               &feedback,
		},
		{
			AssignmentDefinitionID: third.ID,
			StudentID:              student.ID,
			CourseID:               third.CourseID,
			SubmissionText:         "late, ungraded",
			SubmissionDate:         time.Now(),
			IsLate:                 true,
		},
	}
	for i := range submissions {
		require.NoError(t, db.Create(&submissions[i]).Error)
	}

	svc := NewStudentDashboardService(
		repository.NewAssignmentRepository(db),
		repository.NewSubmissionRepository(db),
		redisClient,
		time.Minute,
		zerolog.Nop(),
	)

	ctx := context.Background()
	first, err := svc.GetDashboard(ctx, student.ID)
	require.NoError(t, err)
	require.Equal(t, 3, first.TotalAssignments)
	require.Equal(t, 2, first.Submitted)
	require.Equal(t, 1, first.Pending)
	require.Equal(t, 1, first.Graded)
	require.Equal(t, 1, first.Late)
	require.Len(t, first.RecentSubmissions, 2)

	// Change the database underneath; the cached response must come back
	// unchanged until invalidated.
	require.NoError(t, db.Delete(&models.AssignmentDefinition{}, second.ID).Error)

	cached, err := svc.GetDashboard(ctx, student.ID)
	require.NoError(t, err)
	require.Equal(t, first, cached)

	svc.Invalidate(ctx, student.ID)

	fresh, err := svc.GetDashboard(ctx, student.ID)
	require.NoError(t, err)
	require.Equal(t, 2, fresh.TotalAssignments)
	require.Equal(t, 0, fresh.Pending)
}

func TestStudentDashboardWithoutCache(t *testing.T) {
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

	svc := NewStudentDashboardService(
		repository.NewAssignmentRepository(db),
		repository.NewSubmissionRepository(db),
		nil,
		time.Minute,
		zerolog.Nop(),
	)

	// Invalidate on a cacheless service is a no-op, not a panic.
	svc.Invalidate(context.Background(), student.ID)

	dashboard, err := svc.GetDashboard(context.Background(), student.ID)
	require.NoError(t, err)
	require.Equal(t, 1, dashboard.TotalAssignments)
	require.Equal(t, 1, dashboard.Submitted)
	require.Equal(t, 0, dashboard.Pending)
}
