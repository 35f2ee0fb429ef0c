package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/campusworks/coursework-api/internal/config"
	"github.com/campusworks/coursework-api/internal/handler"
	"github.com/campusworks/coursework-api/internal/middleware"
	"github.com/campusworks/coursework-api/internal/models"
	"github.com/campusworks/coursework-api/internal/repository"
	"github.com/campusworks/coursework-api/internal/router"
	"github.com/campusworks/coursework-api/internal/service"
	"github.com/campusworks/coursework-api/internal/utils"
	"github.com/campusworks/coursework-api/pkg/filestore"
)

// headerClaimMiddleware stands in for JWT verification: tests pick an identity
// per request via X-Test-User and X-Test-Role headers.
func headerClaimMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, err := models.ParseRole(c.Get("X-Test-Role"))
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, utils.KindUnauthenticated, "authentication required")
		}

		id, err := strconv.ParseUint(c.Get("X-Test-User"), 10, 64)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, utils.KindUnauthenticated, "authentication required")
		}

		middleware.SetClaim(c, middleware.Claim{ID: uint(id), Role: role})
		return c.Next()
	}
}

func setupTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.AssignmentDefinition{},
		&models.Submission{},
		&models.GradeEvent{},
	))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.Nop()

	store, err := filestore.NewLocalStore(t.TempDir(), logger)
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	authService := service.NewAuthService(userRepo, validate, "test-secret", time.Hour, logger)
	userService := service.NewUserService(userRepo, assignmentRepo, submissionRepo, validate, logger)
	courseService := service.NewCourseService(courseRepo, assignmentRepo, validate, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, courseRepo, submissionRepo, validate, logger)
	dashboardService := service.NewStudentDashboardService(assignmentRepo, submissionRepo, nil, time.Minute, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, store, validate, nil, dashboardService, 10, logger)
	gradingService := service.NewGradingService(submissionRepo, validate, nil, logger)
	seedService := service.NewSeedService(userRepo, courseRepo, true, "seed-token", logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", AppEnv: "test"}, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService),
		CourseHandler:     handler.NewCourseHandler(courseService),
		StudentHandler:    handler.NewUserHandler(userService, models.RoleStudent),
		InstructorHandler: handler.NewUserHandler(userService, models.RoleInstructor),
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, gradingService),
		DashboardHandler:  handler.NewDashboardHandler(dashboardService),
		SeedHandler:       handler.NewSeedHandler(seedService),
		JWTMiddleware:     headerClaimMiddleware(),
	})

	return app, db
}

func seedPortal(t *testing.T, db *gorm.DB) (models.User, models.User, models.AssignmentDefinition) {
	t.Helper()

	student := models.User{Name: "Jane Student", Email: "jane@example.com", PasswordHash: "x", Role: models.RoleStudent}
	require.NoError(t, db.Create(&student).Error)

	instructor := models.User{Name: "Ines Instructor", Email: "ines@example.com", PasswordHash: "x", Role: models.RoleInstructor}
	require.NoError(t, db.Create(&instructor).Error)

	course := models.Course{Name: "Databases", Code: "DB101"}
	require.NoError(t, db.Create(&course).Error)

	definition := models.AssignmentDefinition{
		Title:          "Normalization Exercise",
		Description:    "Normalize the provided schema",
		CourseID:       course.ID,
		InstructorID:   instructor.ID,
		DueDate:        time.Now().Add(24 * time.Hour),
		PointsPossible: 100,
	}
	require.NoError(t, db.Create(&definition).Error)

	return student, instructor, definition
}

func actAs(req *http.Request, user models.User) {
	req.Header.Set("X-Test-User", strconv.FormatUint(uint64(user.ID), 10))
	req.Header.Set("X-Test-Role", user.Role.String())
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()

	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func decodeError(t *testing.T, resp *http.Response) utils.APIError {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Error   *utils.APIError `json:"error"`
	}
	decodeResponse(t, resp, &envelope)
	require.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)

	return *envelope.Error
}
