package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/campusworks/coursework-api/internal/config"
	"github.com/campusworks/coursework-api/internal/handler"
	"github.com/campusworks/coursework-api/internal/middleware"
	"github.com/campusworks/coursework-api/internal/models"
	"github.com/campusworks/coursework-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	CourseHandler     *handler.CourseHandler
	StudentHandler    *handler.UserHandler
	InstructorHandler *handler.UserHandler
	AssignmentHandler *handler.AssignmentHandler
	SubmissionHandler *handler.SubmissionHandler
	DashboardHandler  *handler.DashboardHandler
	SeedHandler       *handler.SeedHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Auth
	if deps.AuthHandler != nil {
		auth := api.Group("/auth")
		auth.Post("/login", middleware.RateLimit("login", 10, time.Minute), deps.AuthHandler.Login)
		auth.Post("/register", middleware.RateLimit("register", 5, time.Minute), deps.AuthHandler.Register)

		api.Patch("/users/me/password", jwtMiddleware, deps.AuthHandler.ChangePassword)
	}

	// Course catalog: reads for any authenticated user, writes admin-only.
	if deps.CourseHandler != nil {
		courses := api.Group("/courses", jwtMiddleware)
		courses.Get("/", deps.CourseHandler.List)
		courses.Get("/:id", deps.CourseHandler.Get)

		adminOnly := middleware.RequireRole(models.RoleAdmin)
		courses.Post("/", adminOnly, deps.CourseHandler.Create)
		courses.Patch("/:id", adminOnly, deps.CourseHandler.Update)
		courses.Delete("/:id", adminOnly, deps.CourseHandler.Delete)
	}

	// Admin roster. The JWT/RBAC guard hangs off the roster subgroups, not the
	// /admin prefix: group middleware is prefix-matched, and the seed route
	// below must stay reachable without a token.
	admin := api.Group("/admin")
	adminOnly := middleware.RequireRole(models.RoleAdmin)
	registerRoster := func(group fiber.Router, h *handler.UserHandler) {
		group.Get("/", h.List)
		group.Post("/", h.Create)
		group.Patch("/:id", h.Update)
		group.Patch("/:id/password", h.ResetPassword)
		group.Delete("/:id", h.Delete)
	}
	if deps.StudentHandler != nil {
		registerRoster(admin.Group("/students", jwtMiddleware, adminOnly), deps.StudentHandler)
	}
	if deps.InstructorHandler != nil {
		registerRoster(admin.Group("/instructors", jwtMiddleware, adminOnly), deps.InstructorHandler)
	}
	if deps.SeedHandler != nil {
		// Token-gated independently of JWT auth so the very first admin can be
		// bootstrapped.
		admin.Post("/seed", middleware.RateLimit("seed", 3, time.Minute), deps.SeedHandler.Seed)
	}

	// Assignment definitions
	if deps.AssignmentHandler != nil {
		assignments := api.Group("/assignment-definitions", jwtMiddleware)
		assignments.Get("/", deps.AssignmentHandler.List)
		assignments.Get("/:id", deps.AssignmentHandler.Get)

		instructorOnly := middleware.RequireRole(models.RoleInstructor)
		assignments.Post("/", instructorOnly, deps.AssignmentHandler.Create)
		assignments.Patch("/:id", instructorOnly, deps.AssignmentHandler.Update)
		assignments.Delete("/:id", instructorOnly, deps.AssignmentHandler.Delete)

		if deps.SubmissionHandler != nil {
			assignments.Post("/:id/submissions", middleware.RequireRole(models.RoleStudent), deps.SubmissionHandler.Create)
			assignments.Get("/:id/submissions", instructorOnly, deps.SubmissionHandler.ListByAssignment)
		}
	}

	// Submission ledger
	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware)
		submissions.Get("/mine", middleware.RequireRole(models.RoleStudent), deps.SubmissionHandler.ListMine)
		submissions.Patch("/:id/grade", middleware.RequireRole(models.RoleInstructor), deps.SubmissionHandler.Grade)
		submissions.Get("/:id/file", middleware.RequireRole(models.RoleStudent, models.RoleInstructor), deps.SubmissionHandler.DownloadFile)
	}

	// Student dashboard
	if deps.DashboardHandler != nil {
		student := api.Group("/student", jwtMiddleware, middleware.RequireRole(models.RoleStudent))
		student.Get("/dashboard", deps.DashboardHandler.Student)
	}
}
