package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/campusworks/coursework-api/internal/config"
	"github.com/campusworks/coursework-api/internal/database"
	"github.com/campusworks/coursework-api/internal/handler"
	"github.com/campusworks/coursework-api/internal/middleware"
	"github.com/campusworks/coursework-api/internal/models"
	"github.com/campusworks/coursework-api/internal/repository"
	"github.com/campusworks/coursework-api/internal/router"
	"github.com/campusworks/coursework-api/internal/service"
	"github.com/campusworks/coursework-api/pkg/filestore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.AssignmentDefinition{},
		&models.Submission{},
		&models.GradeEvent{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Redis and NATS are optional; the services degrade to uncached and
	// event-free operation when the URLs are unset.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	store, err := buildFileStore(cfg, logger)
	if err != nil {
		log.Fatalf("failed to initialise file storage: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	events := service.NewEventPublisher(natsConn, cfg.EventSubjectBase, logger)

	authService := service.NewAuthService(userRepo, validate, cfg.JWTSecret, cfg.TokenTTL, logger)
	userService := service.NewUserService(userRepo, assignmentRepo, submissionRepo, validate, logger)
	courseService := service.NewCourseService(courseRepo, assignmentRepo, validate, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, courseRepo, submissionRepo, validate, logger)
	dashboardService := service.NewStudentDashboardService(assignmentRepo, submissionRepo, redisClient, cfg.DashboardCacheTTL, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, store, validate, events, dashboardService, cfg.UploadMaxSizeMB, logger)
	gradingService := service.NewGradingService(submissionRepo, validate, events, logger)
	seedService := service.NewSeedService(userRepo, courseRepo, cfg.SeedEnabled, cfg.SeedToken, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService),
		CourseHandler:     handler.NewCourseHandler(courseService),
		StudentHandler:    handler.NewUserHandler(userService, models.RoleStudent),
		InstructorHandler: handler.NewUserHandler(userService, models.RoleInstructor),
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, gradingService),
		DashboardHandler:  handler.NewDashboardHandler(dashboardService),
		SeedHandler:       handler.NewSeedHandler(seedService),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func buildFileStore(cfg config.Config, logger zerolog.Logger) (filestore.Store, error) {
	if cfg.StorageBackend == "cloudinary" {
		return filestore.NewCloudinaryStore(filestore.CloudinaryConfig{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryFolder,
		}, logger)
	}

	return filestore.NewLocalStore(cfg.UploadDir, logger)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
