package service

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/campusworks/coursework-api/internal/models"
	"github.com/campusworks/coursework-api/internal/repository"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
	// ErrSeedPayloadInvalid indicates the payload failed schema validation.
	ErrSeedPayloadInvalid = errors.New("seed payload does not match schema")
)

const seedSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "admin": {
      "type": "object",
      "properties": {
        "name": {"type": "string", "minLength": 2},
        "email": {"type": "string", "format": "email"},
        "password": {"type": "string", "minLength": 8}
      },
      "required": ["name", "email", "password"]
    },
    "courses": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string", "minLength": 2},
          "code": {"type": "string", "minLength": 2}
        },
        "required": ["name", "code"]
      }
    }
  },
  "additionalProperties": false
}`

// SeedPayload is the decoded shape of a validated seed request.
type SeedPayload struct {
	Admin *struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	} `json:"admin"`
	Courses []struct {
		Name string `json:"name"`
		Code string `json:"code"`
	} `json:"courses"`
}

// SeedResult reports what the seed run created.
type SeedResult struct {
	AdminCreated   bool `json:"admin_created"`
	CoursesCreated int  `json:"courses_created"`
}

// SeedService bootstraps the initial admin account and course catalog from a
// token-gated, schema-validated payload.
type SeedService interface {
	Seed(ctx context.Context, token string, raw []byte) (SeedResult, error)
}

type seedService struct {
	users   repository.UserRepository
	courses repository.CourseRepository
	schema  *jsonschema.Schema
	enabled bool
	token   string
	logger  zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(userRepo repository.UserRepository, courseRepo repository.CourseRepository, enabled bool, token string, logger zerolog.Logger) SeedService {
	schema := jsonschema.MustCompileString("seed.json", seedSchemaJSON)

	return &seedService{
		users:   userRepo,
		courses: courseRepo,
		schema:  schema,
		enabled: enabled,
		token:   token,
		logger:  logger.With().Str("component", "seed_service").Logger(),
	}
}

func (s *seedService) Seed(ctx context.Context, token string, raw []byte) (SeedResult, error) {
	if !s.enabled {
		return SeedResult{}, ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return SeedResult{}, ErrSeedUnauthorized
	}

	var document interface{}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&document); err != nil {
		return SeedResult{}, fmt.Errorf("%w: %v", ErrSeedPayloadInvalid, err)
	}

	if err := s.schema.Validate(document); err != nil {
		return SeedResult{}, fmt.Errorf("%w: %v", ErrSeedPayloadInvalid, err)
	}

	var payload SeedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return SeedResult{}, fmt.Errorf("%w: %v", ErrSeedPayloadInvalid, err)
	}

	result := SeedResult{}

	if payload.Admin != nil {
		created, err := s.seedAdmin(ctx, payload.Admin.Name, payload.Admin.Email, payload.Admin.Password)
		if err != nil {
			return SeedResult{}, err
		}
		result.AdminCreated = created
	}

	for _, course := range payload.Courses {
		if err := s.courses.Create(ctx, &models.Course{
			Name: strings.TrimSpace(course.Name),
			Code: strings.ToUpper(strings.TrimSpace(course.Code)),
		}); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			return SeedResult{}, err
		}
		result.CoursesCreated++
	}

	s.logger.Info().
		Bool("admin_created", result.AdminCreated).
		Int("courses_created", result.CoursesCreated).
		Msg("seed applied")

	return result, nil
}

func (s *seedService) seedAdmin(ctx context.Context, name, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.users.GetByEmailAndRole(ctx, email, models.RoleAdmin); err == nil {
		return false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}

	admin := models.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}

	if err := s.users.Create(ctx, &admin); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (s *seedService) validateToken(token string) bool {
	expected := strings.TrimSpace(s.token)
	if expected == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.TrimSpace(token))) == 1
}
