package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/campusworks/coursework-api/internal/dto"
	"github.com/campusworks/coursework-api/internal/models"
	"github.com/campusworks/coursework-api/internal/repository"
)

var (
	// ErrUserNotFound indicates the account does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserHasDependents blocks deleting an account that assignment
	// definitions or submissions still reference. There is no cascade; the
	// guard runs at delete time.
	ErrUserHasDependents = errors.New("user is referenced by assignment definitions or submissions")
)

// UserService is the admin-facing roster: provisioning and maintenance of
// student and instructor accounts.
type UserService interface {
	List(ctx context.Context, role models.Role, search string) ([]dto.UserResponse, error)
	Create(ctx context.Context, role models.Role, payload dto.UserCreateRequest) (dto.UserResponse, error)
	Update(ctx context.Context, id uint, role models.Role, payload dto.UserUpdateRequest) (dto.UserResponse, error)
	ResetPassword(ctx context.Context, id uint, role models.Role, payload dto.UserResetPasswordRequest) error
	Delete(ctx context.Context, id uint, role models.Role) error
}

type userService struct {
	users       repository.UserRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewUserService constructs a roster service.
func NewUserService(userRepo repository.UserRepository, assignmentRepo repository.AssignmentRepository, submissionRepo repository.SubmissionRepository, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		users:       userRepo,
		assignments: assignmentRepo,
		submissions: submissionRepo,
		validator:   validate,
		logger:      logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) List(ctx context.Context, role models.Role, search string) ([]dto.UserResponse, error) {
	users, err := s.users.List(ctx, repository.UserFilter{Role: role, Search: search})
	if err != nil {
		return nil, err
	}

	return dto.NewUserResponseSlice(users), nil
}

func (s *userService) Create(ctx context.Context, role models.Role, payload dto.UserCreateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.UserResponse{}, err
	}

	user := models.User{
		Name:         strings.TrimSpace(payload.Name),
		Email:        strings.ToLower(strings.TrimSpace(payload.Email)),
		PasswordHash: string(hash),
		Role:         role,
	}

	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.UserResponse{}, ErrDuplicateEmail
		}
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", role.String()).Msg("account provisioned")

	return dto.NewUserResponse(user), nil
}

func (s *userService) Update(ctx context.Context, id uint, role models.Role, payload dto.UserUpdateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.getInRole(ctx, id, role)
	if err != nil {
		return dto.UserResponse{}, err
	}

	if payload.Name != nil {
		user.Name = strings.TrimSpace(*payload.Name)
	}

	if payload.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*payload.Email))
	}

	if err := s.users.Update(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.UserResponse{}, ErrDuplicateEmail
		}
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("account updated")

	return dto.NewUserResponse(user), nil
}

func (s *userService) ResetPassword(ctx context.Context, id uint, role models.Role, payload dto.UserResetPasswordRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	user, err := s.getInRole(ctx, id, role)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePasswordHash(ctx, user.ID, string(hash)); err != nil {
		return err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("password reset")
	return nil
}

func (s *userService) Delete(ctx context.Context, id uint, role models.Role) error {
	user, err := s.getInRole(ctx, id, role)
	if err != nil {
		return err
	}

	switch user.Role {
	case models.RoleInstructor:
		count, err := s.assignments.CountByInstructor(ctx, user.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrUserHasDependents
		}
	case models.RoleStudent:
		count, err := s.submissions.CountByStudent(ctx, user.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrUserHasDependents
		}
	case models.RoleAdmin:
		// Admins own no coursework records; nothing to guard.
	}

	if err := s.users.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role.String()).Msg("account deleted")
	return nil
}

// getInRole fetches the account and confirms it holds the expected role, so
// e.g. a student id passed to the instructor routes reads as not found.
func (s *userService) getInRole(ctx context.Context, id uint, role models.Role) (models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}

	if user.Role != role {
		return models.User{}, ErrUserNotFound
	}

	return user, nil
}
