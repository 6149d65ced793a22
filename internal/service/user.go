package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	govalidator "github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/tuanvumaihuynh/digital-store/internal/apperr"
	"github.com/tuanvumaihuynh/digital-store/internal/model"
	"github.com/tuanvumaihuynh/digital-store/internal/repository"
	"github.com/tuanvumaihuynh/digital-store/internal/storage/db"
	"github.com/tuanvumaihuynh/digital-store/pkg/validator"
)

type RegisterParams struct {
	Username        string  `json:"username" validate:"required,min=3,max=50,username"`
	Email           string  `json:"email" validate:"required,email,max=255"`
	Password        string  `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string  `json:"confirm_password" validate:"required,eqfield=Password"`
	FirstName       *string `json:"first_name" validate:"omitempty,max=100"`
	LastName        *string `json:"last_name" validate:"omitempty,max=100"`
}

type LoginParams struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileParams struct {
	UserID    int64   `json:"-"`
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
}

type UserService interface {
	Register(ctx context.Context, params RegisterParams) (model.User, error)
	// Login returns apperr.InvalidCredentials for an unknown email and for a
	// wrong password alike.
	Login(ctx context.Context, params LoginParams) (model.User, error)
	UpdateProfile(ctx context.Context, params UpdateProfileParams) (model.User, error)
	// EnsureAdmin creates an admin account unless the email is already
	// registered. The bool reports whether an account was created.
	EnsureAdmin(ctx context.Context, params RegisterParams) (model.User, bool, error)
}

type userService struct {
	userRepo  repository.UserRepository
	validator validator.Validator
	logger    *slog.Logger
	hashCost  int
}

func NewUserService(logger *slog.Logger, v validator.Validator, userRepo repository.UserRepository) UserService {
	return &userService{
		userRepo:  userRepo,
		validator: v,
		logger:    logger.With(slog.String("service", "user")),
		hashCost:  bcrypt.DefaultCost,
	}
}

func (s *userService) Register(ctx context.Context, params RegisterParams) (model.User, error) {
	return s.createUser(ctx, params, model.RoleCustomer)
}

func (s *userService) EnsureAdmin(ctx context.Context, params RegisterParams) (model.User, bool, error) {
	exists, err := s.userRepo.EmailExists(ctx, strings.TrimSpace(params.Email))
	if err != nil {
		return model.User{}, false, fmt.Errorf("user repository email exists: %w", err)
	}
	if exists {
		return model.User{}, false, nil
	}

	u, err := s.createUser(ctx, params, model.RoleAdmin)
	if err != nil {
		return model.User{}, false, err
	}
	return u, true, nil
}

func (s *userService) createUser(ctx context.Context, params RegisterParams, role model.Role) (model.User, error) {
	params.Username = strings.TrimSpace(params.Username)
	params.Email = strings.TrimSpace(params.Email)
	params.FirstName = normalizeOptional(params.FirstName)
	params.LastName = normalizeOptional(params.LastName)

	if err := s.validate(params); err != nil {
		return model.User{}, err
	}

	taken, err := s.userRepo.UsernameExists(ctx, params.Username)
	if err != nil {
		return model.User{}, fmt.Errorf("user repository username exists: %w", err)
	}
	if taken {
		return model.User{}, apperr.UsernameTaken
	}

	taken, err = s.userRepo.EmailExists(ctx, params.Email)
	if err != nil {
		return model.User{}, fmt.Errorf("user repository email exists: %w", err)
	}
	if taken {
		return model.User{}, apperr.EmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.hashCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.userRepo.CreateUser(ctx, repository.CreateUserParams{
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: string(hash),
		Role:         role,
	})
	if err != nil {
		switch {
		case db.IsUniqueViolation(err, repository.UsernameUniqueConstraint):
			return model.User{}, apperr.UsernameTaken
		case db.IsUniqueViolation(err, repository.EmailUniqueConstraint):
			return model.User{}, apperr.EmailTaken
		default:
			return model.User{}, fmt.Errorf("user repository create user: %w", err)
		}
	}

	if params.FirstName != nil || params.LastName != nil {
		u, err = s.userRepo.UpdateUserProfile(ctx, u.ID, repository.UpdateUserProfileParams{
			FirstName: params.FirstName,
			LastName:  params.LastName,
		})
		if err != nil {
			return model.User{}, fmt.Errorf("user repository update user profile: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "user registered", slog.Int64("user_id", u.ID), slog.String("role", string(role)))
	return u, nil
}

func (s *userService) Login(ctx context.Context, params LoginParams) (model.User, error) {
	params.Email = strings.TrimSpace(params.Email)
	if err := s.validate(params); err != nil {
		return model.User{}, err
	}

	u, err := s.userRepo.GetUserByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, apperr.InvalidCredentials
		}
		return model.User{}, fmt.Errorf("user repository get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(params.Password)); err != nil {
		return model.User{}, apperr.InvalidCredentials
	}

	return u, nil
}

func (s *userService) UpdateProfile(ctx context.Context, params UpdateProfileParams) (model.User, error) {
	params.FirstName = normalizeOptional(params.FirstName)
	params.LastName = normalizeOptional(params.LastName)

	if err := s.validate(params); err != nil {
		return model.User{}, err
	}

	u, err := s.userRepo.UpdateUserProfile(ctx, params.UserID, repository.UpdateUserProfileParams{
		FirstName: params.FirstName,
		LastName:  params.LastName,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, apperr.UserNotFound
		}
		return model.User{}, fmt.Errorf("user repository update user profile: %w", err)
	}

	return u, nil
}

// validate runs struct validation and turns rule failures into a validation
// error carrying one message per failed field.
func (s *userService) validate(params any) error {
	err := s.validator.Validate(params)
	if err == nil {
		return nil
	}

	var validationErrs govalidator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return apperr.ValidationErr.WithDetails(validator.Messages(validationErrs)...).WrapParent(err)
	}

	return fmt.Errorf("validate: %w", err)
}
