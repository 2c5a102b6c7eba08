package service

import (
	"context"
	"errors"

	"shortlink/internal/middleware"
	"shortlink/internal/models"
	"shortlink/internal/observability"
	"shortlink/internal/repository"
	"shortlink/internal/validation"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo   repository.UserRepository
	bcryptCost int
	dummyHash  []byte
}

type RegisterInput struct {
	Username        string
	Password        string
	ConfirmPassword string
	Name            string
}

// NewUserService returns a UserService. A cost outside bcrypt's range falls back to bcrypt.DefaultCost.
func NewUserService(userRepo repository.UserRepository, bcryptCost int) *UserService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcryptCost)
	return &UserService{userRepo: userRepo, bcryptCost: bcryptCost, dummyHash: dummy}
}

// Register validates in, stores a bcrypt hash of the password and returns the new user.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	user, err := s.register(ctx, in)
	recordAuthEvent("register", err)
	return user, err
}

func (s *UserService) register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if in.Password != in.ConfirmPassword {
		return nil, models.NewPasswordMismatchError()
	}

	existing, err := s.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewDuplicateUsernameError(in.Username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, models.NewValidationError("password must be at most 72 bytes")
		}
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:     in.Username,
		PasswordHash: string(hash),
		Name:         in.Name,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	middleware.LoggerFromContext(ctx).Info("user registered",
		zap.Uint("new_user_id", user.ID),
		zap.String("username", user.Username),
	)
	return user, nil
}

// Authenticate returns the user whose password matches. Unknown usernames and
// wrong passwords produce the same error.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.authenticate(ctx, username, password)
	recordAuthEvent("login", err)
	return user, err
}

func (s *UserService) authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, models.NewAuthenticationError()
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Same bcrypt work as a wrong password.
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, models.NewAuthenticationError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, models.NewAuthenticationError()
	}
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func recordAuthEvent(event string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	observability.AuthEvents.WithLabelValues(event, result).Inc()
}
