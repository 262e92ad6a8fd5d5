package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/shoplist/shoplist-go/internal/apperror"
	"github.com/shoplist/shoplist-go/internal/crypto"
	"github.com/shoplist/shoplist-go/internal/metrics"
	"github.com/shoplist/shoplist-go/internal/model"
	"github.com/shoplist/shoplist-go/internal/repository"
)

var (
	ErrCredentialsRequired = apperror.Validation("username and password are required")
	ErrCredentialsTooLong  = apperror.Validation("username or password is too long")
	ErrUsernameTaken       = apperror.Conflict("username already exists")
	ErrInvalidCredentials  = apperror.Auth("invalid credentials")
)

// AuthService handles registration and login.
type AuthService struct {
	repo     *repository.UserRepository
	hasher   *crypto.PasswordHasher
	tokens   *crypto.TokenService
	validate *validator.Validate

	// dummyHash is compared against when the username is unknown so that
	// both login failures cost the same.
	dummyHash func() string
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo *repository.UserRepository, hasher *crypto.PasswordHasher, tokens *crypto.TokenService) *AuthService {
	return &AuthService{
		repo:     repo,
		hasher:   hasher,
		tokens:   tokens,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		dummyHash: sync.OnceValue(func() string {
			h, err := hasher.Hash("shoplist-dummy-password")
			if err != nil {
				slog.Error("generating dummy password hash", "error", err)
			}
			return h
		}),
	}
}

// Register creates a new user account and returns its ID.
func (s *AuthService) Register(ctx context.Context, req model.CreateUserRequest) (string, error) {
	if err := s.validateCredentials(req); err != nil {
		return "", err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return "", err
	}

	user := &model.User{
		Username:     req.Username,
		PasswordHash: hash,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return "", ErrUsernameTaken
		}
		return "", err
	}

	slog.Info("user registered", "user_id", user.ID)
	return user.ID, nil
}

func (s *AuthService) validateCredentials(req model.CreateUserRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return ErrCredentialsRequired
		}
	}
	return ErrCredentialsTooLong
}

// Login authenticates a user and returns a bearer token. Unknown usernames
// and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			_, _ = s.hasher.Verify(req.Password, s.dummyHash())
			metrics.LoginAttemptsTotal.WithLabelValues("invalid").Inc()
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return model.AuthResponse{}, err
	}

	match, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		slog.Error("stored password hash is unreadable", "user_id", user.ID, "error", err)
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return model.AuthResponse{}, err
	}
	if !match {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid").Inc()
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	issued, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return model.AuthResponse{}, err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("ok").Inc()
	return model.AuthResponse{
		Token: issued.Token,
		User: model.UserResponse{
			ID:       user.ID,
			Username: user.Username,
		},
	}, nil
}
