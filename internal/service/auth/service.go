package auth

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"log/slog"

	"github.com/splax/jot/internal/domain"
	"github.com/splax/jot/internal/repository"
	"github.com/splax/jot/pkg/config"
	"github.com/splax/jot/pkg/crypto"
	jwtpkg "github.com/splax/jot/pkg/jwt"
)

var (
	// ErrEmailTaken signals a registration attempt with an email that is
	// already in use.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials covers both unknown email and wrong password so
	// the boundary cannot tell callers which one it was.
	ErrInvalidCredentials = errors.New("incorrect credentials")

	errUnauthenticated = errors.New("authentication failed")
)

// Service handles registration, login, and bearer-token authorization.
type Service struct {
	users  repository.UserRepository
	logger *slog.Logger
	cfg    config.Config
}

// New constructs a Service.
func New(users repository.UserRepository, logger *slog.Logger, cfg config.Config) Service {
	return Service{users: users, logger: logger, cfg: cfg}
}

// Register creates a new account with a hashed credential.
func (s Service) Register(ctx context.Context, email, password string, fullName *string) (*domain.User, error) {
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Email:          email,
		HashedPassword: string(hash),
		FullName:       fullName,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies credentials and returns a signed access token. Unknown
// email and wrong password are indistinguishable to the caller.
func (s Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if err := crypto.ComparePassword([]byte(user.HashedPassword), password); err != nil {
		return "", ErrInvalidCredentials
	}
	token, err := jwtpkg.GenerateToken(strconv.FormatInt(user.ID, 10), s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return "", err
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	return token, nil
}

// Authorize validates a bearer token and resolves it to a user. Every
// failure mode collapses to the same error so that a missing subject, a
// forged signature, an expired token, and an unknown user all look alike.
func (s Service) Authorize(ctx context.Context, token string) (*domain.User, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return nil, errUnauthenticated
	}
	claims, err := jwtpkg.Parse(trimmed, s.cfg.JWTSecret)
	if err != nil {
		return nil, errUnauthenticated
	}
	if claims.Subject == "" {
		return nil, errUnauthenticated
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, errUnauthenticated
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, errUnauthenticated
	}
	return user, nil
}
