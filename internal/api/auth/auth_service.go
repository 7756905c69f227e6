package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/taskvault/taskvault-api/app/observability/metrics"
	"github.com/taskvault/taskvault-api/internal/types"
)

var _ AuthService = (*AuthServiceImpl)(nil)

type AuthService interface {
	// Register validates and persists a new user, returning it without the
	// credential hash. types.ErrValidation for bad input, types.ErrConflict
	// when username or email is taken.
	Register(ctx context.Context, username, email, password string) (*types.UserAuth, error)

	// Login verifies credentials and issues a session token. Unknown email
	// and wrong password fail identically with types.ErrUnauthenticated.
	Login(ctx context.Context, email, password string) (*types.UserAuth, string, error)
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

type AuthServiceImpl struct {
	logger *slog.Logger
	repo   AuthRepo
	hasher PasswordHasher
	tokens TokenService
}

// NewAuthService creates a new auth service instance.
func NewAuthService(repo AuthRepo, hasher PasswordHasher, tokens TokenService, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		logger: logger,
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, username, email, password string) (*types.UserAuth, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Register", trace.WithAttributes(
		attribute.String("user.username", username),
	))
	defer span.End()

	start := time.Now()
	m := metrics.Get()
	defer func() {
		m.RegisterRequestsTotal.Add(ctx, 1)
		m.RegisterDurationSeconds.Record(ctx, time.Since(start).Seconds())
	}()

	l := s.logger.With(slog.String("method", "Register"), slog.String("username", username))

	if username == "" || email == "" || password == "" {
		span.SetStatus(codes.Error, "Missing required fields")
		return nil, fmt.Errorf("username, email and password are required: %w", types.ErrValidation)
	}
	if !emailRegex.MatchString(email) {
		span.SetStatus(codes.Error, "Invalid email syntax")
		return nil, fmt.Errorf("invalid email address: %w", types.ErrValidation)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		l.ErrorContext(ctx, "Failed to hash password", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Password hashing failed")
		return nil, fmt.Errorf("error processing credentials: %w", types.ErrInternal)
	}

	user, err := s.repo.CreateUser(ctx, username, email, hash)
	if err != nil {
		if !errors.Is(err, types.ErrConflict) {
			l.ErrorContext(ctx, "Failed to create user", slog.Any("error", err))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "User creation failed")
		return nil, err
	}

	// Never hand the hash back out, even internally sanitized by json:"-".
	user.PasswordHash = ""

	l.InfoContext(ctx, "User registered", slog.String("userID", user.ID))
	span.SetStatus(codes.Ok, "User registered")
	return user, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*types.UserAuth, string, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Login")
	defer span.End()

	start := time.Now()
	m := metrics.Get()
	defer func() {
		m.LoginRequestsTotal.Add(ctx, 1)
		m.LoginDurationSeconds.Record(ctx, time.Since(start).Seconds())
	}()

	l := s.logger.With(slog.String("method", "Login"))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			// Same failure as a wrong password; do not reveal whether the
			// account exists.
			span.SetStatus(codes.Error, "Invalid credentials")
			return nil, "", fmt.Errorf("invalid credentials: %w", types.ErrUnauthenticated)
		}
		l.ErrorContext(ctx, "Failed to look up user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "User lookup failed")
		return nil, "", fmt.Errorf("error during login: %w", types.ErrInternal)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		span.SetStatus(codes.Error, "Invalid credentials")
		return nil, "", fmt.Errorf("invalid credentials: %w", types.ErrUnauthenticated)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to issue session token", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Token issuance failed")
		return nil, "", fmt.Errorf("error during login: %w", types.ErrInternal)
	}

	user.PasswordHash = ""

	l.InfoContext(ctx, "User logged in", slog.String("userID", user.ID))
	span.SetStatus(codes.Ok, "Login successful")
	return user, token, nil
}
