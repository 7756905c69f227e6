package user

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/taskvault/taskvault-api/internal/types"
)

var _ UserService = (*UserServiceImpl)(nil)

const (
	usersListCacheKey = "users:all"
	userCacheTTL      = 30 * time.Second
)

// UserService serves the sanitized user directory with a short-lived
// read-through cache in front of the repository.
type UserService interface {
	GetAll(ctx context.Context) ([]types.UserAuth, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.UserAuth, error)
}

type UserServiceImpl struct {
	logger *slog.Logger
	repo   UserRepo
	cache  *cache.Cache
}

func NewUserService(repo UserRepo, logger *slog.Logger) *UserServiceImpl {
	return &UserServiceImpl{
		logger: logger,
		repo:   repo,
		cache:  cache.New(userCacheTTL, 5*time.Minute),
	}
}

func (s *UserServiceImpl) GetAll(ctx context.Context) ([]types.UserAuth, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "GetAll")
	defer span.End()

	if cached, found := s.cache.Get(usersListCacheKey); found {
		if users, ok := cached.([]types.UserAuth); ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			span.SetStatus(codes.Ok, "Users served from cache")
			return users, nil
		}
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	users, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to fetch users", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch users")
		return nil, err
	}

	s.cache.Set(usersListCacheKey, users, cache.DefaultExpiration)
	span.SetStatus(codes.Ok, "Users fetched")
	return users, nil
}

func (s *UserServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*types.UserAuth, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "GetByID", trace.WithAttributes(
		attribute.String("user.id", id.String()),
	))
	defer span.End()

	cacheKey := "user:" + id.String()
	if cached, found := s.cache.Get(cacheKey); found {
		if u, ok := cached.(*types.UserAuth); ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			span.SetStatus(codes.Ok, "User served from cache")
			return u, nil
		}
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch user")
		return nil, err
	}

	s.cache.Set(cacheKey, u, cache.DefaultExpiration)
	span.SetStatus(codes.Ok, "User fetched")
	return u, nil
}
