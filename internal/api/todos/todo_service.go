package todos

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/taskvault/taskvault-api/app/observability/metrics"
	"github.com/taskvault/taskvault-api/internal/types"
)

func recordTodoOp(ctx context.Context, operation, outcome string) {
	metrics.Get().TodoOperationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

var _ TodoService = (*TodoServiceImpl)(nil)

// TodoService is the owner-scoped business surface over the todo store.
// Every method takes the authenticated user's id; cross-user access to an
// existing todo fails with types.ErrForbidden while a missing todo fails
// with types.ErrNotFound.
type TodoService interface {
	List(ctx context.Context, userID uuid.UUID) ([]types.Todo, error)
	Create(ctx context.Context, userID uuid.UUID, params types.CreateTodoParams) (*types.Todo, error)
	Update(ctx context.Context, userID, todoID uuid.UUID, params types.UpdateTodoParams) (*types.Todo, error)
	Delete(ctx context.Context, userID, todoID uuid.UUID) error
}

type TodoServiceImpl struct {
	logger *slog.Logger
	repo   TodoRepository
}

func NewTodoService(repo TodoRepository, logger *slog.Logger) *TodoServiceImpl {
	return &TodoServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *TodoServiceImpl) List(ctx context.Context, userID uuid.UUID) ([]types.Todo, error) {
	ctx, span := otel.Tracer("TodoService").Start(ctx, "List", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "List"), slog.String("userID", userID.String()))

	todos, err := s.repo.FindByOwner(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list todos", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list todos")
		recordTodoOp(ctx, "list", "error")
		return nil, err
	}

	span.SetAttributes(attribute.Int("todos.count", len(todos)))
	span.SetStatus(codes.Ok, "Todos listed")
	recordTodoOp(ctx, "list", "success")
	return todos, nil
}

func (s *TodoServiceImpl) Create(ctx context.Context, userID uuid.UUID, params types.CreateTodoParams) (*types.Todo, error) {
	ctx, span := otel.Tracer("TodoService").Start(ctx, "Create", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Create"), slog.String("userID", userID.String()))

	if strings.TrimSpace(params.Title) == "" {
		span.SetStatus(codes.Error, "Missing title")
		recordTodoOp(ctx, "create", "invalid")
		return nil, fmt.Errorf("title is required: %w", types.ErrValidation)
	}

	priority := types.TodoPriorityMedium
	if params.Priority != nil {
		priority = *params.Priority
	}
	if !priority.Valid() {
		span.SetStatus(codes.Error, "Invalid priority")
		recordTodoOp(ctx, "create", "invalid")
		return nil, fmt.Errorf("priority must be one of low, medium, high: %w", types.ErrValidation)
	}

	now := time.Now()
	todo := &types.Todo{
		UserID:      userID,
		Title:       params.Title,
		Description: params.Description,
		DueDate:     params.DueDate,
		Priority:    priority,
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.repo.Create(ctx, todo)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create todo", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create todo")
		recordTodoOp(ctx, "create", "error")
		return nil, err
	}

	l.InfoContext(ctx, "Todo created", slog.String("todoID", created.ID.String()))
	span.SetAttributes(attribute.String("todo.id", created.ID.String()))
	span.SetStatus(codes.Ok, "Todo created")
	recordTodoOp(ctx, "create", "success")
	return created, nil
}

// authorize loads the todo and checks ownership. A missing todo and a todo
// owned by someone else are reported differently on purpose: the id space is
// not a secret, ownership is.
func (s *TodoServiceImpl) authorize(ctx context.Context, userID, todoID uuid.UUID) (*types.Todo, error) {
	todo, err := s.repo.FindByID(ctx, todoID)
	if err != nil {
		return nil, err
	}
	if todo.UserID != userID {
		s.logger.WarnContext(ctx, "Todo ownership check failed",
			slog.String("todoID", todoID.String()),
			slog.String("requesterID", userID.String()),
			slog.String("ownerID", todo.UserID.String()))
		return nil, fmt.Errorf("todo belongs to another user: %w", types.ErrForbidden)
	}
	return todo, nil
}

func (s *TodoServiceImpl) Update(ctx context.Context, userID, todoID uuid.UUID, params types.UpdateTodoParams) (*types.Todo, error) {
	ctx, span := otel.Tracer("TodoService").Start(ctx, "Update", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("todo.id", todoID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Update"),
		slog.String("userID", userID.String()), slog.String("todoID", todoID.String()))

	if params.Title != nil && strings.TrimSpace(*params.Title) == "" {
		span.SetStatus(codes.Error, "Empty title")
		recordTodoOp(ctx, "update", "invalid")
		return nil, fmt.Errorf("title cannot be empty: %w", types.ErrValidation)
	}
	if params.Priority != nil && !params.Priority.Valid() {
		span.SetStatus(codes.Error, "Invalid priority")
		recordTodoOp(ctx, "update", "invalid")
		return nil, fmt.Errorf("priority must be one of low, medium, high: %w", types.ErrValidation)
	}

	if _, err := s.authorize(ctx, userID, todoID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Authorization failed")
		recordTodoOp(ctx, "update", "denied")
		return nil, err
	}

	updated, err := s.repo.Update(ctx, todoID, params)
	if err != nil {
		l.ErrorContext(ctx, "Failed to update todo", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update todo")
		recordTodoOp(ctx, "update", "error")
		return nil, err
	}

	l.InfoContext(ctx, "Todo updated")
	span.SetStatus(codes.Ok, "Todo updated")
	recordTodoOp(ctx, "update", "success")
	return updated, nil
}

func (s *TodoServiceImpl) Delete(ctx context.Context, userID, todoID uuid.UUID) error {
	ctx, span := otel.Tracer("TodoService").Start(ctx, "Delete", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("todo.id", todoID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Delete"),
		slog.String("userID", userID.String()), slog.String("todoID", todoID.String()))

	if _, err := s.authorize(ctx, userID, todoID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Authorization failed")
		recordTodoOp(ctx, "delete", "denied")
		return err
	}

	if err := s.repo.Delete(ctx, todoID); err != nil {
		l.ErrorContext(ctx, "Failed to delete todo", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete todo")
		recordTodoOp(ctx, "delete", "error")
		return err
	}

	l.InfoContext(ctx, "Todo deleted")
	span.SetStatus(codes.Ok, "Todo deleted")
	recordTodoOp(ctx, "delete", "success")
	return nil
}
