package todos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/taskvault/taskvault-api/app/db"
	"github.com/taskvault/taskvault-api/internal/types"
)

var _ TodoRepository = (*PostgresTodoRepo)(nil)

// TodoRepository is the persistence contract consumed by the todo service.
// Row-level atomicity only: an update applies all supplied fields in a single
// statement or none of them.
type TodoRepository interface {
	// Create persists a new todo and returns it with its assigned id.
	Create(ctx context.Context, todo *types.Todo) (*types.Todo, error)

	// FindByID returns the todo with the given id regardless of owner.
	// types.ErrNotFound when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*types.Todo, error)

	// FindByOwner returns every todo owned by userID, newest first.
	FindByOwner(ctx context.Context, userID uuid.UUID) ([]types.Todo, error)

	// Update applies only the non-nil fields of params to the stored row and
	// returns the updated todo. types.ErrNotFound when the row is gone.
	Update(ctx context.Context, id uuid.UUID, params types.UpdateTodoParams) (*types.Todo, error)

	// Delete removes the todo. types.ErrNotFound when no row matched.
	Delete(ctx context.Context, id uuid.UUID) error
}

type PostgresTodoRepo struct {
	logger *slog.Logger
	db     database.Querier
}

func NewPostgresTodoRepo(db database.Querier, logger *slog.Logger) *PostgresTodoRepo {
	return &PostgresTodoRepo{
		logger: logger,
		db:     db,
	}
}

const todoColumns = `id, user_id, title, description, due_date, priority, completed, created_at, updated_at`

func scanTodo(row pgx.Row, todo *types.Todo) error {
	return row.Scan(
		&todo.ID,
		&todo.UserID,
		&todo.Title,
		&todo.Description,
		&todo.DueDate,
		&todo.Priority,
		&todo.Completed,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	)
}

func (r *PostgresTodoRepo) Create(ctx context.Context, todo *types.Todo) (*types.Todo, error) {
	ctx, span := otel.Tracer("TodoRepo").Start(ctx, "Create", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "todos"),
		attribute.String("db.user.id", todo.UserID.String()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "Create"), slog.String("userID", todo.UserID.String()))

	var created types.Todo
	err := scanTodo(r.db.QueryRow(ctx,
		`INSERT INTO todos (user_id, title, description, due_date, priority, completed, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
         RETURNING `+todoColumns,
		todo.UserID, todo.Title, todo.Description, todo.DueDate, todo.Priority, todo.Completed,
		todo.CreatedAt, todo.UpdatedAt), &created)
	if err != nil {
		l.ErrorContext(ctx, "Failed to insert todo", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return nil, fmt.Errorf("database error creating todo: %w", err)
	}

	l.InfoContext(ctx, "Todo created", slog.String("todoID", created.ID.String()))
	span.SetStatus(codes.Ok, "Todo created")
	return &created, nil
}

func (r *PostgresTodoRepo) FindByID(ctx context.Context, id uuid.UUID) (*types.Todo, error) {
	ctx, span := otel.Tracer("TodoRepo").Start(ctx, "FindByID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "todos"),
		attribute.String("db.todo.id", id.String()),
	))
	defer span.End()

	var todo types.Todo
	err := scanTodo(r.db.QueryRow(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE id = $1`, id), &todo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "Todo not found")
			return nil, fmt.Errorf("todo not found: %w", types.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to query todo", slog.Any("error", err), slog.String("todoID", id.String()))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("database error fetching todo: %w", err)
	}

	span.SetStatus(codes.Ok, "Todo fetched")
	return &todo, nil
}

func (r *PostgresTodoRepo) FindByOwner(ctx context.Context, userID uuid.UUID) ([]types.Todo, error) {
	ctx, span := otel.Tracer("TodoRepo").Start(ctx, "FindByOwner", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "todos"),
		attribute.String("db.user.id", userID.String()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "FindByOwner"), slog.String("userID", userID.String()))

	rows, err := r.db.Query(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to query todos", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("database error listing todos: %w", err)
	}
	defer rows.Close()

	todos := []types.Todo{}
	for rows.Next() {
		var todo types.Todo
		if err := scanTodo(rows, &todo); err != nil {
			l.ErrorContext(ctx, "Failed to scan todo row", slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "Row scan failed")
			return nil, fmt.Errorf("database error scanning todo: %w", err)
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Rows iteration failed")
		return nil, fmt.Errorf("database error listing todos: %w", err)
	}

	span.SetStatus(codes.Ok, "Todos listed")
	return todos, nil
}

func (r *PostgresTodoRepo) Update(ctx context.Context, id uuid.UUID, params types.UpdateTodoParams) (*types.Todo, error) {
	ctx, span := otel.Tracer("TodoRepo").Start(ctx, "Update", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "todos"),
		attribute.String("db.todo.id", id.String()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "Update"), slog.String("todoID", id.String()))

	// Build the SET clause from the supplied fields only
	var setClauses []string
	var args []interface{}
	argID := 1

	if params.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", argID))
		args = append(args, *params.Title)
		argID++
		span.SetAttributes(attribute.Bool("update.title", true))
	}
	if params.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", argID))
		args = append(args, *params.Description)
		argID++
		span.SetAttributes(attribute.Bool("update.description", true))
	}
	if params.DueDate != nil {
		setClauses = append(setClauses, fmt.Sprintf("due_date = $%d", argID))
		args = append(args, *params.DueDate)
		argID++
		span.SetAttributes(attribute.Bool("update.due_date", true))
	}
	if params.Priority != nil {
		setClauses = append(setClauses, fmt.Sprintf("priority = $%d", argID))
		args = append(args, *params.Priority)
		argID++
		span.SetAttributes(attribute.Bool("update.priority", true))
	}
	if params.Completed != nil {
		setClauses = append(setClauses, fmt.Sprintf("completed = $%d", argID))
		args = append(args, *params.Completed)
		argID++
		span.SetAttributes(attribute.Bool("update.completed", true))
	}

	// No fields supplied: return the current row unchanged
	if len(setClauses) == 0 {
		l.InfoContext(ctx, "Update called with no fields to update")
		span.SetStatus(codes.Ok, "No update fields provided")
		return r.FindByID(ctx, id)
	}

	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argID))
	args = append(args, time.Now())
	argID++

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE todos SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), argID, todoColumns)

	l.DebugContext(ctx, "Executing dynamic todo update query", slog.String("query", query), slog.Int("arg_count", len(args)))

	var todo types.Todo
	err := scanTodo(r.db.QueryRow(ctx, query, args...), &todo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "Todo not found")
			return nil, fmt.Errorf("todo not found: %w", types.ErrNotFound)
		}
		l.ErrorContext(ctx, "Failed to execute todo update query", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return nil, fmt.Errorf("database error updating todo: %w", err)
	}

	l.InfoContext(ctx, "Todo updated")
	span.SetStatus(codes.Ok, "Todo updated")
	return &todo, nil
}

func (r *PostgresTodoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := otel.Tracer("TodoRepo").Start(ctx, "Delete", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.sql.table", "todos"),
		attribute.String("db.todo.id", id.String()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "Delete"), slog.String("todoID", id.String()))

	tag, err := r.db.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		l.ErrorContext(ctx, "Failed to delete todo", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB DELETE failed")
		return fmt.Errorf("database error deleting todo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "Todo not found")
		return fmt.Errorf("todo not found: %w", types.ErrNotFound)
	}

	l.InfoContext(ctx, "Todo deleted")
	span.SetStatus(codes.Ok, "Todo deleted")
	return nil
}
