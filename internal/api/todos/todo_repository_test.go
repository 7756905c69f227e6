package todos

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskvault/taskvault-api/internal/types"
)

func setupTodoRepoTest(t *testing.T) (*PostgresTodoRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := NewPostgresTodoRepo(mockPool, logger)
	return repo, mockPool
}

var todoCols = []string{"id", "user_id", "title", "description", "due_date", "priority", "completed", "created_at", "updated_at"}

func TestPostgresTodoRepo_Create(t *testing.T) {
	repo, mockPool := setupTodoRepoTest(t)
	ctx := context.Background()

	userID := uuid.New()
	todoID := uuid.New()
	now := time.Now()
	todo := &types.Todo{
		UserID:    userID,
		Title:     "Buy milk",
		Priority:  types.TodoPriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
	}

	mockPool.ExpectQuery(regexp.QuoteMeta(`INSERT INTO todos`)).
		WithArgs(userID, "Buy milk", (*string)(nil), (*time.Time)(nil), types.TodoPriorityMedium, false, now, now).
		WillReturnRows(pgxmock.NewRows(todoCols).
			AddRow(todoID, userID, "Buy milk", nil, nil, types.TodoPriorityMedium, false, now, now))

	created, err := repo.Create(ctx, todo)
	require.NoError(t, err)
	assert.Equal(t, todoID, created.ID)
	assert.Equal(t, userID, created.UserID)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresTodoRepo_FindByID(t *testing.T) {
	ctx := context.Background()
	todoID := uuid.New()

	t.Run("found", func(t *testing.T) {
		repo, mockPool := setupTodoRepoTest(t)
		userID := uuid.New()
		now := time.Now()

		mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT`)).
			WithArgs(todoID).
			WillReturnRows(pgxmock.NewRows(todoCols).
				AddRow(todoID, userID, "Buy milk", nil, nil, types.TodoPriorityHigh, true, now, now))

		todo, err := repo.FindByID(ctx, todoID)
		require.NoError(t, err)
		assert.Equal(t, types.TodoPriorityHigh, todo.Priority)
		assert.True(t, todo.Completed)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("absent row maps to not found", func(t *testing.T) {
		repo, mockPool := setupTodoRepoTest(t)

		mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT`)).
			WithArgs(todoID).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.FindByID(ctx, todoID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrNotFound))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPostgresTodoRepo_FindByOwner(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("orders newest first", func(t *testing.T) {
		repo, mockPool := setupTodoRepoTest(t)
		now := time.Now()

		mockPool.ExpectQuery(regexp.QuoteMeta(`ORDER BY created_at DESC`)).
			WithArgs(userID).
			WillReturnRows(pgxmock.NewRows(todoCols).
				AddRow(uuid.New(), userID, "Newest", nil, nil, types.TodoPriorityMedium, false, now, now).
				AddRow(uuid.New(), userID, "Older", nil, nil, types.TodoPriorityLow, false, now.Add(-time.Hour), now.Add(-time.Hour)))

		todos, err := repo.FindByOwner(ctx, userID)
		require.NoError(t, err)
		require.Len(t, todos, 2)
		assert.Equal(t, "Newest", todos[0].Title)
		assert.Equal(t, "Older", todos[1].Title)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("no rows yields empty slice", func(t *testing.T) {
		repo, mockPool := setupTodoRepoTest(t)

		mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT`)).
			WithArgs(userID).
			WillReturnRows(pgxmock.NewRows(todoCols))

		todos, err := repo.FindByOwner(ctx, userID)
		require.NoError(t, err)
		assert.NotNil(t, todos)
		assert.Empty(t, todos)
	})
}

func TestPostgresTodoRepo_Update(t *testing.T) {
	ctx := context.Background()
	todoID := uuid.New()
	userID := uuid.New()
	now := time.Now()

	t.Run("builds SET clause from supplied fields only", func(t *testing.T) {
		repo, mockPool := setupTodoRepoTest(t)
		title := "Renamed"
		completed := true

		mockPool.ExpectQuery(regexp.QuoteMeta(`UPDATE todos SET title = $1, completed = $2, updated_at = $3 WHERE id = $4`)).
			WithArgs(title, completed, pgxmock.AnyArg(), todoID).
			WillReturnRows(pgxmock.NewRows(todoCols).
				AddRow(todoID, userID, title, nil, nil, types.TodoPriorityMedium, completed, now, now))

		updated, err := repo.Update(ctx, todoID, types.UpdateTodoParams{
			Title:     &title,
			Completed: &completed,
		})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Title)
		assert.True(t, updated.Completed)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("no fields falls back to a plain fetch", func(t *testing.T) {
		repo, mockPool := setupTodoRepoTest(t)

		mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT`)).
			WithArgs(todoID).
			WillReturnRows(pgxmock.NewRows(todoCols).
				AddRow(todoID, userID, "Unchanged", nil, nil, types.TodoPriorityMedium, false, now, now))

		updated, err := repo.Update(ctx, todoID, types.UpdateTodoParams{})
		require.NoError(t, err)
		assert.Equal(t, "Unchanged", updated.Title)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("vanished row maps to not found", func(t *testing.T) {
		repo, mockPool := setupTodoRepoTest(t)
		title := "Renamed"

		mockPool.ExpectQuery(regexp.QuoteMeta(`UPDATE todos SET`)).
			WithArgs(title, pgxmock.AnyArg(), todoID).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.Update(ctx, todoID, types.UpdateTodoParams{Title: &title})
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrNotFound))
	})
}

func TestPostgresTodoRepo_Delete(t *testing.T) {
	ctx := context.Background()
	todoID := uuid.New()

	t.Run("success", func(t *testing.T) {
		repo, mockPool := setupTodoRepoTest(t)

		mockPool.ExpectExec(regexp.QuoteMeta(`DELETE FROM todos WHERE id = $1`)).
			WithArgs(todoID).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		require.NoError(t, repo.Delete(ctx, todoID))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("no matching row maps to not found", func(t *testing.T) {
		repo, mockPool := setupTodoRepoTest(t)

		mockPool.ExpectExec(regexp.QuoteMeta(`DELETE FROM todos WHERE id = $1`)).
			WithArgs(todoID).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err := repo.Delete(ctx, todoID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrNotFound))
	})
}
