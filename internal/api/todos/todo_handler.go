package todos

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taskvault/taskvault-api/internal/api"
	"github.com/taskvault/taskvault-api/internal/api/auth"
	"github.com/taskvault/taskvault-api/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	todoService TodoService
	logger      *slog.Logger
}

// NewHandlerImpl creates a new todos HandlerImpl instance.
func NewHandlerImpl(todoService TodoService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		todoService: todoService,
		logger:      logger,
	}
}

// requestUserID resolves the authenticated user's id placed in the request
// context by the auth middleware.
func (h *HandlerImpl) requestUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		h.logger.ErrorContext(r.Context(), "User ID missing from context on protected route")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Invalid user ID in context", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	return userID, true
}

// todoIDParam parses the todoID path parameter.
func todoIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	todoID, err := uuid.Parse(chi.URLParam(r, "todoID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid todo ID format")
		return uuid.Nil, false
	}
	return todoID, true
}

func (h *HandlerImpl) writeServiceError(w http.ResponseWriter, r *http.Request, l *slog.Logger, err error) {
	status := api.StatusFromError(err)
	if status == http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "Todo operation failed", slog.Any("error", err))
		api.ErrorResponse(w, r, status, "Internal server error")
		return
	}
	api.ErrorResponse(w, r, status, err.Error())
}

// List godoc
// @Summary      List todos
// @Description  Returns every todo owned by the authenticated user, newest first.
// @Tags         Todos
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} types.Todo "Owned todos"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Router       /todos [get]
func (h *HandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "List"))

	userID, ok := h.requestUserID(w, r)
	if !ok {
		return
	}

	todos, err := h.todoService.List(ctx, userID)
	if err != nil {
		h.writeServiceError(w, r, l, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, todos)
}

// Create godoc
// @Summary      Create a todo
// @Description  Creates a todo owned by the authenticated user. Priority defaults to medium.
// @Tags         Todos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body types.CreateTodoParams true "Todo parameters"
// @Success      201 {object} types.Todo "Created todo"
// @Failure      400 {object} types.Response "Invalid Input"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Router       /todos [post]
func (h *HandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "Create"))

	userID, ok := h.requestUserID(w, r)
	if !ok {
		return
	}

	var params types.CreateTodoParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	todo, err := h.todoService.Create(ctx, userID, params)
	if err != nil {
		h.writeServiceError(w, r, l, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, todo)
}

// Update godoc
// @Summary      Update a todo
// @Description  Partially updates a todo the authenticated user owns. Only title, description, dueDate, priority and completed may change.
// @Tags         Todos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        todoID path string true "Todo ID (UUID)"
// @Param        body body types.UpdateTodoParams true "Fields to update"
// @Success      200 {object} types.Todo "Updated todo"
// @Failure      400 {object} types.Response "Invalid Input"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      403 {object} types.Response "Forbidden"
// @Failure      404 {object} types.Response "Not Found"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Router       /todos/{todoID} [put]
func (h *HandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "Update"))

	userID, ok := h.requestUserID(w, r)
	if !ok {
		return
	}
	todoID, ok := todoIDParam(w, r)
	if !ok {
		return
	}

	var params types.UpdateTodoParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	todo, err := h.todoService.Update(ctx, userID, todoID, params)
	if err != nil {
		h.writeServiceError(w, r, l, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, todo)
}

// Delete godoc
// @Summary      Delete a todo
// @Description  Deletes a todo the authenticated user owns.
// @Tags         Todos
// @Produce      json
// @Security     BearerAuth
// @Param        todoID path string true "Todo ID (UUID)"
// @Success      200 {object} types.Response "Deleted"
// @Failure      400 {object} types.Response "Invalid Input"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      403 {object} types.Response "Forbidden"
// @Failure      404 {object} types.Response "Not Found"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Router       /todos/{todoID} [delete]
func (h *HandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "Delete"))

	userID, ok := h.requestUserID(w, r)
	if !ok {
		return
	}
	todoID, ok := todoIDParam(w, r)
	if !ok {
		return
	}

	if err := h.todoService.Delete(ctx, userID, todoID); err != nil {
		h.writeServiceError(w, r, l, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{
		Success: true,
		Message: "Todo deleted",
	})
}
