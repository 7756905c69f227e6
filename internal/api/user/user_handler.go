package user

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/taskvault/taskvault-api/internal/api"
	"github.com/taskvault/taskvault-api/internal/api/auth"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	GetAll(w http.ResponseWriter, r *http.Request)
	GetMe(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	userService UserService
	logger      *slog.Logger
}

func NewHandlerImpl(userService UserService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		userService: userService,
		logger:      logger,
	}
}

// GetAll godoc
// @Summary      List users
// @Description  Returns every registered user without credential material.
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} types.UserAuth "Registered users"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Router       /users [get]
func (h *HandlerImpl) GetAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "GetAll"))

	users, err := h.userService.GetAll(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list users", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, users)
}

// GetMe godoc
// @Summary      Current user profile
// @Description  Returns the authenticated user's own profile.
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} types.UserAuth "Current user"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      404 {object} types.Response "Not Found"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Router       /users/me [get]
func (h *HandlerImpl) GetMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "GetMe"))

	raw, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		l.ErrorContext(ctx, "Invalid user ID in context", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	u, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		status := api.StatusFromError(err)
		if status == http.StatusInternalServerError {
			l.ErrorContext(ctx, "Failed to fetch current user", slog.Any("error", err))
			api.ErrorResponse(w, r, status, "Internal server error")
			return
		}
		api.ErrorResponse(w, r, status, err.Error())
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, u)
}
