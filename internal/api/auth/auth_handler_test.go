package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taskvault/taskvault-api/internal/types"
)

// MockAuthService is a mock implementation of AuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, username, email, password string) (*types.UserAuth, error) {
	args := m.Called(ctx, username, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserAuth), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*types.UserAuth, string, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*types.UserAuth), args.String(1), args.Error(2)
}

func setupAuthHandlerTest() (*HandlerImpl, *MockAuthService) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mockService := new(MockAuthService)
	handler := NewHandlerImpl(mockService, logger)
	return handler, mockService
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHandlerImpl_Register(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		handler, mockService := setupAuthHandlerTest()
		user := &types.UserAuth{ID: uuid.New().String(), Username: "alice", Email: "alice@example.com"}
		mockService.On("Register", mock.Anything, "alice", "alice@example.com", "pw").
			Return(user, nil).Once()

		rec := postJSON(t, handler.Register, "/auth/register",
			types.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "pw"})

		assert.Equal(t, http.StatusCreated, rec.Code)
		var got types.UserAuth
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "alice", got.Username)
		assert.NotContains(t, rec.Body.String(), "password", "response must not carry credential material")
		mockService.AssertExpectations(t)
	})

	t.Run("validation failure is 400", func(t *testing.T) {
		handler, mockService := setupAuthHandlerTest()
		mockService.On("Register", mock.Anything, "", "a@example.com", "pw").
			Return(nil, fmt.Errorf("username, email and password are required: %w", types.ErrValidation)).Once()

		rec := postJSON(t, handler.Register, "/auth/register",
			types.RegisterRequest{Email: "a@example.com", Password: "pw"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("conflict is 409 without naming the field", func(t *testing.T) {
		handler, mockService := setupAuthHandlerTest()
		mockService.On("Register", mock.Anything, "alice", "alice@example.com", "pw").
			Return(nil, fmt.Errorf("duplicate email: %w", types.ErrConflict)).Once()

		rec := postJSON(t, handler.Register, "/auth/register",
			types.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "pw"})

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "username or email already in use")
		assert.NotContains(t, rec.Body.String(), "duplicate email", "must not reveal which field collided")
	})

	t.Run("unknown body fields are rejected", func(t *testing.T) {
		handler, mockService := setupAuthHandlerTest()

		rec := postJSON(t, handler.Register, "/auth/register", map[string]any{
			"username": "alice", "email": "a@example.com", "password": "pw", "isAdmin": true,
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "Register")
	})

	t.Run("internal failure is 500", func(t *testing.T) {
		handler, mockService := setupAuthHandlerTest()
		mockService.On("Register", mock.Anything, "alice", "alice@example.com", "pw").
			Return(nil, fmt.Errorf("error processing credentials: %w", types.ErrInternal)).Once()

		rec := postJSON(t, handler.Register, "/auth/register",
			types.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "pw"})

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHandlerImpl_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		handler, mockService := setupAuthHandlerTest()
		user := &types.UserAuth{ID: uuid.New().String(), Username: "alice", Email: "alice@example.com"}
		mockService.On("Login", mock.Anything, "alice@example.com", "pw").
			Return(user, "signed.jwt.token", nil).Once()

		rec := postJSON(t, handler.Login, "/auth/login",
			types.LoginRequest{Email: "alice@example.com", Password: "pw"})

		assert.Equal(t, http.StatusOK, rec.Code)
		var got types.LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "signed.jwt.token", got.AccessToken)
		assert.Equal(t, "alice@example.com", got.User.Email)
	})

	t.Run("bad credentials are 401", func(t *testing.T) {
		handler, mockService := setupAuthHandlerTest()
		mockService.On("Login", mock.Anything, "ghost@example.com", "pw").
			Return(nil, "", fmt.Errorf("invalid credentials: %w", types.ErrUnauthenticated)).Once()

		rec := postJSON(t, handler.Login, "/auth/login",
			types.LoginRequest{Email: "ghost@example.com", Password: "pw"})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid credentials")
	})

	t.Run("malformed body reads as a credential failure", func(t *testing.T) {
		handler, mockService := setupAuthHandlerTest()

		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.Login(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		mockService.AssertNotCalled(t, "Login")
	})

	t.Run("internal failure is 500", func(t *testing.T) {
		handler, mockService := setupAuthHandlerTest()
		mockService.On("Login", mock.Anything, "alice@example.com", "pw").
			Return(nil, "", fmt.Errorf("error during login: %w", types.ErrInternal)).Once()

		rec := postJSON(t, handler.Login, "/auth/login",
			types.LoginRequest{Email: "alice@example.com", Password: "pw"})

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
