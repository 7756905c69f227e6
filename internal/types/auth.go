package types

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserAuth represents the core user entity in the domain.
type UserAuth struct {
	ID           string    `json:"id" example:"d290f1ee-6c54-4b01-90e6-d701748f0851"` // Unique identifier (UUID).
	Username     string    `json:"username" example:"johndoe"`                        // Unique username.
	Email        string    `json:"email" example:"john.doe@example.com"`              // Unique email address used for login.
	PasswordHash string    `json:"-"`                                                 // Hashed password (never exposed).
	CreatedAt    time.Time `json:"created_at"`                                        // Timestamp when the user was created.
	UpdatedAt    time.Time `json:"updated_at"`                                        // Timestamp when the user was last updated.
}

// Claims represents the custom claims included in the session token.
type Claims struct {
	UserID               string `json:"uid"` // Custom claim for User ID.
	jwt.RegisteredClaims        // Embed standard claims (ExpiresAt, IssuedAt, Issuer, Audience).
}

// RegisterRequest represents the expected JSON body for user registration.
type RegisterRequest struct {
	Username string `json:"username" example:"testuser"`         // Desired username. Must be unique.
	Email    string `json:"email" example:"newuser@example.com"` // User's email address. Must be unique.
	Password string `json:"password" example:"Str0ngP@ss!"`      // User's desired password.
}

// LoginRequest represents the expected JSON body for user login.
type LoginRequest struct {
	Email    string `json:"email" example:"user@example.com"` // User's email address for login.
	Password string `json:"password" example:"password123"`   // User's password.
}

// LoginResponse represents the successful JSON response after login.
type LoginResponse struct {
	User        *UserAuth `json:"user"`                                   // Sanitized user entity.
	AccessToken string    `json:"access_token" example:"eyJhbGciOiJI..."` // Signed session token.
	Message     string    `json:"message" example:"Login successful"`     // Confirmation message.
}

// Response represents a generic API response for success or error messages.
type Response struct {
	Success bool   `json:"success" example:"true"`                           // Indicates if the operation was successful.
	Message string `json:"message,omitempty" example:"Operation successful"` // Optional success message.
	Error   string `json:"error,omitempty" example:"Resource not found"`     // Optional error message.
}
