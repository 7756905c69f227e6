package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskvault/taskvault-api/config"
	"github.com/taskvault/taskvault-api/internal/api"
	"github.com/taskvault/taskvault-api/internal/types"
)

var _ TokenService = (*JWTTokenService)(nil)

// TokenService issues and verifies signed, time-bounded session tokens.
type TokenService interface {
	// Issue produces a signed token carrying the user id and an expiry.
	Issue(userID string) (string, error)

	// Verify returns the user id encoded in a valid token. Malformed,
	// forged and expired tokens all collapse to types.ErrUnauthenticated;
	// callers on the far side of the boundary never learn which.
	Verify(tokenString string) (string, error)
}

// JWTTokenService signs HS256 tokens with a process-wide secret loaded once
// at startup. Rotating the secret invalidates all outstanding tokens.
type JWTTokenService struct {
	logger    *slog.Logger
	secretKey []byte
	issuer    string
	audience  string
	ttl       time.Duration
}

func NewJWTTokenService(jwtCfg config.JWTConfig, logger *slog.Logger) (*JWTTokenService, error) {
	if jwtCfg.SecretKey == "" {
		return nil, errors.New("jwt secret key must be configured")
	}
	ttl := jwtCfg.AccessTokenTTL
	if ttl == 0 {
		ttl = 15 * time.Minute
	}
	return &JWTTokenService{
		logger:    logger,
		secretKey: []byte(jwtCfg.SecretKey),
		issuer:    jwtCfg.Issuer,
		audience:  jwtCfg.Audience,
		ttl:       ttl,
	}, nil
}

func (s *JWTTokenService) Issue(userID string) (string, error) {
	now := time.Now()
	claims := types.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *JWTTokenService) Verify(tokenString string) (string, error) {
	claims := &types.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		// Log the real cause, surface only the generic failure.
		s.logger.Warn("Token parsing/validation failed", slog.Any("error", err))
		return "", fmt.Errorf("invalid session token: %w", types.ErrUnauthenticated)
	}

	if !token.Valid || claims.UserID == "" {
		return "", fmt.Errorf("invalid session token: %w", types.ErrUnauthenticated)
	}
	if claims.Issuer != s.issuer {
		s.logger.Warn("Token issuer mismatch", slog.String("expected", s.issuer), slog.String("actual", claims.Issuer))
		return "", fmt.Errorf("invalid session token: %w", types.ErrUnauthenticated)
	}
	if s.audience != "" && !api.VerifyAudience(claims.Audience, s.audience) {
		s.logger.Warn("Token audience mismatch", slog.String("expected", s.audience))
		return "", fmt.Errorf("invalid session token: %w", types.ErrUnauthenticated)
	}

	return claims.UserID, nil
}
