package auth

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskvault/taskvault-api/config"
	"github.com/taskvault/taskvault-api/internal/types"
)

func newTestTokenService(t *testing.T, cfg config.JWTConfig) *JWTTokenService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := NewJWTTokenService(cfg, logger)
	require.NoError(t, err)
	return svc
}

func baseJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		SecretKey:      "test-secret-key-for-unit-tests",
		Issuer:         "taskvault-api",
		Audience:       "taskvault-clients",
		AccessTokenTTL: 15 * time.Minute,
	}
}

func TestNewJWTTokenService_RequiresSecret(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := NewJWTTokenService(config.JWTConfig{}, logger)
	require.Error(t, err)
}

func TestJWTTokenService_IssueAndVerify(t *testing.T) {
	svc := newTestTokenService(t, baseJWTConfig())
	userID := uuid.New().String()

	token, err := svc.Issue(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestJWTTokenService_VerifyFailures(t *testing.T) {
	svc := newTestTokenService(t, baseJWTConfig())
	userID := uuid.New().String()

	// Every failure mode must collapse to the same sentinel so callers
	// cannot distinguish forged from expired from malformed.
	assertUnauthenticated := func(t *testing.T, err error) {
		t.Helper()
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrUnauthenticated))
	}

	t.Run("malformed token", func(t *testing.T) {
		_, err := svc.Verify("not.a.jwt")
		assertUnauthenticated(t, err)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := svc.Verify("")
		assertUnauthenticated(t, err)
	})

	t.Run("token signed with a different key", func(t *testing.T) {
		otherCfg := baseJWTConfig()
		otherCfg.SecretKey = "a-completely-different-secret"
		other := newTestTokenService(t, otherCfg)

		token, err := other.Issue(userID)
		require.NoError(t, err)

		_, err = svc.Verify(token)
		assertUnauthenticated(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		expiredCfg := baseJWTConfig()
		expiredCfg.AccessTokenTTL = -time.Minute
		expired := newTestTokenService(t, expiredCfg)

		token, err := expired.Issue(userID)
		require.NoError(t, err)

		_, err = svc.Verify(token)
		assertUnauthenticated(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		issuerCfg := baseJWTConfig()
		issuerCfg.Issuer = "someone-else"
		other := newTestTokenService(t, issuerCfg)

		token, err := other.Issue(userID)
		require.NoError(t, err)

		_, err = svc.Verify(token)
		assertUnauthenticated(t, err)
	})

	t.Run("wrong audience", func(t *testing.T) {
		audCfg := baseJWTConfig()
		audCfg.Audience = "other-clients"
		other := newTestTokenService(t, audCfg)

		token, err := other.Issue(userID)
		require.NoError(t, err)

		_, err = svc.Verify(token)
		assertUnauthenticated(t, err)
	})

	t.Run("missing user id claim", func(t *testing.T) {
		cfg := baseJWTConfig()
		now := time.Now()
		claims := types.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    cfg.Issuer,
				Audience:  jwt.ClaimStrings{cfg.Audience},
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.SecretKey))
		require.NoError(t, err)

		_, err = svc.Verify(token)
		assertUnauthenticated(t, err)
	})

	t.Run("alg none is rejected", func(t *testing.T) {
		claims := types.Claims{UserID: userID}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.Verify(token)
		assertUnauthenticated(t, err)
	})
}
