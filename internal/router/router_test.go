package router_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/dropit-api/internal/config"
	"github.com/iliyamo/dropit-api/internal/handler"
	"github.com/iliyamo/dropit-api/internal/middleware"
	"github.com/iliyamo/dropit-api/internal/model"
	"github.com/iliyamo/dropit-api/internal/repository"
	"github.com/iliyamo/dropit-api/internal/router"
	"github.com/iliyamo/dropit-api/internal/service"
	"github.com/iliyamo/dropit-api/internal/utils"
)

const secret = "router-secret"

type nopNotifier struct{}

func (nopNotifier) SendVerification(context.Context, string, string, string) error { return nil }
func (nopNotifier) SendWelcome(context.Context, string, string) error                { return nil }

func newLimitedServer(t *testing.T, strategy string, ids ...string) *echo.Echo {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := repository.NewMemoryAccountRepo()
	for _, id := range ids {
		require.NoError(t, repo.Create(context.Background(), &model.Account{
			ID:              id,
			Email:           id + "@example.com",
			Role:            model.RoleTasker,
			IsEmailVerified: true,
			IsActive:        true,
			KYCStatus:       model.KYCPending,
		}))
	}
	svc, err := service.NewAuthService(repo, nopNotifier{}, service.Options{JWTSecret: secret, BcryptCost: 4}, logger)
	require.NoError(t, err)

	limit := middleware.NewTokenBucket(config.RateLimitConfig{
		Enabled:        true,
		Capacity:       1,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            time.Hour,
		KeyStrategy:    strategy,
		Prefix:         "rl",
	}, nil, logger)

	e := echo.New()
	router.RegisterAuth(e, handler.NewAuthHandler(svc, nil, logger), secret, limit)
	return e
}

func getProfile(t *testing.T, e *echo.Echo, id string) int {
	t.Helper()
	tok, err := utils.NewSessionToken(secret, id, id+"@example.com", string(model.RoleTasker), time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok.Token)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec.Code
}

func TestRegisterAuth_UserKeyedLimitSeparatesCallers(t *testing.T) {
	e := newLimitedServer(t, "user", "u1", "u2")

	assert.Equal(t, http.StatusOK, getProfile(t, e, "u1"))
	assert.Equal(t, http.StatusOK, getProfile(t, e, "u2"), "u2 has its own bucket")
	assert.Equal(t, http.StatusTooManyRequests, getProfile(t, e, "u1"))
}

func TestRegisterAuth_PublicRoutesAreLimited(t *testing.T) {
	e := newLimitedServer(t, "ip_route")

	login := func() int {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.Header.Set(echo.HeaderXRealIP, "10.0.0.9")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusBadRequest, login())
	assert.Equal(t, http.StatusTooManyRequests, login())
}

func TestRegisterAuth_ProtectedRoutesRequireSession(t *testing.T) {
	e := newLimitedServer(t, "user")

	req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
