package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gymcore/gym-gateway/internal/domain"
	"github.com/gymcore/gym-gateway/internal/observability"
	"github.com/gymcore/gym-gateway/internal/repository"
	apperrors "github.com/gymcore/gym-gateway/pkg/util"
)

type stubFinder struct {
	mu    sync.Mutex
	roles map[string]domain.Role
}

func (f *stubFinder) set(username string, role domain.Role) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles[username] = role
}

func (f *stubFinder) FindPrincipal(_ context.Context, username string) (*domain.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	role, ok := f.roles[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &domain.Principal{Username: username, Role: role}, nil
}

func newFilteredApp(t *testing.T, opts ...MiddlewareOption) (*fiber.App, *TokenManager) {
	t.Helper()
	tm, err := NewTokenManager(testKey, time.Hour)
	require.NoError(t, err)
	matrix, err := NewDefaultMatrix()
	require.NoError(t, err)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"error": fiber.Map{"code": de.Code, "message": de.Message}})
		},
	})
	app.Use(NewAuthMiddleware(tm, matrix, zap.NewNop(), opts...).Handle)
	app.All("/*", func(c *fiber.Ctx) error {
		if p, ok := PrincipalFromContext(c); ok {
			return c.SendString(p.Username + ":" + p.Role.String())
		}
		return c.SendString("anonymous")
	})
	return app, tm
}

func tokenFor(t *testing.T, tm *TokenManager, subject, role string) string {
	t.Helper()
	token, _, err := tm.GenerateToken(subject, role, nil)
	require.NoError(t, err)
	return token
}

func send(t *testing.T, app *fiber.App, method, target, token string) (int, string, http.Header) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body), resp.Header
}

func TestFilterPublicRoutesNeedNoToken(t *testing.T) {
	app, _ := newFilteredApp(t)

	for _, target := range []string{"/api/v1/news/5", "/health/live", "/docs/index.html"} {
		status, body, _ := send(t, app, http.MethodGet, target, "")
		assert.Equal(t, http.StatusOK, status, target)
		assert.Equal(t, "anonymous", body, target)
	}

	status, _, _ := send(t, app, http.MethodOptions, "/members", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestFilterDistinguishesUnauthenticatedFromForbidden(t *testing.T) {
	app, tm := newFilteredApp(t)

	status, body, header := send(t, app, http.MethodGet, "/members", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Bearer", header.Get(fiber.HeaderWWWAuthenticate))
	assert.Contains(t, body, apperrors.CodeUnauthorized)

	status, body, _ = send(t, app, http.MethodGet, "/members", tokenFor(t, tm, "alice", "MEMBER"))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, body, apperrors.CodeForbidden)

	status, body, _ = send(t, app, http.MethodGet, "/members", tokenFor(t, tm, "coach", "TRAINER"))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "coach:TRAINER", body)
}

func TestFilterNormalizesPrefixedRoles(t *testing.T) {
	app, tm := newFilteredApp(t)

	status, body, _ := send(t, app, http.MethodDelete, "/trainers/7", tokenFor(t, tm, "root", "ROLE_ADMIN"))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "root:ADMIN", body)

	status, _, _ = send(t, app, http.MethodDelete, "/trainers/7", tokenFor(t, tm, "root", "COACH"))
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestFilterHidesTokenFailureReason(t *testing.T) {
	metrics := observability.NewMetrics()
	app, tm := newFilteredApp(t, WithMetrics(metrics))

	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired := tokenFor(t, tm, "alice", "MEMBER")
	tm.now = time.Now
	other, err := NewTokenManager([]byte("fedcba9876543210fedcba9876543210"), time.Hour)
	require.NoError(t, err)
	forged := tokenFor(t, other, "alice", "MEMBER")

	var bodies []string
	for _, token := range []string{expired, forged, "not-a-jwt"} {
		status, body, header := send(t, app, http.MethodGet, "/members/me", token)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Bearer", header.Get(fiber.HeaderWWWAuthenticate))
		bodies = append(bodies, body)
	}
	assert.Equal(t, bodies[0], bodies[1])
	assert.Equal(t, bodies[1], bodies[2])
	assert.NotContains(t, bodies[0], "expired")

	counts := metrics.Snapshot().AuthFailures
	assert.Equal(t, int64(1), counts[string(ReasonExpired)])
	assert.Equal(t, int64(1), counts[string(ReasonSignature)])
	assert.Equal(t, int64(1), counts[string(ReasonMalformed)])
}

func TestFilterRejectsNonBearerSchemes(t *testing.T) {
	app, _ := newFilteredApp(t)

	req := httptest.NewRequest(http.MethodGet, "/members", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Basic YWxpY2U6c2VjcmV0")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestFilterRoleDowngradeWithResolution(t *testing.T) {
	finder := &stubFinder{roles: map[string]domain.Role{"boss": domain.RoleAdmin}}
	app, tm := newFilteredApp(t, WithRoleResolution(finder))
	token := tokenFor(t, tm, "boss", "ADMIN")

	status, _, _ := send(t, app, http.MethodDelete, "/trainers/7", token)
	assert.Equal(t, http.StatusOK, status)

	finder.set("boss", domain.RoleTrainer)
	status, _, _ = send(t, app, http.MethodDelete, "/trainers/7", token)
	assert.Equal(t, http.StatusForbidden, status)

	status, body, _ := send(t, app, http.MethodGet, "/members", token)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "boss:TRAINER", body)
}

func TestFilterResolutionUnknownPrincipal(t *testing.T) {
	finder := &stubFinder{roles: map[string]domain.Role{}}
	app, tm := newFilteredApp(t, WithRoleResolution(finder))

	status, _, _ := send(t, app, http.MethodGet, "/trainers", tokenFor(t, tm, "ghost", "MEMBER"))
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestFilterWithoutResolutionTrustsToken(t *testing.T) {
	app, tm := newFilteredApp(t)

	status, _, _ := send(t, app, http.MethodDelete, "/trainers/7", tokenFor(t, tm, "boss", "ADMIN"))
	assert.Equal(t, http.StatusOK, status)
}
