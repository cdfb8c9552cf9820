package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/gymcore/gym-gateway/internal/domain"
	"github.com/gymcore/gym-gateway/internal/observability"
	"github.com/gymcore/gym-gateway/internal/repository"
	apperrors "github.com/gymcore/gym-gateway/pkg/util"
)

const principalKey = "auth_principal"

// Failure reasons that are not token validation failures.
const (
	reasonNoCredentials InvalidReason = "no_credentials"
	reasonUnknownRole   InvalidReason = "unknown_role"
	reasonUnknownUser   InvalidReason = "unknown_principal"
)

// Principal represents the authenticated caller.
type Principal struct {
	Username string
	Role     domain.Role
	Claims   *Claims
}

// PrincipalFinder looks up the stored principal behind a token subject.
type PrincipalFinder interface {
	FindPrincipal(ctx context.Context, username string) (*domain.Principal, error)
}

// AuthMiddleware validates bearer tokens and enforces the route matrix.
type AuthMiddleware struct {
	tokens  *TokenManager
	matrix  *Matrix
	finder  PrincipalFinder
	logger  *zap.Logger
	metrics *observability.Metrics
}

// MiddlewareOption customizes AuthMiddleware.
type MiddlewareOption func(*AuthMiddleware)

// WithRoleResolution makes the middleware authorize with the role currently
// stored for the subject instead of the role in the token.
func WithRoleResolution(finder PrincipalFinder) MiddlewareOption {
	return func(m *AuthMiddleware) {
		m.finder = finder
	}
}

// WithMetrics counts rejected requests by reason.
func WithMetrics(metrics *observability.Metrics) MiddlewareOption {
	return func(m *AuthMiddleware) {
		m.metrics = metrics
	}
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, matrix *Matrix, logger *zap.Logger, opts ...MiddlewareOption) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &AuthMiddleware{tokens: tokens, matrix: matrix, logger: logger}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handle authenticates the caller unless the route is public, then applies
// the route matrix. Missing or invalid credentials yield 401, a verified
// caller without a permitted role yields 403.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	rule, matched := m.matrix.Match(c.Method(), c.Path())
	if matched && rule.Public {
		return c.Next()
	}

	token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return m.unauthorized(c, reasonNoCredentials, nil)
	}

	claims, err := m.tokens.Validate(token)
	if err != nil {
		return m.unauthorized(c, ReasonOf(err), err)
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return m.unauthorized(c, reasonUnknownRole, err)
	}

	if m.finder != nil {
		stored, err := m.finder.FindPrincipal(c.UserContext(), claims.Subject)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return m.unauthorized(c, reasonUnknownUser, err)
			}
			return apperrors.NewInternalError(err)
		}
		role = stored.Role
	}

	if !matched || !rule.Permits(role) {
		m.logger.Info("request forbidden",
			zap.String("subject", claims.Subject),
			zap.String("role", role.String()),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()))
		if m.metrics != nil {
			m.metrics.RecordAuthFailure("forbidden")
		}
		return apperrors.NewForbidden("insufficient role")
	}

	c.Locals(principalKey, &Principal{Username: claims.Subject, Role: role, Claims: claims})
	return c.Next()
}

func (m *AuthMiddleware) unauthorized(c *fiber.Ctx, reason InvalidReason, err error) error {
	fields := []zap.Field{
		zap.String("reason", string(reason)),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	m.logger.Info("authentication failed", fields...)
	if m.metrics != nil {
		m.metrics.RecordAuthFailure(string(reason))
	}
	c.Set(fiber.HeaderWWWAuthenticate, TokenType)
	if reason == reasonNoCredentials {
		return apperrors.NewUnauthorized("authentication required")
	}
	return apperrors.NewUnauthorized("invalid token")
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], TokenType) {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
