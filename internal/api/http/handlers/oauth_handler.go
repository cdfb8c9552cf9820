package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/gymcore/gym-gateway/internal/service"
	apperrors "github.com/gymcore/gym-gateway/pkg/util"
)

// OAuthHandler drives the federated login redirects.
type OAuthHandler struct {
	federation *service.FederationService
	logger     *zap.Logger
}

// NewOAuthHandler constructs handler.
func NewOAuthHandler(federation *service.FederationService, logger *zap.Logger) *OAuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OAuthHandler{federation: federation, logger: logger}
}

// Provider is the path segment the handler answers for.
func (h *OAuthHandler) Provider() string {
	return h.federation.Provider()
}

// Authorize handles GET /oauth2/authorization/:provider.
func (h *OAuthHandler) Authorize(c *fiber.Ctx) error {
	consentURL, err := h.federation.Begin(c.UserContext())
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.Redirect(consentURL, fiber.StatusFound)
}

// Callback handles GET /oauth2/callback/:provider.
func (h *OAuthHandler) Callback(c *fiber.Ctx) error {
	if providerErr := c.Query("error"); providerErr != "" {
		h.logger.Info("federated login declined", zap.String("error", providerErr))
		return apperrors.NewUnauthorized("federated login failed")
	}

	target, err := h.federation.Complete(c.UserContext(), c.Query("state"), c.Query("code"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidState) {
			return apperrors.NewUnauthorized("invalid or expired login request")
		}
		if errors.Is(err, service.ErrProviderExchange) || errors.Is(err, service.ErrInvalidIdentity) {
			h.logger.Info("federated login rejected", zap.Error(err))
			return apperrors.NewUnauthorized("federated login failed")
		}
		return apperrors.NewInternalError(err)
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Redirect(target, fiber.StatusFound)
}
