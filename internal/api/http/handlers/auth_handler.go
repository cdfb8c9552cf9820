package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gymcore/gym-gateway/internal/api/dto"
	"github.com/gymcore/gym-gateway/internal/auth"
	"github.com/gymcore/gym-gateway/internal/service"
	apperrors "github.com/gymcore/gym-gateway/pkg/util"
)

// AuthHandler exposes password login.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /login. Every credential failure gets the same answer.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return apperrors.NewUnauthorized(service.ErrInvalidCredentials.Error())
	}

	result, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return apperrors.NewUnauthorized(err.Error())
		}
		return err
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(dto.TokenResponse{
		TokenType:   auth.TokenType,
		AccessToken: result.Token,
		ExpiresIn:   result.ExpiresIn,
	})
}
