package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gymcore/gym-gateway/internal/auth"
	"github.com/gymcore/gym-gateway/internal/config"
	"github.com/gymcore/gym-gateway/internal/domain"
	"github.com/gymcore/gym-gateway/internal/events"
	"github.com/gymcore/gym-gateway/internal/repository"
)

// ClaimIsNewUser marks tokens issued right after auto-provisioning.
const ClaimIsNewUser = "isNewUser"

var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidIdentity      = errors.New("identity provider returned no email")
	ErrProvisioningConflict = errors.New("username belongs to another account type")
)

// AdminCreator persists new administrators.
type AdminCreator interface {
	Create(ctx context.Context, admin *domain.Admin) error
}

// AuthService coordinates password and federated login flows.
type AuthService struct {
	store           *CredentialStore
	admins          AdminCreator
	hasher          auth.PasswordHasher
	tokenMgr        *auth.TokenManager
	dispatcher      events.Dispatcher
	logger          *zap.Logger
	defaultPassword string
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	Store      *CredentialStore
	Admins     AdminCreator
	Hasher     auth.PasswordHasher
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// LoginResult is returned by a successful password login.
type LoginResult struct {
	Principal *domain.Principal
	Token     string
	ExpiresAt time.Time
	ExpiresIn int64
}

// FederatedResult is returned by a successful federated login.
type FederatedResult struct {
	Principal *domain.Principal
	Token     string
	ExpiresAt time.Time
	IsNewUser bool
}

// NewAuthService builds the service and its token manager.
func NewAuthService(cfg config.Config, deps AuthDependencies) (*AuthService, error) {
	if len(cfg.Auth.JWTSecret) < config.MinSigningKeyBytes {
		return nil, fmt.Errorf("%w: signing key shorter than %d bytes", config.ErrConfiguration, config.MinSigningKeyBytes)
	}
	tokenMgr, err := auth.NewTokenManager([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrConfiguration, err)
	}
	if deps.Store == nil || deps.Hasher == nil {
		return nil, errors.New("auth service requires a credential store and a password hasher")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dispatcher := deps.Dispatcher
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher()
	}
	return &AuthService{
		store:           deps.Store,
		admins:          deps.Admins,
		hasher:          deps.Hasher,
		tokenMgr:        tokenMgr,
		dispatcher:      dispatcher,
		logger:          logger,
		defaultPassword: cfg.Auth.DefaultPassword,
	}, nil
}

// Login authenticates a principal of any kind by username and password.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	principal, err := s.store.FindPrincipal(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Verify(password, principal.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.tokenMgr.GenerateToken(principal.Username, principal.Role.String(), nil)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventLoginSucceeded, principal, events.LoginSucceededPayload{Method: "password"})

	return &LoginResult{
		Principal: principal,
		Token:     token,
		ExpiresAt: exp,
		ExpiresIn: int64(s.tokenMgr.TTL() / time.Second),
	}, nil
}

// FederatedLogin signs in the member behind an external identity, creating
// the member on first sight. Concurrent first logins for the same email
// produce one member; the losing insert is treated as already provisioned.
func (s *AuthService) FederatedLogin(ctx context.Context, identity domain.ExternalIdentity) (*FederatedResult, error) {
	email := domain.NormalizeUsername(identity.Email)
	if email == "" {
		return nil, ErrInvalidIdentity
	}

	exists, err := s.store.PrincipalExists(ctx, email, domain.RoleMember)
	if err != nil {
		return nil, err
	}

	isNew := false
	if !exists {
		isNew, err = s.provisionMember(ctx, email, identity)
		if err != nil {
			return nil, err
		}
	}

	principal := &domain.Principal{Username: email, Role: domain.RoleMember}
	token, exp, err := s.tokenMgr.GenerateToken(email, domain.RoleMember.String(), map[string]any{
		ClaimIsNewUser: isNew,
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventLoginSucceeded, principal, events.LoginSucceededPayload{
		Method:    identity.Provider,
		IsNewUser: isNew,
	})

	return &FederatedResult{Principal: principal, Token: token, ExpiresAt: exp, IsNewUser: isNew}, nil
}

func (s *AuthService) provisionMember(ctx context.Context, email string, identity domain.ExternalIdentity) (bool, error) {
	role, taken, err := s.store.UsernameTaken(ctx, email)
	if err != nil {
		return false, err
	}
	if taken {
		if role == domain.RoleMember {
			return false, nil
		}
		s.logger.Warn("federated login for non-member account refused",
			zap.String("email", email),
			zap.String("existing_role", role.String()))
		return false, ErrProvisioningConflict
	}

	if s.defaultPassword == "" {
		return false, fmt.Errorf("%w: no default password for provisioned members", config.ErrConfiguration)
	}
	hash, err := s.hasher.Hash(s.defaultPassword)
	if err != nil {
		return false, err
	}

	member := &domain.Member{
		Principal: domain.Principal{
			Username:     email,
			PasswordHash: hash,
			Role:         domain.RoleMember,
		},
		Name:   identity.DisplayName(),
		Email:  email,
		Gender: domain.ParseGender(identity.Gender),
	}
	if err := s.store.CreateMember(ctx, member); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.logger.Debug("member provisioned concurrently", zap.String("email", email))
			return false, nil
		}
		return false, err
	}

	s.logger.Info("member provisioned", zap.String("email", email), zap.String("provider", identity.Provider))
	s.publish(ctx, events.EventPrincipalProvisioned, &member.Principal, events.PrincipalProvisionedPayload{
		Provider: identity.Provider,
		Email:    email,
		Name:     member.Name,
	})
	return true, nil
}

// BootstrapAdmin creates the first administrator when the username is free
// in every partition. It reports whether an admin was created.
func (s *AuthService) BootstrapAdmin(ctx context.Context, username, password string) (bool, error) {
	if s.admins == nil {
		return false, errors.New("admin store not configured")
	}
	username = domain.NormalizeUsername(username)
	if username == "" {
		return false, errors.New("admin username required")
	}
	if _, taken, err := s.store.UsernameTaken(ctx, username); err != nil || taken {
		return false, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, err
	}
	admin := &domain.Admin{
		Principal: domain.Principal{Username: username, PasswordHash: hash, Role: domain.RoleAdmin},
		Name:      username,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return false, nil
		}
		return false, err
	}
	s.logger.Info("bootstrap admin created", zap.String("username", username))
	return true, nil
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, principal *domain.Principal, payload any) {
	err := s.dispatcher.Publish(ctx, events.Event{
		Type:    eventType,
		Subject: principal.Username,
		Role:    principal.Role,
		Payload: payload,
	})
	if err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// CredentialStore exposes the principal lookup for middleware usage.
func (s *AuthService) CredentialStore() *CredentialStore {
	return s.store
}
