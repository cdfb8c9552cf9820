package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gymcore/gym-gateway/internal/domain"
)

var (
	// ErrInvalidState is returned when a callback carries an unknown, expired
	// or already used state nonce.
	ErrInvalidState = errors.New("invalid oauth state")
	// ErrProviderExchange wraps failures talking to the identity provider.
	ErrProviderExchange = errors.New("identity provider exchange failed")
)

// IdentityProvider is an external OAuth provider.
type IdentityProvider interface {
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*domain.ExternalIdentity, error)
}

// StateStore holds pending authorization-request nonces.
type StateStore interface {
	Save(ctx context.Context, state string, ttl time.Duration) error
	Consume(ctx context.Context, state string) (bool, error)
}

// FederationService drives the federated login round trip and hands the
// result back to the front end.
type FederationService struct {
	provider    IdentityProvider
	states      StateStore
	auth        *AuthService
	stateTTL    time.Duration
	frontendURL *url.URL
	logger      *zap.Logger
}

// NewFederationService validates the front-end URL once at startup.
func NewFederationService(provider IdentityProvider, states StateStore, authService *AuthService, frontendURL string, stateTTL time.Duration, logger *zap.Logger) (*FederationService, error) {
	u, err := url.Parse(frontendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid frontend url %q", frontendURL)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FederationService{
		provider:    provider,
		states:      states,
		auth:        authService,
		stateTTL:    stateTTL,
		frontendURL: u,
		logger:      logger,
	}, nil
}

// Provider returns the configured provider's name.
func (f *FederationService) Provider() string {
	return f.provider.Name()
}

// Begin starts an authorization request and returns the provider consent URL.
func (f *FederationService) Begin(ctx context.Context) (string, error) {
	state := uuid.NewString()
	if err := f.states.Save(ctx, state, f.stateTTL); err != nil {
		return "", fmt.Errorf("save oauth state: %w", err)
	}
	return f.provider.AuthCodeURL(state), nil
}

// Complete handles the provider callback and returns the front-end redirect.
// Provisioning conflicts are reported to the front end, not as errors.
func (f *FederationService) Complete(ctx context.Context, state, code string) (string, error) {
	if state == "" || code == "" {
		return "", ErrInvalidState
	}
	pending, err := f.states.Consume(ctx, state)
	if err != nil {
		return "", fmt.Errorf("consume oauth state: %w", err)
	}
	if !pending {
		return "", ErrInvalidState
	}

	identity, err := f.provider.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrProviderExchange, err)
	}
	if identity.Provider == "" {
		identity.Provider = f.provider.Name()
	}

	result, err := f.auth.FederatedLogin(ctx, *identity)
	if errors.Is(err, ErrProvisioningConflict) {
		return f.redirect(url.Values{"error": {"account_conflict"}}), nil
	}
	if err != nil {
		return "", err
	}

	return f.redirect(url.Values{
		"token":     {result.Token},
		"isNewUser": {strconv.FormatBool(result.IsNewUser)},
	}), nil
}

func (f *FederationService) redirect(params url.Values) string {
	u := *f.frontendURL
	u.Path = strings.TrimSuffix(u.Path, "/") + "/"
	u.RawQuery = params.Encode()
	u.Fragment = ""
	return u.String()
}
