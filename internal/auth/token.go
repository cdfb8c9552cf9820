package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Claim names owned by the token manager. Extra claims cannot override them.
const (
	claimSubject   = "sub"
	claimRole      = "role"
	claimIssuedAt  = "iat"
	claimExpiresAt = "exp"
)

// TokenType is reported to clients alongside issued tokens.
const TokenType = "Bearer"

var (
	// ErrInvalidToken is the class every validation failure belongs to.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidClaims is returned at issuance when subject or role is blank.
	ErrInvalidClaims = errors.New("invalid token claims")
)

// InvalidReason tells validation failures apart for logs and metrics.
// It must never reach a response body.
type InvalidReason string

const (
	ReasonMalformed      InvalidReason = "malformed"
	ReasonSignature      InvalidReason = "signature"
	ReasonExpired        InvalidReason = "expired"
	ReasonRoleMissing    InvalidReason = "role_missing"
	ReasonSubjectMissing InvalidReason = "subject_missing"
)

// TokenError is returned by Validate.
type TokenError struct {
	Reason InvalidReason
	Err    error
}

func (e *TokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid token (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid token (%s)", e.Reason)
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

// Is makes every TokenError match ErrInvalidToken.
func (e *TokenError) Is(target error) bool {
	return target == ErrInvalidToken
}

// ReasonOf extracts the failure reason from a validation error.
func ReasonOf(err error) InvalidReason {
	var tokenErr *TokenError
	if errors.As(err, &tokenErr) {
		return tokenErr.Reason
	}
	return ReasonMalformed
}

// Claims is the verified content of a session token.
type Claims struct {
	Subject   string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Extra     map[string]any
}

// TokenManager handles issuing and validating JWT tokens. It holds a single
// HS256 key for the lifetime of the process.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret []byte, ttl time.Duration) (*TokenManager, error) {
	if len(secret) == 0 {
		return nil, errors.New("token signing key is empty")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &TokenManager{secret: key, ttl: ttl, now: time.Now}, nil
}

// TTL is the lifetime used by GenerateToken.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// GenerateToken issues a token with the configured lifetime.
func (tm *TokenManager) GenerateToken(subject, role string, extra map[string]any) (string, time.Time, error) {
	return tm.Issue(subject, role, extra, tm.ttl)
}

// Issue signs a token for subject. The role claim is written verbatim, so
// callers pass the canonical bare role name.
func (tm *TokenManager) Issue(subject, role string, extra map[string]any, ttl time.Duration) (string, time.Time, error) {
	if strings.TrimSpace(subject) == "" {
		return "", time.Time{}, fmt.Errorf("%w: subject is blank", ErrInvalidClaims)
	}
	if strings.TrimSpace(role) == "" {
		return "", time.Time{}, fmt.Errorf("%w: role is blank", ErrInvalidClaims)
	}
	if ttl <= 0 {
		return "", time.Time{}, fmt.Errorf("%w: ttl must be positive", ErrInvalidClaims)
	}

	issuedAt := tm.now()
	expiresAt := issuedAt.Add(ttl)

	claims := make(jwt.MapClaims, len(extra)+4)
	for k, v := range extra {
		claims[k] = v
	}
	claims[claimSubject] = subject
	claims[claimRole] = role
	claims[claimIssuedAt] = jwt.NewNumericDate(issuedAt)
	claims[claimExpiresAt] = jwt.NewNumericDate(expiresAt)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt.Truncate(time.Second), nil
}

// Validate verifies signature and expiry and returns the claims.
func (tm *TokenManager) Validate(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(tm.now),
	)

	mapClaims := jwt.MapClaims{}
	_, err := parser.ParseWithClaims(tokenStr, mapClaims, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	})
	if err != nil {
		return nil, &TokenError{Reason: classify(err), Err: err}
	}

	subject, _ := mapClaims[claimSubject].(string)
	if strings.TrimSpace(subject) == "" {
		return nil, &TokenError{Reason: ReasonSubjectMissing}
	}
	role, _ := mapClaims[claimRole].(string)
	if strings.TrimSpace(role) == "" {
		return nil, &TokenError{Reason: ReasonRoleMissing}
	}

	claims := &Claims{
		Subject: subject,
		Role:    role,
		Extra:   make(map[string]any),
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	for k, v := range mapClaims {
		switch k {
		case claimSubject, claimRole, claimIssuedAt, claimExpiresAt:
			continue
		}
		claims.Extra[k] = v
	}
	return claims, nil
}

func classify(err error) InvalidReason {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ReasonSignature
	default:
		return ReasonMalformed
	}
}
