package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestManager(t *testing.T) (*TokenManager, *fakeClock) {
	t.Helper()
	tm, err := NewTokenManager(testKey, time.Hour)
	require.NoError(t, err)
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	tm.now = clock.Now
	return tm, clock
}

func TestIssueValidateRoundTrip(t *testing.T) {
	pairs := []struct{ subject, role string }{
		{"admin", "ADMIN"},
		{"coach.kim", "TRAINER"},
		{"new@x.com", "MEMBER"},
		{"legacy", "ROLE_ADMIN"},
	}

	for _, p := range pairs {
		t.Run(p.subject, func(t *testing.T) {
			tm, clock := newTestManager(t)

			token, expiresAt, err := tm.Issue(p.subject, p.role, nil, time.Hour)
			require.NoError(t, err)
			assert.Equal(t, clock.Now().Add(time.Hour), expiresAt)

			clock.Advance(time.Hour - time.Second)
			claims, err := tm.Validate(token)
			require.NoError(t, err)
			assert.Equal(t, p.subject, claims.Subject)
			assert.Equal(t, p.role, claims.Role)
			assert.WithinDuration(t, expiresAt, claims.ExpiresAt, 0)
			assert.Empty(t, claims.Extra)

			clock.Advance(2 * time.Second)
			_, err = tm.Validate(token)
			require.ErrorIs(t, err, ErrInvalidToken)
			assert.Equal(t, ReasonExpired, ReasonOf(err))
		})
	}
}

func TestExtraClaimsRoundTrip(t *testing.T) {
	tm, _ := newTestManager(t)

	token, _, err := tm.GenerateToken("new@x.com", "MEMBER", map[string]any{
		"isNewUser": true,
		"role":      "ADMIN",
		"sub":       "someone-else",
	})
	require.NoError(t, err)

	claims, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "new@x.com", claims.Subject)
	assert.Equal(t, "MEMBER", claims.Role)
	assert.Equal(t, map[string]any{"isNewUser": true}, claims.Extra)
}

func TestIssueRejectsBlankClaims(t *testing.T) {
	tm, _ := newTestManager(t)

	_, _, err := tm.Issue("", "ADMIN", nil, time.Hour)
	assert.ErrorIs(t, err, ErrInvalidClaims)

	_, _, err = tm.Issue("admin", "  ", nil, time.Hour)
	assert.ErrorIs(t, err, ErrInvalidClaims)

	_, _, err = tm.Issue("admin", "ADMIN", nil, 0)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestTamperedTokenIsInvalid(t *testing.T) {
	tm, _ := newTestManager(t)

	token, _, err := tm.Issue("admin", "ADMIN", map[string]any{"isNewUser": false}, time.Hour)
	require.NoError(t, err)

	for i := 0; i < len(token); i++ {
		replacement := byte('A')
		if token[i] == 'A' {
			replacement = 'B'
		}
		tampered := token[:i] + string(replacement) + token[i+1:]

		_, err := tm.Validate(tampered)
		require.ErrorIsf(t, err, ErrInvalidToken, "byte %d (%q -> %q) still validated", i, token[i], replacement)
	}
}

func TestValidateReasons(t *testing.T) {
	tm, clock := newTestManager(t)

	sign := func(claims jwt.MapClaims, method jwt.SigningMethod, key any) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	exp := jwt.NewNumericDate(clock.Now().Add(time.Hour))

	otherKey, _ := NewTokenManager([]byte("another-key-another-key-another-k"), time.Hour)
	otherKey.now = clock.Now
	foreign, _, err := otherKey.Issue("admin", "ADMIN", nil, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		reason InvalidReason
	}{
		{"garbage", "not-a-jwt", ReasonMalformed},
		{"empty", "", ReasonMalformed},
		{"wrong key", foreign, ReasonSignature},
		{"wrong algorithm", sign(jwt.MapClaims{"sub": "admin", "role": "ADMIN", "exp": exp}, jwt.SigningMethodHS512, testKey), ReasonSignature},
		{"missing role", sign(jwt.MapClaims{"sub": "admin", "exp": exp}, jwt.SigningMethodHS256, testKey), ReasonRoleMissing},
		{"blank role", sign(jwt.MapClaims{"sub": "admin", "role": " ", "exp": exp}, jwt.SigningMethodHS256, testKey), ReasonRoleMissing},
		{"missing subject", sign(jwt.MapClaims{"role": "ADMIN", "exp": exp}, jwt.SigningMethodHS256, testKey), ReasonSubjectMissing},
		{"missing expiry", sign(jwt.MapClaims{"sub": "admin", "role": "ADMIN"}, jwt.SigningMethodHS256, testKey), ReasonMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tm.Validate(tt.token)
			require.ErrorIs(t, err, ErrInvalidToken)
			assert.Equal(t, tt.reason, ReasonOf(err))
			assert.False(t, strings.Contains(ErrInvalidToken.Error(), string(tt.reason)))
		})
	}
}

func TestNewTokenManagerRequiresKey(t *testing.T) {
	_, err := NewTokenManager(nil, time.Hour)
	require.Error(t, err)

	tm, err := NewTokenManager(testKey, 0)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, tm.TTL())
}

func TestReasonOfForeignError(t *testing.T) {
	assert.Equal(t, ReasonMalformed, ReasonOf(errors.New("boom")))
}
