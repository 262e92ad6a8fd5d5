package crypto

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var issuedAt = time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	svc, err := NewTokenService("test-secret")
	require.NoError(t, err)
	return svc
}

func TestNewTokenServiceEmptySecret(t *testing.T) {
	_, err := NewTokenService("")
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestIssueExpiresAfterOneHour(t *testing.T) {
	svc := newTestTokenService(t).WithClock(fixedClock(issuedAt))

	issued, err := svc.Issue("user-1", "alice")
	require.NoError(t, err)

	assert.NotEmpty(t, issued.Token)
	assert.Equal(t, 2, strings.Count(issued.Token, "."))
	assert.Equal(t, issuedAt.Add(time.Hour), issued.ExpiresAt)
}

func TestVerifyRoundTrip(t *testing.T) {
	svc := newTestTokenService(t).WithClock(fixedClock(issuedAt))

	issued, err := svc.Issue("user-1", "alice")
	require.NoError(t, err)

	id, err := svc.WithClock(fixedClock(issuedAt.Add(59 * time.Minute))).Verify(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: "user-1", Username: "alice"}, id)
}

func TestVerifyExpired(t *testing.T) {
	svc := newTestTokenService(t).WithClock(fixedClock(issuedAt))

	issued, err := svc.Issue("user-1", "alice")
	require.NoError(t, err)

	tests := []struct {
		name string
		at   time.Time
	}{
		{"at expiry instant", issuedAt.Add(time.Hour)},
		{"after expiry", issuedAt.Add(time.Hour + time.Second)},
		{"a day later", issuedAt.Add(24 * time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.WithClock(fixedClock(tt.at)).Verify(issued.Token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestVerifyInvalid(t *testing.T) {
	svc := newTestTokenService(t)

	for _, token := range []string{"", "not-a-valid-token", "not.a.jwt"} {
		_, err := svc.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	issued, err := newTestTokenService(t).Issue("user-1", "alice")
	require.NoError(t, err)

	other, err := NewTokenService("wrong-secret")
	require.NoError(t, err)

	_, err = other.Verify(issued.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTamperedSignature(t *testing.T) {
	svc := newTestTokenService(t)
	issued, err := svc.Issue("user-1", "alice")
	require.NoError(t, err)

	tampered := issued.Token[:len(issued.Token)-3] + "xxx"
	if tampered == issued.Token {
		tampered = issued.Token[:len(issued.Token)-3] + "yyy"
	}

	_, err = svc.Verify(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func signClaims(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims() Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Username: "alice",
	}
}

func TestVerifyRejectsForeignClaims(t *testing.T) {
	svc := newTestTokenService(t)
	secret := []byte("test-secret")

	wrongIssuer := validClaims()
	wrongIssuer.Issuer = "someone-else"

	wrongAudience := validClaims()
	wrongAudience.Audience = jwt.ClaimStrings{"other-api"}

	noExpiry := validClaims()
	noExpiry.ExpiresAt = nil

	noSubject := validClaims()
	noSubject.Subject = ""

	tests := []struct {
		name  string
		token string
	}{
		{"wrong issuer", signClaims(t, jwt.SigningMethodHS256, secret, wrongIssuer)},
		{"wrong audience", signClaims(t, jwt.SigningMethodHS256, secret, wrongAudience)},
		{"no expiry", signClaims(t, jwt.SigningMethodHS256, secret, noExpiry)},
		{"no subject", signClaims(t, jwt.SigningMethodHS256, secret, noSubject)},
		{"HS512", signClaims(t, jwt.SigningMethodHS512, secret, validClaims())},
		{"alg none", signClaims(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, validClaims())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
