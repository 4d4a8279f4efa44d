package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const secret = "a-very-long-secret-used-only-in-tests"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTokenRoundTrip(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer(secret, time.Hour).WithClock(fixedClock(now))

	token, err := issuer.Issue("64b7f0c2a1b2c3d4e5f60718")
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", claims.ID)
	assert.Equal(t, now.Unix(), claims.IssuedAtUnix())
	assert.Equal(t, now.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestTokenIssueRejectsEmptyID(t *testing.T) {
	_, err := NewTokenIssuer(secret, time.Hour).Issue("")
	assert.ErrorIs(t, err, ErrInvalidUserID)
}

func TestTokenParseFailures(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer(secret, time.Hour).WithClock(fixedClock(now))
	token, err := issuer.Issue("user-1")
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		ID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	tests := []struct {
		name   string
		parser *TokenIssuer
		token  string
		want   error
	}{
		{
			name:   "expired",
			parser: NewTokenIssuer(secret, time.Hour).WithClock(fixedClock(now.Add(2 * time.Hour))),
			token:  token,
			want:   jwt.ErrTokenExpired,
		},
		{
			name:   "wrong secret",
			parser: NewTokenIssuer("another-secret-that-is-long-enough!!", time.Hour).WithClock(fixedClock(now)),
			token:  token,
			want:   jwt.ErrTokenSignatureInvalid,
		},
		{
			name:   "malformed",
			parser: issuer,
			token:  "not.a.token",
			want:   jwt.ErrTokenMalformed,
		},
		{
			name:   "unexpected algorithm",
			parser: issuer,
			token:  hs512,
			want:   jwt.ErrTokenSignatureInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.parser.Parse(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("pass1234")
	require.NoError(t, err)
	assert.NotEqual(t, "pass1234", hash)

	ok, err := h.Compare(hash, "pass1234")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Compare(hash, "wrong-pass")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = h.Compare("not-a-hash", "pass1234")
	assert.Error(t, err)
}

func TestResetToken(t *testing.T) {
	plain, digest, err := NewResetToken()
	require.NoError(t, err)

	assert.Len(t, plain, 64)
	assert.Len(t, digest, 64)
	assert.NotEqual(t, plain, digest)
	assert.Equal(t, digest, HashResetToken(plain))

	other, _, err := NewResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, plain, other)
}
