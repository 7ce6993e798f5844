package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	tok, err := NewSessionToken("secret", "acc-1", "alice@example.com", "TASKER", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.Exp, 5*time.Second)

	claims, err := ParseSessionToken("secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", claims.ID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "TASKER", claims.Role)
	assert.Equal(t, "acc-1", claims.Subject)
}

func TestParseSessionToken_WrongSecret(t *testing.T) {
	tok, err := NewSessionToken("right", "acc-1", "a@b.c", "REQUESTER", time.Hour)
	require.NoError(t, err)

	_, err = ParseSessionToken("wrong", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
}

func TestParseSessionToken_Expired(t *testing.T) {
	tok, err := NewSessionToken("secret", "acc-1", "a@b.c", "REQUESTER", -time.Minute)
	require.NoError(t, err)

	_, err = ParseSessionToken("secret", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
}

func TestParseSessionToken_Malformed(t *testing.T) {
	_, err := ParseSessionToken("secret", "not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
}

func TestParseSessionToken_RejectsNoneAlgorithm(t *testing.T) {
	claims := SessionClaims{
		ID: "acc-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseSessionToken("secret", raw)
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
}

func TestParseSessionToken_MissingExpiry(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{ID: "acc-1"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ParseSessionToken("secret", raw)
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("password123", 4)
	require.NoError(t, err)

	assert.NotEqual(t, "password123", hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$04$"))
	assert.True(t, VerifyPassword(hash, "password123"))
	assert.False(t, VerifyPassword(hash, "password124"))
}

func TestHashPassword_OutOfRangeCostUsesDefault(t *testing.T) {
	hash, err := HashPassword("password123", 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2a$10$"))
}

func TestNewVerificationToken(t *testing.T) {
	now := time.Date(2025, 11, 12, 10, 0, 0, 0, time.UTC)

	tok, err := NewVerificationToken(now, 24*time.Hour)
	require.NoError(t, err)

	assert.Len(t, tok.Raw, 64)
	assert.Equal(t, now.Add(24*time.Hour), tok.Exp)
}

func TestNewVerificationToken_Unique(t *testing.T) {
	seen := map[string]bool{}
	for range 20 {
		tok, err := NewVerificationToken(time.Now(), time.Hour)
		require.NoError(t, err)
		assert.False(t, seen[tok.Raw], "duplicate token generated")
		seen[tok.Raw] = true
	}
}
