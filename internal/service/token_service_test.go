package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTTokenService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTTokenService("test-secret-key-32-chars-long!!", time.Hour, "investment-ledger")

	userID := uuid.New()
	token, expiry, err := svc.Generate(userID, "ada@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiry, 5*time.Second)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestJWTTokenService_Expired(t *testing.T) {
	svc := NewJWTTokenService("secret", time.Minute, "investment-ledger")
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := svc.Generate(uuid.New(), "a@b.c")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTTokenService_Rejects(t *testing.T) {
	svc := NewJWTTokenService("secret-a", time.Hour, "investment-ledger")
	other := NewJWTTokenService("secret-b", time.Hour, "investment-ledger")
	foreign := NewJWTTokenService("secret-a", time.Hour, "someone-else")

	signedByOther, _, err := other.Generate(uuid.New(), "a@b.c")
	require.NoError(t, err)
	wrongIssuer, _, err := foreign.Generate(uuid.New(), "a@b.c")
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": uuid.NewString(), "iss": "investment-ledger"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "not-a-uuid",
		"iss": "investment-ledger",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret-a"))
	require.NoError(t, err)

	tests := map[string]string{
		"wrong key":    signedByOther,
		"wrong issuer": wrongIssuer,
		"alg none":     unsigned,
		"bad subject":  badSubject,
		"garbage":      "not.a.jwt",
		"empty":        "",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Validate(token)
			assert.Error(t, err)
		})
	}
}
