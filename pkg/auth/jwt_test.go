package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewJWTService("secret", "hms-api", time.Hour)

	token, err := svc.GenerateAccessToken("doc@h.com", Claims{
		UserID:   "0d7c3a2e-7a7e-4b9e-9d0f-7b9f6d1c2a11",
		UserType: "DOCTOR",
		Name:     "Dr. Who",
		Roles:    []string{"ROLE_DOCTOR"},
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "doc@h.com", claims.Subject)
	assert.Equal(t, "DOCTOR", claims.UserType)
	assert.Equal(t, []string{"ROLE_DOCTOR"}, claims.Roles)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTService("a", "hms-api", time.Hour).GenerateAccessToken("x@y.z", Claims{})
	require.NoError(t, err)

	_, err = NewJWTService("b", "hms-api", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpired(t *testing.T) {
	svc := NewJWTService("secret", "hms-api", time.Minute).(*hmacService)
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := svc.GenerateAccessToken("x@y.z", Claims{})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
