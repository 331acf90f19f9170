package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/hms-api/internal/model"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/security"
)

func TestNewPasswordHash(t *testing.T) {
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	current, err := hasher.Hash("old-password")
	require.NoError(t, err)

	tests := []struct {
		name string
		req  model.ChangePasswordRequest
		want string
	}{
		{"wrong current", model.ChangePasswordRequest{CurrentPassword: "nope-nope", NewPassword: "new-password", ConfirmNewPassword: "new-password"}, "Incorrect current password."},
		{"mismatch", model.ChangePasswordRequest{CurrentPassword: "old-password", NewPassword: "new-password", ConfirmNewPassword: "new-passw0rd"}, "New passwords do not match."},
		{"unchanged", model.ChangePasswordRequest{CurrentPassword: "old-password", NewPassword: "old-password", ConfirmNewPassword: "old-password"}, "New password cannot be the same as the current password."},
		{"too short", model.ChangePasswordRequest{CurrentPassword: "old-password", NewPassword: "short", ConfirmNewPassword: "short"}, "Password must be at least 8 characters."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPasswordHash(hasher, current, tt.req)
			require.Error(t, err)
			assert.True(t, apperrors.IsBadRequest(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	hash, err := NewPasswordHash(hasher, current, model.ChangePasswordRequest{
		CurrentPassword:    "old-password",
		NewPassword:        "new-password",
		ConfirmNewPassword: "new-password",
	})
	require.NoError(t, err)
	assert.True(t, hasher.Verify("new-password", hash))
}

func TestDuplicateMessage(t *testing.T) {
	err := Duplicate("Patient", "email", "a@b.c")
	assert.True(t, apperrors.IsDuplicate(err))
	assert.Equal(t, "Patient already exists with email : 'a@b.c'", err.Error())
}
