// Package account holds rules shared by patient and doctor accounts.
package account

import (
	"errors"
	"fmt"

	"github.com/jwalitptl/hms-api/internal/model"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/security"
)

// NewPasswordHash validates a password change against currentHash and
// returns the hash to store.
func NewPasswordHash(hasher security.PasswordHasher, currentHash string, req model.ChangePasswordRequest) (string, error) {
	if !hasher.Verify(req.CurrentPassword, currentHash) {
		return "", apperrors.BadRequest("Incorrect current password.", nil)
	}
	if req.NewPassword != req.ConfirmNewPassword {
		return "", apperrors.BadRequest("New passwords do not match.", nil)
	}
	if hasher.Verify(req.NewPassword, currentHash) {
		return "", apperrors.BadRequest("New password cannot be the same as the current password.", nil)
	}
	return HashPassword(hasher, req.NewPassword)
}

// HashPassword maps a too-short password to BadRequest.
func HashPassword(hasher security.PasswordHasher, password string) (string, error) {
	hash, err := hasher.Hash(password)
	if errors.Is(err, security.ErrPasswordShort) {
		return "", apperrors.BadRequest(fmt.Sprintf("Password must be at least %d characters.", security.MinPasswordLen), err)
	}
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}

// Duplicate formats the conflict message for a taken unique field.
func Duplicate(resource, field, value string) error {
	return apperrors.Duplicate(fmt.Sprintf("%s already exists with %s : '%s'", resource, field, value))
}
