package patient

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository/memory"
	"github.com/jwalitptl/hms-api/internal/service/audit"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/logger"
	"github.com/jwalitptl/hms-api/pkg/security"
)

func newService() *Service {
	log := logger.Nop()
	return NewService(memory.NewStore().Patients(), security.NewBcryptHasher(bcrypt.MinCost), audit.NewLogger(log), log)
}

func registration(email, personalNumber string) model.PatientRegistrationRequest {
	return model.PatientRegistrationRequest{
		Name:            "Ann",
		Age:             30,
		DateOfBirth:     time.Date(1995, 1, 2, 0, 0, 0, 0, time.UTC),
		Gender:          model.GenderFemale,
		PersonalNumber:  personalNumber,
		Address:         "1 Main St",
		Email:           email,
		Password:        "secret-pass",
		ConfirmPassword: "secret-pass",
	}
}

func TestRegister(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	p, err := svc.Register(ctx, registration("ann@example.com", "123"))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.NotEqual(t, "secret-pass", p.PasswordHash)

	req := registration("bob@example.com", "456")
	req.ConfirmPassword = "other-pass"
	_, err = svc.Register(ctx, req)
	assert.True(t, apperrors.IsBadRequest(err))
	assert.Equal(t, "Passwords do not match", err.Error())

	_, err = svc.Register(ctx, registration("ann@example.com", "456"))
	assert.True(t, apperrors.IsDuplicate(err))
	assert.Contains(t, err.Error(), "email")

	_, err = svc.Register(ctx, registration("bob@example.com", "123"))
	assert.True(t, apperrors.IsDuplicate(err))
	assert.Contains(t, err.Error(), "personal number")
}

func TestProfileAccess(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	p, err := svc.Register(ctx, registration("ann@example.com", "123"))
	require.NoError(t, err)
	self := model.PatientPrincipal{UserID: p.ID}
	admin := model.AdminPrincipal{UserID: uuid.New()}

	got, err := svc.GetProfile(ctx, p.ID, self)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", got.Email)

	_, err = svc.GetProfile(ctx, p.ID, admin)
	require.NoError(t, err)

	_, err = svc.GetProfile(ctx, p.ID, model.PatientPrincipal{UserID: uuid.New()})
	assert.True(t, apperrors.IsAccessDenied(err))

	_, err = svc.GetProfile(ctx, uuid.New(), admin)
	assert.True(t, apperrors.IsNotFound(err))

	addr := "2 Side St"
	_, err = svc.UpdateProfile(ctx, p.ID, model.PatientUpdateRequest{Address: &addr}, admin)
	assert.True(t, apperrors.IsAccessDenied(err), "admins cannot edit another user's profile")
}

func TestUpdateProfile(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	ann, err := svc.Register(ctx, registration("ann@example.com", "123"))
	require.NoError(t, err)
	_, err = svc.Register(ctx, registration("bob@example.com", "456"))
	require.NoError(t, err)
	self := model.PatientPrincipal{UserID: ann.ID}

	taken := "456"
	_, err = svc.UpdateProfile(ctx, ann.ID, model.PatientUpdateRequest{PersonalNumber: &taken}, self)
	assert.True(t, apperrors.IsDuplicate(err))

	same := "123"
	addr := "2 Side St"
	guardian := "Carl"
	got, err := svc.UpdateProfile(ctx, ann.ID, model.PatientUpdateRequest{PersonalNumber: &same, Address: &addr, GuardianName: &guardian}, self)
	require.NoError(t, err)
	assert.Equal(t, "2 Side St", got.Address)
	require.NotNil(t, got.GuardianName)
	assert.Equal(t, "Carl", *got.GuardianName)
}

func TestChangePassword(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	p, err := svc.Register(ctx, registration("ann@example.com", "123"))
	require.NoError(t, err)
	self := model.PatientPrincipal{UserID: p.ID}
	req := model.ChangePasswordRequest{CurrentPassword: "secret-pass", NewPassword: "better-pass", ConfirmNewPassword: "better-pass"}

	err = svc.ChangePassword(ctx, p.ID, req, model.AdminPrincipal{UserID: uuid.New()})
	assert.True(t, apperrors.IsAccessDenied(err))

	require.NoError(t, svc.ChangePassword(ctx, p.ID, req, self))

	err = svc.ChangePassword(ctx, p.ID, req, self)
	assert.True(t, apperrors.IsBadRequest(err))
	assert.Equal(t, "Incorrect current password.", err.Error())
}
