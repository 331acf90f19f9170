package doctor

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

var admin = model.AdminPrincipal{UserID: uuid.New()}

func newService() *Service {
	log := logger.Nop()
	return NewService(memory.NewStore().Doctors(), security.NewBcryptHasher(bcrypt.MinCost), audit.NewLogger(log), log, time.Minute)
}

func registration(email, phone, specialization string) model.DoctorRegistrationRequest {
	return model.DoctorRegistrationRequest{
		Name:              "Dr. " + email,
		Age:               40,
		Qualification:     "MD",
		Specialization:    specialization,
		PhoneNumber:       phone,
		YearsOfExperience: 10,
		Email:             email,
		Password:          "secret-pass",
	}
}

func TestRegisterUniqueness(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.Register(ctx, registration("a@example.com", "+1 555 0101", "Cardiology"), admin)
	require.NoError(t, err)

	_, err = svc.Register(ctx, registration("a@example.com", "+1 555 0102", "Cardiology"), admin)
	assert.True(t, apperrors.IsDuplicate(err))
	assert.Equal(t, "Doctor already exists with email : 'a@example.com'", err.Error())

	_, err = svc.Register(ctx, registration("b@example.com", "+1 555 0101", "Cardiology"), admin)
	assert.True(t, apperrors.IsDuplicate(err))
	assert.Contains(t, err.Error(), "phone number")
}

func TestSpecializationSearchIsCachedAndInvalidated(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.Register(ctx, registration("a@example.com", "+1 555 0101", "Cardiology"), admin)
	require.NoError(t, err)

	got, err := svc.ListBySpecialization(ctx, "CARDIOLOGY")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, found := svc.cache.Get("cardiology")
	assert.True(t, found)

	_, err = svc.Register(ctx, registration("b@example.com", "+1 555 0102", "cardiology"), admin)
	require.NoError(t, err)

	got, err = svc.ListBySpecialization(ctx, "Cardiology")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = svc.ListBySpecialization(ctx, "Dermatology")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestUpdateProfileAndPassword(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	d, err := svc.Register(ctx, registration("a@example.com", "+1 555 0101", "Cardiology"), admin)
	require.NoError(t, err)
	_, err = svc.Register(ctx, registration("b@example.com", "+1 555 0102", "Cardiology"), admin)
	require.NoError(t, err)
	self := model.DoctorPrincipal{UserID: d.ID}

	taken := "+1 555 0102"
	_, err = svc.UpdateProfile(ctx, d.ID, model.DoctorUpdateRequest{PhoneNumber: &taken}, self)
	assert.True(t, apperrors.IsDuplicate(err))

	years := 12
	got, err := svc.UpdateProfile(ctx, d.ID, model.DoctorUpdateRequest{YearsOfExperience: &years}, self)
	require.NoError(t, err)
	assert.Equal(t, 12, got.YearsOfExperience)

	_, err = svc.GetProfile(ctx, d.ID, model.DoctorPrincipal{UserID: uuid.New()})
	assert.True(t, apperrors.IsAccessDenied(err))
	assert.Equal(t, "You do not have permission to view this doctor's profile.", err.Error())

	req := model.ChangePasswordRequest{CurrentPassword: "secret-pass", NewPassword: "better-pass", ConfirmNewPassword: "better-pass"}

	// a patient principal that happens to carry the same id is still refused
	err = svc.ChangePassword(ctx, d.ID, req, model.PatientPrincipal{UserID: d.ID})
	assert.Equal(t, "User is not a doctor.", err.Error())

	require.NoError(t, svc.ChangePassword(ctx, d.ID, req, self))
	stored, err := svc.get(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, svc.hasher.Verify("better-pass", stored.PasswordHash))
}
