package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/pkg/errors"
)

func TestDoctorOrAdmin(t *testing.T) {
	doctorID := uuid.New()

	tests := []struct {
		name    string
		caller  model.Principal
		allowed bool
	}{
		{"admin", model.AdminPrincipal{UserID: uuid.New()}, true},
		{"own doctor", model.DoctorPrincipal{UserID: doctorID}, true},
		{"other doctor", model.DoctorPrincipal{UserID: uuid.New()}, false},
		{"patient", model.PatientPrincipal{UserID: doctorID}, false},
		{"nil caller", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := DoctorOrAdmin(tt.caller, doctorID, "approve")
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.IsAccessDenied(err))
			assert.Equal(t, "You do not have permission to approve this appointment.", err.Error())
		})
	}
}

func TestPatientOrDoctorOrAdmin(t *testing.T) {
	patientID, doctorID := uuid.New(), uuid.New()

	assert.NoError(t, PatientOrDoctorOrAdmin(model.PatientPrincipal{UserID: patientID}, patientID, doctorID, "view"))
	assert.NoError(t, PatientOrDoctorOrAdmin(model.DoctorPrincipal{UserID: doctorID}, patientID, doctorID, "view"))
	assert.NoError(t, PatientOrDoctorOrAdmin(model.AdminPrincipal{}, patientID, doctorID, "view"))

	// ids are compared within the caller's own variant only
	assert.Error(t, PatientOrDoctorOrAdmin(model.PatientPrincipal{UserID: doctorID}, patientID, doctorID, "view"))
	assert.Error(t, PatientOrDoctorOrAdmin(model.DoctorPrincipal{UserID: patientID}, patientID, doctorID, "view"))
}

func TestSelfOrAdminAndSelf(t *testing.T) {
	id := uuid.New()

	assert.NoError(t, SelfOrAdmin(model.PatientPrincipal{UserID: id}, id, "view"))
	assert.NoError(t, SelfOrAdmin(model.AdminPrincipal{UserID: uuid.New()}, id, "view"))
	err := SelfOrAdmin(model.DoctorPrincipal{UserID: uuid.New()}, id, "view medications for this patient")
	assert.True(t, errors.IsAccessDenied(err))
	assert.Equal(t, "You do not have permission to view medications for this patient.", err.Error())

	assert.NoError(t, Self(model.DoctorPrincipal{UserID: id}, id, "update"))
	assert.True(t, errors.IsAccessDenied(Self(model.AdminPrincipal{UserID: uuid.New()}, id, "update")))
	assert.True(t, errors.IsAccessDenied(Self(nil, id, "update")))
}
