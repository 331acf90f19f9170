// Package authz holds the ownership checks shared by the appointment,
// medication and profile services. Every check returns nil or an
// AccessDenied error.
package authz

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/pkg/errors"
)

func denied(action string) error {
	return errors.AccessDenied(fmt.Sprintf("You do not have permission to %s this appointment.", action))
}

// deniedSelf takes the whole phrase, e.g. "view medications for this patient".
func deniedSelf(action string) error {
	return errors.AccessDenied(fmt.Sprintf("You do not have permission to %s.", action))
}

// DoctorOrAdmin allows admins and the appointment's own doctor.
func DoctorOrAdmin(caller model.Principal, doctorID uuid.UUID, action string) error {
	switch p := caller.(type) {
	case model.AdminPrincipal:
		return nil
	case model.DoctorPrincipal:
		if p.UserID == doctorID {
			return nil
		}
	case model.PatientPrincipal:
	}
	return denied(action)
}

// PatientOrDoctorOrAdmin allows admins and either participant of the appointment.
func PatientOrDoctorOrAdmin(caller model.Principal, patientID, doctorID uuid.UUID, action string) error {
	switch p := caller.(type) {
	case model.AdminPrincipal:
		return nil
	case model.DoctorPrincipal:
		if p.UserID == doctorID {
			return nil
		}
	case model.PatientPrincipal:
		if p.UserID == patientID {
			return nil
		}
	}
	return denied(action)
}

// SelfOrAdmin allows admins and the owner of targetID.
func SelfOrAdmin(caller model.Principal, targetID uuid.UUID, action string) error {
	switch p := caller.(type) {
	case model.AdminPrincipal:
		return nil
	case model.DoctorPrincipal:
		if p.UserID == targetID {
			return nil
		}
	case model.PatientPrincipal:
		if p.UserID == targetID {
			return nil
		}
	}
	return deniedSelf(action)
}

// Self allows only the owner of targetID; admins are not exempt.
func Self(caller model.Principal, targetID uuid.UUID, action string) error {
	if caller != nil && caller.ID() == targetID {
		return nil
	}
	return deniedSelf(action)
}
