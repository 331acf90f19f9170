package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "PENDING"
	AppointmentStatusScheduled AppointmentStatus = "SCHEDULED"
	AppointmentStatusCompleted AppointmentStatus = "COMPLETED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
	AppointmentStatusRejected  AppointmentStatus = "REJECTED"
	AppointmentStatusNoShow    AppointmentStatus = "NO_SHOW"
)

// ActiveStatuses are the statuses that occupy a doctor's slot.
var ActiveStatuses = []AppointmentStatus{AppointmentStatusPending, AppointmentStatusScheduled}

type Appointment struct {
	Base
	PatientID           uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID            uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	AppointmentDateTime time.Time         `db:"appointment_date_time" json:"appointment_date_time"`
	Status              AppointmentStatus `db:"status" json:"status"`
	Reason              *string           `db:"reason" json:"reason,omitempty"`
	DoctorNotes         *string           `db:"doctor_notes" json:"doctor_notes,omitempty"`

	// Filled from joins on read.
	PatientName          string `db:"patient_name" json:"patient_name,omitempty"`
	DoctorName           string `db:"doctor_name" json:"doctor_name,omitempty"`
	DoctorSpecialization string `db:"doctor_specialization" json:"doctor_specialization,omitempty"`
}

type BookingRequest struct {
	DoctorID          uuid.UUID `json:"doctor_id" binding:"required"`
	RequestedDateTime time.Time `json:"requested_date_time" binding:"required,future"`
	Reason            *string   `json:"reason" binding:"omitempty,max=500"`
}

type CompleteAppointmentRequest struct {
	DoctorNotes *string `json:"doctor_notes" binding:"omitempty,max=500"`
}
