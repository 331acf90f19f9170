package model

import (
	"time"

	"github.com/google/uuid"
)

type Medication struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	AppointmentID       uuid.UUID `db:"appointment_id" json:"appointment_id"`
	PrescribingDoctorID uuid.UUID `db:"prescribing_doctor_id" json:"prescribing_doctor_id"`
	PatientID           uuid.UUID `db:"patient_id" json:"patient_id"`
	MedicationName      string    `db:"medication_name" json:"medication_name"`
	Dosage              string    `db:"dosage" json:"dosage"`
	Frequency           string    `db:"frequency" json:"frequency"`
	Duration            *string   `db:"duration" json:"duration,omitempty"`
	Instructions        *string   `db:"instructions" json:"instructions,omitempty"`
	PrescribedDate      time.Time `db:"prescribed_date" json:"prescribed_date"`
}

type MedicationInput struct {
	MedicationName string  `json:"medication_name" binding:"max=200"`
	Dosage         string  `json:"dosage" binding:"max=100"`
	Frequency      string  `json:"frequency" binding:"max=100"`
	Duration       *string `json:"duration" binding:"omitempty,max=100"`
	Instructions   *string `json:"instructions" binding:"omitempty,max=500"`
}

type AssignMedicationsRequest struct {
	Medications []MedicationInput `json:"medications" binding:"required,dive"`
}
