package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
)

const medicationColumns = `
	id, appointment_id, prescribing_doctor_id, patient_id, medication_name,
	dosage, frequency, duration, instructions, prescribed_date`

func (r *medicationRepository) Create(ctx context.Context, medication *model.Medication) error {
	query := `
		INSERT INTO medications (` + medicationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	if medication.ID == uuid.Nil {
		medication.ID = uuid.New()
	}

	_, err := r.db.ExecContext(ctx, query,
		medication.ID,
		medication.AppointmentID,
		medication.PrescribingDoctorID,
		medication.PatientID,
		medication.MedicationName,
		medication.Dosage,
		medication.Frequency,
		medication.Duration,
		medication.Instructions,
		medication.PrescribedDate,
	)
	if err != nil {
		return fmt.Errorf("failed to create medication: %w", mapError(err))
	}
	return nil
}

func (r *medicationRepository) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*model.Medication, error) {
	return r.list(ctx, "appointment_id", appointmentID)
}

func (r *medicationRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Medication, error) {
	return r.list(ctx, "patient_id", patientID)
}

func (r *medicationRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Medication, error) {
	return r.list(ctx, "prescribing_doctor_id", doctorID)
}

// column is always one of the constants above, never user input.
func (r *medicationRepository) list(ctx context.Context, column string, id uuid.UUID) ([]*model.Medication, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM medications
		WHERE %s = $1
		ORDER BY prescribed_date DESC
	`, medicationColumns, column)

	var medications []*model.Medication
	if err := r.db.SelectContext(ctx, &medications, query, id); err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}
	return medications, nil
}
