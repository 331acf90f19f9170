package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jwalitptl/hms-api/internal/model"
)

const appointmentSelect = `
	SELECT a.id, a.patient_id, a.doctor_id, a.appointment_date_time, a.status,
		   a.reason, a.doctor_notes, a.created_at, a.updated_at,
		   p.name AS patient_name, d.name AS doctor_name,
		   d.specialization AS doctor_specialization
	FROM appointments a
	JOIN patients p ON p.id = a.patient_id
	JOIN doctors d ON d.id = a.doctor_id
`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, doctor_id, appointment_date_time,
			status, reason, doctor_notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	now := time.Now()
	appointment.CreatedAt = now
	appointment.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.AppointmentDateTime,
		appointment.Status,
		appointment.Reason,
		appointment.DoctorNotes,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", mapError(err))
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := appointmentSelect + ` WHERE a.id = $1`
	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", mapError(err))
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET appointment_date_time = $1, status = $2, reason = $3,
			doctor_notes = $4, updated_at = $5
		WHERE id = $6
	`
	appointment.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		appointment.AppointmentDateTime,
		appointment.Status,
		appointment.Reason,
		appointment.DoctorNotes,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", mapError(err))
	}
	return requireRow(result, "appointment")
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	query := appointmentSelect + ` WHERE a.patient_id = $1 ORDER BY a.appointment_date_time DESC`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list patient appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error) {
	query := appointmentSelect + ` WHERE a.doctor_id = $1 ORDER BY a.appointment_date_time DESC`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, doctorID); err != nil {
		return nil, fmt.Errorf("failed to list doctor appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) FindByDoctorInRange(ctx context.Context, doctorID uuid.UUID, start, end time.Time, statuses []model.AppointmentStatus) ([]*model.Appointment, error) {
	query := appointmentSelect + `
		WHERE a.doctor_id = $1
		AND a.appointment_date_time >= $2
		AND a.appointment_date_time < $3
		AND a.status = ANY($4)
		ORDER BY a.appointment_date_time ASC
	`
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, doctorID, start, end, pq.Array(names)); err != nil {
		return nil, fmt.Errorf("failed to find doctor appointments in range: %w", err)
	}
	return appointments, nil
}
