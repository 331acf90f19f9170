package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
)

const patientColumns = `
	id, name, age, date_of_birth, gender, personal_number, address, email,
	guardian_name, guardian_relation, guardian_phone_number, password_hash,
	created_at, updated_at`

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (` + patientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	if patient.ID == uuid.Nil {
		patient.ID = uuid.New()
	}
	now := time.Now()
	patient.CreatedAt = now
	patient.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.Name,
		patient.Age,
		patient.DateOfBirth,
		patient.Gender,
		patient.PersonalNumber,
		patient.Address,
		patient.Email,
		patient.GuardianName,
		patient.GuardianRelation,
		patient.GuardianPhoneNumber,
		patient.PasswordHash,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", mapError(err))
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", mapError(err))
	}
	return &patient, nil
}

func (r *patientRepository) GetByEmail(ctx context.Context, email string) (*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE email = $1`
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, email); err != nil {
		return nil, fmt.Errorf("failed to get patient by email: %w", mapError(err))
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients
		SET address = $1, personal_number = $2, guardian_name = $3,
			guardian_relation = $4, guardian_phone_number = $5,
			password_hash = $6, updated_at = $7
		WHERE id = $8
	`
	patient.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		patient.Address,
		patient.PersonalNumber,
		patient.GuardianName,
		patient.GuardianRelation,
		patient.GuardianPhoneNumber,
		patient.PasswordHash,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", mapError(err))
	}
	return requireRow(result, "patient")
}

func (r *patientRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS (SELECT 1 FROM patients WHERE id = $1)`, id)
}

func (r *patientRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS (SELECT 1 FROM patients WHERE email = $1)`, email)
}

func (r *patientRepository) ExistsByPersonalNumber(ctx context.Context, personalNumber string) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS (SELECT 1 FROM patients WHERE personal_number = $1)`, personalNumber)
}

func (r *patientRepository) ExistsByPersonalNumberExcluding(ctx context.Context, personalNumber string, excludeID uuid.UUID) (bool, error) {
	return exists(ctx, r.db,
		`SELECT EXISTS (SELECT 1 FROM patients WHERE personal_number = $1 AND id != $2)`,
		personalNumber, excludeID)
}
