package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
)

// ErrNotFound is returned by Get-style lookups when no row matches.
var ErrNotFound = errors.New("record not found")

// ErrSlotTaken is returned when a write would put two active
// appointments on the same doctor slot.
var ErrSlotTaken = errors.New("slot already taken")

// ErrDuplicate is returned when a unique column would be violated.
var ErrDuplicate = errors.New("duplicate value")

type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	GetByEmail(ctx context.Context, email string) (*model.Patient, error)
	Update(ctx context.Context, patient *model.Patient) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPersonalNumber(ctx context.Context, personalNumber string) (bool, error)
	ExistsByPersonalNumberExcluding(ctx context.Context, personalNumber string, excludeID uuid.UUID) (bool, error)
}

type DoctorRepository interface {
	Create(ctx context.Context, doctor *model.Doctor) error
	Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	GetByEmail(ctx context.Context, email string) (*model.Doctor, error)
	Update(ctx context.Context, doctor *model.Doctor) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhoneNumber(ctx context.Context, phone string) (bool, error)
	ExistsByPhoneNumberExcluding(ctx context.Context, phone string, excludeID uuid.UUID) (bool, error)
	// ListBySpecialization matches case-insensitively.
	ListBySpecialization(ctx context.Context, specialization string) ([]*model.Doctor, error)
}

type AdminRepository interface {
	Create(ctx context.Context, admin *model.Admin) error
	Get(ctx context.Context, id uuid.UUID) (*model.Admin, error)
	GetByEmail(ctx context.Context, email string) (*model.Admin, error)
	Count(ctx context.Context) (int64, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *model.Appointment) error
	Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	Update(ctx context.Context, appointment *model.Appointment) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error)
	// FindByDoctorInRange returns the doctor's appointments with
	// start <= appointment_date_time < end whose status is in statuses.
	FindByDoctorInRange(ctx context.Context, doctorID uuid.UUID, start, end time.Time, statuses []model.AppointmentStatus) ([]*model.Appointment, error)
}

type MedicationRepository interface {
	Create(ctx context.Context, medication *model.Medication) error
	ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*model.Medication, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Medication, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Medication, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *model.OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, maxRetries int) error
}
