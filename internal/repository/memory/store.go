// Package memory holds in-process implementations of the repository
// interfaces. They back the "memory" database driver and the service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
)

// Store keeps every entity behind one RWMutex so cross-entity reads
// (appointment joins) see a consistent snapshot.
type Store struct {
	mu           sync.RWMutex
	patients     map[uuid.UUID]*model.Patient
	doctors      map[uuid.UUID]*model.Doctor
	admins       map[uuid.UUID]*model.Admin
	appointments map[uuid.UUID]*model.Appointment
	medications  map[uuid.UUID]*model.Medication
	outbox       map[uuid.UUID]*model.OutboxEvent
}

func NewStore() *Store {
	return &Store{
		patients:     make(map[uuid.UUID]*model.Patient),
		doctors:      make(map[uuid.UUID]*model.Doctor),
		admins:       make(map[uuid.UUID]*model.Admin),
		appointments: make(map[uuid.UUID]*model.Appointment),
		medications:  make(map[uuid.UUID]*model.Medication),
		outbox:       make(map[uuid.UUID]*model.OutboxEvent),
	}
}

func (s *Store) Patients() repository.PatientRepository         { return &patientRepository{s} }
func (s *Store) Doctors() repository.DoctorRepository           { return &doctorRepository{s} }
func (s *Store) Admins() repository.AdminRepository             { return &adminRepository{s} }
func (s *Store) Appointments() repository.AppointmentRepository { return &appointmentRepository{s} }
func (s *Store) Medications() repository.MedicationRepository   { return &medicationRepository{s} }
func (s *Store) Outbox() repository.OutboxRepository            { return &outboxRepository{s} }

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

func notFound(entity string) error {
	return fmt.Errorf("%s: %w", entity, repository.ErrNotFound)
}

func duplicate(field string) error {
	return fmt.Errorf("%w: %s", repository.ErrDuplicate, field)
}

// ---- patients ----

type patientRepository struct{ s *Store }

func (r *patientRepository) Create(_ context.Context, patient *model.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.patients {
		if p.Email == patient.Email {
			return duplicate("email")
		}
		if p.PersonalNumber == patient.PersonalNumber {
			return duplicate("personal_number")
		}
	}
	if patient.ID == uuid.Nil {
		patient.ID = uuid.New()
	}
	now := time.Now()
	patient.CreatedAt = now
	patient.UpdatedAt = now
	cp := *patient
	r.s.patients[patient.ID] = &cp
	return nil
}

func (r *patientRepository) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.patients[id]
	if !ok {
		return nil, notFound("patient")
	}
	cp := *p
	return &cp, nil
}

func (r *patientRepository) GetByEmail(_ context.Context, email string) (*model.Patient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.patients {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, notFound("patient")
}

func (r *patientRepository) Update(_ context.Context, patient *model.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.patients[patient.ID]; !ok {
		return notFound("patient")
	}
	for id, p := range r.s.patients {
		if id != patient.ID && p.PersonalNumber == patient.PersonalNumber {
			return duplicate("personal_number")
		}
	}
	patient.UpdatedAt = time.Now()
	cp := *patient
	r.s.patients[patient.ID] = &cp
	return nil
}

func (r *patientRepository) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.patients[id]
	return ok, nil
}

func (r *patientRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.patients {
		if p.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *patientRepository) ExistsByPersonalNumber(ctx context.Context, personalNumber string) (bool, error) {
	return r.ExistsByPersonalNumberExcluding(ctx, personalNumber, uuid.Nil)
}

func (r *patientRepository) ExistsByPersonalNumberExcluding(_ context.Context, personalNumber string, excludeID uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for id, p := range r.s.patients {
		if id != excludeID && p.PersonalNumber == personalNumber {
			return true, nil
		}
	}
	return false, nil
}

// ---- doctors ----

type doctorRepository struct{ s *Store }

func (r *doctorRepository) Create(_ context.Context, doctor *model.Doctor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, d := range r.s.doctors {
		if d.Email == doctor.Email {
			return duplicate("email")
		}
		if d.PhoneNumber == doctor.PhoneNumber {
			return duplicate("phone_number")
		}
	}
	if doctor.ID == uuid.Nil {
		doctor.ID = uuid.New()
	}
	now := time.Now()
	doctor.CreatedAt = now
	doctor.UpdatedAt = now
	cp := *doctor
	r.s.doctors[doctor.ID] = &cp
	return nil
}

func (r *doctorRepository) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	d, ok := r.s.doctors[id]
	if !ok {
		return nil, notFound("doctor")
	}
	cp := *d
	return &cp, nil
}

func (r *doctorRepository) GetByEmail(_ context.Context, email string) (*model.Doctor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, d := range r.s.doctors {
		if d.Email == email {
			cp := *d
			return &cp, nil
		}
	}
	return nil, notFound("doctor")
}

func (r *doctorRepository) Update(_ context.Context, doctor *model.Doctor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.doctors[doctor.ID]; !ok {
		return notFound("doctor")
	}
	for id, d := range r.s.doctors {
		if id != doctor.ID && d.PhoneNumber == doctor.PhoneNumber {
			return duplicate("phone_number")
		}
	}
	doctor.UpdatedAt = time.Now()
	cp := *doctor
	r.s.doctors[doctor.ID] = &cp
	return nil
}

func (r *doctorRepository) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.doctors[id]
	return ok, nil
}

func (r *doctorRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, d := range r.s.doctors {
		if d.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *doctorRepository) ExistsByPhoneNumber(ctx context.Context, phone string) (bool, error) {
	return r.ExistsByPhoneNumberExcluding(ctx, phone, uuid.Nil)
}

func (r *doctorRepository) ExistsByPhoneNumberExcluding(_ context.Context, phone string, excludeID uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for id, d := range r.s.doctors {
		if id != excludeID && d.PhoneNumber == phone {
			return true, nil
		}
	}
	return false, nil
}

func (r *doctorRepository) ListBySpecialization(_ context.Context, specialization string) ([]*model.Doctor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*model.Doctor
	for _, d := range r.s.doctors {
		if strings.EqualFold(d.Specialization, specialization) {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ---- admins ----

type adminRepository struct{ s *Store }

func (r *adminRepository) Create(_ context.Context, admin *model.Admin) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, a := range r.s.admins {
		if a.Email == admin.Email {
			return duplicate("email")
		}
	}
	if admin.ID == uuid.Nil {
		admin.ID = uuid.New()
	}
	admin.CreatedAt = time.Now()
	cp := *admin
	r.s.admins[admin.ID] = &cp
	return nil
}

func (r *adminRepository) Get(_ context.Context, id uuid.UUID) (*model.Admin, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.admins[id]
	if !ok {
		return nil, notFound("admin")
	}
	cp := *a
	return &cp, nil
}

func (r *adminRepository) GetByEmail(_ context.Context, email string) (*model.Admin, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, a := range r.s.admins {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, notFound("admin")
}

func (r *adminRepository) Count(context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.admins)), nil
}
