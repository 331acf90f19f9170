package memory

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
)

type appointmentRepository struct{ s *Store }

func isActive(status model.AppointmentStatus) bool {
	for _, st := range model.ActiveStatuses {
		if st == status {
			return true
		}
	}
	return false
}

// slotTaken mirrors the partial unique index on (doctor_id,
// appointment_date_time) for active statuses. Caller holds the lock.
func (r *appointmentRepository) slotTaken(apt *model.Appointment) bool {
	if !isActive(apt.Status) {
		return false
	}
	for id, other := range r.s.appointments {
		if id == apt.ID || other.DoctorID != apt.DoctorID || !isActive(other.Status) {
			continue
		}
		if other.AppointmentDateTime.Equal(apt.AppointmentDateTime) {
			return true
		}
	}
	return false
}

// project copies apt and fills the joined name fields. Caller holds the lock.
func (r *appointmentRepository) project(apt *model.Appointment) *model.Appointment {
	cp := *apt
	if p, ok := r.s.patients[apt.PatientID]; ok {
		cp.PatientName = p.Name
	}
	if d, ok := r.s.doctors[apt.DoctorID]; ok {
		cp.DoctorName = d.Name
		cp.DoctorSpecialization = d.Specialization
	}
	return &cp
}

func (r *appointmentRepository) Create(_ context.Context, appointment *model.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	if r.slotTaken(appointment) {
		return repository.ErrSlotTaken
	}
	now := time.Now()
	appointment.CreatedAt = now
	appointment.UpdatedAt = now
	cp := *appointment
	r.s.appointments[appointment.ID] = &cp
	return nil
}

func (r *appointmentRepository) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	apt, ok := r.s.appointments[id]
	if !ok {
		return nil, notFound("appointment")
	}
	return r.project(apt), nil
}

func (r *appointmentRepository) Update(_ context.Context, appointment *model.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.appointments[appointment.ID]; !ok {
		return notFound("appointment")
	}
	if r.slotTaken(appointment) {
		return repository.ErrSlotTaken
	}
	appointment.UpdatedAt = time.Now()
	cp := *appointment
	r.s.appointments[appointment.ID] = &cp
	return nil
}

func (r *appointmentRepository) filter(keep func(*model.Appointment) bool) []*model.Appointment {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*model.Appointment
	for _, apt := range r.s.appointments {
		if keep(apt) {
			out = append(out, r.project(apt))
		}
	}
	return out
}

func (r *appointmentRepository) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	out := r.filter(func(a *model.Appointment) bool { return a.PatientID == patientID })
	sort.Slice(out, func(i, j int) bool { return out[i].AppointmentDateTime.After(out[j].AppointmentDateTime) })
	return out, nil
}

func (r *appointmentRepository) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]*model.Appointment, error) {
	out := r.filter(func(a *model.Appointment) bool { return a.DoctorID == doctorID })
	sort.Slice(out, func(i, j int) bool { return out[i].AppointmentDateTime.After(out[j].AppointmentDateTime) })
	return out, nil
}

func (r *appointmentRepository) FindByDoctorInRange(_ context.Context, doctorID uuid.UUID, start, end time.Time, statuses []model.AppointmentStatus) ([]*model.Appointment, error) {
	wanted := make(map[model.AppointmentStatus]bool, len(statuses))
	for _, s := range statuses {
		wanted[s] = true
	}
	out := r.filter(func(a *model.Appointment) bool {
		t := a.AppointmentDateTime
		return a.DoctorID == doctorID && wanted[a.Status] && !t.Before(start) && t.Before(end)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].AppointmentDateTime.Before(out[j].AppointmentDateTime) })
	return out, nil
}

// ---- medications ----

type medicationRepository struct{ s *Store }

func (r *medicationRepository) Create(_ context.Context, medication *model.Medication) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if medication.ID == uuid.Nil {
		medication.ID = uuid.New()
	}
	cp := *medication
	r.s.medications[medication.ID] = &cp
	return nil
}

func (r *medicationRepository) list(keep func(*model.Medication) bool) []*model.Medication {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*model.Medication
	for _, m := range r.s.medications {
		if keep(m) {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PrescribedDate.After(out[j].PrescribedDate) })
	return out
}

func (r *medicationRepository) ListByAppointment(_ context.Context, appointmentID uuid.UUID) ([]*model.Medication, error) {
	return r.list(func(m *model.Medication) bool { return m.AppointmentID == appointmentID }), nil
}

func (r *medicationRepository) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*model.Medication, error) {
	return r.list(func(m *model.Medication) bool { return m.PatientID == patientID }), nil
}

func (r *medicationRepository) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]*model.Medication, error) {
	return r.list(func(m *model.Medication) bool { return m.PrescribingDoctorID == doctorID }), nil
}

// ---- outbox ----

type outboxRepository struct{ s *Store }

func (r *outboxRepository) Create(_ context.Context, event *model.OutboxEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	event.ID = uuid.New()
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	event.Status = model.OutboxStatusPending
	cp := *event
	cp.Payload = append(json.RawMessage(nil), event.Payload...)
	r.s.outbox[event.ID] = &cp
	return nil
}

func (r *outboxRepository) GetPendingEvents(_ context.Context, limit int) ([]*model.OutboxEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*model.OutboxEvent
	for _, e := range r.s.outbox {
		if e.Status == model.OutboxStatusPending {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *outboxRepository) MarkProcessed(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.outbox[id]
	if !ok {
		return notFound("outbox event")
	}
	now := time.Now()
	e.Status = model.OutboxStatusProcessed
	e.ProcessedAt = &now
	e.UpdatedAt = now
	e.ErrorMessage = nil
	return nil
}

func (r *outboxRepository) MarkFailed(_ context.Context, id uuid.UUID, errMsg string, maxRetries int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.outbox[id]
	if !ok {
		return notFound("outbox event")
	}
	e.RetryCount++
	e.ErrorMessage = &errMsg
	if e.RetryCount >= maxRetries {
		e.Status = model.OutboxStatusFailed
	}
	e.UpdatedAt = time.Now()
	return nil
}
