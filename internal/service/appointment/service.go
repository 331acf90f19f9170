package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/internal/service/audit"
	"github.com/jwalitptl/hms-api/internal/service/authz"
	"github.com/jwalitptl/hms-api/internal/service/event"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/lock"
	"github.com/jwalitptl/hms-api/pkg/logger"
	"github.com/jwalitptl/hms-api/pkg/metrics"
)

const (
	msgNotFuture       = "Requested appointment time must be in the future."
	msgInvalidSlot     = "Requested time is outside of doctor's working hours or not a valid slot time."
	msgSlotUnavailable = "The selected time slot is no longer available for this doctor."
	msgScheduledClash  = "Doctor already has a scheduled conflict at this time slot."
)

type Config struct {
	WorkingHours WorkingHours
	// LockTTL bounds how long a crashed holder can block a slot.
	LockTTL time.Duration
}

type Service struct {
	patients     repository.PatientRepository
	doctors      repository.DoctorRepository
	appointments repository.AppointmentRepository
	locker       lock.Locker
	events       event.Emitter
	auditor      *audit.Logger
	metrics      *metrics.Metrics
	logger       *logger.Logger
	hours        WorkingHours
	lockTTL      time.Duration
	now          func() time.Time
}

func NewService(
	patients repository.PatientRepository,
	doctors repository.DoctorRepository,
	appointments repository.AppointmentRepository,
	locker lock.Locker,
	events event.Emitter,
	auditor *audit.Logger,
	metrics *metrics.Metrics,
	log *logger.Logger,
	cfg Config,
) *Service {
	if cfg.WorkingHours.shifts == nil {
		cfg.WorkingHours = NewWorkingHours(time.Local)
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Second
	}
	return &Service{
		patients:     patients,
		doctors:      doctors,
		appointments: appointments,
		locker:       locker,
		events:       events,
		auditor:      auditor,
		metrics:      metrics,
		logger:       log.With("appointment"),
		hours:        cfg.WorkingHours,
		lockTTL:      cfg.LockTTL,
		now:          time.Now,
	}
}

func (s *Service) WorkingHours() WorkingHours {
	return s.hours
}

// GetAvailableSlots returns the doctor's free slots on date that start after now.
func (s *Service) GetAvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]model.TimeSlot, error) {
	if err := s.requireDoctor(ctx, doctorID); err != nil {
		return nil, err
	}
	s.metrics.SlotQueries.Inc()

	dayStart, dayEnd := s.hours.DayBounds(date)
	existing, err := s.appointments.FindByDoctorInRange(ctx, doctorID, dayStart, dayEnd, model.ActiveStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointments: %w", err)
	}
	booked := make(map[int64]bool, len(existing))
	for _, apt := range existing {
		booked[apt.AppointmentDateTime.UnixNano()] = true
	}

	now := s.now()
	available := make([]model.TimeSlot, 0)
	for _, slot := range s.hours.Slots(date) {
		if booked[slot.Start.UnixNano()] || !slot.Start.After(now) {
			continue
		}
		available = append(available, slot)
	}

	s.logger.Debug("Computed available slots",
		"doctor_id", doctorID.String(),
		"date", dayStart.Format("2006-01-02"),
		"count", len(available))
	return available, nil
}

// Book creates a PENDING appointment for patientID.
func (s *Service) Book(ctx context.Context, patientID uuid.UUID, req model.BookingRequest) (*model.Appointment, error) {
	if err := s.requirePatient(ctx, patientID); err != nil {
		return nil, err
	}
	if err := s.requireDoctor(ctx, req.DoctorID); err != nil {
		return nil, err
	}

	if !req.RequestedDateTime.After(s.now()) {
		s.metrics.BookingRejections.WithLabelValues("past").Inc()
		return nil, apperrors.BadRequest(msgNotFuture, nil)
	}
	requested := s.hours.SlotStart(req.RequestedDateTime)
	if !s.hours.Contains(requested) {
		s.metrics.BookingRejections.WithLabelValues("invalid_slot").Inc()
		s.logger.Warn("Requested time outside working hours",
			"doctor_id", req.DoctorID.String(),
			"requested", requested.Format(time.RFC3339))
		return nil, apperrors.BadRequest(msgInvalidSlot, nil)
	}

	release, err := s.locker.Acquire(ctx, slotKey(req.DoctorID, requested), s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to lock slot: %w", err)
	}
	defer release()

	conflicts, err := s.appointments.FindByDoctorInRange(ctx, req.DoctorID, requested, requested.Add(SlotDuration), model.ActiveStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to check conflicts: %w", err)
	}
	if len(conflicts) > 0 {
		s.metrics.BookingRejections.WithLabelValues("conflict").Inc()
		s.logger.Warn("Booking conflict",
			"doctor_id", req.DoctorID.String(),
			"requested", requested.Format(time.RFC3339))
		return nil, apperrors.BadRequest(msgSlotUnavailable, nil)
	}

	apt := &model.Appointment{
		PatientID:           patientID,
		DoctorID:            req.DoctorID,
		AppointmentDateTime: requested,
		Status:              model.AppointmentStatusPending,
		Reason:              req.Reason,
	}
	if err := s.appointments.Create(ctx, apt); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			s.metrics.BookingRejections.WithLabelValues("conflict").Inc()
			return nil, apperrors.BadRequest(msgSlotUnavailable, err)
		}
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.logger.Info("Appointment booked", "appointment_id", apt.ID.String())
	s.recordTransition(ctx, apt, model.PatientPrincipal{UserID: patientID}, "book", model.EventAppointmentBooked)
	return s.reload(ctx, apt.ID)
}

func (s *Service) Approve(ctx context.Context, id uuid.UUID, caller model.Principal) (*model.Appointment, error) {
	return s.transition(ctx, id, caller, "approve", model.EventAppointmentApproved, func(apt *model.Appointment) error {
		if err := authz.DoctorOrAdmin(caller, apt.DoctorID, "approve"); err != nil {
			return err
		}
		if apt.Status != model.AppointmentStatusPending {
			return apperrors.BadRequest("Only PENDING appointments can be approved.", nil)
		}
		return nil
	}, func(ctx context.Context, apt *model.Appointment) error {
		// Only SCHEDULED appointments block approval; a PENDING duplicate does not.
		clashes, err := s.appointments.FindByDoctorInRange(ctx, apt.DoctorID,
			apt.AppointmentDateTime, apt.AppointmentDateTime.Add(SlotDuration),
			[]model.AppointmentStatus{model.AppointmentStatusScheduled})
		if err != nil {
			return fmt.Errorf("failed to check conflicts: %w", err)
		}
		for _, other := range clashes {
			if other.ID != apt.ID {
				return apperrors.BadRequest(msgScheduledClash, nil)
			}
		}
		apt.Status = model.AppointmentStatusScheduled
		return nil
	})
}

func (s *Service) Reject(ctx context.Context, id uuid.UUID, caller model.Principal) (*model.Appointment, error) {
	return s.transition(ctx, id, caller, "reject", model.EventAppointmentRejected, func(apt *model.Appointment) error {
		if err := authz.DoctorOrAdmin(caller, apt.DoctorID, "reject"); err != nil {
			return err
		}
		if apt.Status != model.AppointmentStatusPending {
			return apperrors.BadRequest("Only PENDING appointments can be rejected.", nil)
		}
		return nil
	}, func(_ context.Context, apt *model.Appointment) error {
		apt.Status = model.AppointmentStatusRejected
		return nil
	})
}

// Cancel is allowed from every status except COMPLETED and CANCELLED,
// REJECTED and NO_SHOW included.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, caller model.Principal) (*model.Appointment, error) {
	return s.transition(ctx, id, caller, "cancel", model.EventAppointmentCancelled, func(apt *model.Appointment) error {
		if err := authz.PatientOrDoctorOrAdmin(caller, apt.PatientID, apt.DoctorID, "cancel"); err != nil {
			return err
		}
		if apt.Status == model.AppointmentStatusCompleted || apt.Status == model.AppointmentStatusCancelled {
			return apperrors.BadRequest(fmt.Sprintf("Cannot cancel an appointment that is already %s", apt.Status), nil)
		}
		return nil
	}, func(_ context.Context, apt *model.Appointment) error {
		apt.Status = model.AppointmentStatusCancelled
		return nil
	})
}

func (s *Service) Complete(ctx context.Context, id uuid.UUID, notes *string, caller model.Principal) (*model.Appointment, error) {
	return s.transition(ctx, id, caller, "complete", model.EventAppointmentCompleted, func(apt *model.Appointment) error {
		if err := authz.DoctorOrAdmin(caller, apt.DoctorID, "complete"); err != nil {
			return err
		}
		if apt.Status != model.AppointmentStatusScheduled {
			return apperrors.BadRequest("Only SCHEDULED appointments can be marked as completed.", nil)
		}
		return nil
	}, func(_ context.Context, apt *model.Appointment) error {
		apt.Status = model.AppointmentStatusCompleted
		apt.DoctorNotes = notes
		return nil
	})
}

// transition runs one status change. check is evaluated once before and
// once after the slot lock is taken, against a fresh read, so a change
// committed by a concurrent transition is never overwritten.
func (s *Service) transition(
	ctx context.Context,
	id uuid.UUID,
	caller model.Principal,
	action, eventType string,
	check func(*model.Appointment) error,
	apply func(context.Context, *model.Appointment) error,
) (*model.Appointment, error) {
	apt, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := check(apt); err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, slotKey(apt.DoctorID, apt.AppointmentDateTime), s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to lock slot: %w", err)
	}
	defer release()

	apt, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := check(apt); err != nil {
		return nil, err
	}
	if err := apply(ctx, apt); err != nil {
		return nil, err
	}
	return s.save(ctx, apt, caller, action, eventType)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID, caller model.Principal) (*model.Appointment, error) {
	apt, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.PatientOrDoctorOrAdmin(caller, apt.PatientID, apt.DoctorID, "view"); err != nil {
		return nil, err
	}
	return apt, nil
}

func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	if err := s.requirePatient(ctx, patientID); err != nil {
		return nil, err
	}
	apts, err := s.appointments.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return apts, nil
}

func (s *Service) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error) {
	if err := s.requireDoctor(ctx, doctorID); err != nil {
		return nil, err
	}
	apts, err := s.appointments.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return apts, nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Appointment", err)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return apt, nil
}

func (s *Service) reload(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return apt, nil
}

func (s *Service) save(ctx context.Context, apt *model.Appointment, caller model.Principal, action, eventType string) (*model.Appointment, error) {
	if err := s.appointments.Update(ctx, apt); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return nil, apperrors.BadRequest(msgScheduledClash, err)
		}
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	s.logger.Info("Appointment status changed",
		"appointment_id", apt.ID.String(),
		"status", string(apt.Status),
		"actor_id", caller.ID().String())
	s.recordTransition(ctx, apt, caller, action, eventType)
	return s.reload(ctx, apt.ID)
}

// recordTransition audits, counts and emits; none of it can fail the caller.
func (s *Service) recordTransition(ctx context.Context, apt *model.Appointment, actor model.Principal, action, eventType string) {
	s.metrics.AppointmentTransitions.WithLabelValues(string(apt.Status)).Inc()

	s.auditor.Log(ctx, audit.Entry{
		Actor:      actor,
		Action:     action,
		EntityType: "appointment",
		EntityID:   apt.ID,
		Metadata:   map[string]interface{}{"status": string(apt.Status)},
	})

	err := s.events.Emit(ctx, eventType, model.AppointmentEvent{
		AppointmentID: apt.ID,
		PatientID:     apt.PatientID,
		DoctorID:      apt.DoctorID,
		Status:        apt.Status,
		StartTime:     apt.AppointmentDateTime,
		ActorID:       actor.ID(),
		OccurredAt:    s.now(),
	})
	if err != nil {
		s.logger.Error(err, "Failed to emit appointment event",
			"appointment_id", apt.ID.String(),
			"event_type", eventType)
	}
}

func (s *Service) requirePatient(ctx context.Context, id uuid.UUID) error {
	ok, err := s.patients.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check patient: %w", err)
	}
	if !ok {
		return apperrors.NotFound("Patient", nil)
	}
	return nil
}

func (s *Service) requireDoctor(ctx context.Context, id uuid.UUID) error {
	ok, err := s.doctors.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check doctor: %w", err)
	}
	if !ok {
		return apperrors.NotFound("Doctor", nil)
	}
	return nil
}

func slotKey(doctorID uuid.UUID, start time.Time) string {
	return fmt.Sprintf("slot:%s:%d", doctorID, start.Unix())
}
