package medication

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/internal/service/audit"
	"github.com/jwalitptl/hms-api/internal/service/authz"
	"github.com/jwalitptl/hms-api/internal/service/event"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/logger"
	"github.com/jwalitptl/hms-api/pkg/metrics"
)

type Service struct {
	appointments repository.AppointmentRepository
	patients     repository.PatientRepository
	medications  repository.MedicationRepository
	events       event.Emitter
	auditor      *audit.Logger
	metrics      *metrics.Metrics
	logger       *logger.Logger
	now          func() time.Time
}

func NewService(
	appointments repository.AppointmentRepository,
	patients repository.PatientRepository,
	medications repository.MedicationRepository,
	events event.Emitter,
	auditor *audit.Logger,
	metrics *metrics.Metrics,
	log *logger.Logger,
) *Service {
	return &Service{
		appointments: appointments,
		patients:     patients,
		medications:  medications,
		events:       events,
		auditor:      auditor,
		metrics:      metrics,
		logger:       log.With("medication"),
		now:          time.Now,
	}
}

// Assign prescribes inputs on a COMPLETED appointment. Items missing a
// name, dosage or frequency are skipped; the rest are saved one by one.
func (s *Service) Assign(ctx context.Context, appointmentID uuid.UUID, inputs []model.MedicationInput, caller model.Principal) ([]*model.Medication, error) {
	apt, err := s.loadAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if apt.Status != model.AppointmentStatusCompleted {
		return nil, apperrors.BadRequest("Medications can only be assigned to COMPLETED appointments.", nil)
	}
	if err := authz.DoctorOrAdmin(caller, apt.DoctorID, "assign medication to"); err != nil {
		return nil, err
	}

	prescribed := s.now()
	created := make([]*model.Medication, 0, len(inputs))
	for _, in := range inputs {
		if blank(in.MedicationName) || blank(in.Dosage) || blank(in.Frequency) {
			s.logger.Warn("Skipping medication with missing required fields",
				"appointment_id", appointmentID.String())
			continue
		}

		med := &model.Medication{
			AppointmentID:       apt.ID,
			PrescribingDoctorID: apt.DoctorID,
			PatientID:           apt.PatientID,
			MedicationName:      in.MedicationName,
			Dosage:              in.Dosage,
			Frequency:           in.Frequency,
			Duration:            in.Duration,
			Instructions:        in.Instructions,
			PrescribedDate:      prescribed,
		}
		if err := s.medications.Create(ctx, med); err != nil {
			return created, fmt.Errorf("failed to create medication: %w", err)
		}
		created = append(created, med)
		s.logger.Info("Assigned medication",
			"appointment_id", appointmentID.String(),
			"medication", med.MedicationName)
	}

	if len(created) > 0 {
		s.metrics.MedicationsAssigned.Add(float64(len(created)))
		s.auditor.Log(ctx, audit.Entry{
			Actor:      caller,
			Action:     "assign_medication",
			EntityType: "appointment",
			EntityID:   apt.ID,
			Metadata:   map[string]interface{}{"count": len(created)},
		})
		err := s.events.Emit(ctx, model.EventMedicationAssigned, model.AppointmentEvent{
			AppointmentID:   apt.ID,
			PatientID:       apt.PatientID,
			DoctorID:        apt.DoctorID,
			Status:          apt.Status,
			StartTime:       apt.AppointmentDateTime,
			ActorID:         caller.ID(),
			MedicationCount: len(created),
			OccurredAt:      prescribed,
		})
		if err != nil {
			s.logger.Error(err, "Failed to emit medication event", "appointment_id", apt.ID.String())
		}
	}

	return created, nil
}

func (s *Service) ListForAppointment(ctx context.Context, appointmentID uuid.UUID, caller model.Principal) ([]*model.Medication, error) {
	apt, err := s.loadAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := authz.PatientOrDoctorOrAdmin(caller, apt.PatientID, apt.DoctorID, "view medications for"); err != nil {
		return nil, err
	}

	meds, err := s.medications.ListByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}
	return meds, nil
}

// ListForPatient checks permission before existence so a denied caller
// learns nothing about which patient ids exist.
func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID, caller model.Principal) ([]*model.Medication, error) {
	if err := authz.SelfOrAdmin(caller, patientID, "view medications for this patient"); err != nil {
		s.logger.Warn("Denied medication access",
			"patient_id", patientID.String(),
			"caller_id", callerID(caller))
		return nil, err
	}

	ok, err := s.patients.Exists(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to check patient: %w", err)
	}
	if !ok {
		return nil, apperrors.NotFound("Patient", nil)
	}

	meds, err := s.medications.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}
	return meds, nil
}

func (s *Service) loadAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Appointment", err)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return apt, nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func callerID(p model.Principal) string {
	if p == nil {
		return ""
	}
	return p.ID().String()
}
