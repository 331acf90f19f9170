// Package notification turns appointment events into patient emails.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jwalitptl/hms-api/internal/email"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/pkg/logger"
	"github.com/jwalitptl/hms-api/pkg/messaging"
	"github.com/jwalitptl/hms-api/pkg/metrics"
)

// Channels lists every event type the notifier reacts to.
var Channels = []string{
	model.EventAppointmentBooked,
	model.EventAppointmentApproved,
	model.EventAppointmentRejected,
	model.EventAppointmentCancelled,
	model.EventAppointmentCompleted,
	model.EventMedicationAssigned,
}

var subjects = map[string]string{
	model.EventAppointmentBooked:    "Appointment request received",
	model.EventAppointmentApproved:  "Appointment confirmed",
	model.EventAppointmentRejected:  "Appointment request declined",
	model.EventAppointmentCancelled: "Appointment cancelled",
	model.EventAppointmentCompleted: "Appointment completed",
	model.EventMedicationAssigned:   "New prescription available",
}

type Notifier struct {
	broker   messaging.Broker
	patients repository.PatientRepository
	doctors  repository.DoctorRepository
	mailer   email.Service
	loc      *time.Location
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

func NewNotifier(broker messaging.Broker, patients repository.PatientRepository, doctors repository.DoctorRepository,
	mailer email.Service, loc *time.Location, metrics *metrics.Metrics, log *logger.Logger) *Notifier {
	if loc == nil {
		loc = time.Local
	}
	return &Notifier{
		broker:   broker,
		patients: patients,
		doctors:  doctors,
		mailer:   mailer,
		loc:      loc,
		metrics:  metrics,
		logger:   log.With("notifier"),
	}
}

// Run consumes events until ctx is cancelled.
func (n *Notifier) Run(ctx context.Context) error {
	msgs, err := n.broker.Subscribe(ctx, Channels...)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	n.logger.Info("Notifier started", "channels", len(Channels))
	for msg := range msgs {
		if err := n.Handle(ctx, msg); err != nil {
			n.logger.Error(err, "Failed to handle event", "channel", msg.Channel)
		}
	}
	n.logger.Info("Notifier stopped")
	return nil
}

// Handle emails the patient about one event.
func (n *Notifier) Handle(ctx context.Context, msg messaging.Message) error {
	subject, ok := subjects[msg.Channel]
	if !ok {
		return nil
	}

	var evt model.AppointmentEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		n.metrics.NotificationsSent.WithLabelValues(msg.Channel, "invalid").Inc()
		return fmt.Errorf("failed to decode event: %w", err)
	}

	patient, err := n.patients.Get(ctx, evt.PatientID)
	if err != nil {
		n.metrics.NotificationsSent.WithLabelValues(msg.Channel, "error").Inc()
		return fmt.Errorf("failed to load patient: %w", err)
	}
	doctorName := "your doctor"
	if doc, err := n.doctors.Get(ctx, evt.DoctorID); err == nil {
		doctorName = doc.Name
	}

	body := n.body(msg.Channel, patient.Name, doctorName, evt)
	if err := n.mailer.Send(ctx, patient.Email, subject, body); err != nil {
		n.metrics.NotificationsSent.WithLabelValues(msg.Channel, "error").Inc()
		return err
	}

	n.metrics.NotificationsSent.WithLabelValues(msg.Channel, "sent").Inc()
	n.logger.Debug("Notification sent",
		"channel", msg.Channel,
		"appointment_id", evt.AppointmentID.String())
	return nil
}

func (n *Notifier) body(channel, patientName, doctorName string, evt model.AppointmentEvent) string {
	when := evt.StartTime.In(n.loc).Format("Monday, 02 Jan 2006 at 15:04")

	switch channel {
	case model.EventMedicationAssigned:
		return fmt.Sprintf("Dear %s,\n\n%s prescribed %d medication(s) after your appointment on %s.\n",
			patientName, doctorName, evt.MedicationCount, when)
	default:
		return fmt.Sprintf("Dear %s,\n\nYour appointment with %s on %s is now %s.\n",
			patientName, doctorName, when, evt.Status)
	}
}
