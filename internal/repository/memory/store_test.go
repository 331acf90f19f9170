package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
)

func TestAppointmentRangeIsHalfOpen(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := store.Appointments()

	doctorID := uuid.New()
	base := time.Date(2030, 3, 4, 9, 0, 0, 0, time.UTC)
	for i, st := range []model.AppointmentStatus{
		model.AppointmentStatusPending,
		model.AppointmentStatusScheduled,
		model.AppointmentStatusCancelled,
	} {
		require.NoError(t, repo.Create(ctx, &model.Appointment{
			DoctorID:            doctorID,
			PatientID:           uuid.New(),
			AppointmentDateTime: base.Add(time.Duration(i) * 30 * time.Minute),
			Status:              st,
		}))
	}

	got, err := repo.FindByDoctorInRange(ctx, doctorID, base, base.Add(30*time.Minute), model.ActiveStatuses)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, base, got[0].AppointmentDateTime)

	got, err = repo.FindByDoctorInRange(ctx, doctorID, base, base.Add(2*time.Hour), model.ActiveStatuses)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestAppointmentActiveSlotUnique(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Appointments()

	doctorID := uuid.New()
	at := time.Date(2030, 3, 4, 10, 0, 0, 0, time.UTC)
	first := &model.Appointment{DoctorID: doctorID, AppointmentDateTime: at, Status: model.AppointmentStatusPending}
	require.NoError(t, repo.Create(ctx, first))

	err := repo.Create(ctx, &model.Appointment{DoctorID: doctorID, AppointmentDateTime: at, Status: model.AppointmentStatusPending})
	assert.True(t, errors.Is(err, repository.ErrSlotTaken))

	first.Status = model.AppointmentStatusCancelled
	require.NoError(t, repo.Update(ctx, first))
	assert.NoError(t, repo.Create(ctx, &model.Appointment{DoctorID: doctorID, AppointmentDateTime: at, Status: model.AppointmentStatusPending}))
}

func TestAppointmentProjectionFillsNames(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	p := &model.Patient{Name: "Ann", Email: "ann@x.com", PersonalNumber: "1"}
	d := &model.Doctor{Name: "Dr. Bo", Email: "bo@x.com", PhoneNumber: "+1 555 0100", Specialization: "Cardiology"}
	require.NoError(t, store.Patients().Create(ctx, p))
	require.NoError(t, store.Doctors().Create(ctx, d))

	apt := &model.Appointment{PatientID: p.ID, DoctorID: d.ID, Status: model.AppointmentStatusPending, AppointmentDateTime: time.Now().Add(time.Hour)}
	require.NoError(t, store.Appointments().Create(ctx, apt))

	got, err := store.Appointments().Get(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.PatientName)
	assert.Equal(t, "Dr. Bo", got.DoctorName)
	assert.Equal(t, "Cardiology", got.DoctorSpecialization)
}

func TestDoctorSpecializationIgnoresCase(t *testing.T) {
	ctx := context.Background()
	doctors := NewStore().Doctors()

	require.NoError(t, doctors.Create(ctx, &model.Doctor{Name: "B", Email: "b@x.com", PhoneNumber: "1111111", Specialization: "Cardiology"}))
	require.NoError(t, doctors.Create(ctx, &model.Doctor{Name: "A", Email: "a@x.com", PhoneNumber: "2222222", Specialization: "cardiology"}))
	require.NoError(t, doctors.Create(ctx, &model.Doctor{Name: "C", Email: "c@x.com", PhoneNumber: "3333333", Specialization: "Neurology"}))

	got, err := doctors.ListBySpecialization(ctx, "CARDIOLOGY")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Name)

	err = doctors.Create(ctx, &model.Doctor{Name: "D", Email: "a@x.com", PhoneNumber: "4444444"})
	assert.True(t, errors.Is(err, repository.ErrDuplicate))
}

func TestOutboxFailureLifecycle(t *testing.T) {
	ctx := context.Background()
	outbox := NewStore().Outbox()

	evt := &model.OutboxEvent{EventType: model.EventAppointmentBooked, Payload: []byte(`{}`)}
	require.NoError(t, outbox.Create(ctx, evt))

	require.NoError(t, outbox.MarkFailed(ctx, evt.ID, "down", 2))
	pending, err := outbox.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].RetryCount)

	require.NoError(t, outbox.MarkFailed(ctx, evt.ID, "down", 2))
	pending, err = outbox.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
