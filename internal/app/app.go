// Package app assembles repositories, services and HTTP handlers into a
// runnable API. It is shared by cmd/api and the end-to-end tests.
package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hms-api/internal/config"
	"github.com/jwalitptl/hms-api/internal/handler"
	appointmentHandler "github.com/jwalitptl/hms-api/internal/handler/appointment"
	authHandler "github.com/jwalitptl/hms-api/internal/handler/auth"
	doctorHandler "github.com/jwalitptl/hms-api/internal/handler/doctor"
	"github.com/jwalitptl/hms-api/internal/handler/health"
	"github.com/jwalitptl/hms-api/internal/handler/profile"
	"github.com/jwalitptl/hms-api/internal/middleware"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/internal/repository/memory"
	"github.com/jwalitptl/hms-api/internal/repository/postgres"
	"github.com/jwalitptl/hms-api/internal/router"
	"github.com/jwalitptl/hms-api/internal/service/appointment"
	"github.com/jwalitptl/hms-api/internal/service/audit"
	authService "github.com/jwalitptl/hms-api/internal/service/auth"
	"github.com/jwalitptl/hms-api/internal/service/doctor"
	"github.com/jwalitptl/hms-api/internal/service/event"
	"github.com/jwalitptl/hms-api/internal/service/medication"
	"github.com/jwalitptl/hms-api/internal/service/patient"
	"github.com/jwalitptl/hms-api/pkg/auth"
	"github.com/jwalitptl/hms-api/pkg/lock"
	"github.com/jwalitptl/hms-api/pkg/logger"
	"github.com/jwalitptl/hms-api/pkg/metrics"
	"github.com/jwalitptl/hms-api/pkg/security"
)

// Repositories is the storage the API runs on.
type Repositories struct {
	Patients     repository.PatientRepository
	Doctors      repository.DoctorRepository
	Admins       repository.AdminRepository
	Appointments repository.AppointmentRepository
	Medications  repository.MedicationRepository
	Outbox       repository.OutboxRepository
	Pinger       health.Pinger
}

func MemoryRepositories(store *memory.Store) Repositories {
	return Repositories{
		Patients:     store.Patients(),
		Doctors:      store.Doctors(),
		Admins:       store.Admins(),
		Appointments: store.Appointments(),
		Medications:  store.Medications(),
		Outbox:       store.Outbox(),
		Pinger:       store,
	}
}

func PostgresRepositories(db *sqlx.DB) Repositories {
	base := postgres.NewBaseRepository(db)
	return Repositories{
		Patients:     postgres.NewPatientRepository(db),
		Doctors:      postgres.NewDoctorRepository(db),
		Admins:       postgres.NewAdminRepository(db),
		Appointments: postgres.NewAppointmentRepository(db),
		Medications:  postgres.NewMedicationRepository(db),
		Outbox:       postgres.NewOutboxRepository(base),
		Pinger:       &base,
	}
}

// Deps carries the infrastructure built by the caller.
type Deps struct {
	Repositories Repositories
	Locker       lock.Locker
	Hasher       security.PasswordHasher
	// Registry receives the application metrics and backs /metrics.
	Registry *prometheus.Registry
	Logger   *logger.Logger
}

type API struct {
	Router       *router.Router
	Auth         *authService.Service
	Appointments *appointment.Service
	Metrics      *metrics.Metrics
}

func NewAPI(cfg *config.Config, deps Deps) (*API, error) {
	if err := middleware.RegisterValidators(); err != nil {
		return nil, err
	}

	loc, err := cfg.Scheduling.Location()
	if err != nil {
		return nil, err
	}

	lg := deps.Logger
	if lg == nil {
		lg = logger.Nop()
	}
	hasher := deps.Hasher
	if hasher == nil {
		hasher = security.NewBcryptHasher(0)
	}
	locker := deps.Locker
	if locker == nil {
		locker = lock.NewLocal()
	}

	var reg prometheus.Registerer
	var gatherer prometheus.Gatherer
	if deps.Registry != nil {
		reg, gatherer = deps.Registry, deps.Registry
	}
	m := metrics.NewMetrics(cfg.Server.MetricsPrefix, reg)

	repos := deps.Repositories
	auditor := audit.NewLogger(lg)
	emitter := event.NewOutboxEmitter(repos.Outbox)
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry)

	authSvc := authService.NewService(
		authService.NewDirectory(repos.Patients, repos.Doctors, repos.Admins),
		repos.Admins, hasher, jwtSvc, auditor, lg,
	)
	patientSvc := patient.NewService(repos.Patients, hasher, auditor, lg)
	doctorSvc := doctor.NewService(repos.Doctors, hasher, auditor, lg, cfg.Cache.SpecializationTTL)
	appointmentSvc := appointment.NewService(
		repos.Patients, repos.Doctors, repos.Appointments,
		locker, emitter, auditor, m, lg,
		appointment.Config{
			WorkingHours: appointment.NewWorkingHours(loc),
			LockTTL:      cfg.Scheduling.SlotLockTTL,
		},
	)
	medicationSvc := medication.NewService(repos.Appointments, repos.Patients, repos.Medications, emitter, auditor, m, lg)

	r := router.NewRouter(
		middleware.NewAuthMiddleware(authSvc),
		m,
		router.Handlers{
			Health: health.NewHandler(repos.Pinger),
			Public: []handler.Routes{
				authHandler.NewHandler(authSvc, patientSvc),
			},
			Protected: []handler.Routes{
				appointmentHandler.NewHandler(appointmentSvc, medicationSvc),
				doctorHandler.NewHandler(doctorSvc, appointmentSvc),
				profile.NewHandler(patientSvc, doctorSvc),
			},
		},
		router.RouterConfig{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        cfg.RateLimit.RequestsPerSecond,
			RateBurst:        cfg.RateLimit.Burst,
			RequestTimeout:   cfg.Server.RequestTimeout,
			CORSConfig:       middleware.DefaultCORSConfig(),
			Gatherer:         gatherer,
		},
	)

	return &API{
		Router:       r,
		Auth:         authSvc,
		Appointments: appointmentSvc,
		Metrics:      m,
	}, nil
}

// SeedAdmin creates the configured admin account if none exists.
func (a *API) SeedAdmin(ctx context.Context, cfg config.AdminConfig) error {
	created, err := a.Auth.EnsureDefaultAdmin(ctx, authService.AdminSeed{
		Name:     cfg.Name,
		Email:    cfg.Email,
		Password: cfg.Password,
	})
	if err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	if created {
		log.Info().Str("email", cfg.Email).Msg("Seeded default admin")
	}
	return nil
}
