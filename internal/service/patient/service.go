package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/internal/service/account"
	"github.com/jwalitptl/hms-api/internal/service/audit"
	"github.com/jwalitptl/hms-api/internal/service/authz"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/logger"
	"github.com/jwalitptl/hms-api/pkg/security"
)

type Service struct {
	repo    repository.PatientRepository
	hasher  security.PasswordHasher
	auditor *audit.Logger
	logger  *logger.Logger
}

func NewService(repo repository.PatientRepository, hasher security.PasswordHasher, auditor *audit.Logger, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		hasher:  hasher,
		auditor: auditor,
		logger:  log.With("patient"),
	}
}

func (s *Service) Register(ctx context.Context, req model.PatientRegistrationRequest) (*model.Patient, error) {
	if req.Password != req.ConfirmPassword {
		return nil, apperrors.BadRequest("Passwords do not match", nil)
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, account.Duplicate("Patient", "email", req.Email)
	}
	exists, err = s.repo.ExistsByPersonalNumber(ctx, req.PersonalNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to check personal number: %w", err)
	}
	if exists {
		return nil, account.Duplicate("Patient", "personal number", req.PersonalNumber)
	}

	hash, err := account.HashPassword(s.hasher, req.Password)
	if err != nil {
		return nil, err
	}

	patient := &model.Patient{
		Name:                req.Name,
		Age:                 req.Age,
		DateOfBirth:         req.DateOfBirth,
		Gender:              req.Gender,
		PersonalNumber:      req.PersonalNumber,
		Address:             req.Address,
		Email:               req.Email,
		GuardianName:        req.GuardianName,
		GuardianRelation:    req.GuardianRelation,
		GuardianPhoneNumber: req.GuardianPhoneNumber,
		PasswordHash:        hash,
	}
	if err := s.repo.Create(ctx, patient); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Duplicate("Patient already exists")
		}
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	s.logger.Info("Patient registered", "patient_id", patient.ID.String())
	s.auditor.Log(ctx, audit.Entry{
		Actor:      model.PatientPrincipal{UserID: patient.ID, UserEmail: patient.Email, UserName: patient.Name},
		Action:     "register",
		EntityType: "patient",
		EntityID:   patient.ID,
	})
	return patient, nil
}

func (s *Service) GetProfile(ctx context.Context, id uuid.UUID, caller model.Principal) (*model.Patient, error) {
	if err := authz.SelfOrAdmin(caller, id, "view this patient's profile"); err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, req model.PatientUpdateRequest, caller model.Principal) (*model.Patient, error) {
	if err := authz.Self(caller, id, "update this profile"); err != nil {
		s.logger.Warn("Denied profile update", "patient_id", id.String())
		return nil, err
	}
	patient, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.PersonalNumber != nil && *req.PersonalNumber != patient.PersonalNumber {
		taken, err := s.repo.ExistsByPersonalNumberExcluding(ctx, *req.PersonalNumber, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check personal number: %w", err)
		}
		if taken {
			return nil, account.Duplicate("Patient", "personal number", *req.PersonalNumber)
		}
		patient.PersonalNumber = *req.PersonalNumber
	}
	if req.Address != nil {
		patient.Address = *req.Address
	}
	if req.GuardianName != nil {
		patient.GuardianName = req.GuardianName
	}
	if req.GuardianRelation != nil {
		patient.GuardianRelation = req.GuardianRelation
	}
	if req.GuardianPhoneNumber != nil {
		patient.GuardianPhoneNumber = req.GuardianPhoneNumber
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, account.Duplicate("Patient", "personal number", patient.PersonalNumber)
		}
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}

	s.logger.Info("Profile updated", "patient_id", id.String())
	s.auditor.Log(ctx, audit.Entry{Actor: caller, Action: "update_profile", EntityType: "patient", EntityID: id})
	return patient, nil
}

func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, req model.ChangePasswordRequest, caller model.Principal) error {
	if err := authz.Self(caller, id, "change this password"); err != nil {
		return err
	}
	patient, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	hash, err := account.NewPasswordHash(s.hasher, patient.PasswordHash, req)
	if err != nil {
		return err
	}
	patient.PasswordHash = hash
	if err := s.repo.Update(ctx, patient); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("Password changed", "patient_id", id.String())
	s.auditor.Log(ctx, audit.Entry{Actor: caller, Action: "change_password", EntityType: "patient", EntityID: id})
	return nil
}

func (s *Service) get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Patient", err)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}
