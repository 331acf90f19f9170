package doctor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

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
	repo    repository.DoctorRepository
	hasher  security.PasswordHasher
	auditor *audit.Logger
	logger  *logger.Logger
	// specialization search results, keyed by lower-cased name
	cache *cache.Cache
}

func NewService(repo repository.DoctorRepository, hasher security.PasswordHasher, auditor *audit.Logger, log *logger.Logger, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &Service{
		repo:    repo,
		hasher:  hasher,
		auditor: auditor,
		logger:  log.With("doctor"),
		cache:   cache.New(cacheTTL, 2*cacheTTL),
	}
}

// Register is called by admins.
func (s *Service) Register(ctx context.Context, req model.DoctorRegistrationRequest, caller model.Principal) (*model.Doctor, error) {
	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, account.Duplicate("Doctor", "email", req.Email)
	}
	exists, err = s.repo.ExistsByPhoneNumber(ctx, req.PhoneNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to check phone number: %w", err)
	}
	if exists {
		return nil, account.Duplicate("Doctor", "phone number", req.PhoneNumber)
	}

	hash, err := account.HashPassword(s.hasher, req.Password)
	if err != nil {
		return nil, err
	}

	doctor := &model.Doctor{
		Name:              req.Name,
		Age:               req.Age,
		Qualification:     req.Qualification,
		Specialization:    req.Specialization,
		PhoneNumber:       req.PhoneNumber,
		YearsOfExperience: req.YearsOfExperience,
		Email:             req.Email,
		PasswordHash:      hash,
	}
	if err := s.repo.Create(ctx, doctor); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Duplicate("Doctor already exists")
		}
		return nil, fmt.Errorf("failed to create doctor: %w", err)
	}
	s.cache.Flush()

	s.logger.Info("Doctor registered", "doctor_id", doctor.ID.String())
	s.auditor.Log(ctx, audit.Entry{Actor: caller, Action: "register", EntityType: "doctor", EntityID: doctor.ID})
	return doctor, nil
}

func (s *Service) GetProfile(ctx context.Context, id uuid.UUID, caller model.Principal) (*model.Doctor, error) {
	if err := authz.SelfOrAdmin(caller, id, "view this doctor's profile"); err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, req model.DoctorUpdateRequest, caller model.Principal) (*model.Doctor, error) {
	if err := authz.Self(caller, id, "update this profile"); err != nil {
		return nil, err
	}
	doctor, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.PhoneNumber != nil && *req.PhoneNumber != doctor.PhoneNumber {
		taken, err := s.repo.ExistsByPhoneNumberExcluding(ctx, *req.PhoneNumber, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check phone number: %w", err)
		}
		if taken {
			return nil, account.Duplicate("Doctor", "phone number", *req.PhoneNumber)
		}
		doctor.PhoneNumber = *req.PhoneNumber
	}
	if req.YearsOfExperience != nil {
		doctor.YearsOfExperience = *req.YearsOfExperience
	}
	if req.Qualification != nil {
		doctor.Qualification = *req.Qualification
	}

	if err := s.repo.Update(ctx, doctor); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, account.Duplicate("Doctor", "phone number", doctor.PhoneNumber)
		}
		return nil, fmt.Errorf("failed to update doctor: %w", err)
	}
	s.cache.Flush()

	s.auditor.Log(ctx, audit.Entry{Actor: caller, Action: "update_profile", EntityType: "doctor", EntityID: id})
	return doctor, nil
}

func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, req model.ChangePasswordRequest, caller model.Principal) error {
	if err := authz.Self(caller, id, "change this password"); err != nil {
		return err
	}
	if _, ok := caller.(model.DoctorPrincipal); !ok {
		return apperrors.AccessDenied("User is not a doctor.")
	}
	doctor, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	hash, err := account.NewPasswordHash(s.hasher, doctor.PasswordHash, req)
	if err != nil {
		return err
	}
	doctor.PasswordHash = hash
	if err := s.repo.Update(ctx, doctor); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("Password changed", "doctor_id", id.String())
	s.auditor.Log(ctx, audit.Entry{Actor: caller, Action: "change_password", EntityType: "doctor", EntityID: id})
	return nil
}

// ListBySpecialization matches name case-insensitively.
func (s *Service) ListBySpecialization(ctx context.Context, name string) ([]*model.Doctor, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*model.Doctor), nil
	}

	doctors, err := s.repo.ListBySpecialization(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	if doctors == nil {
		doctors = []*model.Doctor{}
	}
	s.cache.SetDefault(key, doctors)
	return doctors, nil
}

func (s *Service) get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Doctor", err)
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return doctor, nil
}
