package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
)

// Identity is a resolved account together with its stored password hash.
type Identity struct {
	Principal    model.Principal
	PasswordHash string
}

// Directory resolves an email address to exactly one account.
type Directory interface {
	ResolveByEmail(ctx context.Context, email string) (*Identity, error)
}

type repositoryDirectory struct {
	patients repository.PatientRepository
	doctors  repository.DoctorRepository
	admins   repository.AdminRepository
}

func NewDirectory(patients repository.PatientRepository, doctors repository.DoctorRepository, admins repository.AdminRepository) Directory {
	return &repositoryDirectory{patients: patients, doctors: doctors, admins: admins}
}

// ResolveByEmail looks in patients, then doctors, then admins.
func (d *repositoryDirectory) ResolveByEmail(ctx context.Context, email string) (*Identity, error) {
	p, err := d.patients.GetByEmail(ctx, email)
	if err == nil {
		return &Identity{
			Principal:    model.PatientPrincipal{UserID: p.ID, UserEmail: p.Email, UserName: p.Name},
			PasswordHash: p.PasswordHash,
		}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up patient: %w", err)
	}

	doc, err := d.doctors.GetByEmail(ctx, email)
	if err == nil {
		return &Identity{
			Principal:    model.DoctorPrincipal{UserID: doc.ID, UserEmail: doc.Email, UserName: doc.Name},
			PasswordHash: doc.PasswordHash,
		}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up doctor: %w", err)
	}

	a, err := d.admins.GetByEmail(ctx, email)
	if err == nil {
		return &Identity{
			Principal:    model.AdminPrincipal{UserID: a.ID, UserEmail: a.Email, UserName: a.Name},
			PasswordHash: a.PasswordHash,
		}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}

	return nil, apperrors.NotFound("User", nil)
}
