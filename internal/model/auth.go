package model

import (
	"github.com/google/uuid"
)

type UserType string

const (
	UserTypePatient UserType = "PATIENT"
	UserTypeDoctor  UserType = "DOCTOR"
	UserTypeAdmin   UserType = "ADMIN"
)

type Role string

const (
	RolePatient Role = "ROLE_PATIENT"
	RoleDoctor  Role = "ROLE_DOCTOR"
	RoleAdmin   Role = "ROLE_ADMIN"
)

// Principal is the authenticated caller of an operation. The set of
// implementations is closed: PatientPrincipal, DoctorPrincipal and
// AdminPrincipal.
type Principal interface {
	ID() uuid.UUID
	Email() string
	Name() string
	Type() UserType
	Roles() []Role
	principal()
}

type PatientPrincipal struct {
	UserID    uuid.UUID
	UserEmail string
	UserName  string
}

func (p PatientPrincipal) ID() uuid.UUID  { return p.UserID }
func (p PatientPrincipal) Email() string  { return p.UserEmail }
func (p PatientPrincipal) Name() string   { return p.UserName }
func (p PatientPrincipal) Type() UserType { return UserTypePatient }
func (p PatientPrincipal) Roles() []Role  { return []Role{RolePatient} }
func (PatientPrincipal) principal()       {}

type DoctorPrincipal struct {
	UserID    uuid.UUID
	UserEmail string
	UserName  string
}

func (p DoctorPrincipal) ID() uuid.UUID  { return p.UserID }
func (p DoctorPrincipal) Email() string  { return p.UserEmail }
func (p DoctorPrincipal) Name() string   { return p.UserName }
func (p DoctorPrincipal) Type() UserType { return UserTypeDoctor }
func (p DoctorPrincipal) Roles() []Role  { return []Role{RoleDoctor} }
func (DoctorPrincipal) principal()       {}

type AdminPrincipal struct {
	UserID    uuid.UUID
	UserEmail string
	UserName  string
}

func (p AdminPrincipal) ID() uuid.UUID  { return p.UserID }
func (p AdminPrincipal) Email() string  { return p.UserEmail }
func (p AdminPrincipal) Name() string   { return p.UserName }
func (p AdminPrincipal) Type() UserType { return UserTypeAdmin }
func (p AdminPrincipal) Roles() []Role  { return []Role{RoleAdmin} }
func (AdminPrincipal) principal()       {}

// HasRole reports whether p carries role.
func HasRole(p Principal, role Role) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles() {
		if r == role {
			return true
		}
	}
	return false
}

// AuthRequest types
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword    string `json:"current_password" binding:"required"`
	NewPassword        string `json:"new_password" binding:"required,min=8"`
	ConfirmNewPassword string `json:"confirm_new_password" binding:"required"`
}

// AuthResponse types
type TokenResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int64    `json:"expires_in"`
	UserID      string   `json:"user_id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	UserType    UserType `json:"user_type"`
	Roles       []Role   `json:"roles"`
}
