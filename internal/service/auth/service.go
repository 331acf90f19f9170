package auth

import (
	"context"
	"fmt"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/internal/service/audit"
	"github.com/jwalitptl/hms-api/pkg/auth"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/logger"
	"github.com/jwalitptl/hms-api/pkg/security"
)

const msgInvalidCredentials = "Invalid email or password"

// AdminSeed holds the credentials of the bootstrap admin.
type AdminSeed struct {
	Name     string
	Email    string
	Password string
}

type Service struct {
	directory Directory
	admins    repository.AdminRepository
	hasher    security.PasswordHasher
	jwtSvc    auth.JWTService
	auditor   *audit.Logger
	logger    *logger.Logger
}

func NewService(directory Directory, admins repository.AdminRepository, hasher security.PasswordHasher,
	jwtSvc auth.JWTService, auditor *audit.Logger, log *logger.Logger) *Service {
	return &Service{
		directory: directory,
		admins:    admins,
		hasher:    hasher,
		jwtSvc:    jwtSvc,
		auditor:   auditor,
		logger:    log.With("auth"),
	}
}

// Login authenticates email/password against an account of userType.
// Unknown emails, wrong passwords and type mismatches all look the same.
func (s *Service) Login(ctx context.Context, userType model.UserType, email, password string) (*model.TokenResponse, error) {
	identity, err := s.directory.ResolveByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.UnauthorizedMsg(msgInvalidCredentials)
		}
		return nil, err
	}

	p := identity.Principal
	if p.Type() != userType {
		s.logger.Warn("Login with wrong account type",
			"user_id", p.ID().String(),
			"expected", string(userType),
			"actual", string(p.Type()))
		return nil, apperrors.UnauthorizedMsg(msgInvalidCredentials)
	}
	if !s.hasher.Verify(password, identity.PasswordHash) {
		return nil, apperrors.UnauthorizedMsg(msgInvalidCredentials)
	}

	token, err := s.jwtSvc.GenerateAccessToken(p.Email(), auth.Claims{
		UserID:   p.ID().String(),
		UserType: string(p.Type()),
		Name:     p.Name(),
		Roles:    roleNames(p.Roles()),
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	s.auditor.Log(ctx, audit.Entry{Actor: p, Action: "login", EntityType: "session", EntityID: p.ID()})
	return &model.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.jwtSvc.Expiry().Seconds()),
		UserID:      p.ID().String(),
		Email:       p.Email(),
		Name:        p.Name(),
		UserType:    p.Type(),
		Roles:       p.Roles(),
	}, nil
}

// Authenticate validates a bearer token and returns a principal built
// from the current account record, not from the token claims.
func (s *Service) Authenticate(ctx context.Context, token string) (model.Principal, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	identity, err := s.directory.ResolveByEmail(ctx, claims.Subject)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.UnauthorizedMsg("account no longer exists")
		}
		return nil, err
	}
	p := identity.Principal
	if p.ID().String() != claims.UserID || string(p.Type()) != claims.UserType {
		return nil, apperrors.UnauthorizedMsg("token does not match account")
	}
	return p, nil
}

// EnsureDefaultAdmin creates the seed admin when no admin exists yet.
func (s *Service) EnsureDefaultAdmin(ctx context.Context, seed AdminSeed) (bool, error) {
	count, err := s.admins.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count admins: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	if seed.Email == "" || seed.Password == "" {
		return false, fmt.Errorf("admin seed requires email and password")
	}

	hash, err := s.hasher.Hash(seed.Password)
	if err != nil {
		return false, fmt.Errorf("failed to hash admin password: %w", err)
	}
	admin := &model.Admin{Name: seed.Name, Email: seed.Email, PasswordHash: hash}
	if err := s.admins.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("failed to create admin: %w", err)
	}

	s.logger.Info("Default admin created", "email", admin.Email)
	return true, nil
}

func roleNames(roles []model.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
