package service

import (
	"context"
	stderrors "errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeraldtan21/cts/internal/auth"
	"github.com/jeraldtan21/cts/internal/model"
	"github.com/jeraldtan21/cts/internal/repository"
	"github.com/jeraldtan21/cts/pkg/errors"
	"github.com/jeraldtan21/cts/pkg/validation"
)

const msgInvalidLogin = "invalid email or password"

// LoginResult is returned by a successful Login.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserView  `json:"user"`
}

// UserView is the display form of the signed-in identity.
type UserView struct {
	ID   uuid.UUID  `json:"id"`
	Name string     `json:"name"`
	Role model.Role `json:"role"`
}

// AuthService handles sign-in, credential verification and passwords.
type AuthService struct {
	identities     repository.IdentityRepository
	employees      repository.EmployeeRepository
	hasher         *auth.PasswordHasher
	tokens         *auth.TokenManager
	minPasswordLen int
	logger         *log.Logger
}

func NewAuthService(identities repository.IdentityRepository, employees repository.EmployeeRepository,
	hasher *auth.PasswordHasher, tokens *auth.TokenManager, minPasswordLen int, logger *log.Logger) *AuthService {
	if logger == nil {
		logger = log.Default()
	}
	return &AuthService{
		identities:     identities,
		employees:      employees,
		hasher:         hasher,
		tokens:         tokens,
		minPasswordLen: minPasswordLen,
		logger:         logger,
	}
}

// Login checks email and password and issues a credential. Unknown emails
// and wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, errors.ValidationError("email and password are required")
	}

	identity, err := s.identities.GetIdentityByEmail(ctx, email)
	if err != nil {
		if stderrors.Is(err, repository.ErrIdentityNotFound) {
			return nil, errors.UnauthorizedError(msgInvalidLogin)
		}
		return nil, errors.DatabaseError("failed to look up identity", err)
	}

	if err := s.hasher.Compare(identity.PasswordHash, password); err != nil {
		s.logger.Printf("Failed login for identity %s", identity.ID)
		return nil, errors.UnauthorizedError(msgInvalidLogin)
	}
	if !identity.IsActive() {
		return nil, errors.ForbiddenError("account is deactivated")
	}

	token, expiresAt, err := s.tokens.Issue(*identity)
	if err != nil {
		return nil, errors.InternalError("failed to issue token", err)
	}

	s.logger.Printf("Identity %s signed in", identity.ID)

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      UserView{ID: identity.ID, Name: identity.Name, Role: identity.Role},
	}, nil
}

// ResolveToken verifies a bearer credential and loads the identity it
// names. It is the lookup behind the authentication middleware.
func (s *AuthService) ResolveToken(ctx context.Context, token string) (*model.Identity, error) {
	id, _, err := s.tokens.Parse(token)
	if err != nil {
		return nil, errors.UnauthorizedError("invalid or expired token")
	}

	identity, err := s.identities.GetIdentityByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrIdentityNotFound) {
			return nil, errors.UnauthorizedError("identity not found")
		}
		return nil, errors.DatabaseError("failed to look up identity", err)
	}
	if !identity.IsActive() {
		return nil, errors.ForbiddenError("account is deactivated")
	}
	return identity, nil
}

// ChangePassword replaces the caller's password after checking the old one.
func (s *AuthService) ChangePassword(ctx context.Context, identityID uuid.UUID, oldPassword, newPassword string) error {
	if err := validation.ValidatePassword(newPassword, s.minPasswordLen); err != nil {
		return errors.ValidationErrorWithDetails("validation failed", map[string]string{"new_password": err.Error()})
	}

	hash, err := s.identities.GetPasswordHash(ctx, identityID)
	if err != nil {
		return translate(err, "failed to load password")
	}
	if err := s.hasher.Compare(hash, oldPassword); err != nil {
		return errors.UnauthorizedError("current password is incorrect")
	}

	return s.storePassword(ctx, identityID, newPassword)
}

// ResetPassword sets an employee's password without the old one. Only
// admins may call it.
func (s *AuthService) ResetPassword(ctx context.Context, caller model.Identity, employeeID uuid.UUID, newPassword string) error {
	if caller.Role != model.RoleAdmin {
		return errors.ForbiddenError("only admins can reset passwords")
	}
	if err := validation.ValidatePassword(newPassword, s.minPasswordLen); err != nil {
		return errors.ValidationErrorWithDetails("validation failed", map[string]string{"new_password": err.Error()})
	}

	employee, err := s.employees.GetEmployeeByID(ctx, employeeID)
	if err != nil {
		return translate(err, "failed to load employee")
	}

	if err := s.storePassword(ctx, employee.IdentityID, newPassword); err != nil {
		return err
	}
	s.logger.Printf("Password of employee %s reset by %s", employeeID, caller.ID)
	return nil
}

func (s *AuthService) storePassword(ctx context.Context, identityID uuid.UUID, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return errors.InternalError("failed to hash password", err)
	}
	if err := s.identities.UpdatePassword(ctx, identityID, hash); err != nil {
		return translate(err, "failed to update password")
	}
	return nil
}

// CreateAdmin seeds an admin identity with no employee record.
func (s *AuthService) CreateAdmin(ctx context.Context, email, name, password string) (*model.Identity, error) {
	fields := fieldErrors{}
	normalized, err := validation.ValidateEmail(email)
	fields.check("email", err)
	fields.check("name", validation.ValidateRequired("name", name))
	fields.check("password", validation.ValidatePassword(password, s.minPasswordLen))
	if err := fields.err(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, errors.InternalError("failed to hash password", err)
	}

	identity := model.Identity{
		ID:           uuid.New(),
		Email:        normalized,
		PasswordHash: hash,
		Name:         strings.TrimSpace(name),
		Role:         model.RoleAdmin,
		Status:       model.StatusActive,
	}
	if err := s.identities.CreateIdentity(ctx, identity); err != nil {
		return nil, translate(err, "failed to create admin")
	}

	s.logger.Printf("Admin identity created: ID=%s", identity.ID)
	identity.PasswordHash = ""
	return &identity, nil
}
