package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is the access level carried by an identity and its credential.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// IdentityStatus marks whether an identity may sign in.
type IdentityStatus string

const (
	StatusActive      IdentityStatus = "active"
	StatusDeactivated IdentityStatus = "deactivated"
)

func (s IdentityStatus) Valid() bool {
	return s == StatusActive || s == StatusDeactivated
}

// Identity is a login account. PasswordHash is only populated by lookups
// that need it for credential checks and is never serialised.
type Identity struct {
	ID           uuid.UUID      `json:"id"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"`
	Name         string         `json:"name"`
	Role         Role           `json:"role"`
	Status       IdentityStatus `json:"status"`
	ProfileImage string         `json:"profile_image,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (i Identity) IsActive() bool {
	return i.Status == StatusActive
}

// IdentityRef is the display form of an identity used inside other views.
type IdentityRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}
