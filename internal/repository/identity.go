package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jeraldtan21/cts/internal/model"
)

// IdentityRepository stores login accounts.
type IdentityRepository interface {
	CreateIdentity(ctx context.Context, identity model.Identity) error
	// GetIdentityByID never loads the password hash.
	GetIdentityByID(ctx context.Context, id uuid.UUID) (*model.Identity, error)
	// GetIdentityByEmail loads the password hash for credential checks.
	GetIdentityByEmail(ctx context.Context, email string) (*model.Identity, error)
	GetPasswordHash(ctx context.Context, id uuid.UUID) (string, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateProfileImage(ctx context.Context, id uuid.UUID, imagePath string) error
	EmailExists(ctx context.Context, email string, excludeID uuid.UUID) (bool, error)
	IdentityExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type identityRepository struct {
	DB *sql.DB
}

// NewIdentityRepository creates a new IdentityRepository.
func NewIdentityRepository(db *sql.DB) IdentityRepository {
	return &identityRepository{DB: db}
}

const insertIdentityQuery = `
	INSERT INTO identities (id, email, password_hash, name, role, status, profile_image)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

// execer lets identity inserts run on the pool or inside a transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertIdentity(ctx context.Context, db execer, identity model.Identity) error {
	_, err := db.ExecContext(ctx, insertIdentityQuery,
		identity.ID,
		identity.Email,
		identity.PasswordHash,
		identity.Name,
		identity.Role,
		identity.Status,
		identity.ProfileImage,
	)
	if err != nil {
		if mapped := translateConstraint(err); mapped != nil {
			return fmt.Errorf("%w: %s", mapped, identity.Email)
		}
		return fmt.Errorf("failed to create identity: %w", err)
	}
	return nil
}

// CreateIdentity inserts a standalone identity, e.g. a seeded admin.
func (r *identityRepository) CreateIdentity(ctx context.Context, identity model.Identity) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	return insertIdentity(ctx, r.DB, identity)
}

func (r *identityRepository) GetIdentityByID(ctx context.Context, id uuid.UUID) (*model.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, shortTimeout)
	defer cancel()

	query := `
		SELECT id, email, name, role, status, profile_image, created_at, updated_at
		FROM identities
		WHERE id = $1`

	var i model.Identity
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&i.ID, &i.Email, &i.Name, &i.Role, &i.Status, &i.ProfileImage, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrIdentityNotFound
		}
		return nil, fmt.Errorf("failed to get identity by ID: %w", err)
	}
	return &i, nil
}

func (r *identityRepository) GetIdentityByEmail(ctx context.Context, email string) (*model.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, shortTimeout)
	defer cancel()

	query := `
		SELECT id, email, password_hash, name, role, status, profile_image, created_at, updated_at
		FROM identities
		WHERE email = $1`

	var i model.Identity
	err := r.DB.QueryRowContext(ctx, query, email).Scan(
		&i.ID, &i.Email, &i.PasswordHash, &i.Name, &i.Role, &i.Status, &i.ProfileImage, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrIdentityNotFound
		}
		return nil, fmt.Errorf("failed to get identity by email: %w", err)
	}
	return &i, nil
}

func (r *identityRepository) GetPasswordHash(ctx context.Context, id uuid.UUID) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, shortTimeout)
	defer cancel()

	var hash string
	err := r.DB.QueryRowContext(ctx, `SELECT password_hash FROM identities WHERE id = $1`, id).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrIdentityNotFound
		}
		return "", fmt.Errorf("failed to get password hash: %w", err)
	}
	return hash, nil
}

func (r *identityRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	query := `
		UPDATE identities
		SET password_hash = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2`

	return r.execOne(ctx, query, "update password", passwordHash, id)
}

func (r *identityRepository) UpdateProfileImage(ctx context.Context, id uuid.UUID, imagePath string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	query := `
		UPDATE identities
		SET profile_image = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2`

	return r.execOne(ctx, query, "update profile image", imagePath, id)
}

// EmailExists checks for another identity using email. Pass uuid.Nil as
// excludeID when creating.
func (r *identityRepository) EmailExists(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, shortTimeout)
	defer cancel()

	query := `SELECT EXISTS(SELECT 1 FROM identities WHERE email = $1 AND id <> $2)`

	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, email, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return exists, nil
}

func (r *identityRepository) IdentityExists(ctx context.Context, id uuid.UUID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, shortTimeout)
	defer cancel()

	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM identities WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check identity existence: %w", err)
	}
	return exists, nil
}

func (r *identityRepository) execOne(ctx context.Context, query, operation string, args ...any) error {
	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", operation, err)
	}
	return expectOneRow(result, ErrIdentityNotFound)
}
