package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jeraldtan21/cts/internal/model"
)

// DepartmentRepository stores departments.
type DepartmentRepository interface {
	CreateDepartment(ctx context.Context, department model.Department) error
	GetDepartmentByID(ctx context.Context, id uuid.UUID) (*model.Department, error)
	ListDepartments(ctx context.Context) ([]model.Department, error)
	UpdateDepartment(ctx context.Context, department model.Department) error
	// DeleteDepartment returns ErrDepartmentInUse while employees reference it.
	DeleteDepartment(ctx context.Context, id uuid.UUID) error
	DepartmentExists(ctx context.Context, id uuid.UUID) (bool, error)
	DepartmentNameExists(ctx context.Context, name string, excludeID uuid.UUID) (bool, error)
}

type departmentRepository struct {
	DB *sql.DB
}

func NewDepartmentRepository(db *sql.DB) DepartmentRepository {
	return &departmentRepository{DB: db}
}

func (r *departmentRepository) CreateDepartment(ctx context.Context, department model.Department) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	query := `
		INSERT INTO departments (id, name, description)
		VALUES ($1, $2, $3)`

	_, err := r.DB.ExecContext(ctx, query, department.ID, department.Name, department.Description)
	if err != nil {
		if mapped := translateConstraint(err); mapped != nil {
			return fmt.Errorf("%w: %s", mapped, department.Name)
		}
		return fmt.Errorf("failed to create department: %w", err)
	}
	return nil
}

func (r *departmentRepository) GetDepartmentByID(ctx context.Context, id uuid.UUID) (*model.Department, error) {
	ctx, cancel := context.WithTimeout(ctx, shortTimeout)
	defer cancel()

	query := `
		SELECT id, name, description, created_at, updated_at
		FROM departments
		WHERE id = $1`

	var d model.Department
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&d.ID, &d.Name, &d.Description, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("failed to get department by ID: %w", err)
	}
	return &d, nil
}

func (r *departmentRepository) ListDepartments(ctx context.Context) ([]model.Department, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	query := `
		SELECT id, name, description, created_at, updated_at
		FROM departments
		ORDER BY name`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query departments: %w", err)
	}
	defer rows.Close()

	departments := []model.Department{}
	for rows.Next() {
		var d model.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return departments, nil
}

func (r *departmentRepository) UpdateDepartment(ctx context.Context, department model.Department) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	query := `
		UPDATE departments
		SET name = $1, description = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3`

	result, err := r.DB.ExecContext(ctx, query, department.Name, department.Description, department.ID)
	if err != nil {
		if mapped := translateConstraint(err); mapped != nil {
			return fmt.Errorf("%w: %s", mapped, department.Name)
		}
		return fmt.Errorf("failed to update department: %w", err)
	}

	return expectOneRow(result, ErrDepartmentNotFound)
}

func (r *departmentRepository) DeleteDepartment(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		if _, ok := violation(err, pqForeignKeyViolation); ok {
			return ErrDepartmentInUse
		}
		return fmt.Errorf("failed to delete department: %w", err)
	}

	return expectOneRow(result, ErrDepartmentNotFound)
}

func (r *departmentRepository) DepartmentExists(ctx context.Context, id uuid.UUID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, shortTimeout)
	defer cancel()

	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM departments WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check department existence: %w", err)
	}
	return exists, nil
}

func (r *departmentRepository) DepartmentNameExists(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, shortTimeout)
	defer cancel()

	query := `SELECT EXISTS(SELECT 1 FROM departments WHERE LOWER(name) = LOWER($1) AND id <> $2)`

	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, name, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check department name: %w", err)
	}
	return exists, nil
}

// expectOneRow turns a zero-row write into notFound.
func expectOneRow(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
