package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jeraldtan21/cts/internal/model"
)

// EmployeeRepository stores employees together with their identities.
type EmployeeRepository interface {
	// CreateEmployee inserts the identity and the employee in one transaction.
	CreateEmployee(ctx context.Context, identity model.Identity, employee model.Employee) error
	// UpdateEmployee updates both rows in one transaction. The password hash
	// and profile image are left untouched.
	UpdateEmployee(ctx context.Context, identity model.Identity, employee model.Employee) error
	GetEmployeeByID(ctx context.Context, id uuid.UUID) (*model.EmployeeDetail, error)
	GetEmployeeByIdentityID(ctx context.Context, identityID uuid.UUID) (*model.EmployeeDetail, error)
	ListEmployees(ctx context.Context) ([]model.EmployeeDetail, error)
	// ListActiveEmployees only returns employees whose identity is active.
	ListActiveEmployees(ctx context.Context) ([]model.EmployeeDetail, error)
	EmployeeExists(ctx context.Context, id uuid.UUID) (bool, error)
	EmployeeNumberExists(ctx context.Context, employeeNumber string, excludeID uuid.UUID) (bool, error)
	CountByDepartment(ctx context.Context, departmentID uuid.UUID) (int, error)
}

type employeeRepository struct {
	DB *sql.DB
}

func NewEmployeeRepository(db *sql.DB) EmployeeRepository {
	return &employeeRepository{DB: db}
}

const selectEmployeeDetail = `
	SELECT e.id, e.identity_id, e.employee_number, e.date_of_birth, e.gender, e.department_id,
		e.created_at, e.updated_at,
		i.email, i.name, i.role, i.status, i.profile_image, i.created_at, i.updated_at,
		d.name
	FROM employees e
	JOIN identities i ON i.id = e.identity_id
	JOIN departments d ON d.id = e.department_id`

func scanEmployeeDetail(row rowScanner) (*model.EmployeeDetail, error) {
	var (
		e              model.Employee
		i              model.Identity
		departmentName string
	)
	err := row.Scan(
		&e.ID, &e.IdentityID, &e.EmployeeNumber, &e.DateOfBirth, &e.Gender, &e.DepartmentID,
		&e.CreatedAt, &e.UpdatedAt,
		&i.Email, &i.Name, &i.Role, &i.Status, &i.ProfileImage, &i.CreatedAt, &i.UpdatedAt,
		&departmentName,
	)
	if err != nil {
		return nil, err
	}
	i.ID = e.IdentityID

	detail := model.NewEmployeeDetail(e, i, departmentName)
	return &detail, nil
}

func (r *employeeRepository) CreateEmployee(ctx context.Context, identity model.Identity, employee model.Employee) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Rollback is a no-op once Commit succeeds.
	defer tx.Rollback()

	if err := insertIdentity(ctx, tx, identity); err != nil {
		return err
	}

	query := `
		INSERT INTO employees (id, identity_id, employee_number, date_of_birth, gender, department_id)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = tx.ExecContext(ctx, query,
		employee.ID,
		identity.ID,
		employee.EmployeeNumber,
		employee.DateOfBirth,
		employee.Gender,
		employee.DepartmentID,
	)
	if err != nil {
		if mapped := translateConstraint(err); mapped != nil {
			return fmt.Errorf("%w: %s", mapped, employee.EmployeeNumber)
		}
		return fmt.Errorf("failed to create employee: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit employee: %w", err)
	}
	return nil
}

func (r *employeeRepository) UpdateEmployee(ctx context.Context, identity model.Identity, employee model.Employee) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	identityQuery := `
		UPDATE identities
		SET email = $1, name = $2, role = $3, status = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $5`

	result, err := tx.ExecContext(ctx, identityQuery,
		identity.Email, identity.Name, identity.Role, identity.Status, identity.ID)
	if err != nil {
		if mapped := translateConstraint(err); mapped != nil {
			return fmt.Errorf("%w: %s", mapped, identity.Email)
		}
		return fmt.Errorf("failed to update identity: %w", err)
	}
	if err := expectOneRow(result, ErrIdentityNotFound); err != nil {
		return err
	}

	employeeQuery := `
		UPDATE employees
		SET employee_number = $1, date_of_birth = $2, gender = $3, department_id = $4,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $5`

	result, err = tx.ExecContext(ctx, employeeQuery,
		employee.EmployeeNumber, employee.DateOfBirth, employee.Gender, employee.DepartmentID, employee.ID)
	if err != nil {
		if mapped := translateConstraint(err); mapped != nil {
			return fmt.Errorf("%w: %s", mapped, employee.EmployeeNumber)
		}
		return fmt.Errorf("failed to update employee: %w", err)
	}
	if err := expectOneRow(result, ErrEmployeeNotFound); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit employee update: %w", err)
	}
	return nil
}

func (r *employeeRepository) GetEmployeeByID(ctx context.Context, id uuid.UUID) (*model.EmployeeDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, shortTimeout)
	defer cancel()

	detail, err := scanEmployeeDetail(r.DB.QueryRowContext(ctx, selectEmployeeDetail+` WHERE e.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to get employee by ID: %w", err)
	}
	return detail, nil
}

func (r *employeeRepository) GetEmployeeByIdentityID(ctx context.Context, identityID uuid.UUID) (*model.EmployeeDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, shortTimeout)
	defer cancel()

	detail, err := scanEmployeeDetail(r.DB.QueryRowContext(ctx, selectEmployeeDetail+` WHERE e.identity_id = $1`, identityID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to get employee by identity: %w", err)
	}
	return detail, nil
}

func (r *employeeRepository) ListEmployees(ctx context.Context) ([]model.EmployeeDetail, error) {
	return r.list(ctx, selectEmployeeDetail+` ORDER BY i.name, e.employee_number`)
}

func (r *employeeRepository) ListActiveEmployees(ctx context.Context) ([]model.EmployeeDetail, error) {
	return r.list(ctx, selectEmployeeDetail+` WHERE i.status = 'active' ORDER BY i.name, e.employee_number`)
}

func (r *employeeRepository) list(ctx context.Context, query string, args ...any) ([]model.EmployeeDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	employees := []model.EmployeeDetail{}
	for rows.Next() {
		detail, err := scanEmployeeDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, *detail)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return employees, nil
}

func (r *employeeRepository) EmployeeExists(ctx context.Context, id uuid.UUID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, shortTimeout)
	defer cancel()

	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM employees WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check employee existence: %w", err)
	}
	return exists, nil
}

func (r *employeeRepository) EmployeeNumberExists(ctx context.Context, employeeNumber string, excludeID uuid.UUID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, shortTimeout)
	defer cancel()

	query := `SELECT EXISTS(SELECT 1 FROM employees WHERE employee_number = $1 AND id <> $2)`

	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, employeeNumber, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check employee number: %w", err)
	}
	return exists, nil
}

func (r *employeeRepository) CountByDepartment(ctx context.Context, departmentID uuid.UUID) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, shortTimeout)
	defer cancel()

	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM employees WHERE department_id = $1`, departmentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count department employees: %w", err)
	}
	return count, nil
}
