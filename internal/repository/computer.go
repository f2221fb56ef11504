package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jeraldtan21/cts/internal/model"
)

// PaginationParams holds pagination parameters for repository queries
type PaginationParams struct {
	Offset int
	Limit  int
}

// PaginatedResult holds paginated query results
type PaginatedResult struct {
	Items      []model.ComputerDetail
	TotalCount int
}

// ComputerRepository is an interface for interacting with computer data.
type ComputerRepository interface {
	CreateComputer(ctx context.Context, computer model.Computer) error
	GetComputerByID(ctx context.Context, id uuid.UUID) (*model.Computer, error)
	// GetComputerDetail resolves the accountable employee and identity.
	GetComputerDetail(ctx context.Context, id uuid.UUID) (*model.ComputerDetail, error)
	GetComputersPaginated(ctx context.Context, params PaginationParams) (*PaginatedResult, error)
	GetComputersByEmployee(ctx context.Context, employeeID uuid.UUID) ([]model.ComputerDetail, error)
	UpdateComputer(ctx context.Context, computer model.Computer) error
	UpdateComputerImage(ctx context.Context, id uuid.UUID, imagePath string) error
	// DeleteComputer also removes the computer's history entries.
	DeleteComputer(ctx context.Context, id uuid.UUID) error
	ComputerExists(ctx context.Context, id uuid.UUID) (bool, error)
	SerialExists(ctx context.Context, serialNumber string, excludeID uuid.UUID) (bool, error)
}

type computerRepository struct {
	DB *sql.DB
}

// NewComputerRepository creates a new ComputerRepository.
func NewComputerRepository(db *sql.DB) ComputerRepository {
	return &computerRepository{DB: db}
}

const computerColumns = `c.id, c.model, c.serial_number, c.cpu, c.ram, c.storage, c.gpu, c.os,
		c.status, c.unit_type, c.image_path, c.employee_id, c.created_at, c.updated_at`

const selectComputerDetail = `
	SELECT ` + computerColumns + `,
		e.employee_number, e.identity_id, e.department_id, i.name, i.email
	FROM computers c
	JOIN employees e ON e.id = c.employee_id
	JOIN identities i ON i.id = e.identity_id`

func scanComputer(row rowScanner, c *model.Computer, extra ...any) error {
	dest := []any{
		&c.ID, &c.Model, &c.SerialNumber, &c.CPU, &c.RAM, &c.Storage, &c.GPU, &c.OS,
		&c.Status, &c.UnitType, &c.ImagePath, &c.EmployeeID, &c.CreatedAt, &c.UpdatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

func scanComputerDetail(row rowScanner) (*model.ComputerDetail, error) {
	var d model.ComputerDetail
	err := scanComputer(row, &d.Computer,
		&d.Accountable.EmployeeNumber,
		&d.Accountable.IdentityID,
		&d.Accountable.DepartmentID,
		&d.Accountable.Name,
		&d.Accountable.Email,
	)
	if err != nil {
		return nil, err
	}
	d.Accountable.EmployeeID = d.EmployeeID
	return &d, nil
}

// CreateComputer adds a new computer to the database.
func (r *computerRepository) CreateComputer(ctx context.Context, computer model.Computer) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	query := `
		INSERT INTO computers (id, model, serial_number, cpu, ram, storage, gpu, os, status, unit_type, image_path, employee_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.DB.ExecContext(ctx, query,
		computer.ID,
		computer.Model,
		computer.SerialNumber,
		computer.CPU,
		computer.RAM,
		computer.Storage,
		computer.GPU,
		computer.OS,
		computer.Status,
		computer.UnitType,
		computer.ImagePath,
		computer.EmployeeID,
	)
	if err != nil {
		if mapped := translateConstraint(err); mapped != nil {
			return fmt.Errorf("%w: %s", mapped, computer.SerialNumber)
		}
		return fmt.Errorf("failed to create computer: %w", err)
	}

	return nil
}

// GetComputerByID retrieves a single computer by its ID.
func (r *computerRepository) GetComputerByID(ctx context.Context, id uuid.UUID) (*model.Computer, error) {
	ctx, cancel := context.WithTimeout(ctx, shortTimeout)
	defer cancel()

	query := `SELECT ` + computerColumns + ` FROM computers c WHERE c.id = $1`

	var c model.Computer
	if err := scanComputer(r.DB.QueryRowContext(ctx, query, id), &c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrComputerNotFound
		}
		return nil, fmt.Errorf("failed to get computer by ID: %w", err)
	}
	return &c, nil
}

func (r *computerRepository) GetComputerDetail(ctx context.Context, id uuid.UUID) (*model.ComputerDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, shortTimeout)
	defer cancel()

	detail, err := scanComputerDetail(r.DB.QueryRowContext(ctx, selectComputerDetail+` WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrComputerNotFound
		}
		return nil, fmt.Errorf("failed to get computer detail: %w", err)
	}
	return detail, nil
}

// GetComputersPaginated retrieves all computers with pagination support.
func (r *computerRepository) GetComputersPaginated(ctx context.Context, params PaginationParams) (*PaginatedResult, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	query := selectComputerDetail + `
		ORDER BY c.created_at DESC, c.id
		OFFSET $1 LIMIT $2`

	computers, err := r.queryDetails(ctx, query, params.Offset, params.Limit)
	if err != nil {
		return nil, err
	}

	var totalCount int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM computers`).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to get total count of computers: %w", err)
	}

	return &PaginatedResult{
		Items:      computers,
		TotalCount: totalCount,
	}, nil
}

// GetComputersByEmployee retrieves all computers an employee is accountable for.
func (r *computerRepository) GetComputersByEmployee(ctx context.Context, employeeID uuid.UUID) ([]model.ComputerDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	query := selectComputerDetail + `
		WHERE c.employee_id = $1
		ORDER BY c.model, c.serial_number`

	return r.queryDetails(ctx, query, employeeID)
}

func (r *computerRepository) queryDetails(ctx context.Context, query string, args ...any) ([]model.ComputerDetail, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query computers: %w", err)
	}
	defer rows.Close()

	computers := []model.ComputerDetail{}
	for rows.Next() {
		detail, err := scanComputerDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan computer: %w", err)
		}
		computers = append(computers, *detail)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return computers, nil
}

// UpdateComputer updates every editable column except the image.
func (r *computerRepository) UpdateComputer(ctx context.Context, computer model.Computer) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	query := `
		UPDATE computers
		SET model = $1, serial_number = $2, cpu = $3, ram = $4, storage = $5, gpu = $6, os = $7,
			status = $8, unit_type = $9, employee_id = $10, updated_at = CURRENT_TIMESTAMP
		WHERE id = $11`

	result, err := r.DB.ExecContext(ctx, query,
		computer.Model,
		computer.SerialNumber,
		computer.CPU,
		computer.RAM,
		computer.Storage,
		computer.GPU,
		computer.OS,
		computer.Status,
		computer.UnitType,
		computer.EmployeeID,
		computer.ID,
	)
	if err != nil {
		if mapped := translateConstraint(err); mapped != nil {
			return fmt.Errorf("%w: %s", mapped, computer.SerialNumber)
		}
		return fmt.Errorf("failed to update computer: %w", err)
	}

	return expectOneRow(result, ErrComputerNotFound)
}

func (r *computerRepository) UpdateComputerImage(ctx context.Context, id uuid.UUID, imagePath string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	query := `
		UPDATE computers
		SET image_path = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2`

	result, err := r.DB.ExecContext(ctx, query, imagePath, id)
	if err != nil {
		return fmt.Errorf("failed to update computer image: %w", err)
	}

	return expectOneRow(result, ErrComputerNotFound)
}

// DeleteComputer deletes a computer from the database.
func (r *computerRepository) DeleteComputer(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctx, `DELETE FROM computers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete computer: %w", err)
	}

	return expectOneRow(result, ErrComputerNotFound)
}

func (r *computerRepository) ComputerExists(ctx context.Context, id uuid.UUID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, shortTimeout)
	defer cancel()

	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM computers WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check computer existence: %w", err)
	}
	return exists, nil
}

// SerialExists checks whether another computer already uses serialNumber.
func (r *computerRepository) SerialExists(ctx context.Context, serialNumber string, excludeID uuid.UUID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, shortTimeout)
	defer cancel()

	query := `SELECT EXISTS(SELECT 1 FROM computers WHERE serial_number = $1 AND id <> $2)`

	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, serialNumber, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check serial number: %w", err)
	}
	return exists, nil
}
