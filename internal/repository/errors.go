package repository

import (
	"errors"
	"time"

	"github.com/lib/pq"
)

// Sentinel errors returned by every repository. Callers match them with
// errors.Is; the concrete error may wrap extra context.
var (
	ErrIdentityNotFound   = errors.New("identity not found")
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrDepartmentNotFound = errors.New("department not found")
	ErrComputerNotFound   = errors.New("computer not found")

	ErrDuplicateEmail          = errors.New("an identity with this email already exists")
	ErrDuplicateEmployeeNumber = errors.New("an employee with this employee number already exists")
	ErrDuplicateSerial         = errors.New("a computer with this serial number already exists")
	ErrDuplicateDepartmentName = errors.New("a department with this name already exists")

	ErrDepartmentInUse = errors.New("department is still referenced by employees")
)

// PostgreSQL error codes we translate.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// Constraint names from the migrations.
const (
	constraintIdentityEmail      = "identities_email_key"
	constraintEmployeeNumber     = "employees_employee_number_key"
	constraintComputerSerial     = "computers_serial_number_key"
	constraintDepartmentName     = "departments_name_key"
	constraintEmployeeDepartment = "employees_department_id_fkey"
	constraintComputerEmployee   = "computers_employee_id_fkey"
	constraintHistoryComputer    = "history_entries_computer_id_fkey"
	constraintHistoryAssignee    = "history_entries_assignee_id_fkey"
	constraintEmployeeIdentity   = "employees_identity_id_fkey"
)

// Per-call timeouts.
const (
	shortTimeout = 3 * time.Second
	writeTimeout = 5 * time.Second
	readTimeout  = 10 * time.Second
)

// violation returns the constraint name when err is a PostgreSQL error with
// the given code.
func violation(err error, code string) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == code {
		return pqErr.Constraint, true
	}
	return "", false
}

// translateConstraint maps unique and foreign key violations to sentinel
// errors. It returns nil when err is not a known violation.
func translateConstraint(err error) error {
	if constraint, ok := violation(err, pqUniqueViolation); ok {
		switch constraint {
		case constraintIdentityEmail:
			return ErrDuplicateEmail
		case constraintEmployeeNumber:
			return ErrDuplicateEmployeeNumber
		case constraintComputerSerial:
			return ErrDuplicateSerial
		case constraintDepartmentName:
			return ErrDuplicateDepartmentName
		}
		return nil
	}

	if constraint, ok := violation(err, pqForeignKeyViolation); ok {
		switch constraint {
		case constraintEmployeeDepartment:
			return ErrDepartmentNotFound
		case constraintComputerEmployee:
			return ErrEmployeeNotFound
		case constraintHistoryComputer:
			return ErrComputerNotFound
		case constraintHistoryAssignee, constraintEmployeeIdentity:
			return ErrIdentityNotFound
		}
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
