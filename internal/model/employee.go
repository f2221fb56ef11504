package model

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format of calendar dates such as date_of_birth.
const DateLayout = "2006-01-02"

// Employee is the HR record paired one-to-one with an Identity.
type Employee struct {
	ID             uuid.UUID `json:"id"`
	IdentityID     uuid.UUID `json:"identity_id"`
	EmployeeNumber string    `json:"employee_number"`
	DateOfBirth    time.Time `json:"-"`
	Gender         string    `json:"gender"`
	DepartmentID   uuid.UUID `json:"department_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// EmployeeDetail joins an employee with its identity and department.
type EmployeeDetail struct {
	Employee
	DateOfBirth    string   `json:"date_of_birth"`
	Identity       Identity `json:"identity"`
	DepartmentName string   `json:"department_name"`
}

// NewEmployeeDetail builds the joined view and formats the birth date.
func NewEmployeeDetail(e Employee, identity Identity, departmentName string) EmployeeDetail {
	return EmployeeDetail{
		Employee:       e,
		DateOfBirth:    e.DateOfBirth.Format(DateLayout),
		Identity:       identity,
		DepartmentName: departmentName,
	}
}
