package model

import (
	"time"

	"github.com/google/uuid"
)

// ComputerStatus is the lifecycle state of a unit.
type ComputerStatus string

const (
	ComputerWorking   ComputerStatus = "working"
	ComputerDefective ComputerStatus = "defective"
	ComputerWarranty  ComputerStatus = "warranty"
	ComputerRepair    ComputerStatus = "repair"
)

// ComputerStatuses lists every status in display order.
var ComputerStatuses = []ComputerStatus{
	ComputerWorking,
	ComputerDefective,
	ComputerWarranty,
	ComputerRepair,
}

func (s ComputerStatus) Valid() bool {
	for _, known := range ComputerStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Computer is a tracked hardware unit. EmployeeID names the employee
// accountable for it.
type Computer struct {
	ID           uuid.UUID      `json:"id"`
	Model        string         `json:"model"`
	SerialNumber string         `json:"serial_number"`
	CPU          string         `json:"cpu"`
	RAM          string         `json:"ram"`
	Storage      string         `json:"storage"`
	GPU          string         `json:"gpu"`
	OS           string         `json:"os"`
	Status       ComputerStatus `json:"status"`
	UnitType     string         `json:"unit_type"`
	ImagePath    string         `json:"image_path,omitempty"`
	EmployeeID   uuid.UUID      `json:"employee_id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Accountable is the employee a computer is assigned to, resolved through
// employee and identity.
type Accountable struct {
	EmployeeID     uuid.UUID `json:"employee_id"`
	EmployeeNumber string    `json:"employee_number"`
	IdentityID     uuid.UUID `json:"identity_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	DepartmentID   uuid.UUID `json:"department_id"`
}

// Performance holds hardware scores looked up from the catalog.
// Unknown descriptors score zero.
type Performance struct {
	CPU     int `json:"cpu"`
	GPU     int `json:"gpu"`
	RAM     int `json:"ram"`
	Storage int `json:"storage"`
	Total   int `json:"total"`
}

// ComputerDetail is the joined view returned by read operations.
type ComputerDetail struct {
	Computer
	Accountable Accountable  `json:"accountable"`
	Performance *Performance `json:"performance,omitempty"`
}
