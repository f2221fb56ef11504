package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/jeraldtan21/cts/internal/model"
	"github.com/jeraldtan21/cts/internal/repository"
	"github.com/jeraldtan21/cts/internal/storage"
	"github.com/jeraldtan21/cts/pkg/errors"
	"github.com/jeraldtan21/cts/pkg/validation"
)

// PerformanceScorer rates a computer's hardware.
type PerformanceScorer interface {
	ScoreComputer(c model.Computer) model.Performance
}

// ComputerInput carries the fields of a new computer. Status defaults to
// working.
type ComputerInput struct {
	Model        string               `json:"model"`
	SerialNumber string               `json:"serial_number"`
	CPU          string               `json:"cpu"`
	RAM          string               `json:"ram"`
	Storage      string               `json:"storage"`
	GPU          string               `json:"gpu"`
	OS           string               `json:"os"`
	Status       model.ComputerStatus `json:"status"`
	UnitType     string               `json:"unit_type"`
	EmployeeID   uuid.UUID            `json:"employee_id"`
}

// ComputerUpdate is a partial update. Nil fields keep their stored value.
type ComputerUpdate struct {
	Model        *string               `json:"model"`
	SerialNumber *string               `json:"serial_number"`
	CPU          *string               `json:"cpu"`
	RAM          *string               `json:"ram"`
	Storage      *string               `json:"storage"`
	GPU          *string               `json:"gpu"`
	OS           *string               `json:"os"`
	Status       *model.ComputerStatus `json:"status"`
	UnitType     *string               `json:"unit_type"`
	EmployeeID   *uuid.UUID            `json:"employee_id"`
}

// ComputerService handles business logic for computer operations
type ComputerService struct {
	repo      repository.ComputerRepository
	employees repository.EmployeeRepository
	scorer    PerformanceScorer
	images    storage.ImageStore
	notify    *dispatcher
	locks     *keyedMutex
	logger    *log.Logger
}

// NewComputerService creates a new computer service
func NewComputerService(repo repository.ComputerRepository, employees repository.EmployeeRepository,
	scorer PerformanceScorer, images storage.ImageStore, notifier NotificationService, logger *log.Logger) *ComputerService {
	if logger == nil {
		logger = log.Default()
	}
	return &ComputerService{
		repo:      repo,
		employees: employees,
		scorer:    scorer,
		images:    images,
		notify:    newDispatcher(notifier, logger),
		locks:     newKeyedMutex(),
		logger:    logger,
	}
}

// AddComputer registers a computer and assigns it to an employee.
func (s *ComputerService) AddComputer(ctx context.Context, in ComputerInput) (*model.ComputerDetail, error) {
	computer := model.Computer{
		ID:           uuid.New(),
		Model:        strings.TrimSpace(in.Model),
		SerialNumber: strings.TrimSpace(in.SerialNumber),
		CPU:          strings.TrimSpace(in.CPU),
		RAM:          strings.TrimSpace(in.RAM),
		Storage:      strings.TrimSpace(in.Storage),
		GPU:          strings.TrimSpace(in.GPU),
		OS:           strings.TrimSpace(in.OS),
		Status:       in.Status,
		UnitType:     strings.TrimSpace(in.UnitType),
		EmployeeID:   in.EmployeeID,
	}
	if computer.Status == "" {
		computer.Status = model.ComputerWorking
	}

	if err := validateComputer(computer); err != nil {
		return nil, err
	}
	if _, err := s.assignableEmployee(ctx, computer.EmployeeID); err != nil {
		return nil, err
	}
	if err := s.checkSerial(ctx, computer); err != nil {
		return nil, err
	}

	if err := s.repo.CreateComputer(ctx, computer); err != nil {
		return nil, translate(err, "failed to create computer")
	}

	s.logger.Printf("Computer created successfully: ID=%s, Serial=%s, Employee=%s",
		computer.ID, computer.SerialNumber, computer.EmployeeID)

	detail, err := s.GetComputer(ctx, computer.ID)
	if err != nil {
		return nil, err
	}
	s.notify.send(assignmentNotification(NotificationTypeComputerAssigned, *detail, uuid.Nil))
	return detail, nil
}

// UpdateComputer applies a partial update. A supplied employee must exist
// and be active before anything is written.
func (s *ComputerService) UpdateComputer(ctx context.Context, id uuid.UUID, in ComputerUpdate) (*model.ComputerDetail, error) {
	existing, err := s.repo.GetComputerByID(ctx, id)
	if err != nil {
		return nil, translate(err, "failed to retrieve computer for update")
	}

	updated := *existing
	applyString(&updated.Model, in.Model)
	applyString(&updated.SerialNumber, in.SerialNumber)
	applyString(&updated.CPU, in.CPU)
	applyString(&updated.RAM, in.RAM)
	applyString(&updated.Storage, in.Storage)
	applyString(&updated.GPU, in.GPU)
	applyString(&updated.OS, in.OS)
	applyString(&updated.UnitType, in.UnitType)
	if in.Status != nil {
		updated.Status = *in.Status
	}
	if in.EmployeeID != nil {
		updated.EmployeeID = *in.EmployeeID
	}

	if err := validateComputer(updated); err != nil {
		return nil, err
	}
	reassigned := updated.EmployeeID != existing.EmployeeID
	if reassigned {
		if _, err := s.assignableEmployee(ctx, updated.EmployeeID); err != nil {
			return nil, err
		}
	}
	if updated.SerialNumber != existing.SerialNumber {
		if err := s.checkSerial(ctx, updated); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateComputer(ctx, updated); err != nil {
		return nil, translate(err, "failed to update computer")
	}

	s.logger.Printf("Computer updated successfully: ID=%s", id)

	detail, err := s.GetComputer(ctx, id)
	if err != nil {
		return nil, err
	}
	if reassigned {
		s.notify.send(assignmentNotification(NotificationTypeComputerReassigned, *detail, existing.EmployeeID))
	}
	return detail, nil
}

// GetComputer returns the joined view with performance scores.
func (s *ComputerService) GetComputer(ctx context.Context, id uuid.UUID) (*model.ComputerDetail, error) {
	detail, err := s.repo.GetComputerDetail(ctx, id)
	if err != nil {
		return nil, translate(err, "failed to retrieve computer")
	}
	s.score(detail)
	return detail, nil
}

// GetAllComputers retrieves computers with pagination
func (s *ComputerService) GetAllComputers(ctx context.Context, params repository.PaginationParams) (*repository.PaginatedResult, error) {
	result, err := s.repo.GetComputersPaginated(ctx, params)
	if err != nil {
		return nil, errors.DatabaseError("failed to retrieve computers", err)
	}
	for i := range result.Items {
		s.score(&result.Items[i])
	}

	s.logger.Printf("Retrieved %d computers (offset %d, limit %d)", len(result.Items), params.Offset, params.Limit)
	return result, nil
}

// GetByAccountability lists the computers assigned to an employee. An
// employee with none gets an empty list.
func (s *ComputerService) GetByAccountability(ctx context.Context, employeeID uuid.UUID) ([]model.ComputerDetail, error) {
	exists, err := s.employees.EmployeeExists(ctx, employeeID)
	if err != nil {
		return nil, errors.DatabaseError("failed to check employee existence", err)
	}
	if !exists {
		return nil, errors.NotFoundError("employee")
	}
	return s.computersOf(ctx, employeeID)
}

// GetMyComputers lists the computers assigned to the signed-in identity.
// Identities without an employee record have none.
func (s *ComputerService) GetMyComputers(ctx context.Context, identityID uuid.UUID) ([]model.ComputerDetail, error) {
	employee, err := s.employees.GetEmployeeByIdentityID(ctx, identityID)
	if err != nil {
		appErr := translate(err, "failed to retrieve employee")
		if errors.HasCode(appErr, errors.ErrorCodeNotFound) {
			return []model.ComputerDetail{}, nil
		}
		return nil, appErr
	}
	return s.computersOf(ctx, employee.ID)
}

// DeleteComputer deletes a computer and its history. Its image is removed
// best-effort.
func (s *ComputerService) DeleteComputer(ctx context.Context, id uuid.UUID) error {
	computer, err := s.repo.GetComputerByID(ctx, id)
	if err != nil {
		return translate(err, "failed to retrieve computer for deletion")
	}

	if err := s.repo.DeleteComputer(ctx, id); err != nil {
		return translate(err, "failed to delete computer")
	}

	if computer.ImagePath != "" {
		if err := s.images.Delete(ctx, computer.ImagePath); err != nil {
			s.logger.Printf("Failed to remove image of deleted computer %s: %v", id, err)
		}
	}

	s.logger.Printf("Computer deleted successfully: ID=%s", id)
	return nil
}

// UpdateComputerImage replaces the computer's image.
func (s *ComputerService) UpdateComputerImage(ctx context.Context, id uuid.UUID, img storage.Image) (*model.ComputerDetail, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	computer, err := s.repo.GetComputerByID(ctx, id)
	if err != nil {
		return nil, translate(err, "failed to retrieve computer")
	}

	_, err = replaceImage(ctx, s.images, s.logger, storage.CategoryComputers, img, computer.ImagePath,
		func(ref string) error {
			return translate(s.repo.UpdateComputerImage(ctx, id, ref), "failed to update computer image")
		})
	if err != nil {
		return nil, err
	}

	s.logger.Printf("Computer image updated: ID=%s", id)
	return s.GetComputer(ctx, id)
}

// Wait blocks until pending notifications are delivered or given up on.
func (s *ComputerService) Wait() {
	s.notify.Wait()
}

func (s *ComputerService) computersOf(ctx context.Context, employeeID uuid.UUID) ([]model.ComputerDetail, error) {
	computers, err := s.repo.GetComputersByEmployee(ctx, employeeID)
	if err != nil {
		return nil, errors.DatabaseError("failed to retrieve employee computers", err)
	}
	for i := range computers {
		s.score(&computers[i])
	}
	return computers, nil
}

func (s *ComputerService) score(detail *model.ComputerDetail) {
	if s.scorer == nil {
		return
	}
	p := s.scorer.ScoreComputer(detail.Computer)
	detail.Performance = &p
}

// assignableEmployee loads the employee a computer is being assigned to.
// Deactivated employees cannot receive new assignments.
func (s *ComputerService) assignableEmployee(ctx context.Context, id uuid.UUID) (*model.EmployeeDetail, error) {
	employee, err := s.employees.GetEmployeeByID(ctx, id)
	if err != nil {
		return nil, translate(err, "failed to retrieve employee")
	}
	if !employee.Identity.IsActive() {
		return nil, errors.ValidationError("cannot assign a computer to a deactivated employee").
			WithDetail("employee_id", id.String())
	}
	return employee, nil
}

func (s *ComputerService) checkSerial(ctx context.Context, computer model.Computer) error {
	taken, err := s.repo.SerialExists(ctx, computer.SerialNumber, computer.ID)
	if err != nil {
		return errors.DatabaseError("failed to check serial number uniqueness", err)
	}
	if taken {
		return translate(repository.ErrDuplicateSerial, "")
	}
	return nil
}

func validateComputer(c model.Computer) error {
	fields := fieldErrors{}
	fields.check("model", validation.ValidateRequired("model", c.Model))
	fields.check("serial_number", validation.ValidateRequired("serial_number", c.SerialNumber))
	fields.check("cpu", validation.ValidateRequired("cpu", c.CPU))
	fields.check("ram", validation.ValidateRequired("ram", c.RAM))
	fields.check("storage", validation.ValidateRequired("storage", c.Storage))
	fields.check("gpu", validation.ValidateRequired("gpu", c.GPU))
	fields.check("os", validation.ValidateRequired("os", c.OS))
	fields.check("unit_type", validation.ValidateRequired("unit_type", c.UnitType))
	fields.check("status", validation.ValidateComputerStatus(c.Status))
	if c.EmployeeID == uuid.Nil {
		fields.check("employee_id", validation.ValidateRequired("employee_id", ""))
	}
	return fields.err()
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func assignmentNotification(t NotificationType, c model.ComputerDetail, previous uuid.UUID) AccountabilityNotification {
	n := AccountabilityNotification{
		Type:      t,
		Recipient: c.Accountable.Email,
		Message: fmt.Sprintf("Computer %s (%s) assigned to %s",
			c.Model, c.SerialNumber, c.Accountable.Name),
		Metadata: map[string]string{
			"computer_id":   c.ID.String(),
			"serial_number": c.SerialNumber,
			"employee_id":   c.EmployeeID.String(),
		},
	}
	if previous != uuid.Nil {
		n.Metadata["previous_employee_id"] = previous.String()
	}
	return n
}
