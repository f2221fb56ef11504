package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/jeraldtan21/cts/internal/model"
	"github.com/jeraldtan21/cts/internal/repository"
	"github.com/jeraldtan21/cts/pkg/errors"
	"github.com/jeraldtan21/cts/pkg/validation"
)

type DepartmentInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DepartmentService manages departments. A department cannot be deleted
// while employees belong to it.
type DepartmentService struct {
	departments repository.DepartmentRepository
	employees   repository.EmployeeRepository
	logger      *log.Logger
}

func NewDepartmentService(departments repository.DepartmentRepository, employees repository.EmployeeRepository, logger *log.Logger) *DepartmentService {
	if logger == nil {
		logger = log.Default()
	}
	return &DepartmentService{departments: departments, employees: employees, logger: logger}
}

func (s *DepartmentService) AddDepartment(ctx context.Context, in DepartmentInput) (*model.Department, error) {
	department, err := s.build(in)
	if err != nil {
		return nil, err
	}
	department.ID = uuid.New()

	if err := s.checkName(ctx, department); err != nil {
		return nil, err
	}
	if err := s.departments.CreateDepartment(ctx, department); err != nil {
		return nil, translate(err, "failed to create department")
	}

	s.logger.Printf("Department created successfully: ID=%s, Name=%s", department.ID, department.Name)
	return s.GetDepartment(ctx, department.ID)
}

func (s *DepartmentService) ListDepartments(ctx context.Context) ([]model.Department, error) {
	departments, err := s.departments.ListDepartments(ctx)
	if err != nil {
		return nil, errors.DatabaseError("failed to retrieve departments", err)
	}
	return departments, nil
}

func (s *DepartmentService) GetDepartment(ctx context.Context, id uuid.UUID) (*model.Department, error) {
	department, err := s.departments.GetDepartmentByID(ctx, id)
	if err != nil {
		return nil, translate(err, "failed to retrieve department")
	}
	return department, nil
}

func (s *DepartmentService) UpdateDepartment(ctx context.Context, id uuid.UUID, in DepartmentInput) (*model.Department, error) {
	department, err := s.build(in)
	if err != nil {
		return nil, err
	}
	department.ID = id

	if _, err := s.GetDepartment(ctx, id); err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, department); err != nil {
		return nil, err
	}
	if err := s.departments.UpdateDepartment(ctx, department); err != nil {
		return nil, translate(err, "failed to update department")
	}

	s.logger.Printf("Department updated successfully: ID=%s", id)
	return s.GetDepartment(ctx, id)
}

// DeleteDepartment refuses with a conflict while employees reference the
// department.
func (s *DepartmentService) DeleteDepartment(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetDepartment(ctx, id); err != nil {
		return err
	}

	count, err := s.employees.CountByDepartment(ctx, id)
	if err != nil {
		return errors.DatabaseError("failed to count department employees", err)
	}
	if count > 0 {
		return errors.ConflictError(fmt.Sprintf("department still has %d employee(s)", count)).
			WithDetail("employees", count)
	}

	if err := s.departments.DeleteDepartment(ctx, id); err != nil {
		return translate(err, "failed to delete department")
	}

	s.logger.Printf("Department deleted successfully: ID=%s", id)
	return nil
}

func (s *DepartmentService) build(in DepartmentInput) (model.Department, error) {
	if err := validation.ValidateRequired("name", in.Name); err != nil {
		return model.Department{}, errors.ValidationErrorWithDetails("validation failed", map[string]string{"name": err.Error()})
	}
	return model.Department{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
	}, nil
}

func (s *DepartmentService) checkName(ctx context.Context, department model.Department) error {
	taken, err := s.departments.DepartmentNameExists(ctx, department.Name, department.ID)
	if err != nil {
		return errors.DatabaseError("failed to check department name", err)
	}
	if taken {
		return translate(repository.ErrDuplicateDepartmentName, "")
	}
	return nil
}
