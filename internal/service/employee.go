package service

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/jeraldtan21/cts/internal/auth"
	"github.com/jeraldtan21/cts/internal/model"
	"github.com/jeraldtan21/cts/internal/repository"
	"github.com/jeraldtan21/cts/internal/storage"
	"github.com/jeraldtan21/cts/pkg/errors"
	"github.com/jeraldtan21/cts/pkg/validation"
)

// EmployeeInput carries the fields of an employee and its identity.
// Password is ignored on update.
type EmployeeInput struct {
	Name           string               `json:"name"`
	Email          string               `json:"email"`
	Password       string               `json:"password,omitempty"`
	Role           model.Role           `json:"role"`
	Status         model.IdentityStatus `json:"status"`
	EmployeeNumber string               `json:"employee_number"`
	DateOfBirth    string               `json:"date_of_birth"`
	Gender         string               `json:"gender"`
	DepartmentID   uuid.UUID            `json:"department_id"`
}

// EmployeeService manages the employee directory and the identities
// paired with it.
type EmployeeService struct {
	employees      repository.EmployeeRepository
	identities     repository.IdentityRepository
	departments    repository.DepartmentRepository
	hasher         *auth.PasswordHasher
	images         storage.ImageStore
	minPasswordLen int
	locks          *keyedMutex
	logger         *log.Logger
}

func NewEmployeeService(employees repository.EmployeeRepository, identities repository.IdentityRepository,
	departments repository.DepartmentRepository, hasher *auth.PasswordHasher, images storage.ImageStore,
	minPasswordLen int, logger *log.Logger) *EmployeeService {
	if logger == nil {
		logger = log.Default()
	}
	return &EmployeeService{
		employees:      employees,
		identities:     identities,
		departments:    departments,
		hasher:         hasher,
		images:         images,
		minPasswordLen: minPasswordLen,
		locks:          newKeyedMutex(),
		logger:         logger,
	}
}

// AddEmployee creates the identity and the employee together.
func (s *EmployeeService) AddEmployee(ctx context.Context, in EmployeeInput) (*model.EmployeeDetail, error) {
	identity, employee, err := s.build(in, true)
	if err != nil {
		return nil, err
	}
	identity.ID = uuid.New()
	employee.ID = uuid.New()
	employee.IdentityID = identity.ID

	if err := s.checkReferences(ctx, identity, employee); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, errors.InternalError("failed to hash password", err)
	}
	identity.PasswordHash = hash

	if err := s.employees.CreateEmployee(ctx, identity, employee); err != nil {
		return nil, translate(err, "failed to create employee")
	}

	s.logger.Printf("Employee created successfully: ID=%s, Number=%s", employee.ID, employee.EmployeeNumber)

	return s.GetEmployee(ctx, employee.ID)
}

// UpdateEmployee replaces the employee fields and the paired identity's
// name, email, role and status.
func (s *EmployeeService) UpdateEmployee(ctx context.Context, id uuid.UUID, in EmployeeInput) (*model.EmployeeDetail, error) {
	existing, err := s.employees.GetEmployeeByID(ctx, id)
	if err != nil {
		return nil, translate(err, "failed to retrieve employee for update")
	}

	identity, employee, err := s.build(in, false)
	if err != nil {
		return nil, err
	}
	identity.ID = existing.IdentityID
	employee.ID = existing.ID
	employee.IdentityID = existing.IdentityID

	if err := s.checkReferences(ctx, identity, employee); err != nil {
		return nil, err
	}

	if err := s.employees.UpdateEmployee(ctx, identity, employee); err != nil {
		return nil, translate(err, "failed to update employee")
	}

	if existing.Identity.Status != identity.Status {
		s.logger.Printf("Identity %s status changed from %s to %s", identity.ID, existing.Identity.Status, identity.Status)
	}
	s.logger.Printf("Employee updated successfully: ID=%s", id)

	return s.GetEmployee(ctx, id)
}

func (s *EmployeeService) GetEmployee(ctx context.Context, id uuid.UUID) (*model.EmployeeDetail, error) {
	employee, err := s.employees.GetEmployeeByID(ctx, id)
	if err != nil {
		return nil, translate(err, "failed to retrieve employee")
	}
	return employee, nil
}

func (s *EmployeeService) ListEmployees(ctx context.Context) ([]model.EmployeeDetail, error) {
	employees, err := s.employees.ListEmployees(ctx)
	if err != nil {
		return nil, errors.DatabaseError("failed to retrieve employees", err)
	}
	return employees, nil
}

// ListActiveEmployees omits employees whose identity is deactivated.
func (s *EmployeeService) ListActiveEmployees(ctx context.Context) ([]model.EmployeeDetail, error) {
	employees, err := s.employees.ListActiveEmployees(ctx)
	if err != nil {
		return nil, errors.DatabaseError("failed to retrieve active employees", err)
	}
	return employees, nil
}

// GetMyProfile returns the employee record of the signed-in identity.
func (s *EmployeeService) GetMyProfile(ctx context.Context, identityID uuid.UUID) (*model.EmployeeDetail, error) {
	employee, err := s.employees.GetEmployeeByIdentityID(ctx, identityID)
	if err != nil {
		return nil, translate(err, "failed to retrieve profile")
	}
	return employee, nil
}

// UpdateProfileImage replaces the image of an employee's identity.
func (s *EmployeeService) UpdateProfileImage(ctx context.Context, employeeID uuid.UUID, img storage.Image) (*model.Identity, error) {
	employee, err := s.employees.GetEmployeeByID(ctx, employeeID)
	if err != nil {
		return nil, translate(err, "failed to retrieve employee")
	}
	return s.UpdateIdentityImage(ctx, employee.IdentityID, img)
}

// UpdateIdentityImage replaces an identity's image directly. Admins without
// an employee record use it for their own profile.
func (s *EmployeeService) UpdateIdentityImage(ctx context.Context, identityID uuid.UUID, img storage.Image) (*model.Identity, error) {
	unlock := s.locks.Lock(identityID)
	defer unlock()

	identity, err := s.identities.GetIdentityByID(ctx, identityID)
	if err != nil {
		return nil, translate(err, "failed to retrieve identity")
	}

	ref, err := replaceImage(ctx, s.images, s.logger, storage.CategoryProfiles, img, identity.ProfileImage,
		func(ref string) error {
			return translate(s.identities.UpdateProfileImage(ctx, identityID, ref), "failed to update profile image")
		})
	if err != nil {
		return nil, err
	}

	s.logger.Printf("Profile image updated for identity %s", identityID)
	identity.ProfileImage = ref
	return identity, nil
}

// build validates in and splits it into the two records.
func (s *EmployeeService) build(in EmployeeInput, create bool) (model.Identity, model.Employee, error) {
	fields := fieldErrors{}

	fields.check("name", validation.ValidateRequired("name", in.Name))
	email, err := validation.ValidateEmail(in.Email)
	fields.check("email", err)
	if create {
		fields.check("password", validation.ValidatePassword(in.Password, s.minPasswordLen))
	}
	if in.Role == "" {
		in.Role = model.RoleEmployee
	}
	fields.check("role", validation.ValidateRole(in.Role))
	if in.Status == "" {
		in.Status = model.StatusActive
	}
	fields.check("status", validation.ValidateIdentityStatus(in.Status))
	fields.check("employee_number", validation.ValidateRequired("employee_number", in.EmployeeNumber))
	dob, err := validation.ValidateDate("date_of_birth", in.DateOfBirth)
	fields.check("date_of_birth", err)
	fields.check("gender", validation.ValidateRequired("gender", in.Gender))
	if in.DepartmentID == uuid.Nil {
		fields.check("department_id", validation.ValidateRequired("department_id", ""))
	}

	if err := fields.err(); err != nil {
		return model.Identity{}, model.Employee{}, err
	}

	identity := model.Identity{
		Email:  email,
		Name:   strings.TrimSpace(in.Name),
		Role:   in.Role,
		Status: in.Status,
	}
	employee := model.Employee{
		EmployeeNumber: strings.TrimSpace(in.EmployeeNumber),
		DateOfBirth:    dob,
		Gender:         strings.TrimSpace(in.Gender),
		DepartmentID:   in.DepartmentID,
	}
	return identity, employee, nil
}

// checkReferences gives friendly errors ahead of the database constraints.
// Pass records with their final ids so updates exclude themselves.
func (s *EmployeeService) checkReferences(ctx context.Context, identity model.Identity, employee model.Employee) error {
	exists, err := s.departments.DepartmentExists(ctx, employee.DepartmentID)
	if err != nil {
		return errors.DatabaseError("failed to check department existence", err)
	}
	if !exists {
		return errors.NotFoundError("department")
	}

	taken, err := s.identities.EmailExists(ctx, identity.Email, identity.ID)
	if err != nil {
		return errors.DatabaseError("failed to check email uniqueness", err)
	}
	if taken {
		return translate(repository.ErrDuplicateEmail, "")
	}

	taken, err = s.employees.EmployeeNumberExists(ctx, employee.EmployeeNumber, employee.ID)
	if err != nil {
		return errors.DatabaseError("failed to check employee number uniqueness", err)
	}
	if taken {
		return translate(repository.ErrDuplicateEmployeeNumber, "")
	}
	return nil
}
