package service

import (
	"context"
	"io"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/jeraldtan21/cts/internal/auth"
	"github.com/jeraldtan21/cts/internal/model"
	"github.com/jeraldtan21/cts/internal/repository"
)

// Function-field mocks. Unset Get* functions report not found, unset
// uniqueness checks report free and unset existence checks report present.

type mockIdentityRepository struct {
	CreateIdentityFunc     func(ctx context.Context, identity model.Identity) error
	GetIdentityByIDFunc    func(ctx context.Context, id uuid.UUID) (*model.Identity, error)
	GetIdentityByEmailFunc func(ctx context.Context, email string) (*model.Identity, error)
	GetPasswordHashFunc    func(ctx context.Context, id uuid.UUID) (string, error)
	UpdatePasswordFunc     func(ctx context.Context, id uuid.UUID, hash string) error
	UpdateProfileImageFunc func(ctx context.Context, id uuid.UUID, path string) error
	EmailExistsFunc        func(ctx context.Context, email string, excludeID uuid.UUID) (bool, error)
}

func (m *mockIdentityRepository) CreateIdentity(ctx context.Context, identity model.Identity) error {
	if m.CreateIdentityFunc != nil {
		return m.CreateIdentityFunc(ctx, identity)
	}
	return nil
}

func (m *mockIdentityRepository) GetIdentityByID(ctx context.Context, id uuid.UUID) (*model.Identity, error) {
	if m.GetIdentityByIDFunc != nil {
		return m.GetIdentityByIDFunc(ctx, id)
	}
	return nil, repository.ErrIdentityNotFound
}

func (m *mockIdentityRepository) GetIdentityByEmail(ctx context.Context, email string) (*model.Identity, error) {
	if m.GetIdentityByEmailFunc != nil {
		return m.GetIdentityByEmailFunc(ctx, email)
	}
	return nil, repository.ErrIdentityNotFound
}

func (m *mockIdentityRepository) GetPasswordHash(ctx context.Context, id uuid.UUID) (string, error) {
	if m.GetPasswordHashFunc != nil {
		return m.GetPasswordHashFunc(ctx, id)
	}
	return "", repository.ErrIdentityNotFound
}

func (m *mockIdentityRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, hash)
	}
	return nil
}

func (m *mockIdentityRepository) UpdateProfileImage(ctx context.Context, id uuid.UUID, path string) error {
	if m.UpdateProfileImageFunc != nil {
		return m.UpdateProfileImageFunc(ctx, id, path)
	}
	return nil
}

func (m *mockIdentityRepository) EmailExists(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	if m.EmailExistsFunc != nil {
		return m.EmailExistsFunc(ctx, email, excludeID)
	}
	return false, nil
}

func (m *mockIdentityRepository) IdentityExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return true, nil
}

type mockEmployeeRepository struct {
	CreateEmployeeFunc          func(ctx context.Context, identity model.Identity, employee model.Employee) error
	UpdateEmployeeFunc          func(ctx context.Context, identity model.Identity, employee model.Employee) error
	GetEmployeeByIDFunc         func(ctx context.Context, id uuid.UUID) (*model.EmployeeDetail, error)
	GetEmployeeByIdentityIDFunc func(ctx context.Context, identityID uuid.UUID) (*model.EmployeeDetail, error)
	ListEmployeesFunc           func(ctx context.Context) ([]model.EmployeeDetail, error)
	ListActiveEmployeesFunc     func(ctx context.Context) ([]model.EmployeeDetail, error)
	EmployeeExistsFunc          func(ctx context.Context, id uuid.UUID) (bool, error)
	EmployeeNumberExistsFunc    func(ctx context.Context, number string, excludeID uuid.UUID) (bool, error)
	CountByDepartmentFunc       func(ctx context.Context, departmentID uuid.UUID) (int, error)
}

func (m *mockEmployeeRepository) CreateEmployee(ctx context.Context, identity model.Identity, employee model.Employee) error {
	if m.CreateEmployeeFunc != nil {
		return m.CreateEmployeeFunc(ctx, identity, employee)
	}
	return nil
}

func (m *mockEmployeeRepository) UpdateEmployee(ctx context.Context, identity model.Identity, employee model.Employee) error {
	if m.UpdateEmployeeFunc != nil {
		return m.UpdateEmployeeFunc(ctx, identity, employee)
	}
	return nil
}

func (m *mockEmployeeRepository) GetEmployeeByID(ctx context.Context, id uuid.UUID) (*model.EmployeeDetail, error) {
	if m.GetEmployeeByIDFunc != nil {
		return m.GetEmployeeByIDFunc(ctx, id)
	}
	return nil, repository.ErrEmployeeNotFound
}

func (m *mockEmployeeRepository) GetEmployeeByIdentityID(ctx context.Context, identityID uuid.UUID) (*model.EmployeeDetail, error) {
	if m.GetEmployeeByIdentityIDFunc != nil {
		return m.GetEmployeeByIdentityIDFunc(ctx, identityID)
	}
	return nil, repository.ErrEmployeeNotFound
}

func (m *mockEmployeeRepository) ListEmployees(ctx context.Context) ([]model.EmployeeDetail, error) {
	if m.ListEmployeesFunc != nil {
		return m.ListEmployeesFunc(ctx)
	}
	return []model.EmployeeDetail{}, nil
}

func (m *mockEmployeeRepository) ListActiveEmployees(ctx context.Context) ([]model.EmployeeDetail, error) {
	if m.ListActiveEmployeesFunc != nil {
		return m.ListActiveEmployeesFunc(ctx)
	}
	return []model.EmployeeDetail{}, nil
}

func (m *mockEmployeeRepository) EmployeeExists(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.EmployeeExistsFunc != nil {
		return m.EmployeeExistsFunc(ctx, id)
	}
	return true, nil
}

func (m *mockEmployeeRepository) EmployeeNumberExists(ctx context.Context, number string, excludeID uuid.UUID) (bool, error) {
	if m.EmployeeNumberExistsFunc != nil {
		return m.EmployeeNumberExistsFunc(ctx, number, excludeID)
	}
	return false, nil
}

func (m *mockEmployeeRepository) CountByDepartment(ctx context.Context, departmentID uuid.UUID) (int, error) {
	if m.CountByDepartmentFunc != nil {
		return m.CountByDepartmentFunc(ctx, departmentID)
	}
	return 0, nil
}

type mockDepartmentRepository struct {
	CreateDepartmentFunc     func(ctx context.Context, department model.Department) error
	GetDepartmentByIDFunc    func(ctx context.Context, id uuid.UUID) (*model.Department, error)
	ListDepartmentsFunc      func(ctx context.Context) ([]model.Department, error)
	UpdateDepartmentFunc     func(ctx context.Context, department model.Department) error
	DeleteDepartmentFunc     func(ctx context.Context, id uuid.UUID) error
	DepartmentExistsFunc     func(ctx context.Context, id uuid.UUID) (bool, error)
	DepartmentNameExistsFunc func(ctx context.Context, name string, excludeID uuid.UUID) (bool, error)
}

func (m *mockDepartmentRepository) CreateDepartment(ctx context.Context, department model.Department) error {
	if m.CreateDepartmentFunc != nil {
		return m.CreateDepartmentFunc(ctx, department)
	}
	return nil
}

func (m *mockDepartmentRepository) GetDepartmentByID(ctx context.Context, id uuid.UUID) (*model.Department, error) {
	if m.GetDepartmentByIDFunc != nil {
		return m.GetDepartmentByIDFunc(ctx, id)
	}
	return nil, repository.ErrDepartmentNotFound
}

func (m *mockDepartmentRepository) ListDepartments(ctx context.Context) ([]model.Department, error) {
	if m.ListDepartmentsFunc != nil {
		return m.ListDepartmentsFunc(ctx)
	}
	return []model.Department{}, nil
}

func (m *mockDepartmentRepository) UpdateDepartment(ctx context.Context, department model.Department) error {
	if m.UpdateDepartmentFunc != nil {
		return m.UpdateDepartmentFunc(ctx, department)
	}
	return nil
}

func (m *mockDepartmentRepository) DeleteDepartment(ctx context.Context, id uuid.UUID) error {
	if m.DeleteDepartmentFunc != nil {
		return m.DeleteDepartmentFunc(ctx, id)
	}
	return nil
}

func (m *mockDepartmentRepository) DepartmentExists(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.DepartmentExistsFunc != nil {
		return m.DepartmentExistsFunc(ctx, id)
	}
	return true, nil
}

func (m *mockDepartmentRepository) DepartmentNameExists(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	if m.DepartmentNameExistsFunc != nil {
		return m.DepartmentNameExistsFunc(ctx, name, excludeID)
	}
	return false, nil
}

type mockComputerRepository struct {
	CreateComputerFunc         func(ctx context.Context, computer model.Computer) error
	GetComputerByIDFunc        func(ctx context.Context, id uuid.UUID) (*model.Computer, error)
	GetComputerDetailFunc      func(ctx context.Context, id uuid.UUID) (*model.ComputerDetail, error)
	GetComputersPaginatedFunc  func(ctx context.Context, params repository.PaginationParams) (*repository.PaginatedResult, error)
	GetComputersByEmployeeFunc func(ctx context.Context, employeeID uuid.UUID) ([]model.ComputerDetail, error)
	UpdateComputerFunc         func(ctx context.Context, computer model.Computer) error
	UpdateComputerImageFunc    func(ctx context.Context, id uuid.UUID, path string) error
	DeleteComputerFunc         func(ctx context.Context, id uuid.UUID) error
	ComputerExistsFunc         func(ctx context.Context, id uuid.UUID) (bool, error)
	SerialExistsFunc           func(ctx context.Context, serial string, excludeID uuid.UUID) (bool, error)
}

func (m *mockComputerRepository) CreateComputer(ctx context.Context, computer model.Computer) error {
	if m.CreateComputerFunc != nil {
		return m.CreateComputerFunc(ctx, computer)
	}
	return nil
}

func (m *mockComputerRepository) GetComputerByID(ctx context.Context, id uuid.UUID) (*model.Computer, error) {
	if m.GetComputerByIDFunc != nil {
		return m.GetComputerByIDFunc(ctx, id)
	}
	return nil, repository.ErrComputerNotFound
}

func (m *mockComputerRepository) GetComputerDetail(ctx context.Context, id uuid.UUID) (*model.ComputerDetail, error) {
	if m.GetComputerDetailFunc != nil {
		return m.GetComputerDetailFunc(ctx, id)
	}
	return nil, repository.ErrComputerNotFound
}

func (m *mockComputerRepository) GetComputersPaginated(ctx context.Context, params repository.PaginationParams) (*repository.PaginatedResult, error) {
	if m.GetComputersPaginatedFunc != nil {
		return m.GetComputersPaginatedFunc(ctx, params)
	}
	return &repository.PaginatedResult{Items: []model.ComputerDetail{}}, nil
}

func (m *mockComputerRepository) GetComputersByEmployee(ctx context.Context, employeeID uuid.UUID) ([]model.ComputerDetail, error) {
	if m.GetComputersByEmployeeFunc != nil {
		return m.GetComputersByEmployeeFunc(ctx, employeeID)
	}
	return []model.ComputerDetail{}, nil
}

func (m *mockComputerRepository) UpdateComputer(ctx context.Context, computer model.Computer) error {
	if m.UpdateComputerFunc != nil {
		return m.UpdateComputerFunc(ctx, computer)
	}
	return nil
}

func (m *mockComputerRepository) UpdateComputerImage(ctx context.Context, id uuid.UUID, path string) error {
	if m.UpdateComputerImageFunc != nil {
		return m.UpdateComputerImageFunc(ctx, id, path)
	}
	return nil
}

func (m *mockComputerRepository) DeleteComputer(ctx context.Context, id uuid.UUID) error {
	if m.DeleteComputerFunc != nil {
		return m.DeleteComputerFunc(ctx, id)
	}
	return nil
}

func (m *mockComputerRepository) ComputerExists(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.ComputerExistsFunc != nil {
		return m.ComputerExistsFunc(ctx, id)
	}
	return true, nil
}

func (m *mockComputerRepository) SerialExists(ctx context.Context, serial string, excludeID uuid.UUID) (bool, error) {
	if m.SerialExistsFunc != nil {
		return m.SerialExistsFunc(ctx, serial, excludeID)
	}
	return false, nil
}

type mockHistoryRepository struct {
	CreateHistoryEntryFunc   func(ctx context.Context, entry model.HistoryEntry) error
	GetHistoryByComputerFunc func(ctx context.Context, computerID uuid.UUID) ([]model.HistoryView, error)
}

func (m *mockHistoryRepository) CreateHistoryEntry(ctx context.Context, entry model.HistoryEntry) error {
	if m.CreateHistoryEntryFunc != nil {
		return m.CreateHistoryEntryFunc(ctx, entry)
	}
	return nil
}

func (m *mockHistoryRepository) GetHistoryByComputer(ctx context.Context, computerID uuid.UUID) ([]model.HistoryView, error) {
	if m.GetHistoryByComputerFunc != nil {
		return m.GetHistoryByComputerFunc(ctx, computerID)
	}
	return []model.HistoryView{}, nil
}

type mockSummaryRepository struct {
	GetSummaryFunc func(ctx context.Context) (*model.Summary, error)
}

func (m *mockSummaryRepository) GetSummary(ctx context.Context) (*model.Summary, error) {
	if m.GetSummaryFunc != nil {
		return m.GetSummaryFunc(ctx)
	}
	return model.NewSummary(), nil
}

// recordingNotifier captures notifications sent by the dispatcher.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []AccountabilityNotification
	err  error
}

func (r *recordingNotifier) SendAccountabilityNotification(ctx context.Context, n AccountabilityNotification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return r.err
}

func (r *recordingNotifier) all() []AccountabilityNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]AccountabilityNotification(nil), r.sent...)
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// testHasher uses the minimum bcrypt cost to keep tests fast.
func testHasher() *auth.PasswordHasher {
	return auth.NewPasswordHasher(4)
}

func activeEmployee(id uuid.UUID) *model.EmployeeDetail {
	identity := model.Identity{
		ID:     uuid.New(),
		Email:  "a@x.com",
		Name:   "Alice",
		Role:   model.RoleEmployee,
		Status: model.StatusActive,
	}
	e := model.NewEmployeeDetail(model.Employee{
		ID:             id,
		IdentityID:     identity.ID,
		EmployeeNumber: "EMP-001",
		Gender:         "female",
		DepartmentID:   uuid.New(),
	}, identity, "IT")
	return &e
}
