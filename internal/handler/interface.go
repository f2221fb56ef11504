package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/jeraldtan21/cts/internal/catalog"
	"github.com/jeraldtan21/cts/internal/model"
	"github.com/jeraldtan21/cts/internal/repository"
	"github.com/jeraldtan21/cts/internal/service"
	"github.com/jeraldtan21/cts/internal/storage"
)

// Services consumed by the handlers. The concrete implementations live in
// internal/service.

type AuthService interface {
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	ChangePassword(ctx context.Context, identityID uuid.UUID, oldPassword, newPassword string) error
	ResetPassword(ctx context.Context, caller model.Identity, employeeID uuid.UUID, newPassword string) error
}

type EmployeeService interface {
	AddEmployee(ctx context.Context, in service.EmployeeInput) (*model.EmployeeDetail, error)
	UpdateEmployee(ctx context.Context, id uuid.UUID, in service.EmployeeInput) (*model.EmployeeDetail, error)
	GetEmployee(ctx context.Context, id uuid.UUID) (*model.EmployeeDetail, error)
	ListEmployees(ctx context.Context) ([]model.EmployeeDetail, error)
	ListActiveEmployees(ctx context.Context) ([]model.EmployeeDetail, error)
	GetMyProfile(ctx context.Context, identityID uuid.UUID) (*model.EmployeeDetail, error)
	UpdateProfileImage(ctx context.Context, employeeID uuid.UUID, img storage.Image) (*model.Identity, error)
	UpdateIdentityImage(ctx context.Context, identityID uuid.UUID, img storage.Image) (*model.Identity, error)
}

type DepartmentService interface {
	AddDepartment(ctx context.Context, in service.DepartmentInput) (*model.Department, error)
	ListDepartments(ctx context.Context) ([]model.Department, error)
	GetDepartment(ctx context.Context, id uuid.UUID) (*model.Department, error)
	UpdateDepartment(ctx context.Context, id uuid.UUID, in service.DepartmentInput) (*model.Department, error)
	DeleteDepartment(ctx context.Context, id uuid.UUID) error
}

type ComputerService interface {
	AddComputer(ctx context.Context, in service.ComputerInput) (*model.ComputerDetail, error)
	UpdateComputer(ctx context.Context, id uuid.UUID, in service.ComputerUpdate) (*model.ComputerDetail, error)
	GetComputer(ctx context.Context, id uuid.UUID) (*model.ComputerDetail, error)
	GetAllComputers(ctx context.Context, params repository.PaginationParams) (*repository.PaginatedResult, error)
	GetByAccountability(ctx context.Context, employeeID uuid.UUID) ([]model.ComputerDetail, error)
	GetMyComputers(ctx context.Context, identityID uuid.UUID) ([]model.ComputerDetail, error)
	DeleteComputer(ctx context.Context, id uuid.UUID) error
	UpdateComputerImage(ctx context.Context, id uuid.UUID, img storage.Image) (*model.ComputerDetail, error)
}

type HistoryService interface {
	AddHistory(ctx context.Context, computerID uuid.UUID, in service.HistoryInput) (*model.HistoryView, error)
	GetHistory(ctx context.Context, computerID uuid.UUID) ([]model.HistoryView, error)
}

type SummaryService interface {
	GetSummary(ctx context.Context) (*model.Summary, error)
}

// HardwareCatalog lists the known hardware descriptors and their scores.
type HardwareCatalog interface {
	All() map[catalog.Kind][]catalog.Entry
}

// ComputerHandlerInterface defines the contract for computer HTTP handlers.
type ComputerHandlerInterface interface {
	CreateComputerHandler(w http.ResponseWriter, r *http.Request)
	GetAllComputersHandler(w http.ResponseWriter, r *http.Request)
	GetComputerHandler(w http.ResponseWriter, r *http.Request)
	UpdateComputerHandler(w http.ResponseWriter, r *http.Request)
	DeleteComputerHandler(w http.ResponseWriter, r *http.Request)
	UpdateComputerImageHandler(w http.ResponseWriter, r *http.Request)

	AddHistoryHandler(w http.ResponseWriter, r *http.Request)
	GetHistoryHandler(w http.ResponseWriter, r *http.Request)
}

// Compile-time checks.
var (
	_ ComputerHandlerInterface = (*ComputerHandler)(nil)

	_ AuthService       = (*service.AuthService)(nil)
	_ EmployeeService   = (*service.EmployeeService)(nil)
	_ DepartmentService = (*service.DepartmentService)(nil)
	_ ComputerService   = (*service.ComputerService)(nil)
	_ HistoryService    = (*service.HistoryService)(nil)
	_ SummaryService    = (*service.SummaryService)(nil)
	_ HardwareCatalog   = (*catalog.Catalog)(nil)
)
