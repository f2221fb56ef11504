package handler

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jeraldtan21/cts/internal/middleware"
	"github.com/jeraldtan21/cts/internal/service"
	"github.com/jeraldtan21/cts/pkg/errors"
	"github.com/jeraldtan21/cts/pkg/validation"
)

type resetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

// EmployeeHandler serves the employee directory.
type EmployeeHandler struct {
	Employees      EmployeeService
	Computers      ComputerService
	Auth           AuthService
	MaxUploadBytes int64
	Logger         *log.Logger

	ErrorHandler   *ErrorHandler
	ResponseHelper *ResponseHelper
}

func NewEmployeeHandler(employees EmployeeService, computers ComputerService, auth AuthService, maxUploadBytes int64, logger *log.Logger) *EmployeeHandler {
	if logger == nil {
		logger = log.Default()
	}

	return &EmployeeHandler{
		Employees:      employees,
		Computers:      computers,
		Auth:           auth,
		MaxUploadBytes: maxUploadBytes,
		Logger:         logger,
		ErrorHandler:   NewErrorHandler(logger),
		ResponseHelper: NewResponseHelper(),
	}
}

// CreateEmployeeHandler registers an employee together with its identity.
func (h *EmployeeHandler) CreateEmployeeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	var in service.EmployeeInput
	img, err := decodeCreate(ctx, w, r, validation.SchemaEmployeeCreate, &in, h.MaxUploadBytes)
	if err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	employee, err := h.Employees.AddEmployee(ctx, in)
	if err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	if img != nil {
		identity, err := h.Employees.UpdateProfileImage(ctx, employee.ID, *img)
		if err != nil {
			h.Logger.Printf("Employee %s created without profile image: %v", employee.ID, err)
			h.ErrorHandler.SendSuccessResponse(w, http.StatusCreated, "Employee created successfully; profile image was not saved", employee)
			return
		}
		employee.Identity = *identity
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusCreated, "Employee created successfully", employee)
}

func (h *EmployeeHandler) ListEmployeesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	employees, err := h.Employees.ListEmployees(ctx)
	if err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "", h.ResponseHelper.CreateListResponseData("employees", employees, len(employees)))
}

// ListActiveEmployeesHandler lists employees whose identity is active.
func (h *EmployeeHandler) ListActiveEmployeesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	employees, err := h.Employees.ListActiveEmployees(ctx)
	if err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "", h.ResponseHelper.CreateListResponseData("employees", employees, len(employees)))
}

func (h *EmployeeHandler) GetEmployeeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, valid := h.ErrorHandler.ParseAndValidateUUID(w, r, mux.Vars(r)["id"])
	if !valid {
		return
	}

	employee, err := h.Employees.GetEmployee(ctx, id)
	if err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "", employee)
}

// UpdateEmployeeHandler replaces the employee and identity fields.
func (h *EmployeeHandler) UpdateEmployeeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, valid := h.ErrorHandler.ParseAndValidateUUID(w, r, mux.Vars(r)["id"])
	if !valid {
		return
	}

	var in service.EmployeeInput
	if err := decodeJSON(ctx, r, validation.SchemaEmployeeUpdate, &in); err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	employee, err := h.Employees.UpdateEmployee(ctx, id, in)
	if err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Employee updated successfully", employee)
}

// UpdateEmployeeImageHandler replaces the profile image of the employee's
// identity.
func (h *EmployeeHandler) UpdateEmployeeImageHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	id, valid := h.ErrorHandler.ParseAndValidateUUID(w, r, mux.Vars(r)["id"])
	if !valid {
		return
	}

	img, err := readImage(w, r, h.MaxUploadBytes)
	if err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	identity, err := h.Employees.UpdateProfileImage(ctx, id, img)
	if err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Profile image updated successfully", identity)
}

// ResetPasswordHandler sets a new password for the employee without the
// old one.
func (h *EmployeeHandler) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	caller, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		h.ErrorHandler.SendError(w, r, errors.UnauthorizedError("authentication required"))
		return
	}

	id, valid := h.ErrorHandler.ParseAndValidateUUID(w, r, mux.Vars(r)["id"])
	if !valid {
		return
	}

	var req resetPasswordRequest
	if err := decodeJSON(ctx, r, validation.SchemaResetPassword, &req); err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	if err := h.Auth.ResetPassword(ctx, *caller, id, req.NewPassword); err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Password reset successfully", nil)
}

// GetEmployeeComputersHandler lists the computers the employee is
// accountable for.
func (h *EmployeeHandler) GetEmployeeComputersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, valid := h.ErrorHandler.ParseAndValidateUUID(w, r, mux.Vars(r)["id"])
	if !valid {
		return
	}

	computers, err := h.Computers.GetByAccountability(ctx, id)
	if err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "", h.ResponseHelper.CreateListResponseData("computers", computers, len(computers)))
}
