package handler

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jeraldtan21/cts/internal/service"
	"github.com/jeraldtan21/cts/pkg/validation"
)

// DepartmentHandler serves the department registry.
type DepartmentHandler struct {
	Departments DepartmentService
	Logger      *log.Logger

	ErrorHandler   *ErrorHandler
	ResponseHelper *ResponseHelper
}

func NewDepartmentHandler(departments DepartmentService, logger *log.Logger) *DepartmentHandler {
	if logger == nil {
		logger = log.Default()
	}

	return &DepartmentHandler{
		Departments:    departments,
		Logger:         logger,
		ErrorHandler:   NewErrorHandler(logger),
		ResponseHelper: NewResponseHelper(),
	}
}

func (h *DepartmentHandler) CreateDepartmentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	var in service.DepartmentInput
	if err := decodeJSON(ctx, r, validation.SchemaDepartment, &in); err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	department, err := h.Departments.AddDepartment(ctx, in)
	if err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusCreated, "Department created successfully", department)
}

func (h *DepartmentHandler) ListDepartmentsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	departments, err := h.Departments.ListDepartments(ctx)
	if err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "", h.ResponseHelper.CreateListResponseData("departments", departments, len(departments)))
}

func (h *DepartmentHandler) GetDepartmentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, valid := h.ErrorHandler.ParseAndValidateUUID(w, r, mux.Vars(r)["id"])
	if !valid {
		return
	}

	department, err := h.Departments.GetDepartment(ctx, id)
	if err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "", department)
}

func (h *DepartmentHandler) UpdateDepartmentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, valid := h.ErrorHandler.ParseAndValidateUUID(w, r, mux.Vars(r)["id"])
	if !valid {
		return
	}

	var in service.DepartmentInput
	if err := decodeJSON(ctx, r, validation.SchemaDepartment, &in); err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	department, err := h.Departments.UpdateDepartment(ctx, id, in)
	if err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Department updated successfully", department)
}

// DeleteDepartmentHandler removes a department nobody belongs to.
func (h *DepartmentHandler) DeleteDepartmentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, valid := h.ErrorHandler.ParseAndValidateUUID(w, r, mux.Vars(r)["id"])
	if !valid {
		return
	}

	if err := h.Departments.DeleteDepartment(ctx, id); err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Department deleted successfully", map[string]string{"id": id.String()})
}
