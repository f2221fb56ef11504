package handler

import (
	"log"
	"net/http"

	"github.com/jeraldtan21/cts/internal/middleware"
	"github.com/jeraldtan21/cts/internal/model"
	"github.com/jeraldtan21/cts/pkg/errors"
)

// ProfileHandler serves the caller's own records under /me.
type ProfileHandler struct {
	Employees      EmployeeService
	Computers      ComputerService
	MaxUploadBytes int64
	Logger         *log.Logger

	ErrorHandler   *ErrorHandler
	ResponseHelper *ResponseHelper
}

func NewProfileHandler(employees EmployeeService, computers ComputerService, maxUploadBytes int64, logger *log.Logger) *ProfileHandler {
	if logger == nil {
		logger = log.Default()
	}

	return &ProfileHandler{
		Employees:      employees,
		Computers:      computers,
		MaxUploadBytes: maxUploadBytes,
		Logger:         logger,
		ErrorHandler:   NewErrorHandler(logger),
		ResponseHelper: NewResponseHelper(),
	}
}

func (h *ProfileHandler) caller(w http.ResponseWriter, r *http.Request) (*model.Identity, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		h.ErrorHandler.SendError(w, r, errors.UnauthorizedError("authentication required"))
	}
	return identity, ok
}

// GetProfileHandler returns the employee record linked to the caller.
func (h *ProfileHandler) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	identity, ok := h.caller(w, r)
	if !ok {
		return
	}

	profile, err := h.Employees.GetMyProfile(ctx, identity.ID)
	if err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "", profile)
}

// GetMyComputersHandler lists the computers the caller is accountable for.
func (h *ProfileHandler) GetMyComputersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	identity, ok := h.caller(w, r)
	if !ok {
		return
	}

	computers, err := h.Computers.GetMyComputers(ctx, identity.ID)
	if err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "", h.ResponseHelper.CreateListResponseData("computers", computers, len(computers)))
}

// UpdateMyImageHandler replaces the caller's profile image.
func (h *ProfileHandler) UpdateMyImageHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	identity, ok := h.caller(w, r)
	if !ok {
		return
	}

	img, err := readImage(w, r, h.MaxUploadBytes)
	if err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	updated, err := h.Employees.UpdateIdentityImage(ctx, identity.ID, img)
	if err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Profile image updated successfully", updated)
}
