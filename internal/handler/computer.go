package handler

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jeraldtan21/cts/internal/repository"
	"github.com/jeraldtan21/cts/internal/service"
	"github.com/jeraldtan21/cts/pkg/validation"
)

// ComputerHandler handles the HTTP requests for computers and their
// accountability history.
type ComputerHandler struct {
	Computers      ComputerService
	History        HistoryService
	MaxUploadBytes int64
	Logger         *log.Logger

	ErrorHandler   *ErrorHandler
	ResponseHelper *ResponseHelper
}

// NewComputerHandler creates a new ComputerHandler with dependencies and helpers
func NewComputerHandler(computers ComputerService, history HistoryService, maxUploadBytes int64, logger *log.Logger) *ComputerHandler {
	if logger == nil {
		logger = log.Default()
	}

	return &ComputerHandler{
		Computers:      computers,
		History:        history,
		MaxUploadBytes: maxUploadBytes,
		Logger:         logger,
		ErrorHandler:   NewErrorHandler(logger),
		ResponseHelper: NewResponseHelper(),
	}
}

// CreateComputerHandler handles the creation of a new computer.
func (h *ComputerHandler) CreateComputerHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	var in service.ComputerInput
	img, err := decodeCreate(ctx, w, r, validation.SchemaComputerCreate, &in, h.MaxUploadBytes)
	if err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	computer, err := h.Computers.AddComputer(ctx, in)
	if err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	if img != nil {
		detail, err := h.Computers.UpdateComputerImage(ctx, computer.ID, *img)
		if err != nil {
			h.Logger.Printf("Computer %s created without image: %v", computer.ID, err)
			h.ErrorHandler.SendSuccessResponse(w, http.StatusCreated, "Computer created successfully; image was not saved", computer)
			return
		}
		computer = detail
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusCreated, "Computer created successfully", computer)
}

// GetAllComputersHandler handles the retrieval of all computers with pagination.
func (h *ComputerHandler) GetAllComputersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	paginationParams := h.ResponseHelper.ParsePaginationParams(r)

	result, err := h.Computers.GetAllComputers(ctx, repository.PaginationParams{
		Offset: paginationParams.Offset,
		Limit:  paginationParams.Limit,
	})
	if err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	paginationMeta := h.ResponseHelper.CalculatePaginationMeta(paginationParams, result.TotalCount)
	responseData := h.ResponseHelper.CreatePaginatedListResponseData("computers", result.Items, paginationMeta)

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "", responseData)
}

// GetComputerHandler handles the retrieval of a single computer by ID.
func (h *ComputerHandler) GetComputerHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, valid := h.ErrorHandler.ParseAndValidateUUID(w, r, mux.Vars(r)["id"])
	if !valid {
		return
	}

	computer, err := h.Computers.GetComputer(ctx, id)
	if err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "", computer)
}

// UpdateComputerHandler applies a partial update to a computer.
func (h *ComputerHandler) UpdateComputerHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, valid := h.ErrorHandler.ParseAndValidateUUID(w, r, mux.Vars(r)["id"])
	if !valid {
		return
	}

	var in service.ComputerUpdate
	if err := decodeJSON(ctx, r, validation.SchemaComputerUpdate, &in); err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	computer, err := h.Computers.UpdateComputer(ctx, id, in)
	if err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Computer updated successfully", computer)
}

// DeleteComputerHandler handles the deletion of a computer.
func (h *ComputerHandler) DeleteComputerHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, valid := h.ErrorHandler.ParseAndValidateUUID(w, r, mux.Vars(r)["id"])
	if !valid {
		return
	}

	if err := h.Computers.DeleteComputer(ctx, id); err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Computer deleted successfully", map[string]string{"id": id.String()})
}

// UpdateComputerImageHandler replaces the computer's photo.
func (h *ComputerHandler) UpdateComputerImageHandler(w http.ResponseWriter, r *http.Request) {
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

	computer, err := h.Computers.UpdateComputerImage(ctx, id, img)
	if err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Computer image updated successfully", computer)
}

// AddHistoryHandler appends a remark to the computer's history.
func (h *ComputerHandler) AddHistoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, valid := h.ErrorHandler.ParseAndValidateUUID(w, r, mux.Vars(r)["id"])
	if !valid {
		return
	}

	var in service.HistoryInput
	if err := decodeJSON(ctx, r, validation.SchemaHistory, &in); err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	entry, err := h.History.AddHistory(ctx, id, in)
	if err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusCreated, "History entry added successfully", entry)
}

// GetHistoryHandler lists the computer's history, oldest first.
func (h *ComputerHandler) GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, valid := h.ErrorHandler.ParseAndValidateUUID(w, r, mux.Vars(r)["id"])
	if !valid {
		return
	}

	entries, err := h.History.GetHistory(ctx, id)
	if err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "", h.ResponseHelper.CreateListResponseData("history", entries, len(entries)))
}
