package handler

import (
	"log"
	"net/http"
)

// DashboardHandler serves the admin summary and the hardware catalog.
type DashboardHandler struct {
	Summary SummaryService
	Catalog HardwareCatalog
	Logger  *log.Logger

	ErrorHandler   *ErrorHandler
	ResponseHelper *ResponseHelper
}

func NewDashboardHandler(summary SummaryService, catalog HardwareCatalog, logger *log.Logger) *DashboardHandler {
	if logger == nil {
		logger = log.Default()
	}

	return &DashboardHandler{
		Summary:        summary,
		Catalog:        catalog,
		Logger:         logger,
		ErrorHandler:   NewErrorHandler(logger),
		ResponseHelper: NewResponseHelper(),
	}
}

// SummaryHandler returns the dashboard counts.
func (h *DashboardHandler) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	summary, err := h.Summary.GetSummary(ctx)
	if err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "", summary)
}

// HardwareCatalogHandler returns the score tables per hardware kind.
func (h *DashboardHandler) HardwareCatalogHandler(w http.ResponseWriter, r *http.Request) {
	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "", h.Catalog.All())
}
