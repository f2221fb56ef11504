package handler

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"
)

// Handler timeouts.
const (
	DefaultTimeout     = 10 * time.Second
	LongRunningTimeout = 15 * time.Second
)

// SuccessResponse is the envelope of every successful response.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ResponseHelper provides common response utilities and context management
type ResponseHelper struct{}

func NewResponseHelper() *ResponseHelper {
	return &ResponseHelper{}
}

// ContextKey type for context keys to avoid collisions
type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
)

// PaginationParams holds pagination parameters
type PaginationParams struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Offset   int `json:"offset"`
	Limit    int `json:"limit"`
}

// PaginationMeta holds pagination metadata for responses
type PaginationMeta struct {
	Page         int  `json:"page"`
	PageSize     int  `json:"page_size"`
	TotalItems   int  `json:"total_items"`
	TotalPages   int  `json:"total_pages"`
	HasNext      bool `json:"has_next"`
	HasPrevious  bool `json:"has_previous"`
	NextPage     *int `json:"next_page,omitempty"`
	PreviousPage *int `json:"previous_page,omitempty"`
}

// Default pagination constants
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	MinPageSize     = 1
)

// ParsePaginationParams reads page and page_size, falling back to the
// defaults on anything out of range.
func (rh *ResponseHelper) ParsePaginationParams(r *http.Request) PaginationParams {
	query := r.URL.Query()

	page := 1
	if p, err := strconv.Atoi(query.Get("page")); err == nil && p > 0 {
		page = p
	}

	pageSize := DefaultPageSize
	if ps, err := strconv.Atoi(query.Get("page_size")); err == nil && ps >= MinPageSize && ps <= MaxPageSize {
		pageSize = ps
	}

	// Keep (page-1)*pageSize from overflowing into a negative offset.
	if maxPage := math.MaxInt / pageSize; page > maxPage {
		page = maxPage
	}

	return PaginationParams{
		Page:     page,
		PageSize: pageSize,
		Offset:   (page - 1) * pageSize,
		Limit:    pageSize,
	}
}

// CalculatePaginationMeta calculates pagination metadata
func (rh *ResponseHelper) CalculatePaginationMeta(params PaginationParams, totalItems int) PaginationMeta {
	totalPages := (totalItems + params.PageSize - 1) / params.PageSize
	if totalPages == 0 {
		totalPages = 1
	}

	meta := PaginationMeta{
		Page:        params.Page,
		PageSize:    params.PageSize,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		HasNext:     params.Page < totalPages,
		HasPrevious: params.Page > 1,
	}
	if meta.HasNext {
		next := params.Page + 1
		meta.NextPage = &next
	}
	if meta.HasPrevious {
		prev := params.Page - 1
		meta.PreviousPage = &prev
	}
	return meta
}

// CreateRequestContext creates a context with timeout and optional request ID
func (rh *ResponseHelper) CreateRequestContext(r *http.Request, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(r.Context(), timeout)

	if requestID := r.Header.Get("X-Request-ID"); requestID != "" {
		ctx = context.WithValue(ctx, RequestIDKey, requestID)
	}
	return ctx, cancel
}

// CreateListResponseData creates response data for list operations
func (rh *ResponseHelper) CreateListResponseData(key string, items interface{}, count int) map[string]interface{} {
	return map[string]interface{}{
		key:     items,
		"count": count,
	}
}

// CreatePaginatedListResponseData creates response data for paginated list operations
func (rh *ResponseHelper) CreatePaginatedListResponseData(key string, items interface{}, pagination PaginationMeta) map[string]interface{} {
	return map[string]interface{}{
		key:          items,
		"pagination": pagination,
	}
}
