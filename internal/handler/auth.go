package handler

import (
	"log"
	"net/http"

	"github.com/jeraldtan21/cts/internal/middleware"
	"github.com/jeraldtan21/cts/pkg/errors"
	"github.com/jeraldtan21/cts/pkg/validation"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// AuthHandler serves sign-in and password changes.
type AuthHandler struct {
	Auth   AuthService
	Logger *log.Logger

	ErrorHandler   *ErrorHandler
	ResponseHelper *ResponseHelper
}

func NewAuthHandler(auth AuthService, logger *log.Logger) *AuthHandler {
	if logger == nil {
		logger = log.Default()
	}

	return &AuthHandler{
		Auth:           auth,
		Logger:         logger,
		ErrorHandler:   NewErrorHandler(logger),
		ResponseHelper: NewResponseHelper(),
	}
}

// LoginHandler exchanges an email and password for a signed token.
func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	var req loginRequest
	if err := decodeJSON(ctx, r, validation.SchemaLogin, &req); err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	result, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Login successful", result)
}

// VerifyHandler returns the identity the token resolved to.
func (h *AuthHandler) VerifyHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		h.ErrorHandler.SendError(w, r, errors.UnauthorizedError("authentication required"))
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Token is valid", identity)
}

// ChangePasswordHandler changes the caller's own password.
func (h *AuthHandler) ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		h.ErrorHandler.SendError(w, r, errors.UnauthorizedError("authentication required"))
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(ctx, r, validation.SchemaChangePassword, &req); err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	if err := h.Auth.ChangePassword(ctx, identity.ID, req.OldPassword, req.NewPassword); err != nil {
		h.ErrorHandler.SendError(w, r, err)
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Password changed successfully", nil)
}
