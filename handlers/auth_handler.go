package handlers

import (
	"context"
	"net/http"

	"github.com/upb/petclinic/services"
	"github.com/upb/petclinic/utils"
	"go.uber.org/zap"
)

// Authenticator is the login and signup surface of the auth service
type Authenticator interface {
	Login(ctx context.Context, req services.LoginRequest) (*services.TokenResponse, error)
	Signup(ctx context.Context, req services.SignupRequest) (*services.TokenResponse, error)
}

// AuthHandler serves the credential endpoints
type AuthHandler struct {
	auth   Authenticator
	logger *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth Authenticator, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// HandleLogin handles POST /api/v1/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	resp, err := h.auth.Login(r.Context(), req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteJSON(w, http.StatusOK, resp)
}

// HandleSignup handles POST /api/v1/auth/signup
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req services.SignupRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	resp, err := h.auth.Signup(r.Context(), req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteJSON(w, http.StatusCreated, resp)
}
