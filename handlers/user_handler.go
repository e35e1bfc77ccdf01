package handlers

import (
	"context"
	"net/http"

	"github.com/upb/petclinic/auth"
	"github.com/upb/petclinic/models"
	"github.com/upb/petclinic/utils"
	"go.uber.org/zap"
)

// UserService is what UserHandler needs from the user service
type UserService interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
}

// UserHandler handles account HTTP requests
type UserHandler struct {
	users  UserService
	logger *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleMe handles GET /api/v1/users/me
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())
	if !ac.Authenticated() {
		_ = utils.WriteAccessDenied(w)
		return
	}

	user, err := h.users.GetByEmail(r.Context(), ac.Subject())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, user)
}

// HandleList handles GET /api/v1/users
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, offset := utils.ParsePagination(r)

	users, err := h.users.List(r.Context(), limit, offset)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if users == nil {
		users = []*models.User{}
	}

	_ = utils.WriteOK(w, Page{Items: users, Limit: limit, Offset: offset})
}
