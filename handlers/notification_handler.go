package handlers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/upb/petclinic/models"
	"github.com/upb/petclinic/utils"
	"go.uber.org/zap"
)

// NotificationService is what NotificationHandler needs
type NotificationService interface {
	ListForRecipient(ctx context.Context, email string, limit, offset int) ([]*models.Notification, error)
}

// NotificationHandler serves a user's notifications
type NotificationHandler struct {
	notifications NotificationService
	logger        *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, logger: logger}
}

// HandleListForUser handles GET /api/v1/notifications/users/{email}
func (h *NotificationHandler) HandleListForUser(w http.ResponseWriter, r *http.Request) {
	limit, offset := utils.ParsePagination(r)

	list, err := h.notifications.ListForRecipient(r.Context(), EmailParam(r), limit, offset)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if list == nil {
		list = []*models.Notification{}
	}

	_ = utils.WriteOK(w, Page{Items: list, Limit: limit, Offset: offset})
}

// EmailParam returns the unescaped {email} URL parameter. Routes use it as the
// owner of a notification listing. chi matches on the raw path, so a client
// sending user%40example.com would otherwise never match its own subject.
func EmailParam(r *http.Request) string {
	raw := chi.URLParam(r, "email")
	email, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return email
}
