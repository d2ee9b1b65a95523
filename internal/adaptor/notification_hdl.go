package adaptor

import (
	"net/http"
	"strconv"

	"stay-nest/internal/dto/request"
	"stay-nest/internal/usecase"
	"stay-nest/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	service usecase.NotificationService
	log     *zap.Logger
}

func NewNotificationHandler(service usecase.NotificationService, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		log:     log.With(zap.String("handler", "notification")),
	}
}

// GetNotifications handles GET /api/notifications?unreadOnly=true (protected)
func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get("unreadOnly"))

	notifications, err := h.service.GetNotifications(r.Context(), principal, paginationFromQuery(r, usecase.DefaultNotificationsPerPage), unreadOnly)
	if err != nil {
		handleServiceError(w, h.log, err, "get notifications")
		return
	}

	utils.ResponseSuccess(w, "success", notifications)
}

// MarkAsRead handles PATCH /api/notifications/{id}/read (protected)
func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	if err := h.service.MarkAsRead(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "mark notification read")
		return
	}

	utils.ResponseSuccess(w, "Notification marked as read", nil)
}

// MarkAllAsRead handles PATCH /api/notifications/read-all (protected)
func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	updated, err := h.service.MarkAllAsRead(r.Context(), principal)
	if err != nil {
		handleServiceError(w, h.log, err, "mark all notifications read")
		return
	}

	utils.ResponseSuccess(w, "All notifications marked as read", map[string]int64{"updated": updated})
}

// DeleteNotification handles DELETE /api/notifications/{id} (protected)
func (h *NotificationHandler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteNotification(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete notification")
		return
	}

	utils.ResponseSuccess(w, "Notification deleted", nil)
}

// GetPreferences handles GET /api/notifications/preferences (protected)
func (h *NotificationHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	preferences, err := h.service.GetPreferences(r.Context(), principal)
	if err != nil {
		handleServiceError(w, h.log, err, "get notification preferences")
		return
	}

	utils.ResponseSuccess(w, "success", preferences)
}

// UpdatePreferences handles PATCH /api/notifications/preferences (protected)
func (h *NotificationHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req request.UpdatePreferencesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	preferences, err := h.service.UpdatePreferences(r.Context(), principal, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update notification preferences")
		return
	}

	utils.ResponseSuccess(w, "Preferences updated", preferences)
}
