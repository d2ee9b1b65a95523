package wire

import (
	"stay-nest/internal/adaptor"
	"stay-nest/internal/data/repository"
	"stay-nest/pkg/middleware"
	"stay-nest/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireNotification(
	r chi.Router,
	notificationHandler *adaptor.NotificationHandler,
	wsHandler *adaptor.WSHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	auth := middleware.Auth(repo.Session, config.JWT.Secret, log)

	r.With(auth).Route("/api/notifications", func(r chi.Router) {
		r.Get("/", notificationHandler.GetNotifications)
		r.Patch("/read-all", notificationHandler.MarkAllAsRead)
		r.Get("/preferences", notificationHandler.GetPreferences)
		r.Patch("/preferences", notificationHandler.UpdatePreferences)
		r.Patch("/{id}/read", notificationHandler.MarkAsRead)
		r.Delete("/{id}", notificationHandler.DeleteNotification)
	})

	// GET /api/ws?token=... - browsers cannot set headers on the upgrade request
	r.With(auth).Get("/api/ws", wsHandler.Connect)
}
