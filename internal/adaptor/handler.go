package adaptor

import (
	"stay-nest/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Property     *PropertyHandler
	Booking      *BookingHandler
	Review       *ReviewHandler
	Notification *NotificationHandler
	WS           *WSHandler
}

func NewHandler(service *usecase.Service, hub WSServer, log *zap.Logger) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(service.Auth, log),
		User:         NewUserHandler(service.User, service.Property, log),
		Property:     NewPropertyHandler(service.Property, log),
		Booking:      NewBookingHandler(service.Booking, log),
		Review:       NewReviewHandler(service.Review, log),
		Notification: NewNotificationHandler(service.Notification, log),
		WS:           NewWSHandler(hub, log),
	}
}
