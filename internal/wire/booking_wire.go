package wire

import (
	"stay-nest/internal/adaptor"
	"stay-nest/internal/data/repository"
	"stay-nest/pkg/middleware"
	"stay-nest/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// Every booking route requires authentication
	r.Route("/api/bookings", func(r chi.Router) {
		r.Use(middleware.Auth(repo.Session, config.JWT.Secret, log))

		// POST /api/bookings - Request a stay (admission checks run here)
		r.Post("/", bookingHandler.CreateBooking)

		// Read paths scoped to the caller
		r.Get("/my-bookings", bookingHandler.GetMyBookings)
		r.Get("/recent", bookingHandler.GetRecentBookings)
		r.Get("/property/{propertyId}", bookingHandler.GetPropertyBookings)
		r.Get("/{id}", bookingHandler.GetBooking)

		// Lifecycle
		r.Patch("/{id}/status", bookingHandler.UpdateBookingStatus) // owner confirms or rejects
		r.Delete("/{id}", bookingHandler.CancelBooking)             // guest or owner cancels
		r.Post("/{id}/pay", bookingHandler.PayBooking)

		// ==================== ADMIN ROUTES ====================
		r.With(middleware.Admin(repo.User, log)).Get("/", bookingHandler.GetAllBookings)
	})
}
