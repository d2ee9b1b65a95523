package adaptor

import (
	"net/http"

	"stay-nest/internal/dto/request"
	"stay-nest/internal/usecase"
	"stay-nest/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// CreateBooking handles POST /api/bookings (protected)
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req request.CreateBookingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	booking, err := h.service.CreateBooking(r.Context(), principal, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create booking")
		return
	}

	utils.ResponseCreated(w, "Booking created", booking)
}

// GetMyBookings handles GET /api/bookings/my-bookings (protected)
func (h *BookingHandler) GetMyBookings(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	bookings, err := h.service.GetMyBookings(r.Context(), principal, paginationFromQuery(r, utils.DefaultPerPage))
	if err != nil {
		handleServiceError(w, h.log, err, "get my bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// GetRecentBookings handles GET /api/bookings/recent (protected)
func (h *BookingHandler) GetRecentBookings(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	bookings, err := h.service.GetRecentBookings(r.Context(), principal)
	if err != nil {
		handleServiceError(w, h.log, err, "get recent bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// GetBooking handles GET /api/bookings/{id} (guest or owner)
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	booking, err := h.service.GetBooking(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// GetPropertyBookings handles GET /api/bookings/property/{propertyId} (owner)
func (h *BookingHandler) GetPropertyBookings(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	bookings, err := h.service.GetPropertyBookings(r.Context(), principal, chi.URLParam(r, "propertyId"))
	if err != nil {
		handleServiceError(w, h.log, err, "get property bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// UpdateBookingStatus handles PATCH /api/bookings/{id}/status (owner)
func (h *BookingHandler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req request.UpdateBookingStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	booking, err := h.service.UpdateBookingStatus(r.Context(), principal, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update booking status")
		return
	}

	utils.ResponseSuccess(w, "Booking status updated", booking)
}

// CancelBooking handles DELETE /api/bookings/{id} (guest or owner)
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	booking, err := h.service.CancelBooking(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "cancel booking")
		return
	}

	utils.ResponseSuccess(w, "Booking cancelled", booking)
}

// PayBooking handles POST /api/bookings/{id}/pay (guest)
func (h *BookingHandler) PayBooking(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req request.PayBookingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	payment, err := h.service.PayBooking(r.Context(), principal, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "pay booking")
		return
	}

	utils.ResponseSuccess(w, "Payment successful", payment)
}

// ==================== ADMIN METHODS ====================

// GetAllBookings handles GET /api/bookings (admin only)
func (h *BookingHandler) GetAllBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.service.GetAllBookings(r.Context(), paginationFromQuery(r, utils.DefaultPerPage))
	if err != nil {
		handleServiceError(w, h.log, err, "get all bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}
