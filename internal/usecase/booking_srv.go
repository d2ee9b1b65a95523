package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"stay-nest/internal/data/entity"
	"stay-nest/internal/data/repository"
	"stay-nest/internal/dto/request"
	"stay-nest/internal/dto/response"
	"stay-nest/internal/notify"
	"stay-nest/pkg/apperror"
	"stay-nest/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const recentBookingsLimit = 10

type BookingService interface {
	// Guest operations
	CreateBooking(ctx context.Context, principal entity.Principal, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	GetMyBookings(ctx context.Context, principal entity.Principal, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	GetRecentBookings(ctx context.Context, principal entity.Principal) ([]response.BookingResponse, error)
	PayBooking(ctx context.Context, principal entity.Principal, bookingID string, req *request.PayBookingRequest) (*response.PaymentResponse, error)

	// Guest or owner
	GetBooking(ctx context.Context, principal entity.Principal, bookingID string) (*response.BookingResponse, error)
	CancelBooking(ctx context.Context, principal entity.Principal, bookingID string) (*response.BookingResponse, error)

	// Owner operations
	UpdateBookingStatus(ctx context.Context, principal entity.Principal, bookingID string, req *request.UpdateBookingStatusRequest) (*response.BookingResponse, error)
	GetPropertyBookings(ctx context.Context, principal entity.Principal, propertyID string) ([]response.BookingResponse, error)

	// Admin
	GetAllBookings(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
}

type bookingService struct {
	repo      *repository.Repository
	publisher notify.Publisher
	log       *zap.Logger
}

func NewBookingService(repo *repository.Repository, publisher notify.Publisher, log *zap.Logger) BookingService {
	return &bookingService{
		repo:      repo,
		publisher: publisher,
		log:       log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, principal entity.Principal, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	// Validate request
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, apperror.Validation("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		return nil, apperror.Validation("invalid property ID format %s", req.PropertyID)
	}

	checkIn, err := utils.ParseDate(req.CheckIn)
	if err != nil {
		return nil, apperror.Validation("invalid check-in date %q", req.CheckIn)
	}
	checkOut, err := utils.ParseDate(req.CheckOut)
	if err != nil {
		return nil, apperror.Validation("invalid check-out date %q", req.CheckOut)
	}
	if !checkIn.Before(checkOut) {
		return nil, apperror.Validation("Check-out date must be after check-in date")
	}

	var (
		booking  *entity.Booking
		property *entity.Property
	)

	// Admission runs under the property row lock so concurrent requests for
	// the same property are checked and inserted one at a time.
	err = s.repo.Tx.WithPropertyLock(ctx, propertyID, func(tx *repository.Repository, locked *entity.Property) error {
		if locked == nil {
			return apperror.NotFound("Property not found")
		}
		property = locked

		if err := checkGuestLimit(property.MaxGuests, req.Guests); err != nil {
			return err
		}

		overlapping, err := tx.Booking.FindOverlapping(ctx, propertyID, checkIn, checkOut)
		if err != nil {
			return fmt.Errorf("find overlapping bookings: %w", err)
		}

		if err := checkAggregateCapacity(property.MaxGuests, req.Guests, overlapping, checkIn, checkOut); err != nil {
			return err
		}

		now := time.Now()
		booking = &entity.Booking{
			BaseNoDelete: entity.BaseNoDelete{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			PropertyID:      propertyID,
			GuestID:         principal.UserID,
			CheckIn:         checkIn,
			CheckOut:        checkOut,
			Guests:          req.Guests,
			TotalPrice:      req.TotalPrice,
			Status:          entity.BookingStatusPending,
			SpecialRequests: req.SpecialRequests,
		}

		return tx.Booking.Create(ctx, booking)
	})
	if err != nil {
		if apperror.KindOf(err) != apperror.KindInternal {
			s.log.Warn("Booking rejected",
				zap.Error(err),
				zap.String("property_id", req.PropertyID),
				zap.String("guest_id", principal.UserID.String()),
				zap.Int("guests", req.Guests),
			)
			return nil, err
		}
		s.log.Error("Failed to create booking", zap.Error(err), zap.String("property_id", req.PropertyID))
		return nil, apperror.Internal("failed to create booking", err)
	}

	s.publisher.Publish(newNotification(
		property.OwnerID, &principal.UserID,
		entity.NotificationBookingRequest,
		"New Booking Request",
		fmt.Sprintf("You have a new booking request for %s", property.Title),
		entity.RelatedBooking, booking.ID,
		entity.PriorityHigh,
	))

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("property_id", propertyID.String()),
		zap.String("guest_id", principal.UserID.String()),
		zap.Int("guests", booking.Guests),
	)

	resp := response.BookingToResponse(booking, property.Title)
	return &resp, nil
}

func (s *bookingService) GetBooking(ctx context.Context, principal entity.Principal, bookingID string) (*response.BookingResponse, error) {
	booking, property, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.GuestID != principal.UserID && !property.IsOwnedBy(principal.UserID) && !principal.IsAdmin() {
		s.log.Warn("Unauthorized booking access",
			zap.String("booking_id", bookingID),
			zap.String("user_id", principal.UserID.String()),
		)
		return nil, apperror.Forbidden("Not authorized to view this booking")
	}

	resp := response.BookingToResponse(booking, property.Title)
	return &resp, nil
}

func (s *bookingService) GetMyBookings(ctx context.Context, principal entity.Principal, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	bookings, err := s.repo.Booking.FindByGuestID(ctx, principal.UserID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get user bookings", zap.Error(err), zap.String("user_id", principal.UserID.String()))
		return nil, apperror.Internal("failed to get bookings", err)
	}

	total, err := s.repo.Booking.CountByGuestID(ctx, principal.UserID)
	if err != nil {
		s.log.Error("Failed to count user bookings", zap.Error(err))
		return nil, apperror.Internal("failed to get bookings", err)
	}

	return response.NewPaginatedResponse(s.toResponses(ctx, bookings), req.Page, req.Limit(), total), nil
}

func (s *bookingService) GetRecentBookings(ctx context.Context, principal entity.Principal) ([]response.BookingResponse, error) {
	bookings, err := s.repo.Booking.FindByGuestID(ctx, principal.UserID, recentBookingsLimit, 0)
	if err != nil {
		s.log.Error("Failed to get recent bookings", zap.Error(err), zap.String("user_id", principal.UserID.String()))
		return nil, apperror.Internal("failed to get recent bookings", err)
	}

	return s.toResponses(ctx, bookings), nil
}

func (s *bookingService) GetPropertyBookings(ctx context.Context, principal entity.Principal, propertyID string) ([]response.BookingResponse, error) {
	propertyUUID, err := uuid.Parse(propertyID)
	if err != nil {
		return nil, apperror.Validation("invalid property ID format %s", propertyID)
	}

	property, err := s.repo.Property.FindByID(ctx, propertyUUID)
	if err != nil {
		s.log.Error("Failed to find property", zap.Error(err), zap.String("property_id", propertyID))
		return nil, apperror.Internal("failed to get property bookings", err)
	}
	if property == nil {
		return nil, apperror.NotFound("Property not found")
	}

	if !property.IsOwnedBy(principal.UserID) {
		return nil, apperror.Forbidden("Not authorized to view these bookings")
	}

	bookings, err := s.repo.Booking.FindByPropertyID(ctx, propertyUUID)
	if err != nil {
		s.log.Error("Failed to get property bookings", zap.Error(err), zap.String("property_id", propertyID))
		return nil, apperror.Internal("failed to get property bookings", err)
	}

	resp := make([]response.BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = response.BookingToResponse(b, property.Title)
	}
	return resp, nil
}

func (s *bookingService) GetAllBookings(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	bookings, err := s.repo.Booking.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get all bookings", zap.Error(err))
		return nil, apperror.Internal("failed to get bookings", err)
	}

	total, err := s.repo.Booking.CountAll(ctx)
	if err != nil {
		s.log.Error("Failed to count bookings", zap.Error(err))
		return nil, apperror.Internal("failed to get bookings", err)
	}

	return response.NewPaginatedResponse(s.toResponses(ctx, bookings), req.Page, req.Limit(), total), nil
}

func (s *bookingService) UpdateBookingStatus(ctx context.Context, principal entity.Principal, bookingID string, req *request.UpdateBookingStatusRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	target, ok := entity.ParseBookingStatus(req.Status)
	if !ok {
		return nil, apperror.Validation("invalid booking status %q", req.Status)
	}

	booking, property, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !property.IsOwnedBy(principal.UserID) {
		s.log.Warn("Non-owner tried to update booking status",
			zap.String("booking_id", bookingID),
			zap.String("user_id", principal.UserID.String()),
		)
		return nil, apperror.Forbidden("Not authorized to update this booking")
	}

	current, _ := entity.ParseBookingStatus(string(booking.Status))
	if current == target {
		resp := response.BookingToResponse(booking, property.Title)
		return &resp, nil
	}

	if !booking.Status.CanTransitionTo(target) {
		return nil, apperror.Validation("Cannot change booking status from %s to %s", booking.Status, target)
	}

	applied, err := s.setStatus(ctx, booking, target)
	if err != nil {
		return nil, err
	}
	if !applied {
		resp := response.BookingToResponse(booking, property.Title)
		return &resp, nil
	}

	notificationType := entity.NotificationBookingConfirmed
	if target == entity.BookingStatusCancelled {
		notificationType = entity.NotificationBookingCancelled
	}

	s.publisher.Publish(newNotification(
		booking.GuestID, &principal.UserID,
		notificationType,
		"Booking Status Updated",
		fmt.Sprintf("Your booking for %s has been %s", property.Title, target),
		entity.RelatedBooking, booking.ID,
		entity.PriorityHigh,
	))

	s.log.Info("Booking status updated",
		zap.String("booking_id", bookingID),
		zap.String("status", string(target)),
		zap.String("owner_id", principal.UserID.String()),
	)

	resp := response.BookingToResponse(booking, property.Title)
	return &resp, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, principal entity.Principal, bookingID string) (*response.BookingResponse, error) {
	booking, property, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	isGuest := booking.GuestID == principal.UserID
	isOwner := property.IsOwnedBy(principal.UserID)
	if !isGuest && !isOwner {
		s.log.Warn("Unauthorized booking cancellation",
			zap.String("booking_id", bookingID),
			zap.String("user_id", principal.UserID.String()),
		)
		return nil, apperror.Forbidden("Not authorized to cancel this booking")
	}

	if booking.Status.IsTerminal() {
		resp := response.BookingToResponse(booking, property.Title)
		return &resp, nil
	}

	applied, err := s.setStatus(ctx, booking, entity.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}
	if !applied {
		resp := response.BookingToResponse(booking, property.Title)
		return &resp, nil
	}

	// Notify the other party.
	recipient := property.OwnerID
	if !isGuest {
		recipient = booking.GuestID
	}
	if recipient != principal.UserID {
		s.publisher.Publish(newNotification(
			recipient, &principal.UserID,
			entity.NotificationBookingCancelled,
			"Booking Cancelled",
			fmt.Sprintf("Booking for %s has been cancelled", property.Title),
			entity.RelatedBooking, booking.ID,
			entity.PriorityMedium,
		))
	}

	s.log.Info("Booking cancelled",
		zap.String("booking_id", bookingID),
		zap.String("cancelled_by", principal.UserID.String()),
		zap.Bool("by_guest", isGuest),
	)

	resp := response.BookingToResponse(booking, property.Title)
	return &resp, nil
}

func (s *bookingService) PayBooking(ctx context.Context, principal entity.Principal, bookingID string, req *request.PayBookingRequest) (*response.PaymentResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Payment validation failed", zap.Any("errors", errs))
		return nil, apperror.Validation("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	booking, property, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.GuestID != principal.UserID {
		return nil, apperror.Forbidden("Not authorized to pay for this booking")
	}

	if booking.Status.IsTerminal() {
		return nil, apperror.Validation("Cannot pay for a cancelled booking")
	}

	if math.Abs(req.Amount-booking.TotalPrice) > 0.005 {
		return nil, apperror.Validation("Payment amount must equal the booking total of %.2f", booking.TotalPrice)
	}

	existing, err := s.repo.Payment.FindByBookingID(ctx, booking.ID)
	if err != nil {
		s.log.Error("Failed to check existing payment", zap.Error(err), zap.String("booking_id", bookingID))
		return nil, apperror.Internal("failed to process payment", err)
	}
	if existing != nil {
		return nil, apperror.Conflict("Booking has already been paid")
	}

	transactionID := "txn_" + uuid.NewString()
	if req.TransactionID != nil && *req.TransactionID != "" {
		transactionID = *req.TransactionID
	}

	now := time.Now()
	payment := &entity.Payment{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingID:     booking.ID,
		PayerID:       principal.UserID,
		Amount:        req.Amount,
		Method:        entity.PaymentMethod(req.Method),
		Status:        entity.PaymentStatusCompleted,
		TransactionID: transactionID,
	}

	if err := s.repo.Payment.Create(ctx, payment); err != nil {
		// a concurrent payment won the unique constraint
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Conflict("Booking has already been paid")
		}
		s.log.Error("Failed to create payment", zap.Error(err), zap.String("booking_id", bookingID))
		return nil, apperror.Internal("failed to process payment", err)
	}

	s.publisher.Publish(newNotification(
		property.OwnerID, &principal.UserID,
		entity.NotificationPaymentReceived,
		"Payment Received",
		fmt.Sprintf("Payment of %.2f received for %s", payment.Amount, property.Title),
		entity.RelatedPayment, payment.ID,
		entity.PriorityMedium,
	))

	s.log.Info("Booking paid",
		zap.String("booking_id", bookingID),
		zap.String("payment_id", payment.ID.String()),
		zap.Float64("amount", payment.Amount),
		zap.String("method", req.Method),
	)

	resp := response.PaymentToResponse(payment)
	return &resp, nil
}

// ==================== HELPER METHODS ====================

// loadBooking fetches a booking and the property it belongs to.
func (s *bookingService) loadBooking(ctx context.Context, bookingID string) (*entity.Booking, *entity.Property, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, nil, apperror.Validation("invalid booking ID format %s", bookingID)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find booking", zap.Error(err), zap.String("booking_id", bookingID))
		return nil, nil, apperror.Internal("failed to get booking", err)
	}
	if booking == nil {
		return nil, nil, apperror.NotFound("Booking not found")
	}

	property, err := s.repo.Property.FindByID(ctx, booking.PropertyID)
	if err != nil {
		s.log.Error("Failed to find booking property", zap.Error(err), zap.String("booking_id", bookingID))
		return nil, nil, apperror.Internal("failed to get booking", err)
	}
	if property == nil {
		return nil, nil, apperror.NotFound("Property not found")
	}

	return booking, property, nil
}

// setStatus moves booking to status only if nobody changed it since it was
// read. When the row has moved on, booking is refreshed and applied is false;
// reaching the requested status concurrently is not an error.
func (s *bookingService) setStatus(ctx context.Context, booking *entity.Booking, status entity.BookingStatus) (applied bool, err error) {
	ok, err := s.repo.Booking.UpdateStatus(ctx, booking.ID, booking.Status, status)
	if err != nil {
		s.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
			zap.String("status", string(status)),
		)
		return false, apperror.Internal("failed to update booking", err)
	}
	if ok {
		booking.Status = status
		booking.UpdatedAt = time.Now()
		return true, nil
	}

	fresh, err := s.repo.Booking.FindByID(ctx, booking.ID)
	if err != nil {
		s.log.Error("Failed to reload booking", zap.Error(err), zap.String("booking_id", booking.ID.String()))
		return false, apperror.Internal("failed to update booking", err)
	}
	if fresh == nil {
		return false, apperror.NotFound("Booking not found")
	}
	*booking = *fresh

	if current, _ := entity.ParseBookingStatus(string(fresh.Status)); current == status {
		return false, nil
	}

	s.log.Warn("Booking status changed concurrently",
		zap.String("booking_id", booking.ID.String()),
		zap.String("current", string(fresh.Status)),
		zap.String("requested", string(status)),
	)
	return false, apperror.Conflict("Booking is now %s and cannot be changed to %s", fresh.Status, status)
}

func (s *bookingService) toResponses(ctx context.Context, bookings []*entity.Booking) []response.BookingResponse {
	titles := make(map[uuid.UUID]string)
	resp := make([]response.BookingResponse, len(bookings))

	for i, b := range bookings {
		title, ok := titles[b.PropertyID]
		if !ok {
			property, err := s.repo.Property.FindByID(ctx, b.PropertyID)
			if err != nil {
				s.log.Warn("Failed to load booking property title", zap.Error(err),
					zap.String("booking_id", b.ID.String()),
					zap.String("property_id", b.PropertyID.String()),
				)
			}
			if property != nil {
				title = property.Title
			}
			titles[b.PropertyID] = title
		}
		resp[i] = response.BookingToResponse(b, title)
	}

	return resp
}
