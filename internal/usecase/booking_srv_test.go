package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"stay-nest/internal/data/entity"
	"stay-nest/internal/data/repository"
	"stay-nest/internal/dto/request"
	"stay-nest/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type bookingFixture struct {
	store    *memStore
	pub      *recordingPublisher
	service  BookingService
	owner    entity.Principal
	guest    entity.Principal
	property *entity.Property
}

func newBookingFixture(t *testing.T, maxGuests int) *bookingFixture {
	t.Helper()

	store := newMemStore()
	pub := &recordingPublisher{}

	owner := entity.Principal{UserID: uuid.New(), Role: entity.RoleUser}
	guest := entity.Principal{UserID: uuid.New(), Role: entity.RoleUser}

	property := &entity.Property{
		Base:      entity.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		OwnerID:   owner.UserID,
		Title:     "Sea View Studio",
		MaxGuests: maxGuests,
		Status:    entity.PropertyStatusAvailable,
	}
	store.properties[property.ID] = property

	return &bookingFixture{
		store:    store,
		pub:      pub,
		service:  NewBookingService(store.repository(), pub, zap.NewNop()),
		owner:    owner,
		guest:    guest,
		property: property,
	}
}

func (f *bookingFixture) request(checkIn, checkOut string, guests int) *request.CreateBookingRequest {
	return &request.CreateBookingRequest{
		PropertyID: f.property.ID.String(),
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     guests,
		TotalPrice: 400,
	}
}

func TestCreateBookingAcceptsWhenPropertyIsFree(t *testing.T) {
	f := newBookingFixture(t, 4)

	booking, err := f.service.CreateBooking(context.Background(), f.guest, f.request("2024-06-01", "2024-06-05", 4))
	require.NoError(t, err)

	assert.Equal(t, entity.BookingStatusPending, booking.Status)
	assert.Equal(t, f.guest.UserID.String(), booking.GuestID)
	assert.Equal(t, 4, booking.Nights)

	published := f.pub.published()
	require.Len(t, published, 1)
	assert.Equal(t, entity.NotificationBookingRequest, published[0].Type)
	assert.Equal(t, f.owner.UserID, published[0].RecipientID)
	require.NotNil(t, published[0].RelatedID)
	assert.Equal(t, booking.ID, published[0].RelatedID.String())
}

func TestCreateBookingRejectsWhenOverlappingDemandExceedsCapacity(t *testing.T) {
	f := newBookingFixture(t, 4)
	ctx := context.Background()

	_, err := f.service.CreateBooking(ctx, f.guest, f.request("2024-06-01", "2024-06-05", 4))
	require.NoError(t, err)

	other := entity.Principal{UserID: uuid.New(), Role: entity.RoleUser}
	_, err = f.service.CreateBooking(ctx, other, f.request("2024-06-01", "2024-06-05", 1))
	require.Error(t, err)
	assert.Equal(t, apperror.KindInsufficientCapacity, apperror.KindOf(err))
	assert.Contains(t, apperror.Message(err), "4")

	assert.Len(t, f.pub.published(), 1, "rejected request must not notify")
	assert.Len(t, f.store.bookings, 1)
}

func TestCreateBookingRejectsGuestsAboveMaximum(t *testing.T) {
	f := newBookingFixture(t, 4)

	_, err := f.service.CreateBooking(context.Background(), f.guest, f.request("2024-06-01", "2024-06-05", 5))
	require.Error(t, err)
	assert.Equal(t, apperror.KindCapacityExceeded, apperror.KindOf(err))
	assert.Equal(t, "This property can only accommodate up to 4 guests", apperror.Message(err))
	assert.Empty(t, f.pub.published())
	assert.Empty(t, f.store.bookings)
}

func TestCreateBookingSharesCapacityAcrossPartialOverlap(t *testing.T) {
	f := newBookingFixture(t, 4)
	ctx := context.Background()

	_, err := f.service.CreateBooking(ctx, f.guest, f.request("2024-06-01", "2024-06-05", 2))
	require.NoError(t, err)

	other := entity.Principal{UserID: uuid.New(), Role: entity.RoleUser}
	booking, err := f.service.CreateBooking(ctx, other, f.request("2024-06-04", "2024-06-08", 2))
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusPending, booking.Status)

	// A third guest on the overlapping night no longer fits.
	_, err = f.service.CreateBooking(ctx, other, f.request("2024-06-04", "2024-06-05", 1))
	assert.Equal(t, apperror.KindInsufficientCapacity, apperror.KindOf(err))
}

func TestCreateBookingAllowsBackToBackStays(t *testing.T) {
	f := newBookingFixture(t, 4)
	ctx := context.Background()

	_, err := f.service.CreateBooking(ctx, f.guest, f.request("2024-06-01", "2024-06-05", 4))
	require.NoError(t, err)

	_, err = f.service.CreateBooking(ctx, f.guest, f.request("2024-06-05", "2024-06-09", 4))
	assert.NoError(t, err)
}

func TestCreateBookingValidatesInput(t *testing.T) {
	f := newBookingFixture(t, 4)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *request.CreateBookingRequest
	}{
		{"check-out before check-in", f.request("2024-06-05", "2024-06-01", 1)},
		{"same day", f.request("2024-06-05", "2024-06-05", 1)},
		{"bad date", f.request("June 1st", "2024-06-05", 1)},
		{"no guests", f.request("2024-06-01", "2024-06-05", 0)},
		{"bad property id", &request.CreateBookingRequest{PropertyID: "nope", CheckIn: "2024-06-01", CheckOut: "2024-06-02", Guests: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.CreateBooking(ctx, f.guest, tt.req)
			require.Error(t, err)
			assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
		})
	}
	assert.Empty(t, f.store.bookings)
}

func TestCreateBookingUnknownProperty(t *testing.T) {
	f := newBookingFixture(t, 4)
	req := f.request("2024-06-01", "2024-06-05", 1)
	req.PropertyID = uuid.NewString()

	_, err := f.service.CreateBooking(context.Background(), f.guest, req)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestCreateBookingSerializesConcurrentRequests(t *testing.T) {
	f := newBookingFixture(t, 4)
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			guest := entity.Principal{UserID: uuid.New(), Role: entity.RoleUser}
			if _, err := f.service.CreateBooking(ctx, guest, f.request("2024-06-01", "2024-06-05", 1)); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 4, accepted)
	assert.Len(t, f.pub.published(), 4)
}

func TestUpdateBookingStatusRequiresOwner(t *testing.T) {
	f := newBookingFixture(t, 4)
	ctx := context.Background()

	booking, err := f.service.CreateBooking(ctx, f.guest, f.request("2024-06-01", "2024-06-05", 2))
	require.NoError(t, err)

	stranger := entity.Principal{UserID: uuid.New(), Role: entity.RoleUser}
	for _, actor := range []entity.Principal{stranger, f.guest} {
		_, err = f.service.UpdateBookingStatus(ctx, actor, booking.ID, &request.UpdateBookingStatusRequest{Status: "confirmed"})
		require.Error(t, err)
		assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
		assert.NotContains(t, apperror.Message(err), booking.ID)
	}

	assert.Equal(t, entity.BookingStatusPending, f.store.bookings[uuid.MustParse(booking.ID)].Status)
}

func TestUpdateBookingStatusConfirmNotifiesGuest(t *testing.T) {
	f := newBookingFixture(t, 4)
	ctx := context.Background()

	booking, err := f.service.CreateBooking(ctx, f.guest, f.request("2024-06-01", "2024-06-05", 2))
	require.NoError(t, err)

	// approved is accepted as a spelling of confirmed
	updated, err := f.service.UpdateBookingStatus(ctx, f.owner, booking.ID, &request.UpdateBookingStatusRequest{Status: "approved"})
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusConfirmed, updated.Status)

	published := f.pub.published()
	require.Len(t, published, 2)
	assert.Equal(t, entity.NotificationBookingConfirmed, published[1].Type)
	assert.Equal(t, f.guest.UserID, published[1].RecipientID)

	_, err = f.service.UpdateBookingStatus(ctx, f.owner, booking.ID, &request.UpdateBookingStatusRequest{Status: "pending"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestUpdateBookingStatusUnknownBooking(t *testing.T) {
	f := newBookingFixture(t, 4)

	_, err := f.service.UpdateBookingStatus(context.Background(), f.owner, uuid.NewString(), &request.UpdateBookingStatusRequest{Status: "confirmed"})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestCancelBookingReleasesCapacity(t *testing.T) {
	f := newBookingFixture(t, 4)
	ctx := context.Background()
	req := f.request("2024-06-01", "2024-06-05", 4)

	booking, err := f.service.CreateBooking(ctx, f.guest, req)
	require.NoError(t, err)

	cancelled, err := f.service.CancelBooking(ctx, f.guest, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusCancelled, cancelled.Status)

	published := f.pub.published()
	require.Len(t, published, 2)
	assert.Equal(t, entity.NotificationBookingCancelled, published[1].Type)
	assert.Equal(t, f.owner.UserID, published[1].RecipientID)

	_, err = f.service.CreateBooking(ctx, f.guest, req)
	assert.NoError(t, err)
}

func TestCancelBookingByOwnerNotifiesGuest(t *testing.T) {
	f := newBookingFixture(t, 4)
	ctx := context.Background()

	booking, err := f.service.CreateBooking(ctx, f.guest, f.request("2024-06-01", "2024-06-05", 2))
	require.NoError(t, err)

	_, err = f.service.CancelBooking(ctx, f.owner, booking.ID)
	require.NoError(t, err)

	published := f.pub.published()
	require.Len(t, published, 2)
	assert.Equal(t, f.guest.UserID, published[1].RecipientID)

	// Cancelling again is a no-op.
	again, err := f.service.CancelBooking(ctx, f.guest, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusCancelled, again.Status)
	assert.Len(t, f.pub.published(), 2)
}

// interleavedBookingRepo runs between once after the first FindByID, which
// puts other writes between a service's read and its status update.
type interleavedBookingRepo struct {
	repository.BookingRepository
	once    sync.Once
	between func()
}

func (r *interleavedBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	booking, err := r.BookingRepository.FindByID(ctx, id)
	r.once.Do(r.between)
	return booking, err
}

func (f *bookingFixture) interleavedService(between func()) BookingService {
	repo := f.store.repository()
	repo.Booking = &interleavedBookingRepo{BookingRepository: repo.Booking, between: between}
	return NewBookingService(repo, f.pub, zap.NewNop())
}

func TestConfirmCannotReviveBookingCancelledMeanwhile(t *testing.T) {
	f := newBookingFixture(t, 4)
	ctx := context.Background()
	req := f.request("2024-06-01", "2024-06-05", 4)

	booking, err := f.service.CreateBooking(ctx, f.guest, req)
	require.NoError(t, err)

	other := entity.Principal{UserID: uuid.New(), Role: entity.RoleUser}
	var rebooked string
	confirming := f.interleavedService(func() {
		_, err := f.service.CancelBooking(ctx, f.guest, booking.ID)
		require.NoError(t, err)
		resp, err := f.service.CreateBooking(ctx, other, req)
		require.NoError(t, err)
		rebooked = resp.ID
	})

	_, err = confirming.UpdateBookingStatus(ctx, f.owner, booking.ID, &request.UpdateBookingStatusRequest{Status: "confirmed"})
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	assert.Equal(t, entity.BookingStatusCancelled, f.store.bookings[uuid.MustParse(booking.ID)].Status)
	assert.Equal(t, entity.BookingStatusPending, f.store.bookings[uuid.MustParse(rebooked)].Status)

	checkIn := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	active, err := f.store.repository().Booking.FindOverlapping(ctx, f.property.ID, checkIn, checkOut)
	require.NoError(t, err)
	assert.Equal(t, 4, occupiedGuests(active, checkIn, checkOut))
}

func TestCancelRacingAnotherCancelIsNoop(t *testing.T) {
	f := newBookingFixture(t, 4)
	ctx := context.Background()

	booking, err := f.service.CreateBooking(ctx, f.guest, f.request("2024-06-01", "2024-06-05", 2))
	require.NoError(t, err)

	cancelling := f.interleavedService(func() {
		_, err := f.service.CancelBooking(ctx, f.owner, booking.ID)
		require.NoError(t, err)
	})

	resp, err := cancelling.CancelBooking(ctx, f.guest, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusCancelled, resp.Status)

	// request + the owner's cancel only
	assert.Len(t, f.pub.published(), 2)
}

func TestCancelBookingRejectsThirdParty(t *testing.T) {
	f := newBookingFixture(t, 4)
	ctx := context.Background()

	booking, err := f.service.CreateBooking(ctx, f.guest, f.request("2024-06-01", "2024-06-05", 2))
	require.NoError(t, err)

	stranger := entity.Principal{UserID: uuid.New(), Role: entity.RoleUser}
	_, err = f.service.CancelBooking(ctx, stranger, booking.ID)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
	assert.Equal(t, entity.BookingStatusPending, f.store.bookings[uuid.MustParse(booking.ID)].Status)
}

func TestGetBookingIsScopedToParticipants(t *testing.T) {
	f := newBookingFixture(t, 4)
	ctx := context.Background()

	booking, err := f.service.CreateBooking(ctx, f.guest, f.request("2024-06-01", "2024-06-05", 2))
	require.NoError(t, err)

	for _, actor := range []entity.Principal{f.guest, f.owner} {
		got, err := f.service.GetBooking(ctx, actor, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, "Sea View Studio", got.PropertyTitle)
	}

	_, err = f.service.GetBooking(ctx, entity.Principal{UserID: uuid.New(), Role: entity.RoleUser}, booking.ID)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
}

func TestGetPropertyBookingsOwnerOnly(t *testing.T) {
	f := newBookingFixture(t, 4)
	ctx := context.Background()

	_, err := f.service.CreateBooking(ctx, f.guest, f.request("2024-06-01", "2024-06-05", 2))
	require.NoError(t, err)

	bookings, err := f.service.GetPropertyBookings(ctx, f.owner, f.property.ID.String())
	require.NoError(t, err)
	assert.Len(t, bookings, 1)

	_, err = f.service.GetPropertyBookings(ctx, f.guest, f.property.ID.String())
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
}

func TestGetRecentBookingsLimitsToTen(t *testing.T) {
	f := newBookingFixture(t, 100)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		_, err := f.service.CreateBooking(ctx, f.guest, f.request("2024-06-01", "2024-06-05", 1))
		require.NoError(t, err)
	}

	recent, err := f.service.GetRecentBookings(ctx, f.guest)
	require.NoError(t, err)
	assert.Len(t, recent, 10)

	mine, err := f.service.GetMyBookings(ctx, f.guest, &request.PaginatedRequest{Page: 2, PerPage: 5})
	require.NoError(t, err)
	assert.Len(t, mine.Data, 5)
	assert.Equal(t, int64(12), mine.Pagination.Total)
	assert.Equal(t, 3, mine.Pagination.TotalPages)
}

func TestPayBooking(t *testing.T) {
	f := newBookingFixture(t, 4)
	ctx := context.Background()

	booking, err := f.service.CreateBooking(ctx, f.guest, f.request("2024-06-01", "2024-06-05", 2))
	require.NoError(t, err)

	_, err = f.service.PayBooking(ctx, f.guest, booking.ID, &request.PayBookingRequest{Amount: 10, Method: "card"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = f.service.PayBooking(ctx, f.owner, booking.ID, &request.PayBookingRequest{Amount: 400, Method: "card"})
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	payment, err := f.service.PayBooking(ctx, f.guest, booking.ID, &request.PayBookingRequest{Amount: 400, Method: "upi"})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusCompleted, payment.Status)
	assert.NotEmpty(t, payment.TransactionID)

	_, err = f.service.PayBooking(ctx, f.guest, booking.ID, &request.PayBookingRequest{Amount: 400, Method: "upi"})
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	published := f.pub.published()
	require.Len(t, published, 2)
	assert.Equal(t, entity.NotificationPaymentReceived, published[1].Type)
	assert.Equal(t, f.owner.UserID, published[1].RecipientID)

	// Payment never changes the booking status.
	assert.Equal(t, entity.BookingStatusPending, f.store.bookings[uuid.MustParse(booking.ID)].Status)
}

// stalePaymentRepo never sees an existing payment, like a request that read
// before a concurrent payment committed.
type stalePaymentRepo struct {
	repository.PaymentRepository
}

func (stalePaymentRepo) FindByBookingID(context.Context, uuid.UUID) (*entity.Payment, error) {
	return nil, nil
}

func TestPayBookingConcurrentPaymentIsConflict(t *testing.T) {
	f := newBookingFixture(t, 4)
	ctx := context.Background()

	booking, err := f.service.CreateBooking(ctx, f.guest, f.request("2024-06-01", "2024-06-05", 2))
	require.NoError(t, err)

	repo := f.store.repository()
	repo.Payment = stalePaymentRepo{PaymentRepository: repo.Payment}
	service := NewBookingService(repo, f.pub, zap.NewNop())

	pay := &request.PayBookingRequest{Amount: 400, Method: "card"}
	_, err = service.PayBooking(ctx, f.guest, booking.ID, pay)
	require.NoError(t, err)

	_, err = service.PayBooking(ctx, f.guest, booking.ID, pay)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	assert.Equal(t, "Booking has already been paid", apperror.Message(err))
}

type failingPropertyRepo struct {
	repository.PropertyRepository
}

func (failingPropertyRepo) FindByID(context.Context, uuid.UUID) (*entity.Property, error) {
	return nil, errors.New("connection reset")
}

func TestGetMyBookingsLogsMissingPropertyTitle(t *testing.T) {
	f := newBookingFixture(t, 4)
	ctx := context.Background()

	_, err := f.service.CreateBooking(ctx, f.guest, f.request("2024-06-01", "2024-06-05", 2))
	require.NoError(t, err)

	core, logs := observer.New(zap.WarnLevel)
	repo := f.store.repository()
	repo.Property = failingPropertyRepo{PropertyRepository: repo.Property}
	service := NewBookingService(repo, f.pub, zap.New(core))

	mine, err := service.GetMyBookings(ctx, f.guest, &request.PaginatedRequest{Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, mine.Data, 1)
	assert.Empty(t, mine.Data[0].PropertyTitle)

	warned := logs.FilterMessage("Failed to load booking property title")
	require.Equal(t, 1, warned.Len())
	assert.Equal(t, "connection reset", warned.All()[0].ContextMap()["error"])
}

func TestPayCancelledBooking(t *testing.T) {
	f := newBookingFixture(t, 4)
	ctx := context.Background()

	booking, err := f.service.CreateBooking(ctx, f.guest, f.request("2024-06-01", "2024-06-05", 2))
	require.NoError(t, err)
	_, err = f.service.CancelBooking(ctx, f.guest, booking.ID)
	require.NoError(t, err)

	_, err = f.service.PayBooking(ctx, f.guest, booking.ID, &request.PayBookingRequest{Amount: 400, Method: "wallet"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}
