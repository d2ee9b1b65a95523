package usecase

import (
	"context"
	"testing"
	"time"

	"stay-nest/internal/data/entity"
	"stay-nest/internal/dto/request"
	"stay-nest/pkg/apperror"
	"stay-nest/pkg/cache"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newUserFixture() (*memStore, UserService, *fakeImageStore) {
	store := newMemStore()
	images := &fakeImageStore{}
	svc := NewUserService(store.repository(), testConfig(), cache.NewMemoryPropertyCache(time.Minute), images, zap.NewNop())
	return store, svc, images
}

func TestUpdateProfile(t *testing.T) {
	store, svc, _ := newUserFixture()
	ctx := context.Background()

	alice := seedUser(store, "Alice", "alice@example.com", "secret1")
	seedUser(store, "Bob", "bob@example.com", "secret1")
	me := entity.Principal{UserID: alice.ID}

	taken := "BOB@example.com"
	_, err := svc.UpdateProfile(ctx, me, &request.UpdateProfileRequest{Email: &taken})
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	name := "Alice Smith"
	email := "alice.smith@example.com"
	resp, err := svc.UpdateProfile(ctx, me, &request.UpdateProfileRequest{Name: &name, Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", resp.Name)
	assert.Equal(t, "alice.smith@example.com", store.users[alice.ID].Email)
}

func TestChangePassword(t *testing.T) {
	store, svc, _ := newUserFixture()
	ctx := context.Background()

	alice := seedUser(store, "Alice", "alice@example.com", "secret1")
	me := entity.Principal{UserID: alice.ID}
	oldSession := &entity.Session{UserID: alice.ID, Token: uuid.New(), ExpiresAt: time.Now().Add(time.Hour)}
	store.sessions[oldSession.Token] = oldSession

	_, err := svc.ChangePassword(ctx, me, &request.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "newsecret"})
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))

	resp, err := svc.ChangePassword(ctx, me, &request.ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "newsecret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.NotNil(t, store.sessions[oldSession.Token].RevokedAt)
}

func TestDeleteAccountCleansUp(t *testing.T) {
	store, svc, images := newUserFixture()
	ctx := context.Background()

	alice := seedUser(store, "Alice", "alice@example.com", "secret1")
	bob := seedUser(store, "Bob", "bob@example.com", "secret1")

	listing := seedProperty(store, alice.ID, "Alice's Flat", 2)
	listing.Images = []entity.Image{{ID: uuid.New(), PublicID: "stay-nest/flat.jpg", IsMain: true}}

	bobsPlace := seedProperty(store, bob.ID, "Bob's Barn", 6)
	store.bookings[uuid.New()] = &entity.Booking{PropertyID: bobsPlace.ID, GuestID: alice.ID, Status: entity.BookingStatusPending}
	reviewID := uuid.New()
	store.reviews[reviewID] = &entity.Review{
		BaseNoDelete: entity.BaseNoDelete{ID: reviewID},
		UserID:       alice.ID, PropertyID: bobsPlace.ID, Rating: 5, Status: entity.ReviewStatusApproved,
	}
	bobsPlace.RatingAverage, bobsPlace.RatingCount = 5, 1
	notificationID := uuid.New()
	store.notifications[notificationID] = &entity.Notification{BaseSimple: entity.BaseSimple{ID: notificationID}, RecipientID: alice.ID}
	store.favorites[bobsPlace.ID] = map[uuid.UUID]bool{alice.ID: true}

	require.NoError(t, svc.DeleteAccount(ctx, entity.Principal{UserID: alice.ID}))

	assert.NotNil(t, store.users[alice.ID].DeletedAt)
	assert.NotContains(t, store.properties, listing.ID)
	assert.Contains(t, store.properties, bobsPlace.ID)
	assert.Empty(t, store.bookings)
	assert.Empty(t, store.reviews)
	assert.Empty(t, store.notifications)
	assert.False(t, store.favorites[bobsPlace.ID][alice.ID])
	assert.Zero(t, store.properties[bobsPlace.ID].RatingCount)
	assert.Equal(t, []string{"stay-nest/flat.jpg"}, images.destroyed)

	_, err := svc.GetProfile(ctx, entity.Principal{UserID: alice.ID})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestAdminDeleteUser(t *testing.T) {
	store, svc, _ := newUserFixture()
	ctx := context.Background()

	admin := seedUser(store, "Admin", "admin@example.com", "secret1")
	admin.Role = entity.RoleAdmin
	alice := seedUser(store, "Alice", "alice@example.com", "secret1")
	principal := entity.Principal{UserID: admin.ID, Role: entity.RoleAdmin}

	err := svc.DeleteUser(ctx, principal, admin.ID.String())
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	err = svc.DeleteUser(ctx, principal, uuid.NewString())
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	require.NoError(t, svc.DeleteUser(ctx, principal, alice.ID.String()))

	users, err := svc.GetAllUsers(ctx, &request.PaginatedRequest{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Len(t, users.Data, 1)
	assert.Equal(t, int64(1), users.Pagination.Total)
}
