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

func newReviewFixture(t *testing.T) (*memStore, ReviewService, *recordingPublisher, cache.PropertyCache) {
	t.Helper()
	store := newMemStore()
	pub := &recordingPublisher{}
	propertyCache := cache.NewMemoryPropertyCache(time.Minute)
	return store, NewReviewService(store.repository(), propertyCache, pub, zap.NewNop()), pub, propertyCache
}

func TestCreateReviewUpdatesRating(t *testing.T) {
	store, svc, pub, propertyCache := newReviewFixture(t)
	ctx := context.Background()

	owner := seedUser(store, "Owner", "owner@example.com", "secret1")
	alice := seedUser(store, "Alice", "alice@example.com", "secret1")
	bob := seedUser(store, "Bob", "bob@example.com", "secret1")
	property := seedProperty(store, owner.ID, "Hill Cabin", 4)
	propertyCache.Set(ctx, property)

	review, err := svc.CreateReview(ctx, entity.Principal{UserID: alice.ID}, &request.CreateReviewRequest{
		PropertyID: property.ID.String(),
		Rating:     5,
		Comment:    "Lovely stay, very quiet.",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ReviewStatusApproved, review.Status)
	assert.Equal(t, "Alice", review.UserName)
	assert.Equal(t, "Hill Cabin", review.PropertyTitle)

	_, cached := propertyCache.Get(ctx, property.ID)
	assert.False(t, cached, "rating change must invalidate the cached property")

	_, err = svc.CreateReview(ctx, entity.Principal{UserID: bob.ID}, &request.CreateReviewRequest{
		PropertyID: property.ID.String(),
		Rating:     2,
		Comment:    "Too far from the beach.",
	})
	require.NoError(t, err)

	assert.InDelta(t, 3.5, store.properties[property.ID].RatingAverage, 0.001)
	assert.Equal(t, 2, store.properties[property.ID].RatingCount)

	published := pub.published()
	require.Len(t, published, 2)
	assert.Equal(t, entity.NotificationReviewReceived, published[0].Type)
	assert.Equal(t, owner.ID, published[0].RecipientID)
}

func TestCreateReviewRejectsDuplicates(t *testing.T) {
	store, svc, _, _ := newReviewFixture(t)
	ctx := context.Background()

	owner := seedUser(store, "Owner", "owner@example.com", "secret1")
	alice := seedUser(store, "Alice", "alice@example.com", "secret1")
	property := seedProperty(store, owner.ID, "Hill Cabin", 4)

	req := &request.CreateReviewRequest{PropertyID: property.ID.String(), Rating: 4, Comment: "Nice place to stay."}
	_, err := svc.CreateReview(ctx, entity.Principal{UserID: alice.ID}, req)
	require.NoError(t, err)

	_, err = svc.CreateReview(ctx, entity.Principal{UserID: alice.ID}, req)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestCreateReviewValidation(t *testing.T) {
	store, svc, _, _ := newReviewFixture(t)
	ctx := context.Background()

	alice := seedUser(store, "Alice", "alice@example.com", "secret1")

	tests := []struct {
		name string
		req  *request.CreateReviewRequest
		kind apperror.Kind
	}{
		{"rating too high", &request.CreateReviewRequest{PropertyID: uuid.NewString(), Rating: 6, Comment: "Nice place to stay."}, apperror.KindValidation},
		{"comment too short", &request.CreateReviewRequest{PropertyID: uuid.NewString(), Rating: 3, Comment: "ok"}, apperror.KindValidation},
		{"unknown property", &request.CreateReviewRequest{PropertyID: uuid.NewString(), Rating: 3, Comment: "Nice place to stay."}, apperror.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateReview(ctx, entity.Principal{UserID: alice.ID}, tt.req)
			assert.Equal(t, tt.kind, apperror.KindOf(err))
		})
	}
}

func TestOwnerReviewDoesNotNotify(t *testing.T) {
	store, svc, pub, _ := newReviewFixture(t)

	owner := seedUser(store, "Owner", "owner@example.com", "secret1")
	property := seedProperty(store, owner.ID, "Hill Cabin", 4)

	_, err := svc.CreateReview(context.Background(), entity.Principal{UserID: owner.ID}, &request.CreateReviewRequest{
		PropertyID: property.ID.String(), Rating: 5, Comment: "My own place is great.",
	})
	require.NoError(t, err)
	assert.Empty(t, pub.published())
}

func TestReviewModerationExcludesRejectedFromRating(t *testing.T) {
	store, svc, _, _ := newReviewFixture(t)
	ctx := context.Background()

	owner := seedUser(store, "Owner", "owner@example.com", "secret1")
	alice := seedUser(store, "Alice", "alice@example.com", "secret1")
	bob := seedUser(store, "Bob", "bob@example.com", "secret1")
	property := seedProperty(store, owner.ID, "Hill Cabin", 4)

	_, err := svc.CreateReview(ctx, entity.Principal{UserID: alice.ID}, &request.CreateReviewRequest{
		PropertyID: property.ID.String(), Rating: 5, Comment: "Lovely stay, very quiet.",
	})
	require.NoError(t, err)
	spam, err := svc.CreateReview(ctx, entity.Principal{UserID: bob.ID}, &request.CreateReviewRequest{
		PropertyID: property.ID.String(), Rating: 1, Comment: "Buy cheap watches online.",
	})
	require.NoError(t, err)

	_, err = svc.UpdateReviewStatus(ctx, spam.ID, &request.UpdateReviewStatusRequest{Status: "rejected"})
	require.NoError(t, err)

	assert.InDelta(t, 5.0, store.properties[property.ID].RatingAverage, 0.001)
	assert.Equal(t, 1, store.properties[property.ID].RatingCount)

	listed, err := svc.GetPropertyReviews(ctx, property.ID.String(), &request.PaginatedRequest{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Len(t, listed.Data, 1)
}

func TestUpdateAndDeleteReviewRequireAuthor(t *testing.T) {
	store, svc, _, _ := newReviewFixture(t)
	ctx := context.Background()

	owner := seedUser(store, "Owner", "owner@example.com", "secret1")
	alice := seedUser(store, "Alice", "alice@example.com", "secret1")
	property := seedProperty(store, owner.ID, "Hill Cabin", 4)

	review, err := svc.CreateReview(ctx, entity.Principal{UserID: alice.ID}, &request.CreateReviewRequest{
		PropertyID: property.ID.String(), Rating: 4, Comment: "Nice place to stay.",
	})
	require.NoError(t, err)

	rating := 2
	_, err = svc.UpdateReview(ctx, entity.Principal{UserID: owner.ID}, review.ID, &request.UpdateReviewRequest{Rating: &rating})
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	updated, err := svc.UpdateReview(ctx, entity.Principal{UserID: alice.ID}, review.ID, &request.UpdateReviewRequest{Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Rating)
	assert.InDelta(t, 2.0, store.properties[property.ID].RatingAverage, 0.001)

	err = svc.DeleteReview(ctx, entity.Principal{UserID: owner.ID}, review.ID)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	require.NoError(t, svc.DeleteReview(ctx, entity.Principal{UserID: alice.ID}, review.ID))
	assert.Zero(t, store.properties[property.ID].RatingCount)
	assert.Zero(t, store.properties[property.ID].RatingAverage)
}
