package usecase

import (
	"context"
	"fmt"
	"time"

	"stay-nest/internal/data/entity"
	"stay-nest/internal/data/repository"
	"stay-nest/internal/dto/request"
	"stay-nest/internal/dto/response"
	"stay-nest/internal/notify"
	"stay-nest/pkg/apperror"
	"stay-nest/pkg/cache"
	"stay-nest/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReviewService interface {
	// Public endpoints
	GetAllReviews(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error)
	GetReview(ctx context.Context, reviewID string) (*response.ReviewResponse, error)
	GetPropertyReviews(ctx context.Context, propertyID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error)

	// Authenticated endpoints
	CreateReview(ctx context.Context, principal entity.Principal, req *request.CreateReviewRequest) (*response.ReviewResponse, error)
	GetMyReviews(ctx context.Context, principal entity.Principal, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error)
	UpdateReview(ctx context.Context, principal entity.Principal, reviewID string, req *request.UpdateReviewRequest) (*response.ReviewResponse, error)
	DeleteReview(ctx context.Context, principal entity.Principal, reviewID string) error

	// Moderation
	UpdateReviewStatus(ctx context.Context, reviewID string, req *request.UpdateReviewStatusRequest) (*response.ReviewResponse, error)
}

type reviewService struct {
	repo      *repository.Repository
	cache     cache.PropertyCache
	publisher notify.Publisher
	log       *zap.Logger
}

func NewReviewService(repo *repository.Repository, propertyCache cache.PropertyCache, publisher notify.Publisher, log *zap.Logger) ReviewService {
	return &reviewService{
		repo:      repo,
		cache:     propertyCache,
		publisher: publisher,
		log:       log.With(zap.String("service", "review")),
	}
}

func (s *reviewService) CreateReview(ctx context.Context, principal entity.Principal, req *request.CreateReviewRequest) (*response.ReviewResponse, error) {
	// Validate request
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create review validation failed", zap.Any("errors", errs))
		return nil, apperror.Validation("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		return nil, apperror.Validation("invalid property ID format %s", req.PropertyID)
	}

	// Check if property exists
	property, err := s.repo.Property.FindByID(ctx, propertyID)
	if err != nil {
		s.log.Error("Failed to find property", zap.Error(err), zap.String("property_id", req.PropertyID))
		return nil, apperror.Internal("failed to create review", err)
	}
	if property == nil {
		return nil, apperror.NotFound("Property not found")
	}

	// One review per user and property
	existing, err := s.repo.Review.FindByUserAndProperty(ctx, principal.UserID, propertyID)
	if err != nil {
		s.log.Error("Failed to check existing review", zap.Error(err))
		return nil, apperror.Internal("failed to create review", err)
	}
	if existing != nil {
		return nil, apperror.Conflict("You have already reviewed this property")
	}

	now := time.Now()
	review := &entity.Review{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:     principal.UserID,
		PropertyID: propertyID,
		Rating:     req.Rating,
		Comment:    req.Comment,
		Status:     entity.ReviewStatusApproved,
	}

	if err := s.repo.Review.Create(ctx, review); err != nil {
		s.log.Error("Failed to create review",
			zap.Error(err),
			zap.String("user_id", principal.UserID.String()),
			zap.String("property_id", req.PropertyID),
		)
		return nil, apperror.Internal("failed to create review", err)
	}

	s.refreshRating(ctx, propertyID)

	if property.OwnerID != principal.UserID {
		s.publisher.Publish(newNotification(
			property.OwnerID, &principal.UserID,
			entity.NotificationReviewReceived,
			"New Review",
			fmt.Sprintf("You have received a new review for %s", property.Title),
			entity.RelatedReview, review.ID,
			entity.PriorityLow,
		))
	}

	s.log.Info("Review created",
		zap.String("review_id", review.ID.String()),
		zap.String("user_id", principal.UserID.String()),
		zap.String("property_id", req.PropertyID),
		zap.Int("rating", req.Rating),
	)

	return s.buildReviewResponse(ctx, review), nil
}

func (s *reviewService) GetAllReviews(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error) {
	reviews, err := s.repo.Review.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get reviews", zap.Error(err))
		return nil, apperror.Internal("failed to get reviews", err)
	}

	total, err := s.repo.Review.CountAll(ctx)
	if err != nil {
		return nil, apperror.Internal("failed to count reviews", err)
	}

	return response.NewPaginatedResponse(s.toResponses(ctx, reviews), req.Page, req.Limit(), total), nil
}

func (s *reviewService) GetReview(ctx context.Context, reviewID string) (*response.ReviewResponse, error) {
	review, err := s.findReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	return s.buildReviewResponse(ctx, review), nil
}

func (s *reviewService) GetPropertyReviews(ctx context.Context, propertyID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error) {
	propertyUUID, err := uuid.Parse(propertyID)
	if err != nil {
		return nil, apperror.Validation("invalid property ID format %s", propertyID)
	}

	reviews, err := s.repo.Review.FindByPropertyID(ctx, propertyUUID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get property reviews",
			zap.Error(err),
			zap.String("property_id", propertyID),
			zap.Int("page", req.Page),
		)
		return nil, apperror.Internal("failed to get reviews", err)
	}

	total, err := s.repo.Review.CountByPropertyID(ctx, propertyUUID)
	if err != nil {
		return nil, apperror.Internal("failed to count reviews", err)
	}

	return response.NewPaginatedResponse(s.toResponses(ctx, reviews), req.Page, req.Limit(), total), nil
}

func (s *reviewService) GetMyReviews(ctx context.Context, principal entity.Principal, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error) {
	reviews, err := s.repo.Review.FindByUserID(ctx, principal.UserID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get user reviews", zap.Error(err), zap.String("user_id", principal.UserID.String()))
		return nil, apperror.Internal("failed to get reviews", err)
	}

	total, err := s.repo.Review.CountByUserID(ctx, principal.UserID)
	if err != nil {
		return nil, apperror.Internal("failed to count reviews", err)
	}

	return response.NewPaginatedResponse(s.toResponses(ctx, reviews), req.Page, req.Limit(), total), nil
}

func (s *reviewService) UpdateReview(ctx context.Context, principal entity.Principal, reviewID string, req *request.UpdateReviewRequest) (*response.ReviewResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	review, err := s.findReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	if review.UserID != principal.UserID {
		return nil, apperror.Forbidden("Not authorized to update this review")
	}

	updated := false
	if req.Rating != nil && *req.Rating != review.Rating {
		review.Rating = *req.Rating
		updated = true
	}
	if req.Comment != nil && *req.Comment != review.Comment {
		review.Comment = *req.Comment
		updated = true
	}

	if !updated {
		return s.buildReviewResponse(ctx, review), nil
	}

	review.UpdatedAt = time.Now()
	if err := s.repo.Review.Update(ctx, review); err != nil {
		s.log.Error("Failed to update review", zap.Error(err), zap.String("review_id", reviewID))
		return nil, apperror.Internal("failed to update review", err)
	}

	s.refreshRating(ctx, review.PropertyID)

	s.log.Info("Review updated",
		zap.String("review_id", reviewID),
		zap.String("user_id", principal.UserID.String()),
	)

	return s.buildReviewResponse(ctx, review), nil
}

func (s *reviewService) DeleteReview(ctx context.Context, principal entity.Principal, reviewID string) error {
	review, err := s.findReview(ctx, reviewID)
	if err != nil {
		return err
	}

	if review.UserID != principal.UserID {
		return apperror.Forbidden("Not authorized to delete this review")
	}

	if err := s.repo.Review.Delete(ctx, review.ID); err != nil {
		s.log.Error("Failed to delete review", zap.Error(err), zap.String("review_id", reviewID))
		return apperror.Internal("failed to delete review", err)
	}

	s.refreshRating(ctx, review.PropertyID)

	s.log.Info("Review deleted",
		zap.String("review_id", reviewID),
		zap.String("user_id", principal.UserID.String()),
		zap.String("property_id", review.PropertyID.String()),
	)

	return nil
}

func (s *reviewService) UpdateReviewStatus(ctx context.Context, reviewID string, req *request.UpdateReviewStatusRequest) (*response.ReviewResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	review, err := s.findReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	status := entity.ReviewStatus(req.Status)
	if review.Status == status {
		return s.buildReviewResponse(ctx, review), nil
	}

	review.Status = status
	review.UpdatedAt = time.Now()
	if err := s.repo.Review.Update(ctx, review); err != nil {
		s.log.Error("Failed to moderate review", zap.Error(err), zap.String("review_id", reviewID))
		return nil, apperror.Internal("failed to update review", err)
	}

	s.refreshRating(ctx, review.PropertyID)

	s.log.Info("Review moderated",
		zap.String("review_id", reviewID),
		zap.String("status", req.Status),
	)

	return s.buildReviewResponse(ctx, review), nil
}

// ==================== HELPER METHODS ====================

func (s *reviewService) findReview(ctx context.Context, reviewID string) (*entity.Review, error) {
	id, err := uuid.Parse(reviewID)
	if err != nil {
		return nil, apperror.Validation("invalid review ID format %s", reviewID)
	}

	review, err := s.repo.Review.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find review", zap.Error(err), zap.String("review_id", reviewID))
		return nil, apperror.Internal("failed to get review", err)
	}
	if review == nil {
		return nil, apperror.NotFound("Review not found")
	}
	return review, nil
}

func (s *reviewService) refreshRating(ctx context.Context, propertyID uuid.UUID) {
	refreshPropertyRating(ctx, s.repo, s.cache, s.log, propertyID)
}

func (s *reviewService) buildReviewResponse(ctx context.Context, review *entity.Review) *response.ReviewResponse {
	userName := ""
	if user, _ := s.repo.User.FindByID(ctx, review.UserID); user != nil {
		userName = user.Name
	}

	propertyTitle := ""
	if property, _ := s.repo.Property.FindByID(ctx, review.PropertyID); property != nil {
		propertyTitle = property.Title
	}

	resp := response.ReviewToResponse(review, userName, propertyTitle)
	return &resp
}

func (s *reviewService) toResponses(ctx context.Context, reviews []*entity.Review) []response.ReviewResponse {
	out := make([]response.ReviewResponse, len(reviews))
	for i, review := range reviews {
		out[i] = *s.buildReviewResponse(ctx, review)
	}
	return out
}

// refreshPropertyRating recomputes the property rating from approved reviews.
// A failure leaves the previous rating in place and is only logged.
func refreshPropertyRating(ctx context.Context, repo *repository.Repository, propertyCache cache.PropertyCache, log *zap.Logger, propertyID uuid.UUID) {
	average, count, err := repo.Review.GetPropertyRatingStats(ctx, propertyID)
	if err != nil {
		log.Warn("Failed to compute property rating", zap.Error(err), zap.String("property_id", propertyID.String()))
		return
	}

	if err := repo.Property.UpdateRating(ctx, propertyID, average, count); err != nil {
		log.Warn("Failed to update property rating", zap.Error(err), zap.String("property_id", propertyID.String()))
		return
	}

	propertyCache.Invalidate(ctx, propertyID)

	log.Debug("Property rating updated",
		zap.String("property_id", propertyID.String()),
		zap.Float64("average", average),
		zap.Int("count", count),
	)
}
