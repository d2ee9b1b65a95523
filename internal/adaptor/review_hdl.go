package adaptor

import (
	"net/http"

	"stay-nest/internal/dto/request"
	"stay-nest/internal/usecase"
	"stay-nest/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ReviewHandler struct {
	service usecase.ReviewService
	log     *zap.Logger
}

func NewReviewHandler(service usecase.ReviewService, log *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		log:     log.With(zap.String("handler", "review")),
	}
}

// GetAllReviews handles GET /api/reviews (public)
func (h *ReviewHandler) GetAllReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.GetAllReviews(r.Context(), paginationFromQuery(r, utils.DefaultPerPage))
	if err != nil {
		handleServiceError(w, h.log, err, "get reviews")
		return
	}

	utils.ResponseSuccess(w, "success", reviews)
}

// GetReview handles GET /api/reviews/{id} (public)
func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	review, err := h.service.GetReview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get review")
		return
	}

	utils.ResponseSuccess(w, "success", review)
}

// GetPropertyReviews handles GET /api/reviews/property/{propertyId} (public)
func (h *ReviewHandler) GetPropertyReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.GetPropertyReviews(r.Context(), chi.URLParam(r, "propertyId"), paginationFromQuery(r, utils.DefaultPerPage))
	if err != nil {
		handleServiceError(w, h.log, err, "get property reviews")
		return
	}

	utils.ResponseSuccess(w, "success", reviews)
}

// CreateReview handles POST /api/reviews (protected)
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req request.CreateReviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	review, err := h.service.CreateReview(r.Context(), principal, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create review")
		return
	}

	utils.ResponseCreated(w, "Review created", review)
}

// GetMyReviews handles GET /api/reviews/my-reviews (protected)
func (h *ReviewHandler) GetMyReviews(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	reviews, err := h.service.GetMyReviews(r.Context(), principal, paginationFromQuery(r, utils.DefaultPerPage))
	if err != nil {
		handleServiceError(w, h.log, err, "get my reviews")
		return
	}

	utils.ResponseSuccess(w, "success", reviews)
}

// UpdateReview handles PATCH /api/reviews/{id} (author)
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req request.UpdateReviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	review, err := h.service.UpdateReview(r.Context(), principal, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update review")
		return
	}

	utils.ResponseSuccess(w, "Review updated", review)
}

// DeleteReview handles DELETE /api/reviews/{id} (author)
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteReview(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete review")
		return
	}

	utils.ResponseSuccess(w, "Review deleted", nil)
}

// ==================== ADMIN METHODS ====================

// UpdateReviewStatus handles PATCH /api/admin/reviews/{id}/status (admin only)
func (h *ReviewHandler) UpdateReviewStatus(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateReviewStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	review, err := h.service.UpdateReviewStatus(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "moderate review")
		return
	}

	utils.ResponseSuccess(w, "Review status updated", review)
}
