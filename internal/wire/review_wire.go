package wire

import (
	"stay-nest/internal/adaptor"
	"stay-nest/internal/data/repository"
	"stay-nest/pkg/middleware"
	"stay-nest/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireReview(
	r chi.Router,
	reviewHandler *adaptor.ReviewHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	auth := middleware.Auth(repo.Session, config.JWT.Secret, log)

	r.Route("/api/reviews", func(r chi.Router) {
		// ==================== PROTECTED ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(auth)

			r.Post("/", reviewHandler.CreateReview)
			r.Get("/my-reviews", reviewHandler.GetMyReviews)
			r.Patch("/{id}", reviewHandler.UpdateReview)
			r.Delete("/{id}", reviewHandler.DeleteReview)
		})

		// ==================== PUBLIC ROUTES ====================
		r.Get("/", reviewHandler.GetAllReviews)
		r.Get("/property/{propertyId}", reviewHandler.GetPropertyReviews)
		r.Get("/{id}", reviewHandler.GetReview)
	})

	// ==================== ADMIN ROUTES ====================
	r.With(auth, middleware.Admin(repo.User, log)).
		Patch("/api/admin/reviews/{id}/status", reviewHandler.UpdateReviewStatus)
}
