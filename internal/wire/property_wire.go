package wire

import (
	"stay-nest/internal/adaptor"
	"stay-nest/internal/data/repository"
	"stay-nest/pkg/middleware"
	"stay-nest/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireProperty(
	r chi.Router,
	propertyHandler *adaptor.PropertyHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Route("/api/properties", func(r chi.Router) {
		// ==================== PROTECTED ROUTES ====================
		// Static paths first so they are not captured by /{id}
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(repo.Session, config.JWT.Secret, log))

			r.Post("/", propertyHandler.CreateProperty)
			r.Get("/my-properties", propertyHandler.GetMyProperties)
			r.Get("/favorites", propertyHandler.GetFavorites)

			r.Patch("/{id}", propertyHandler.UpdateProperty)
			r.Delete("/{id}", propertyHandler.DeleteProperty)
			r.Post("/{id}/images", propertyHandler.UploadImages)
			r.Delete("/{id}/images/{imageId}", propertyHandler.DeleteImage)
			r.Patch("/{id}/favorite", propertyHandler.ToggleFavorite)
		})

		// ==================== PUBLIC ROUTES ====================
		// GET /api/properties?location=goa&minPrice=50&amenities=wifi,pool&sortBy=price_asc
		r.Get("/", propertyHandler.ListProperties)
		r.Get("/{id}", propertyHandler.GetProperty)
	})
}
