package wire

import (
	"stay-nest/internal/adaptor"
	"stay-nest/internal/data/repository"
	"stay-nest/pkg/middleware"
	"stay-nest/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wireUser configures account routes and the admin user management routes
func wireUser(
	r chi.Router,
	userHandler *adaptor.UserHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	auth := middleware.Auth(repo.Session, config.JWT.Secret, log)

	// ==================== PROTECTED USER ROUTES ====================
	r.With(auth).Route("/api/users", func(r chi.Router) {
		r.Get("/profile", userHandler.GetProfile)
		r.Patch("/profile", userHandler.UpdateProfile)
		r.Patch("/password", userHandler.ChangePassword)
		r.Delete("/account", userHandler.DeleteAccount)
		r.Get("/favorites", userHandler.GetFavorites)
	})

	// ==================== ADMIN ROUTES ====================
	r.With(
		auth,                             // Check valid session
		middleware.Admin(repo.User, log), // Check admin role
	).Route("/api/admin/users", func(r chi.Router) {
		r.Get("/", userHandler.GetAllUsers)       // GET /api/admin/users?page=1&limit=10
		r.Delete("/{id}", userHandler.DeleteUser) // DELETE /api/admin/users/{user-id}
	})
}
