package adaptor

import (
	"net/http"

	"stay-nest/internal/dto/request"
	"stay-nest/internal/usecase"
	"stay-nest/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type UserHandler struct {
	service    usecase.UserService
	properties usecase.PropertyService
	log        *zap.Logger
}

func NewUserHandler(service usecase.UserService, properties usecase.PropertyService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		service:    service,
		properties: properties,
		log:        log.With(zap.String("handler", "user")),
	}
}

// GetProfile handles GET /api/users/profile (protected)
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetProfile(r.Context(), principal)
	if err != nil {
		handleServiceError(w, h.log, err, "get profile")
		return
	}

	utils.ResponseSuccess(w, "success", user)
}

// UpdateProfile handles PATCH /api/users/profile (protected)
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req request.UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), principal, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update profile")
		return
	}

	utils.ResponseSuccess(w, "Profile updated", user)
}

// ChangePassword handles PATCH /api/users/password (protected)
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req request.ChangePasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.ChangePassword(r.Context(), principal, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "change password")
		return
	}

	utils.ResponseSuccess(w, "Password updated", resp)
}

// DeleteAccount handles DELETE /api/users/account (protected)
func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteAccount(r.Context(), principal); err != nil {
		handleServiceError(w, h.log, err, "delete account")
		return
	}

	utils.ResponseSuccess(w, "Account deleted", nil)
}

// GetFavorites handles GET /api/users/favorites (protected)
func (h *UserHandler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	favorites, err := h.properties.GetFavorites(r.Context(), principal)
	if err != nil {
		handleServiceError(w, h.log, err, "get favorites")
		return
	}

	utils.ResponseSuccess(w, "success", favorites)
}

// ==================== ADMIN METHODS ====================

// GetAllUsers handles GET /api/admin/users (admin only)
func (h *UserHandler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.GetAllUsers(r.Context(), paginationFromQuery(r, utils.DefaultPerPage))
	if err != nil {
		handleServiceError(w, h.log, err, "get all users")
		return
	}

	utils.ResponseSuccess(w, "success", users)
}

// DeleteUser handles DELETE /api/admin/users/{id} (admin only)
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete user")
		return
	}

	utils.ResponseSuccess(w, "User deleted", nil)
}
