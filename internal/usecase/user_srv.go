package usecase

import (
	"context"
	"time"

	"stay-nest/internal/data/entity"
	"stay-nest/internal/data/repository"
	"stay-nest/internal/dto/request"
	"stay-nest/internal/dto/response"
	"stay-nest/pkg/apperror"
	"stay-nest/pkg/cache"
	"stay-nest/pkg/storage"
	"stay-nest/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	GetProfile(ctx context.Context, principal entity.Principal) (*response.UserResponse, error)
	UpdateProfile(ctx context.Context, principal entity.Principal, req *request.UpdateProfileRequest) (*response.UserResponse, error)
	ChangePassword(ctx context.Context, principal entity.Principal, req *request.ChangePasswordRequest) (*response.AuthResponse, error)
	DeleteAccount(ctx context.Context, principal entity.Principal) error

	// Admin
	GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error)
	DeleteUser(ctx context.Context, principal entity.Principal, userID string) error
}

type userService struct {
	repo   *repository.Repository
	config *utils.Config
	cache  cache.PropertyCache
	images storage.ImageStore
	log    *zap.Logger
}

func NewUserService(
	repo *repository.Repository,
	config *utils.Config,
	propertyCache cache.PropertyCache,
	images storage.ImageStore,
	log *zap.Logger,
) UserService {
	return &userService{
		repo:   repo,
		config: config,
		cache:  propertyCache,
		images: images,
		log:    log.With(zap.String("service", "user")),
	}
}

func (us *userService) GetProfile(ctx context.Context, principal entity.Principal) (*response.UserResponse, error) {
	user, err := us.findUser(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) UpdateProfile(ctx context.Context, principal entity.Principal, req *request.UpdateProfileRequest) (*response.UserResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		us.log.Warn("Update profile validation failed", zap.Any("errors", errs))
		return nil, apperror.Validation("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	user, err := us.findUser(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email != user.Email {
			existing, err := us.repo.User.FindByEmail(ctx, email)
			if err != nil {
				us.log.Error("Failed to check email", zap.Error(err))
				return nil, apperror.Internal("failed to update profile", err)
			}
			if existing != nil && existing.ID != user.ID {
				return nil, apperror.Conflict("Email is already in use")
			}
			user.Email = email
		}
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	user.UpdatedAt = time.Now()

	if err := us.repo.User.Update(ctx, user); err != nil {
		us.log.Error("Failed to update profile", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, apperror.Internal("failed to update profile", err)
	}

	us.log.Info("Profile updated", zap.String("user_id", user.ID.String()))

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) ChangePassword(ctx context.Context, principal entity.Principal, req *request.ChangePasswordRequest) (*response.AuthResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	user, err := us.findUser(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	if !utils.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		us.log.Warn("Wrong current password", zap.String("user_id", user.ID.String()))
		return nil, apperror.Unauthorized("Your current password is wrong")
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return nil, apperror.Internal("failed to process password", err)
	}
	user.PasswordHash = hashedPassword
	user.UpdatedAt = time.Now()

	if err := us.repo.User.Update(ctx, user); err != nil {
		us.log.Error("Failed to update password", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, apperror.Internal("failed to update password", err)
	}

	if err := us.repo.Session.RevokeAllUserSessions(ctx, user.ID); err != nil {
		us.log.Warn("Failed to revoke sessions", zap.Error(err), zap.String("user_id", user.ID.String()))
	}

	us.log.Info("Password changed", zap.String("user_id", user.ID.String()))
	return issueToken(ctx, us.repo, us.config, user)
}

func (us *userService) DeleteAccount(ctx context.Context, principal entity.Principal) error {
	return us.deleteUser(ctx, principal.UserID)
}

func (us *userService) GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error) {
	users, err := us.repo.User.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		us.log.Error("Failed to get users", zap.Error(err))
		return nil, apperror.Internal("failed to get users", err)
	}

	total, err := us.repo.User.CountAll(ctx)
	if err != nil {
		us.log.Error("Failed to count users", zap.Error(err))
		return nil, apperror.Internal("failed to get users", err)
	}

	userResponses := make([]response.UserResponse, len(users))
	for i, user := range users {
		userResponses[i] = response.UserToResponse(user)
	}

	return response.NewPaginatedResponse(userResponses, req.Page, req.Limit(), total), nil
}

func (us *userService) DeleteUser(ctx context.Context, principal entity.Principal, userID string) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return apperror.Validation("invalid user ID format %s", userID)
	}

	if id == principal.UserID {
		return apperror.Validation("Use the account endpoint to delete your own account")
	}

	return us.deleteUser(ctx, id)
}

// ==================== HELPER METHODS ====================

func (us *userService) findUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := us.repo.User.FindByID(ctx, userID)
	if err != nil {
		us.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, apperror.Internal("failed to get user", err)
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}
	return user, nil
}

// deleteUser removes everything the user owns before soft-deleting the
// account: listed properties with their hosted images, bookings, reviews,
// notifications, favorites and sessions.
func (us *userService) deleteUser(ctx context.Context, userID uuid.UUID) error {
	user, err := us.findUser(ctx, userID)
	if err != nil {
		return err
	}

	for {
		properties, err := us.repo.Property.FindByOwner(ctx, user.ID, utils.MaxPerPage, 0)
		if err != nil {
			return apperror.Internal("failed to delete account", err)
		}
		if len(properties) == 0 {
			break
		}
		for _, property := range properties {
			if err := removeProperty(ctx, us.repo, us.images, us.cache, us.log, property); err != nil {
				return err
			}
		}
	}

	if err := us.repo.Booking.DeleteByGuestID(ctx, user.ID); err != nil {
		return apperror.Internal("failed to delete account", err)
	}

	reviewed, err := us.repo.Review.DeleteByUserID(ctx, user.ID)
	if err != nil {
		return apperror.Internal("failed to delete account", err)
	}
	for _, propertyID := range reviewed {
		refreshPropertyRating(ctx, us.repo, us.cache, us.log, propertyID)
	}

	if err := us.repo.Notification.DeleteByRecipient(ctx, user.ID); err != nil {
		return apperror.Internal("failed to delete account", err)
	}

	if err := us.repo.Property.DeleteFavoritesByUser(ctx, user.ID); err != nil {
		return apperror.Internal("failed to delete account", err)
	}

	if err := us.repo.Session.RevokeAllUserSessions(ctx, user.ID); err != nil {
		us.log.Warn("Failed to revoke sessions", zap.Error(err), zap.String("user_id", user.ID.String()))
	}

	if err := us.repo.User.Delete(ctx, user.ID); err != nil {
		us.log.Error("Failed to delete user", zap.Error(err), zap.String("user_id", user.ID.String()))
		return apperror.Internal("failed to delete account", err)
	}

	us.log.Info("User deleted",
		zap.String("user_id", user.ID.String()),
		zap.Int("reviewed_properties", len(reviewed)),
	)
	return nil
}
