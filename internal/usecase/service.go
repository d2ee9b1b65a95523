package usecase

import (
	"stay-nest/internal/data/repository"
	"stay-nest/internal/notify"
	"stay-nest/pkg/cache"
	"stay-nest/pkg/storage"
	"stay-nest/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth         AuthService
	User         UserService
	Property     PropertyService
	Booking      BookingService
	Review       ReviewService
	Notification NotificationService
}

// Deps are the infrastructure collaborators shared by the services.
type Deps struct {
	Cache     cache.PropertyCache
	Images    storage.ImageStore
	Mailer    notify.Mailer
	Publisher notify.Publisher
}

func NewService(repo *repository.Repository, config *utils.Config, deps Deps, notifications NotificationService, log *zap.Logger) *Service {
	return &Service{
		Auth:         NewAuthService(repo, config, deps.Mailer, log),
		User:         NewUserService(repo, config, deps.Cache, deps.Images, log),
		Property:     NewPropertyService(repo, deps.Cache, deps.Images, log),
		Booking:      NewBookingService(repo, deps.Publisher, log),
		Review:       NewReviewService(repo, deps.Cache, deps.Publisher, log),
		Notification: notifications,
	}
}
