package usecase

import (
	"context"
	"time"

	"stay-nest/internal/data/entity"
	"stay-nest/internal/data/repository"
	"stay-nest/internal/dto/request"
	"stay-nest/internal/dto/response"
	"stay-nest/internal/notify"
	"stay-nest/pkg/apperror"
	"stay-nest/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultNotificationsPerPage = 20

// Pusher sends a realtime payload to every live connection of a user.
type Pusher interface {
	SendToUser(userID uuid.UUID, payload any) error
}

type NotificationService interface {
	GetNotifications(ctx context.Context, principal entity.Principal, req *request.PaginatedRequest, unreadOnly bool) (*response.NotificationListResponse, error)
	MarkAsRead(ctx context.Context, principal entity.Principal, notificationID string) error
	MarkAllAsRead(ctx context.Context, principal entity.Principal) (int64, error)
	DeleteNotification(ctx context.Context, principal entity.Principal, notificationID string) error
	GetPreferences(ctx context.Context, principal entity.Principal) (*response.PreferencesResponse, error)
	UpdatePreferences(ctx context.Context, principal entity.Principal, req *request.UpdatePreferencesRequest) (*response.PreferencesResponse, error)

	// Deliver persists n and fans it out over push and email according to
	// the recipient's preferences. Only the persistence error is returned.
	Deliver(ctx context.Context, n *entity.Notification) error
}

type notificationService struct {
	repo   *repository.Repository
	pusher Pusher
	mailer notify.Mailer
	log    *zap.Logger
}

func NewNotificationService(repo *repository.Repository, pusher Pusher, mailer notify.Mailer, log *zap.Logger) NotificationService {
	return &notificationService{
		repo:   repo,
		pusher: pusher,
		mailer: mailer,
		log:    log.With(zap.String("service", "notification")),
	}
}

func (s *notificationService) GetNotifications(ctx context.Context, principal entity.Principal, req *request.PaginatedRequest, unreadOnly bool) (*response.NotificationListResponse, error) {
	notifications, err := s.repo.Notification.FindByRecipient(ctx, principal.UserID, unreadOnly, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get notifications", zap.Error(err), zap.String("user_id", principal.UserID.String()))
		return nil, apperror.Internal("failed to get notifications", err)
	}

	total, err := s.repo.Notification.CountByRecipient(ctx, principal.UserID, unreadOnly)
	if err != nil {
		return nil, apperror.Internal("failed to count notifications", err)
	}

	unread, err := s.repo.Notification.CountByRecipient(ctx, principal.UserID, true)
	if err != nil {
		return nil, apperror.Internal("failed to count notifications", err)
	}

	items := make([]response.NotificationResponse, len(notifications))
	for i, n := range notifications {
		items[i] = response.NotificationToResponse(n)
	}

	return &response.NotificationListResponse{
		Notifications: items,
		Total:         total,
		UnreadCount:   unread,
		CurrentPage:   req.Page,
		TotalPages:    utils.CalculateTotalPages(total, req.Limit()),
	}, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, principal entity.Principal, notificationID string) error {
	id, err := uuid.Parse(notificationID)
	if err != nil {
		return apperror.Validation("invalid notification ID format %s", notificationID)
	}

	ok, err := s.repo.Notification.MarkAsRead(ctx, id, principal.UserID)
	if err != nil {
		s.log.Error("Failed to mark notification as read", zap.Error(err), zap.String("notification_id", notificationID))
		return apperror.Internal("failed to update notification", err)
	}
	if !ok {
		return apperror.NotFound("Notification not found")
	}

	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, principal entity.Principal) (int64, error) {
	updated, err := s.repo.Notification.MarkAllAsRead(ctx, principal.UserID)
	if err != nil {
		s.log.Error("Failed to mark all notifications as read", zap.Error(err), zap.String("user_id", principal.UserID.String()))
		return 0, apperror.Internal("failed to update notifications", err)
	}

	s.log.Info("Notifications marked as read",
		zap.String("user_id", principal.UserID.String()),
		zap.Int64("count", updated),
	)
	return updated, nil
}

func (s *notificationService) DeleteNotification(ctx context.Context, principal entity.Principal, notificationID string) error {
	id, err := uuid.Parse(notificationID)
	if err != nil {
		return apperror.Validation("invalid notification ID format %s", notificationID)
	}

	ok, err := s.repo.Notification.Delete(ctx, id, principal.UserID)
	if err != nil {
		s.log.Error("Failed to delete notification", zap.Error(err), zap.String("notification_id", notificationID))
		return apperror.Internal("failed to delete notification", err)
	}
	if !ok {
		return apperror.NotFound("Notification not found")
	}

	return nil
}

func (s *notificationService) GetPreferences(ctx context.Context, principal entity.Principal) (*response.PreferencesResponse, error) {
	user, err := s.findUser(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	return &response.PreferencesResponse{Email: user.EmailNotifications, Push: user.PushNotifications}, nil
}

func (s *notificationService) UpdatePreferences(ctx context.Context, principal entity.Principal, req *request.UpdatePreferencesRequest) (*response.PreferencesResponse, error) {
	user, err := s.findUser(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		user.EmailNotifications = *req.Email
	}
	if req.Push != nil {
		user.PushNotifications = *req.Push
	}
	user.UpdatedAt = time.Now()

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.log.Error("Failed to update notification preferences", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, apperror.Internal("failed to update preferences", err)
	}

	return &response.PreferencesResponse{Email: user.EmailNotifications, Push: user.PushNotifications}, nil
}

func (s *notificationService) Deliver(ctx context.Context, n *entity.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if n.Priority == "" {
		n.Priority = entity.PriorityMedium
	}

	if err := s.repo.Notification.Create(ctx, n); err != nil {
		return err
	}

	recipient, err := s.repo.User.FindByID(ctx, n.RecipientID)
	if err != nil || recipient == nil {
		s.log.Warn("Notification recipient unavailable",
			zap.Error(err),
			zap.String("recipient_id", n.RecipientID.String()),
		)
		return nil
	}

	if recipient.PushNotifications && s.pusher != nil {
		if err := s.pusher.SendToUser(recipient.ID, response.NotificationToResponse(n)); err != nil {
			s.log.Warn("Failed to push notification", zap.Error(err), zap.String("notification_id", n.ID.String()))
		}
	}

	if recipient.EmailNotifications && s.mailer != nil {
		if err := s.mailer.Send(recipient.Email, n.Title, n.Message); err != nil {
			s.log.Warn("Failed to email notification", zap.Error(err), zap.String("notification_id", n.ID.String()))
		}
	}

	s.log.Debug("Notification delivered",
		zap.String("notification_id", n.ID.String()),
		zap.String("type", string(n.Type)),
	)
	return nil
}

// ==================== HELPER METHODS ====================

func (s *notificationService) findUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, apperror.Internal("failed to get user", err)
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}
	return user, nil
}

func newNotification(
	recipient uuid.UUID,
	sender *uuid.UUID,
	typ entity.NotificationType,
	title, message string,
	model entity.RelatedModel,
	relatedID uuid.UUID,
	priority entity.NotificationPriority,
) *entity.Notification {
	return &entity.Notification{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		RecipientID:  recipient,
		SenderID:     sender,
		Type:         typ,
		Title:        title,
		Message:      message,
		RelatedModel: &model,
		RelatedID:    &relatedID,
		Priority:     priority,
	}
}
