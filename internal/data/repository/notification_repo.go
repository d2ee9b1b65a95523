package repository

import (
	"context"
	"errors"
	"fmt"

	"stay-nest/internal/data/entity"
	"stay-nest/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Notification, error)
	FindByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, limit, offset int) ([]*entity.Notification, error)
	CountByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool) (int64, error)
	MarkAsRead(ctx context.Context, id, recipientID uuid.UUID) (bool, error)
	MarkAllAsRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id, recipientID uuid.UUID) (bool, error)
	DeleteByRecipient(ctx context.Context, recipientID uuid.UUID) error
}

type notificationRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewNotificationRepository(db database.Querier, log *zap.Logger) NotificationRepository {
	return &notificationRepository{
		db:  db,
		log: log.With(zap.String("repository", "notification")),
	}
}

const notificationColumns = `id, recipient_id, sender_id, type, title, message, related_model,
	related_id, read, priority, created_at`

func scanNotification(row pgx.Row) (*entity.Notification, error) {
	var n entity.Notification
	err := row.Scan(
		&n.ID,
		&n.RecipientID,
		&n.SenderID,
		&n.Type,
		&n.Title,
		&n.Message,
		&n.RelatedModel,
		&n.RelatedID,
		&n.Read,
		&n.Priority,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	query := `
		INSERT INTO notifications (id, recipient_id, sender_id, type, title, message,
		                           related_model, related_id, read, priority, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		n.ID,
		n.RecipientID,
		n.SenderID,
		n.Type,
		n.Title,
		n.Message,
		n.RelatedModel,
		n.RelatedID,
		n.Read,
		n.Priority,
		n.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create notification",
			zap.Error(err),
			zap.String("recipient_id", n.RecipientID.String()),
			zap.String("type", string(n.Type)),
		)
		return fmt.Errorf("create notification for %s: %w", n.RecipientID.String(), err)
	}

	return nil
}

func (r *notificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Notification, error) {
	n, err := scanNotification(r.db.QueryRow(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find notification %s: %w", id.String(), err)
	}
	return n, nil
}

func (r *notificationRepository) FindByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, limit, offset int) ([]*entity.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE recipient_id = $1 AND ($2 = FALSE OR read = FALSE)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.Query(ctx, query, recipientID, unreadOnly, limit, offset)
	if err != nil {
		r.log.Error("Failed to find notifications", zap.Error(err), zap.String("recipient_id", recipientID.String()))
		return nil, fmt.Errorf("find notifications of %s: %w", recipientID.String(), err)
	}
	defer rows.Close()

	var notifications []*entity.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification row: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notification rows: %w", err)
	}
	return notifications, nil
}

func (r *notificationRepository) CountByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND ($2 = FALSE OR read = FALSE)`,
		recipientID, unreadOnly,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count notifications of %s: %w", recipientID.String(), err)
	}
	return count, nil
}

// MarkAsRead reports false when no notification with that ID belongs to
// the recipient.
func (r *notificationRepository) MarkAsRead(ctx context.Context, id, recipientID uuid.UUID) (bool, error) {
	result, err := r.db.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND recipient_id = $2`, id, recipientID,
	)
	if err != nil {
		return false, fmt.Errorf("mark notification %s read: %w", id.String(), err)
	}
	return result.RowsAffected() > 0, nil
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	result, err := r.db.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE recipient_id = $1 AND read = FALSE`, recipientID,
	)
	if err != nil {
		return 0, fmt.Errorf("mark notifications of %s read: %w", recipientID.String(), err)
	}
	return result.RowsAffected(), nil
}

func (r *notificationRepository) Delete(ctx context.Context, id, recipientID uuid.UUID) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1 AND recipient_id = $2`, id, recipientID)
	if err != nil {
		return false, fmt.Errorf("delete notification %s: %w", id.String(), err)
	}
	return result.RowsAffected() > 0, nil
}

func (r *notificationRepository) DeleteByRecipient(ctx context.Context, recipientID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE recipient_id = $1`, recipientID); err != nil {
		return fmt.Errorf("delete notifications of %s: %w", recipientID.String(), err)
	}
	return nil
}
