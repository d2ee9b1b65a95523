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

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.Review, error)
	CountAll(ctx context.Context) (int64, error)
	FindByPropertyID(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]*entity.Review, error)
	CountByPropertyID(ctx context.Context, propertyID uuid.UUID) (int64, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Review, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	FindByUserAndProperty(ctx context.Context, userID, propertyID uuid.UUID) (*entity.Review, error)
	Update(ctx context.Context, review *entity.Review) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)

	// GetPropertyRatingStats returns mean and count of approved reviews.
	GetPropertyRatingStats(ctx context.Context, propertyID uuid.UUID) (float64, int, error)
}

type reviewRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewReviewRepository(db database.Querier, log *zap.Logger) ReviewRepository {
	return &reviewRepository{
		db:  db,
		log: log.With(zap.String("repository", "review")),
	}
}

const reviewColumns = `id, user_id, property_id, rating, comment, status, created_at, updated_at`

func scanReview(row pgx.Row) (*entity.Review, error) {
	var review entity.Review
	err := row.Scan(
		&review.ID,
		&review.UserID,
		&review.PropertyID,
		&review.Rating,
		&review.Comment,
		&review.Status,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) collect(rows pgx.Rows) ([]*entity.Review, error) {
	defer rows.Close()

	var reviews []*entity.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			r.log.Error("Failed to scan review row", zap.Error(err))
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}
	return reviews, nil
}

func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	query := `
		INSERT INTO reviews (id, user_id, property_id, rating, comment, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		review.ID,
		review.UserID,
		review.PropertyID,
		review.Rating,
		review.Comment,
		review.Status,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create review",
			zap.Error(err),
			zap.String("user_id", review.UserID.String()),
			zap.String("property_id", review.PropertyID.String()),
		)
		return fmt.Errorf("create review for property %s by user %s: %w",
			review.PropertyID.String(), review.UserID.String(), err)
	}

	return nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	review, err := scanReview(r.db.QueryRow(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find review by ID", zap.Error(err), zap.String("review_id", id.String()))
		return nil, fmt.Errorf("find review by ID %s: %w", id.String(), err)
	}
	return review, nil
}

// FindAll and the per-property queries hide rejected reviews.
func (r *reviewRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE status <> 'rejected'
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to find reviews", zap.Error(err))
		return nil, fmt.Errorf("find reviews: %w", err)
	}
	return r.collect(rows)
}

func (r *reviewRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM reviews WHERE status <> 'rejected'`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return count, nil
}

func (r *reviewRepository) FindByPropertyID(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]*entity.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE property_id = $1 AND status <> 'rejected'
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, propertyID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find reviews by property", zap.Error(err), zap.String("property_id", propertyID.String()))
		return nil, fmt.Errorf("find reviews by property %s: %w", propertyID.String(), err)
	}
	return r.collect(rows)
}

func (r *reviewRepository) CountByPropertyID(ctx context.Context, propertyID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM reviews WHERE property_id = $1 AND status <> 'rejected'`, propertyID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count reviews by property %s: %w", propertyID.String(), err)
	}
	return count, nil
}

func (r *reviewRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find reviews by user", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("find reviews by user %s: %w", userID.String(), err)
	}
	return r.collect(rows)
}

func (r *reviewRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM reviews WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count reviews by user %s: %w", userID.String(), err)
	}
	return count, nil
}

func (r *reviewRepository) FindByUserAndProperty(ctx context.Context, userID, propertyID uuid.UUID) (*entity.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE user_id = $1 AND property_id = $2`

	review, err := scanReview(r.db.QueryRow(ctx, query, userID, propertyID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find review of user %s for property %s: %w", userID.String(), propertyID.String(), err)
	}
	return review, nil
}

func (r *reviewRepository) Update(ctx context.Context, review *entity.Review) error {
	query := `UPDATE reviews SET rating = $2, comment = $3, status = $4, updated_at = $5 WHERE id = $1`

	result, err := r.db.Exec(ctx, query, review.ID, review.Rating, review.Comment, review.Status, review.UpdatedAt)
	if err != nil {
		r.log.Error("Failed to update review", zap.Error(err), zap.String("review_id", review.ID.String()))
		return fmt.Errorf("update review %s: %w", review.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("review %s not found", review.ID.String())
	}
	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete review", zap.Error(err), zap.String("review_id", id.String()))
		return fmt.Errorf("delete review %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("review %s not found", id.String())
	}
	return nil
}

// DeleteByUserID removes every review of the user and returns the affected
// property IDs so their ratings can be recomputed.
func (r *reviewRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `DELETE FROM reviews WHERE user_id = $1 RETURNING property_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("delete reviews of user %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var propertyIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan deleted review: %w", err)
		}
		propertyIDs = append(propertyIDs, id)
	}
	return propertyIDs, rows.Err()
}

func (r *reviewRepository) GetPropertyRatingStats(ctx context.Context, propertyID uuid.UUID) (float64, int, error) {
	query := `
		SELECT COALESCE(AVG(rating), 0)::float8, COUNT(*)
		FROM reviews
		WHERE property_id = $1 AND status = 'approved'
	`

	var avg float64
	var count int
	if err := r.db.QueryRow(ctx, query, propertyID).Scan(&avg, &count); err != nil {
		r.log.Error("Failed to get property rating stats", zap.Error(err), zap.String("property_id", propertyID.String()))
		return 0, 0, fmt.Errorf("get rating stats of property %s: %w", propertyID.String(), err)
	}
	return avg, count, nil
}
