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

type OTPRepository interface {
	Create(ctx context.Context, otp *entity.OTP) error
	FindValidOTP(ctx context.Context, email, otpCode string, otpType entity.OTPType) (*entity.OTP, error)
	MarkAsUsed(ctx context.Context, otpID uuid.UUID) error
	InvalidateForUser(ctx context.Context, userID uuid.UUID, otpType entity.OTPType) error
	CleanExpired(ctx context.Context) (int64, error)
}

type otpRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewOTPRepository(db database.Querier, log *zap.Logger) OTPRepository {
	return &otpRepository{
		db:  db,
		log: log.With(zap.String("repository", "otp")),
	}
}

func (r *otpRepository) Create(ctx context.Context, otp *entity.OTP) error {
	query := `
		INSERT INTO otps (id, user_id, email, otp_code, otp_type, expires_at, is_used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		otp.ID,
		otp.UserID,
		otp.Email,
		otp.OTPCode,
		otp.OTPType,
		otp.ExpiresAt,
		otp.IsUsed,
		otp.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create OTP", zap.Error(err), zap.String("email", otp.Email))
		return fmt.Errorf("create OTP for %s: %w", otp.Email, err)
	}

	return nil
}

func (r *otpRepository) FindValidOTP(ctx context.Context, email, otpCode string, otpType entity.OTPType) (*entity.OTP, error) {
	query := `
		SELECT id, user_id, email, otp_code, otp_type, expires_at, is_used, created_at
		FROM otps
		WHERE LOWER(email) = LOWER($1)
		  AND otp_code = $2
		  AND otp_type = $3
		  AND is_used = false
		  AND expires_at > NOW()
		ORDER BY created_at DESC
		LIMIT 1
	`

	var otp entity.OTP
	err := r.db.QueryRow(ctx, query, email, otpCode, otpType).Scan(
		&otp.ID,
		&otp.UserID,
		&otp.Email,
		&otp.OTPCode,
		&otp.OTPType,
		&otp.ExpiresAt,
		&otp.IsUsed,
		&otp.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find valid OTP", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("find valid OTP for %s: %w", email, err)
	}

	return &otp, nil
}

func (r *otpRepository) MarkAsUsed(ctx context.Context, otpID uuid.UUID) error {
	result, err := r.db.Exec(ctx, `UPDATE otps SET is_used = true WHERE id = $1`, otpID)
	if err != nil {
		r.log.Error("Failed to mark OTP as used", zap.Error(err), zap.String("otp_id", otpID.String()))
		return fmt.Errorf("mark OTP %s as used: %w", otpID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("OTP %s not found", otpID.String())
	}

	return nil
}

// InvalidateForUser burns every outstanding code of the given type.
func (r *otpRepository) InvalidateForUser(ctx context.Context, userID uuid.UUID, otpType entity.OTPType) error {
	query := `UPDATE otps SET is_used = true WHERE user_id = $1 AND otp_type = $2 AND is_used = false`

	if _, err := r.db.Exec(ctx, query, userID, otpType); err != nil {
		return fmt.Errorf("invalidate OTPs of user %s: %w", userID.String(), err)
	}
	return nil
}

func (r *otpRepository) CleanExpired(ctx context.Context) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM otps WHERE expires_at < NOW() OR is_used = true`)
	if err != nil {
		r.log.Error("Failed to clean OTPs", zap.Error(err))
		return 0, fmt.Errorf("clean OTPs: %w", err)
	}
	return result.RowsAffected(), nil
}
