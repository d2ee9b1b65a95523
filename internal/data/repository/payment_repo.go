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

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Payment, error)
}

type paymentRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewPaymentRepository(db database.Querier, log *zap.Logger) PaymentRepository {
	return &paymentRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment")),
	}
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (id, booking_id, payer_id, amount, method, status, transaction_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		payment.ID,
		payment.BookingID,
		payment.PayerID,
		payment.Amount,
		payment.Method,
		payment.Status,
		payment.TransactionID,
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if isUniqueViolation(err) {
		r.log.Warn("Payment already recorded", zap.String("booking_id", payment.BookingID.String()))
		return fmt.Errorf("create payment for booking %s: %w", payment.BookingID.String(), ErrDuplicate)
	}
	if err != nil {
		r.log.Error("Failed to create payment", zap.Error(err), zap.String("booking_id", payment.BookingID.String()))
		return fmt.Errorf("create payment for booking %s: %w", payment.BookingID.String(), err)
	}

	return nil
}

func (r *paymentRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Payment, error) {
	query := `
		SELECT id, booking_id, payer_id, amount, method, status, transaction_id, created_at, updated_at
		FROM payments
		WHERE booking_id = $1
	`

	var p entity.Payment
	err := r.db.QueryRow(ctx, query, bookingID).Scan(
		&p.ID,
		&p.BookingID,
		&p.PayerID,
		&p.Amount,
		&p.Method,
		&p.Status,
		&p.TransactionID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment", zap.Error(err), zap.String("booking_id", bookingID.String()))
		return nil, fmt.Errorf("find payment of booking %s: %w", bookingID.String(), err)
	}

	return &p, nil
}
