package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stay-nest/internal/data/entity"
	"stay-nest/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByGuestID(ctx context.Context, guestID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByGuestID(ctx context.Context, guestID uuid.UUID) (int64, error)
	FindByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*entity.Booking, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.Booking, error)
	CountAll(ctx context.Context) (int64, error)
	// UpdateStatus moves a booking from one status to another. It reports
	// false when the stored status is no longer from.
	UpdateStatus(ctx context.Context, bookingID uuid.UUID, from, to entity.BookingStatus) (bool, error)
	DeleteByGuestID(ctx context.Context, guestID uuid.UUID) error

	// FindOverlapping returns the active bookings of a property whose stay
	// intersects [checkIn, checkOut). Back-to-back stays do not intersect.
	FindOverlapping(ctx context.Context, propertyID uuid.UUID, checkIn, checkOut time.Time) ([]*entity.Booking, error)
}

type bookingRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewBookingRepository(db database.Querier, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, property_id, guest_id, check_in, check_out, guests, total_price,
	status, special_requests, created_at, updated_at`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var b entity.Booking
	err := row.Scan(
		&b.ID,
		&b.PropertyID,
		&b.GuestID,
		&b.CheckIn,
		&b.CheckOut,
		&b.Guests,
		&b.TotalPrice,
		&b.Status,
		&b.SpecialRequests,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) collect(rows pgx.Rows) ([]*entity.Booking, error) {
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking rows: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, property_id, guest_id, check_in, check_out, guests,
		                      total_price, status, special_requests, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.PropertyID,
		booking.GuestID,
		booking.CheckIn,
		booking.CheckOut,
		booking.Guests,
		booking.TotalPrice,
		booking.Status,
		booking.SpecialRequests,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("property_id", booking.PropertyID.String()),
			zap.String("guest_id", booking.GuestID.String()),
		)
		return fmt.Errorf("create booking %s: %w", booking.ID.String(), err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID", zap.Error(err), zap.String("booking_id", id.String()))
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByGuestID(ctx context.Context, guestID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE guest_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, guestID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by guest",
			zap.Error(err),
			zap.String("guest_id", guestID.String()),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find bookings by guest %s: %w", guestID.String(), err)
	}
	return r.collect(rows)
}

func (r *bookingRepository) CountByGuestID(ctx context.Context, guestID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE guest_id = $1`, guestID).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings by guest", zap.Error(err), zap.String("guest_id", guestID.String()))
		return 0, fmt.Errorf("count bookings by guest %s: %w", guestID.String(), err)
	}
	return count, nil
}

func (r *bookingRepository) FindByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE property_id = $1
		ORDER BY check_in DESC
	`

	rows, err := r.db.Query(ctx, query, propertyID)
	if err != nil {
		r.log.Error("Failed to find bookings by property", zap.Error(err), zap.String("property_id", propertyID.String()))
		return nil, fmt.Errorf("find bookings by property %s: %w", propertyID.String(), err)
	}
	return r.collect(rows)
}

func (r *bookingRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to find all bookings", zap.Error(err))
		return nil, fmt.Errorf("find all bookings: %w", err)
	}
	return r.collect(rows)
}

func (r *bookingRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count all bookings: %w", err)
	}
	return count, nil
}

func (r *bookingRepository) FindOverlapping(ctx context.Context, propertyID uuid.UUID, checkIn, checkOut time.Time) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE property_id = $1
		  AND status = ANY($2)
		  AND check_in < $4
		  AND check_out > $3
	`

	statuses := make([]string, len(entity.ActiveBookingStatuses))
	for i, s := range entity.ActiveBookingStatuses {
		statuses[i] = string(s)
	}

	rows, err := r.db.Query(ctx, query, propertyID, statuses, checkIn, checkOut)
	if err != nil {
		r.log.Error("Failed to find overlapping bookings",
			zap.Error(err),
			zap.String("property_id", propertyID.String()),
			zap.Time("check_in", checkIn),
			zap.Time("check_out", checkOut),
		)
		return nil, fmt.Errorf("find overlapping bookings of property %s: %w", propertyID.String(), err)
	}
	return r.collect(rows)
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, bookingID uuid.UUID, from, to entity.BookingStatus) (bool, error) {
	query := `UPDATE bookings SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`

	result, err := r.db.Exec(ctx, query, bookingID, from, to)
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("status", string(to)),
		)
		return false, fmt.Errorf("update booking %s status to %s: %w", bookingID.String(), string(to), err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *bookingRepository) DeleteByGuestID(ctx context.Context, guestID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE guest_id = $1`, guestID); err != nil {
		r.log.Error("Failed to delete bookings of guest", zap.Error(err), zap.String("guest_id", guestID.String()))
		return fmt.Errorf("delete bookings of guest %s: %w", guestID.String(), err)
	}
	return nil
}
