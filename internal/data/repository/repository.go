package repository

import (
	"errors"

	"stay-nest/pkg/database"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// ErrDuplicate is returned when an insert hits a unique constraint.
var ErrDuplicate = errors.New("duplicate record")

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

type Repository struct {
	User         UserRepository
	Session      SessionRepository
	OTP          OTPRepository
	Property     PropertyRepository
	Booking      BookingRepository
	Payment      PaymentRepository
	Review       ReviewRepository
	Notification NotificationRepository
	Tx           TxManager
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	repo := newQueriers(db, log)
	repo.Tx = NewTxManager(db, log)
	return repo
}

// newQueriers builds every table repository on top of q, which may be the
// pool or an open transaction.
func newQueriers(q database.Querier, log *zap.Logger) *Repository {
	return &Repository{
		User:         NewUserRepository(q, log),
		Session:      NewSessionRepository(q, log),
		OTP:          NewOTPRepository(q, log),
		Property:     NewPropertyRepository(q, log),
		Booking:      NewBookingRepository(q, log),
		Payment:      NewPaymentRepository(q, log),
		Review:       NewReviewRepository(q, log),
		Notification: NewNotificationRepository(q, log),
	}
}
