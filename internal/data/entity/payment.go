package entity

import (
	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type PaymentMethod string

const (
	PaymentMethodCard       PaymentMethod = "card"
	PaymentMethodUPI        PaymentMethod = "upi"
	PaymentMethodNetBanking PaymentMethod = "netbanking"
	PaymentMethodWallet     PaymentMethod = "wallet"
)

// Payment records a simulated charge against a booking.
type Payment struct {
	BaseNoDelete
	BookingID     uuid.UUID     `db:"booking_id"`
	PayerID       uuid.UUID     `db:"payer_id"`
	Amount        float64       `db:"amount"`
	Method        PaymentMethod `db:"method"`
	Status        PaymentStatus `db:"status"`
	TransactionID string        `db:"transaction_id"`
}
