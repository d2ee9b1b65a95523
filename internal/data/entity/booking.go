package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"

	// BookingStatusApproved is a legacy spelling of confirmed. It still counts
	// against capacity but is never written.
	BookingStatusApproved BookingStatus = "approved"
)

// ActiveBookingStatuses occupy capacity on their dates.
var ActiveBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusApproved,
}

var validTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCancelled},
	BookingStatusApproved:  {BookingStatusCancelled},
	BookingStatusCancelled: {},
}

// ParseBookingStatus normalizes a client supplied status.
func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled:
		return BookingStatus(s), true
	case BookingStatusApproved:
		return BookingStatusConfirmed, true
	}
	return "", false
}

func (s BookingStatus) IsActive() bool {
	for _, active := range ActiveBookingStatuses {
		if s == active {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCancelled
}

func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

type Booking struct {
	BaseNoDelete
	PropertyID      uuid.UUID     `db:"property_id"`
	GuestID         uuid.UUID     `db:"guest_id"`
	CheckIn         time.Time     `db:"check_in"`
	CheckOut        time.Time     `db:"check_out"`
	Guests          int           `db:"guests"`
	TotalPrice      float64       `db:"total_price"`
	Status          BookingStatus `db:"status"`
	SpecialRequests *string       `db:"special_requests"`
}

// Nights is the number of nights between check-in and check-out.
func (b *Booking) Nights() int {
	return int(b.CheckOut.Sub(b.CheckIn).Hours() / 24)
}
