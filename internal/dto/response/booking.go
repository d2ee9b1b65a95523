package response

import (
	"time"

	"stay-nest/internal/data/entity"
)

type BookingResponse struct {
	ID              string               `json:"id"`
	PropertyID      string               `json:"propertyId"`
	PropertyTitle   string               `json:"propertyTitle,omitempty"`
	GuestID         string               `json:"guestId"`
	CheckIn         time.Time            `json:"checkIn"`
	CheckOut        time.Time            `json:"checkOut"`
	Nights          int                  `json:"nights"`
	Guests          int                  `json:"guests"`
	TotalPrice      float64              `json:"totalPrice"`
	Status          entity.BookingStatus `json:"status"`
	SpecialRequests *string              `json:"specialRequests,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

type PaymentResponse struct {
	ID            string               `json:"id"`
	BookingID     string               `json:"bookingId"`
	Amount        float64              `json:"amount"`
	Method        entity.PaymentMethod `json:"method"`
	Status        entity.PaymentStatus `json:"status"`
	TransactionID string               `json:"transactionId"`
	CreatedAt     time.Time            `json:"createdAt"`
}

func BookingToResponse(b *entity.Booking, propertyTitle string) BookingResponse {
	return BookingResponse{
		ID:              b.ID.String(),
		PropertyID:      b.PropertyID.String(),
		PropertyTitle:   propertyTitle,
		GuestID:         b.GuestID.String(),
		CheckIn:         b.CheckIn,
		CheckOut:        b.CheckOut,
		Nights:          b.Nights(),
		Guests:          b.Guests,
		TotalPrice:      b.TotalPrice,
		Status:          b.Status,
		SpecialRequests: b.SpecialRequests,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func PaymentToResponse(p *entity.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID.String(),
		BookingID:     p.BookingID.String(),
		Amount:        p.Amount,
		Method:        p.Method,
		Status:        p.Status,
		TransactionID: p.TransactionID,
		CreatedAt:     p.CreatedAt,
	}
}
