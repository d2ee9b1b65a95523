package request

type CreateBookingRequest struct {
	PropertyID      string  `json:"propertyId" validate:"required,uuid"`
	CheckIn         string  `json:"checkIn" validate:"required"`
	CheckOut        string  `json:"checkOut" validate:"required"`
	Guests          int     `json:"guests" validate:"required,gte=1"`
	TotalPrice      float64 `json:"totalPrice" validate:"gte=0"`
	SpecialRequests *string `json:"specialRequests,omitempty" validate:"omitempty,max=500"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed approved cancelled"`
}

type PayBookingRequest struct {
	Amount        float64 `json:"amount" validate:"gt=0"`
	Method        string  `json:"method" validate:"required,oneof=card upi netbanking wallet"`
	TransactionID *string `json:"transactionId,omitempty" validate:"omitempty,max=100"`
}
