package request

import "stay-nest/internal/data/entity"

type PriceRequest struct {
	Amount   float64 `json:"amount" validate:"gte=0"`
	Currency string  `json:"currency" validate:"omitempty,len=3"`
	Period   string  `json:"period" validate:"omitempty,oneof=daily weekly monthly yearly"`
}

type SpecificationsRequest struct {
	Bedrooms    int     `json:"bedrooms" validate:"gte=0"`
	Bathrooms   int     `json:"bathrooms" validate:"gte=0"`
	Area        float64 `json:"area" validate:"gte=0"`
	Floor       *int    `json:"floor,omitempty"`
	TotalFloors *int    `json:"totalFloors,omitempty"`
	Furnishing  string  `json:"furnishing" validate:"omitempty,oneof=unfurnished semi-furnished fully-furnished"`
}

type CreatePropertyRequest struct {
	Title          string                `json:"title" validate:"required,min=3,max=100"`
	Description    string                `json:"description" validate:"required,max=2000"`
	Location       string                `json:"location" validate:"required"`
	Address        entity.Address        `json:"address"`
	Price          PriceRequest          `json:"price"`
	MaxGuests      int                   `json:"maxGuests" validate:"required,gte=1"`
	Amenities      entity.Amenities      `json:"amenities"`
	Specifications SpecificationsRequest `json:"specifications"`
	Rules          []string              `json:"rules,omitempty"`
}

type UpdatePropertyRequest struct {
	Title          *string                `json:"title,omitempty" validate:"omitempty,min=3,max=100"`
	Description    *string                `json:"description,omitempty" validate:"omitempty,max=2000"`
	Location       *string                `json:"location,omitempty" validate:"omitempty,min=1"`
	Address        *entity.Address        `json:"address,omitempty"`
	Price          *PriceRequest          `json:"price,omitempty"`
	MaxGuests      *int                   `json:"maxGuests,omitempty" validate:"omitempty,gte=1"`
	Amenities      *entity.Amenities      `json:"amenities,omitempty"`
	Specifications *SpecificationsRequest `json:"specifications,omitempty"`
	Rules          []string               `json:"rules,omitempty"`
	Status         *string                `json:"status,omitempty" validate:"omitempty,oneof=available booked maintenance unavailable"`
}

// PropertyListRequest carries the public listing filters read from the query string.
type PropertyListRequest struct {
	PaginatedRequest
	Location  string
	MinPrice  *float64
	MaxPrice  *float64
	Bedrooms  *int
	Bathrooms *int
	Amenities []string
	SortBy    string
}
