package entity

import (
	"github.com/google/uuid"
)

type PropertyStatus string

const (
	PropertyStatusAvailable   PropertyStatus = "available"
	PropertyStatusBooked      PropertyStatus = "booked"
	PropertyStatusMaintenance PropertyStatus = "maintenance"
	PropertyStatusUnavailable PropertyStatus = "unavailable"
)

type PricePeriod string

const (
	PricePeriodDaily   PricePeriod = "daily"
	PricePeriodWeekly  PricePeriod = "weekly"
	PricePeriodMonthly PricePeriod = "monthly"
	PricePeriodYearly  PricePeriod = "yearly"
)

type Furnishing string

const (
	FurnishingNone  Furnishing = "unfurnished"
	FurnishingSemi  Furnishing = "semi-furnished"
	FurnishingFully Furnishing = "fully-furnished"
)

const MaxPropertyImages = 5

type Property struct {
	Base
	OwnerID        uuid.UUID      `db:"owner_id"`
	Title          string         `db:"title"`
	Description    string         `db:"description"`
	Location       string         `db:"location"`
	Address        Address        `db:"address"`
	Price          Price          `db:"price"`
	MaxGuests      int            `db:"max_guests"`
	Amenities      Amenities      `db:"amenities"`
	Specifications Specifications `db:"specifications"`
	Images         []Image        `db:"images"`
	Rules          []string       `db:"rules"`
	Status         PropertyStatus `db:"status"`
	RatingAverage  float64        `db:"rating_average"`
	RatingCount    int            `db:"rating_count"`
	Views          int            `db:"views"`
	FavoritesCount int            `db:"favorites_count"`
}

type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
	Country string `json:"country,omitempty"`
}

type Price struct {
	Amount   float64     `json:"amount"`
	Currency string      `json:"currency"`
	Period   PricePeriod `json:"period"`
}

type Amenities struct {
	WiFi     bool `json:"wifi"`
	TV       bool `json:"tv"`
	AC       bool `json:"ac"`
	Kitchen  bool `json:"kitchen"`
	Parking  bool `json:"parking"`
	Elevator bool `json:"elevator"`
	Security bool `json:"security"`
	Pool     bool `json:"pool"`
	Gym      bool `json:"gym"`
}

// AmenityNames is the set of filterable amenity keys.
var AmenityNames = []string{"wifi", "tv", "ac", "kitchen", "parking", "elevator", "security", "pool", "gym"}

func IsAmenity(name string) bool {
	for _, n := range AmenityNames {
		if n == name {
			return true
		}
	}
	return false
}

type Specifications struct {
	Bedrooms    int        `json:"bedrooms"`
	Bathrooms   int        `json:"bathrooms"`
	Area        float64    `json:"area"`
	Floor       *int       `json:"floor,omitempty"`
	TotalFloors *int       `json:"totalFloors,omitempty"`
	Furnishing  Furnishing `json:"furnishing"`
}

type Image struct {
	ID       uuid.UUID `json:"id"`
	URL      string    `json:"url"`
	PublicID string    `json:"publicId"`
	IsMain   bool      `json:"isMain"`
}

func (p *Property) IsOwnedBy(userID uuid.UUID) bool {
	return p.OwnerID == userID
}
