package response

import (
	"time"

	"stay-nest/internal/data/entity"
)

type RatingResponse struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type PropertyResponse struct {
	ID             string                `json:"id"`
	OwnerID        string                `json:"ownerId"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Location       string                `json:"location"`
	Address        entity.Address        `json:"address"`
	Price          entity.Price          `json:"price"`
	MaxGuests      int                   `json:"maxGuests"`
	Amenities      entity.Amenities      `json:"amenities"`
	Specifications entity.Specifications `json:"specifications"`
	Images         []entity.Image        `json:"images"`
	Rules          []string              `json:"rules"`
	Status         entity.PropertyStatus `json:"status"`
	Rating         RatingResponse        `json:"rating"`
	Views          int                   `json:"views"`
	FavoritesCount int                   `json:"favoritesCount"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}

type FavoriteResponse struct {
	PropertyID string `json:"propertyId"`
	Favorited  bool   `json:"favorited"`
}

func PropertyToResponse(p *entity.Property) PropertyResponse {
	images := p.Images
	if images == nil {
		images = []entity.Image{}
	}
	rules := p.Rules
	if rules == nil {
		rules = []string{}
	}

	return PropertyResponse{
		ID:             p.ID.String(),
		OwnerID:        p.OwnerID.String(),
		Title:          p.Title,
		Description:    p.Description,
		Location:       p.Location,
		Address:        p.Address,
		Price:          p.Price,
		MaxGuests:      p.MaxGuests,
		Amenities:      p.Amenities,
		Specifications: p.Specifications,
		Images:         images,
		Rules:          rules,
		Status:         p.Status,
		Rating:         RatingResponse{Average: p.RatingAverage, Count: p.RatingCount},
		Views:          p.Views,
		FavoritesCount: p.FavoritesCount,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func PropertiesToResponse(properties []*entity.Property) []PropertyResponse {
	out := make([]PropertyResponse, len(properties))
	for i, p := range properties {
		out[i] = PropertyToResponse(p)
	}
	return out
}
