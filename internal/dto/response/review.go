package response

import (
	"time"

	"stay-nest/internal/data/entity"
)

type ReviewResponse struct {
	ID            string              `json:"id"`
	UserID        string              `json:"userId"`
	UserName      string              `json:"userName,omitempty"`
	PropertyID    string              `json:"propertyId"`
	PropertyTitle string              `json:"propertyTitle,omitempty"`
	Rating        int                 `json:"rating"`
	Comment       string              `json:"comment"`
	Status        entity.ReviewStatus `json:"status"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// Helper converter
func ReviewToResponse(review *entity.Review, userName, propertyTitle string) ReviewResponse {
	return ReviewResponse{
		ID:            review.ID.String(),
		UserID:        review.UserID.String(),
		UserName:      userName,
		PropertyID:    review.PropertyID.String(),
		PropertyTitle: propertyTitle,
		Rating:        review.Rating,
		Comment:       review.Comment,
		Status:        review.Status,
		CreatedAt:     review.CreatedAt,
		UpdatedAt:     review.UpdatedAt,
	}
}
