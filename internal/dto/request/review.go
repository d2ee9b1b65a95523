package request

type CreateReviewRequest struct {
	PropertyID string `json:"propertyId" validate:"required,uuid"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	Comment    string `json:"comment" validate:"required,min=10,max=500"`
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment,omitempty" validate:"omitempty,min=10,max=500"`
}

type UpdateReviewStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}
