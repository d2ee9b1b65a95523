package entity

import (
	"github.com/google/uuid"
)

type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

type Review struct {
	BaseNoDelete
	UserID     uuid.UUID    `db:"user_id"`
	PropertyID uuid.UUID    `db:"property_id"`
	Rating     int          `db:"rating"` // 1-5
	Comment    string       `db:"comment"`
	Status     ReviewStatus `db:"status"`
}
