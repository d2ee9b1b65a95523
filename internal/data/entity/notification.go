package entity

import (
	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationBookingRequest     NotificationType = "booking_request"
	NotificationBookingConfirmed   NotificationType = "booking_confirmed"
	NotificationBookingCancelled   NotificationType = "booking_cancelled"
	NotificationPaymentReceived    NotificationType = "payment_received"
	NotificationPaymentFailed      NotificationType = "payment_failed"
	NotificationReviewReceived     NotificationType = "review_received"
	NotificationPropertyVerified   NotificationType = "property_verified"
	NotificationPropertyRejected   NotificationType = "property_rejected"
	NotificationMessageReceived    NotificationType = "message_received"
	NotificationSystemNotification NotificationType = "system_notification"
)

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityMedium NotificationPriority = "medium"
	PriorityHigh   NotificationPriority = "high"
)

type RelatedModel string

const (
	RelatedProperty RelatedModel = "Property"
	RelatedBooking  RelatedModel = "Booking"
	RelatedReview   RelatedModel = "Review"
	RelatedMessage  RelatedModel = "Message"
	RelatedPayment  RelatedModel = "Payment"
)

type Notification struct {
	BaseSimple
	RecipientID  uuid.UUID            `db:"recipient_id"`
	SenderID     *uuid.UUID           `db:"sender_id"`
	Type         NotificationType     `db:"type"`
	Title        string               `db:"title"`
	Message      string               `db:"message"`
	RelatedModel *RelatedModel        `db:"related_model"`
	RelatedID    *uuid.UUID           `db:"related_id"`
	Read         bool                 `db:"read"`
	Priority     NotificationPriority `db:"priority"`
}
