package response

import (
	"time"

	"stay-nest/internal/data/entity"
)

type RelatedToResponse struct {
	Model entity.RelatedModel `json:"model"`
	ID    string              `json:"id"`
}

type NotificationResponse struct {
	ID        string                      `json:"id"`
	Recipient string                      `json:"recipient"`
	Sender    *string                     `json:"sender,omitempty"`
	Type      entity.NotificationType     `json:"type"`
	Title     string                      `json:"title"`
	Message   string                      `json:"message"`
	RelatedTo *RelatedToResponse          `json:"relatedTo,omitempty"`
	Read      bool                        `json:"read"`
	Priority  entity.NotificationPriority `json:"priority"`
	CreatedAt time.Time                   `json:"createdAt"`
}

type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Total         int64                  `json:"total"`
	UnreadCount   int64                  `json:"unreadCount"`
	CurrentPage   int                    `json:"currentPage"`
	TotalPages    int                    `json:"totalPages"`
}

type PreferencesResponse struct {
	Email bool `json:"email"`
	Push  bool `json:"push"`
}

func NotificationToResponse(n *entity.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:        n.ID.String(),
		Recipient: n.RecipientID.String(),
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.Read,
		Priority:  n.Priority,
		CreatedAt: n.CreatedAt,
	}

	if n.SenderID != nil {
		sender := n.SenderID.String()
		resp.Sender = &sender
	}
	if n.RelatedModel != nil && n.RelatedID != nil {
		resp.RelatedTo = &RelatedToResponse{Model: *n.RelatedModel, ID: n.RelatedID.String()}
	}

	return resp
}
