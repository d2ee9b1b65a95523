package request

type UpdatePreferencesRequest struct {
	Email *bool `json:"email,omitempty"`
	Push  *bool `json:"push,omitempty"`
}
