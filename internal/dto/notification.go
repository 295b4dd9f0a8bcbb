package dto

// NotificationResponse 站内通知
type NotificationResponse struct {
	ID          string                 `json:"id"`
	Message     string                 `json:"message"`
	Type        string                 `json:"type"`
	IsRead      bool                   `json:"is_read"`
	RelatedType *string                `json:"related_type,omitempty"`
	RelatedID   *string                `json:"related_id,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt   string                 `json:"created_at"`
}
