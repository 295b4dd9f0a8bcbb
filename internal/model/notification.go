package model

import (
	"time"

	"gorm.io/datatypes"
)

// 通知类型
const (
	NotificationInfo    = "info"
	NotificationSuccess = "success"
	NotificationWarning = "warning"
	NotificationError   = "error"
)

// Notification 站内通知表 — 对应 notifications
type Notification struct {
	NotificationID string            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	UserID         string            `gorm:"type:uuid;not null"                             json:"user_id"`
	Message        string            `gorm:"type:text;not null"                             json:"message"`
	Type           string            `gorm:"type:varchar(20);not null;default:'info'"       json:"type"`
	IsRead         bool              `gorm:"not null;default:false"                         json:"is_read"`
	RelatedType    *string           `gorm:"type:varchar(20)"                               json:"related_type,omitempty"` // enrollment | chat
	RelatedID      *string           `gorm:"type:uuid"                                      json:"related_id,omitempty"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb"                                     json:"metadata,omitempty"`
	CreatedAt      time.Time         `gorm:"not null"                                       json:"created_at"`
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }
