package model

import "time"

// 聊天消息发送方
const (
	SenderStudent = "student"
	SenderAdmin   = "admin"
)

// ChatMessage 学生-管理员聊天消息 — 对应 chat_messages，按学生分线程
type ChatMessage struct {
	MessageID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"message_id"`
	StudentID string    `gorm:"type:uuid;not null"                             json:"student_id"`
	AdminID   *string   `gorm:"type:uuid"                                      json:"admin_id,omitempty"`
	Sender    string    `gorm:"type:varchar(10);not null"                      json:"sender"`
	Message   string    `gorm:"type:text;not null"                             json:"message"`
	CreatedAt time.Time `gorm:"not null"                                       json:"created_at"`

	Student *User `gorm:"foreignKey:StudentID;references:UserID" json:"student,omitempty"`
}

// TableName 指定表名
func (ChatMessage) TableName() string { return "chat_messages" }
