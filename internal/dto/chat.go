package dto

// ── 聊天模块 DTO ──

// SendMessageRequest 学生发送消息
type SendMessageRequest struct {
	Message string `json:"message" binding:"required,max=2000"`
}

// AdminSendMessageRequest 管理员向指定学生发送消息
type AdminSendMessageRequest struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
	Message   string `json:"message"    binding:"required,max=2000"`
}

// BroadcastRequest 管理员群发消息
type BroadcastRequest struct {
	Message string `json:"message" binding:"required,max=2000"`
}

// ── 聊天模块响应 ──

// ChatMessageResponse 聊天消息
type ChatMessageResponse struct {
	ID          string  `json:"id"`
	StudentID   string  `json:"student_id"`
	StudentName string  `json:"student_name,omitempty"`
	AdminID     *string `json:"admin_id,omitempty"`
	Sender      string  `json:"sender"`
	Message     string  `json:"message"`
	CreatedAt   string  `json:"created_at"`
}

// ChatThreadResponse 管理端会话列表项
type ChatThreadResponse struct {
	StudentID     string `json:"student_id"`
	StudentName   string `json:"student_name"`
	LastMessage   string `json:"last_message"`
	LastMessageAt string `json:"last_message_at"`
	MessageCount  int64  `json:"message_count"`
}

// BroadcastResponse 群发结果
type BroadcastResponse struct {
	Recipients int `json:"recipients"`
}
