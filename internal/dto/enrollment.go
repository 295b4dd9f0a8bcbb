package dto

// ── 选课模块 DTO ──

// CreateEnrollmentRequest 学生选课请求
type CreateEnrollmentRequest struct {
	CourseID string `json:"course_id" binding:"required,uuid"`
}

// EnrollmentListRequest 管理端选课列表查询参数
type EnrollmentListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
}

// ── 选课模块响应 ──

// EnrollmentResponse 选课记录
type EnrollmentResponse struct {
	ID           string  `json:"id"`
	StudentID    string  `json:"student_id"`
	StudentName  string  `json:"student_name,omitempty"`
	StudentEmail string  `json:"student_email,omitempty"`
	CourseID     string  `json:"course_id"`
	CourseTitle  string  `json:"course_title,omitempty"`
	Status       string  `json:"status"`
	EnrolledAt   string  `json:"enrolled_at"`
	ApprovedAt   *string `json:"approved_at,omitempty"`
	DecidedAt    *string `json:"decided_at,omitempty"`
}
