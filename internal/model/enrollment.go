package model

import "time"

// 选课状态：仅允许 pending → approved | rejected，终态不可再变更
const (
	EnrollmentPending  = "pending"
	EnrollmentApproved = "approved"
	EnrollmentRejected = "rejected"
)

// 状态变更发起方
const (
	ActorAdmin  = "admin"
	ActorSystem = "system"
)

// Enrollment 选课记录表 — 对应 enrollments（永不删除）
type Enrollment struct {
	EnrollmentID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"enrollment_id"`
	StudentID    string     `gorm:"type:uuid;not null"                             json:"student_id"`
	CourseID     string     `gorm:"type:uuid;not null"                             json:"course_id"`
	Status       string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	EnrolledAt   time.Time  `gorm:"not null"                                       json:"enrolled_at"`
	ApprovedAt   *time.Time `                                                      json:"approved_at,omitempty"` // 仅在通过时写入
	DecidedAt    *time.Time `                                                      json:"decided_at,omitempty"`
	DecidedBy    *string    `gorm:"type:uuid"                                      json:"decided_by,omitempty"` // 系统自动审批时为空

	// 关联
	Student *User   `gorm:"foreignKey:StudentID;references:UserID"  json:"student,omitempty"`
	Course  *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
}

// TableName 指定表名
func (Enrollment) TableName() string { return "enrollments" }

// IsPending 是否待审批
func (e *Enrollment) IsPending() bool { return e.Status == EnrollmentPending }
