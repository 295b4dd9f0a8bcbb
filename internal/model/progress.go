package model

import "time"

// StudentProgress 学习进度表 — 对应 student_progress，每个 (学生, 章节) 一行
type StudentProgress struct {
	ProgressID  string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"progress_id"`
	StudentID   string     `gorm:"type:uuid;not null"                             json:"student_id"`
	CourseID    string     `gorm:"type:uuid;not null"                             json:"course_id"`
	ChapterID   string     `gorm:"type:uuid;not null"                             json:"chapter_id"`
	Completed   bool       `gorm:"not null;default:false"                         json:"completed"`
	CompletedAt *time.Time `                                                      json:"completed_at,omitempty"`
	TimeSpent   float64    `gorm:"not null;default:0"                             json:"time_spent"` // 小时
	BaseModel
}

// TableName 指定表名
func (StudentProgress) TableName() string { return "student_progress" }

// ProgressStats 某学生在某课程下的聚合学习数据
type ProgressStats struct {
	TotalTime      float64 `json:"total_time"`
	CompletedCount int     `json:"completed_count"`
	TotalCount     int     `json:"total_count"`
}
