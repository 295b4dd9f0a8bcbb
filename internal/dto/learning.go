package dto

import "github.com/25Devmaker/coursehub/internal/model"

// ── 学习进度 DTO ──

// TrackTimeRequest 上报学习时长（秒）
type TrackTimeRequest struct {
	ChapterID string `json:"chapter_id" binding:"required,uuid"`
	Seconds   int    `json:"seconds"    binding:"required,min=1,max=86400"`
}

// ── 学习分析响应 ──

// Recommendation 学习建议（固定字段）
type Recommendation struct {
	LearningSpeed        model.LearningSpeed        `json:"learning_speed"`
	FocusAreas           []string                   `json:"focus_areas"`
	SuggestedStudyTime   float64                    `json:"suggested_study_time"` // 小时
	DifficultyAdjustment model.DifficultyAdjustment `json:"difficulty_adjustment"`
}

// ProgressResponse 进度记录
type ProgressResponse struct {
	ChapterID   string  `json:"chapter_id"`
	Completed   bool    `json:"completed"`
	CompletedAt *string `json:"completed_at,omitempty"`
	TimeSpent   float64 `json:"time_spent"`
}

// NextChapterResponse 下一章节推荐
type NextChapterResponse struct {
	AllCompleted   bool             `json:"all_completed"`
	Chapter        *ChapterResponse `json:"chapter,omitempty"`
	Recommendation *Recommendation  `json:"recommendation,omitempty"`
}

// LearningReportResponse 学习报告
type LearningReportResponse struct {
	CourseID               string              `json:"course_id"`
	CourseTitle            string              `json:"course_title"`
	TotalChapters          int                 `json:"total_chapters"`
	CompletedChapters      int                 `json:"completed_chapters"`
	CompletionPercentage   float64             `json:"completion_percentage"`
	TotalTimeSpent         float64             `json:"total_time_spent"`
	AverageTimePerChapter  float64             `json:"average_time_per_chapter"`
	EstimatedRemainingTime float64             `json:"estimated_remaining_time"`
	LearningSpeed          model.LearningSpeed `json:"learning_speed"`
	Advice                 []string            `json:"advice"`
}

// StudentProgressResponse 管理端查看学生在各课程的进度
type StudentProgressResponse struct {
	Student UserResponse             `json:"student"`
	Courses []CourseProgressResponse `json:"courses"`
}

// CourseProgressResponse 单门课程进度汇总
type CourseProgressResponse struct {
	CourseID          string  `json:"course_id"`
	CourseTitle       string  `json:"course_title"`
	Status            string  `json:"status"`
	CompletedChapters int     `json:"completed_chapters"`
	TotalChapters     int     `json:"total_chapters"`
	TotalTimeSpent    float64 `json:"total_time_spent"`
}
