package dto

// ── 课程模块 DTO ──

// CreateCourseRequest 创建课程请求
type CreateCourseRequest struct {
	Title         string  `json:"title"          binding:"required,max=200"`
	Description   string  `json:"description"`
	Thumbnail     string  `json:"thumbnail"      binding:"omitempty,max=255"`
	TotalChapters int     `json:"total_chapters" binding:"omitempty,min=0"`
	TotalHours    float64 `json:"total_hours"    binding:"omitempty,min=0"`
}

// UpdateCourseRequest 更新课程请求（字段为空则不修改）
type UpdateCourseRequest struct {
	Title         *string  `json:"title"          binding:"omitempty,max=200"`
	Description   *string  `json:"description"`
	Thumbnail     *string  `json:"thumbnail"      binding:"omitempty,max=255"`
	TotalChapters *int     `json:"total_chapters" binding:"omitempty,min=0"`
	TotalHours    *float64 `json:"total_hours"    binding:"omitempty,min=0"`
}

// CreateChapterRequest 新增章节请求；chapter_number 为空时追加到末尾
type CreateChapterRequest struct {
	Title         string `json:"title"          binding:"required,max=200"`
	Content       string `json:"content"`
	Checkpoint    string `json:"checkpoint"     binding:"omitempty,max=200"`
	ChapterNumber *int   `json:"chapter_number" binding:"omitempty,min=1"`
}

// ── 课程模块响应 ──

// CourseResponse 课程信息
type CourseResponse struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Thumbnail     string  `json:"thumbnail"`
	TotalChapters int     `json:"total_chapters"`
	TotalHours    float64 `json:"total_hours"`
}

// ChapterResponse 章节信息
type ChapterResponse struct {
	ID            string `json:"id"`
	CourseID      string `json:"course_id"`
	ChapterNumber int    `json:"chapter_number"`
	Title         string `json:"title"`
	Content       string `json:"content,omitempty"`
	Checkpoint    string `json:"checkpoint,omitempty"`
	Completed     bool   `json:"completed"`
}

// CourseDetailResponse 学生查看课程（含各章节完成情况）
type CourseDetailResponse struct {
	Course       CourseResponse    `json:"course"`
	Chapters     []ChapterResponse `json:"chapters"`
	AllCompleted bool              `json:"all_completed"`
}

// ChapterDetailResponse 学生查看章节
type ChapterDetailResponse struct {
	Chapter       ChapterResponse `json:"chapter"`
	Course        CourseResponse  `json:"course"`
	PrevChapterID *string         `json:"prev_chapter_id"`
	NextChapterID *string         `json:"next_chapter_id"`
	TimeSpent     float64         `json:"time_spent"`
}
