package model

// Course 课程表 — 对应 courses
type Course struct {
	CourseID      string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	Title         string  `gorm:"type:varchar(200);not null"                     json:"title"`
	Description   string  `gorm:"type:text"                                      json:"description"`
	Thumbnail     string  `gorm:"type:varchar(255)"                              json:"thumbnail"`
	TotalChapters int     `gorm:"not null;default:0"                             json:"total_chapters"`
	TotalHours    float64 `gorm:"not null;default:0"                             json:"total_hours"`
	BaseModel
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// Chapter 章节表 — 对应 chapters
type Chapter struct {
	ChapterID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"chapter_id"`
	CourseID      string `gorm:"type:uuid;not null"                             json:"course_id"`
	ChapterNumber int    `gorm:"not null"                                       json:"chapter_number"`
	Title         string `gorm:"type:varchar(200);not null"                     json:"title"`
	Content       string `gorm:"type:text"                                      json:"content"`
	Checkpoint    string `gorm:"type:varchar(200)"                              json:"checkpoint"`
	BaseModel
}

// TableName 指定表名
func (Chapter) TableName() string { return "chapters" }
