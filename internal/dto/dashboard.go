package dto

// StudentDashboardResponse 学生首页
type StudentDashboardResponse struct {
	Enrollments         []EnrollmentResponse   `json:"enrollments"`
	AvailableCourses    []CourseResponse       `json:"available_courses"` // 尚未通过审批的课程
	UnreadNotifications []NotificationResponse `json:"unread_notifications"`
}

// AdminDashboardResponse 管理端统计
type AdminDashboardResponse struct {
	TotalStudents      int64            `json:"total_students"`
	TotalCourses       int64            `json:"total_courses"`
	TotalEnrollments   int64            `json:"total_enrollments"`
	PendingEnrollments int64            `json:"pending_enrollments"`
	MonthlyEnrollments []MonthlyCount   `json:"monthly_enrollments"`
	CoursePopularity   []CoursePopCount `json:"course_popularity"`
}

// MonthlyCount 按月统计（YYYY-MM）
type MonthlyCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

// CoursePopCount 各课程已通过选课人数
type CoursePopCount struct {
	CourseTitle string `json:"course_title"`
	Count       int64  `json:"count"`
}
