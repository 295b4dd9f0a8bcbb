package model

// 用户角色
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// User 用户表 — 对应 users（学生与管理员共用）
type User struct {
	UserID        string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name          string  `gorm:"type:varchar(100);not null"                     json:"name"`
	USN           *string `gorm:"column:usn;type:varchar(50)"                    json:"usn,omitempty"`    // 学生学号
	RegNo         *string `gorm:"column:reg_no;type:varchar(50)"                 json:"reg_no,omitempty"` // 管理员工号
	Phone         *string `gorm:"type:varchar(20)"                               json:"phone,omitempty"`
	Email         string  `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash  string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role          string  `gorm:"type:varchar(20);not null;default:'student'"    json:"role"`
	EmailVerified bool    `gorm:"not null;default:false"                         json:"email_verified"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
