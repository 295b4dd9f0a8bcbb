package dto

// ── 认证模块 DTO ──

// SignupRequest 学生注册请求
type SignupRequest struct {
	Name     string `json:"name"     binding:"required,min=2,max=100"`
	USN      string `json:"usn"      binding:"required,max=50"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=64"`
}

// AdminSignupRequest 管理员注册请求
type AdminSignupRequest struct {
	FullName   string `json:"full_name"   binding:"required,min=2,max=100"`
	RegNo      string `json:"reg_no"      binding:"required,max=50"`
	Email      string `json:"email"       binding:"required,email"`
	Phone      string `json:"phone"       binding:"omitempty,max=20"`
	Password   string `json:"password"    binding:"required,min=8,max=64"`
	SignupCode string `json:"signup_code"` // 服务端配置注册码时必填
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email      string `json:"email"       binding:"required,email"`
	Password   string `json:"password"    binding:"required"`
	UserType   string `json:"user_type"   binding:"required,oneof=student admin"`
	RememberMe bool   `json:"remember_me"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}
