package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/25Devmaker/coursehub/internal/dto"
	"github.com/25Devmaker/coursehub/internal/model"
	"github.com/25Devmaker/coursehub/internal/service"
	pkgerrors "github.com/25Devmaker/coursehub/pkg/errors"
	"github.com/25Devmaker/coursehub/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	testCourseID       = "7b0c4f6e-2b1a-4c1e-9a53-6f2d1c3e8a10"
	testEnrollmentID   = "3e9d2a71-5c44-4b0f-8f6a-1d2b3c4d5e6f"
	testNotificationID = "c1a2b3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d"
)

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult   *dto.TokenResponse
	loginErr      error
	refreshResult *dto.TokenResponse
	refreshErr    error
	refreshToken  string
	logoutErr     error
	logoutAccess  string
	meResult      *dto.UserResponse
	meErr         error
	signupErr     error
}

func (m *mockAuthService) Signup(_ context.Context, req *dto.SignupRequest) (*dto.UserResponse, error) {
	if m.signupErr != nil {
		return nil, m.signupErr
	}
	return &dto.UserResponse{ID: "new-user", Name: req.Name, Email: req.Email, Role: model.RoleStudent}, nil
}
func (m *mockAuthService) AdminSignup(_ context.Context, req *dto.AdminSignupRequest) (*dto.UserResponse, error) {
	if m.signupErr != nil {
		return nil, m.signupErr
	}
	return &dto.UserResponse{ID: "new-admin", Name: req.FullName, Email: req.Email, Role: model.RoleAdmin}, nil
}
func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Refresh(_ context.Context, token string) (*dto.TokenResponse, error) {
	m.refreshToken = token
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, access, _ string) error {
	m.logoutAccess = access
	return m.logoutErr
}
func (m *mockAuthService) Me(_ context.Context, _ string) (*dto.UserResponse, error) {
	return m.meResult, m.meErr
}

// ── Mock EnrollmentService ──

type mockEnrollmentService struct {
	createResult  *dto.EnrollmentResponse
	createErr     error
	createdFor    string
	approveResult *dto.EnrollmentResponse
	approveErr    error
	rejectErr     error
	listResult    []dto.EnrollmentResponse
	listTotal     int64
	listErr       error
	listReq       *dto.EnrollmentListRequest
}

func (m *mockEnrollmentService) Create(_ context.Context, studentID, _ string) (*dto.EnrollmentResponse, error) {
	m.createdFor = studentID
	return m.createResult, m.createErr
}
func (m *mockEnrollmentService) Approve(_ context.Context, _, _ string) (*dto.EnrollmentResponse, error) {
	return m.approveResult, m.approveErr
}
func (m *mockEnrollmentService) Reject(_ context.Context, _, _ string) (*dto.EnrollmentResponse, error) {
	return nil, m.rejectErr
}
func (m *mockEnrollmentService) AutoApprove(_ context.Context, _ string) error {
	return nil
}
func (m *mockEnrollmentService) Transition(_ context.Context, _, _, _ string, _ *string) (*model.Enrollment, error) {
	return nil, nil
}
func (m *mockEnrollmentService) ListMine(_ context.Context, _ string) ([]dto.EnrollmentResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockEnrollmentService) List(_ context.Context, req *dto.EnrollmentListRequest) ([]dto.EnrollmentResponse, int64, error) {
	m.listReq = req
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockEnrollmentService) ListCourseStudents(_ context.Context, _ string) ([]dto.EnrollmentResponse, error) {
	return m.listResult, m.listErr
}

// ── Mock CertificateService ──

type mockCertificateService struct {
	file *service.CertificateFile
	err  error
}

func (m *mockCertificateService) Generate(_ context.Context, _, _ string) (*service.CertificateFile, error) {
	return m.file, m.err
}

// ── Mock NotificationService ──

type mockNotificationService struct {
	markReadErr error
	updated     int64
}

func (m *mockNotificationService) ListUnread(_ context.Context, _ string) ([]dto.NotificationResponse, error) {
	return []dto.NotificationResponse{}, nil
}
func (m *mockNotificationService) MarkRead(_ context.Context, _, _ string) error {
	return m.markReadErr
}
func (m *mockNotificationService) MarkAllRead(_ context.Context, _ string) (int64, error) {
	return m.updated, nil
}

// ── Mock StudyPlanService ──

type mockStudyPlanService struct {
	courseID string
	err      error
}

func (m *mockStudyPlanService) ExportICS(_ context.Context, _, courseID string) ([]byte, string, error) {
	m.courseID = courseID
	if m.err != nil {
		return nil, "", m.err
	}
	return []byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"), "study-plan.ics", nil
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportEnrollments(_ context.Context, _ *dto.EnrollmentListRequest) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setupGin() (*gin.Engine, *gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, r := gin.CreateTestContext(w)
	return r, c, w
}

func setAuth(c *gin.Context) {
	c.Set("user_id", "test-user-id")
	c.Set("role", model.RoleAdmin)
	c.Set("token_jti", "test-jti")
	c.Set("token_exp", time.Now().Add(15*time.Minute))
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// withAuth 包装 handler，注入认证上下文
func withAuth(h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		setAuth(c)
		h(c)
	}
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{
			AccessToken:  "test-access-token",
			RefreshToken: "test-refresh-token",
			ExpiresIn:    900,
		},
	}
	h := NewAuthHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "Test1234",
		UserType: model.RoleStudent,
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
	// 验证 Set-Cookie 头
	found := false
	for _, c := range w.Result().Cookies() {
		if c.Name == refreshTokenCookie {
			found = true
			if c.Value != "test-refresh-token" {
				t.Errorf("expected cookie value test-refresh-token, got %s", c.Value)
			}
			if !c.HttpOnly {
				t.Error("expected HttpOnly cookie")
			}
		}
	}
	if !found {
		t.Error("expected refresh_token cookie to be set")
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidUserType(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(map[string]string{
		"email":     "alice@example.com",
		"password":  "Test1234",
		"user_type": "guest",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials})

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
		UserType: model.RoleStudent,
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11001 {
		t.Errorf("expected error code 11001, got %d", resp.Code)
	}
}

func TestAuthHandler_Signup_DuplicateEmail(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{signupErr: service.ErrEmailExists})

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/signup", jsonBody(dto.SignupRequest{
		Name:     "Alice",
		USN:      "1RV20CS001",
		Email:    "alice@example.com",
		Password: "Test12345",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/signup", h.Signup)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestAuthHandler_RefreshToken_FromBody(t *testing.T) {
	mock := &mockAuthService{refreshResult: &dto.TokenResponse{AccessToken: "new-access", RefreshToken: "new-refresh"}}
	h := NewAuthHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/refresh", jsonBody(dto.RefreshTokenRequest{RefreshToken: "old-refresh"}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/refresh", h.RefreshToken)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.refreshToken != "old-refresh" {
		t.Errorf("expected old-refresh, got %s", mock.refreshToken)
	}
}

func TestAuthHandler_RefreshToken_FromCookie(t *testing.T) {
	mock := &mockAuthService{refreshResult: &dto.TokenResponse{AccessToken: "new-access", RefreshToken: "new-refresh"}}
	h := NewAuthHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: refreshTokenCookie, Value: "cookie-refresh"})

	r := gin.New()
	r.POST("/auth/refresh", h.RefreshToken)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.refreshToken != "cookie-refresh" {
		t.Errorf("expected cookie-refresh, got %s", mock.refreshToken)
	}
}

func TestAuthHandler_RefreshToken_Missing(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/refresh", jsonBody(map[string]string{}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/refresh", h.RefreshToken)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_RefreshToken_Revoked(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{refreshErr: service.ErrTokenRevoked})

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/refresh", jsonBody(dto.RefreshTokenRequest{RefreshToken: "revoked"}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/refresh", h.RefreshToken)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthHandler_Logout_PassesAccessToken(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer access-123")

	r := gin.New()
	r.POST("/auth/logout", withAuth(h.Logout))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.logoutAccess != "access-123" {
		t.Errorf("expected access-123, got %q", mock.logoutAccess)
	}
}

func TestAuthHandler_Me_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/auth/me", nil)

	r := gin.New()
	r.GET("/auth/me", h.Me)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthHandler_Me_Success(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{meResult: &dto.UserResponse{ID: "test-user-id", Name: "Alice"}})

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/auth/me", nil)

	r := gin.New()
	r.GET("/auth/me", withAuth(h.Me))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// EnrollmentHandler Tests
// ═══════════════════════════════════════════════════════════

func TestEnrollmentHandler_Create_Success(t *testing.T) {
	mock := &mockEnrollmentService{createResult: &dto.EnrollmentResponse{ID: "enr-1", Status: model.EnrollmentPending}}
	h := NewEnrollmentHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/enrollments", jsonBody(dto.CreateEnrollmentRequest{CourseID: testCourseID}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/enrollments", withAuth(h.Create))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
	if mock.createdFor != "test-user-id" {
		t.Errorf("expected student test-user-id, got %q", mock.createdFor)
	}
}

func TestEnrollmentHandler_Create_InvalidCourseID(t *testing.T) {
	h := NewEnrollmentHandler(&mockEnrollmentService{})

	_, _, w := setupGin()
	req := httptest.NewRequest("POST", "/enrollments", jsonBody(map[string]string{"course_id": "not-a-uuid"}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/enrollments", withAuth(h.Create))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestEnrollmentHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"already enrolled", service.ErrAlreadyEnrolled, http.StatusConflict, 13003},
		{"course not found", service.ErrCourseNotFound, http.StatusNotFound, 13002},
		{"store unavailable", fmt.Errorf("list: %w", pkgerrors.ErrStoreUnavailable), http.StatusServiceUnavailable, 50003},
		{"unexpected", fmt.Errorf("boom"), http.StatusInternalServerError, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewEnrollmentHandler(&mockEnrollmentService{createErr: tt.err})

			_, _, w := setupGin()
			req := httptest.NewRequest("POST", "/enrollments", jsonBody(dto.CreateEnrollmentRequest{CourseID: testCourseID}))
			req.Header.Set("Content-Type", "application/json")

			r := gin.New()
			r.POST("/enrollments", withAuth(h.Create))
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestEnrollmentHandler_Approve_AlreadyProcessed(t *testing.T) {
	h := NewEnrollmentHandler(&mockEnrollmentService{approveErr: service.ErrAlreadyProcessed})

	_, _, w := setupGin()
	req := httptest.NewRequest("PUT", "/admin/enrollments/"+testEnrollmentID+"/approve", nil)

	r := gin.New()
	r.PUT("/admin/enrollments/:id/approve", withAuth(h.Approve))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 13004 {
		t.Errorf("expected code 13004, got %d", resp.Code)
	}
}

func TestEnrollmentHandler_Reject_NotFound(t *testing.T) {
	h := NewEnrollmentHandler(&mockEnrollmentService{rejectErr: service.ErrEnrollmentNotFound})

	_, _, w := setupGin()
	req := httptest.NewRequest("PUT", "/admin/enrollments/"+testEnrollmentID+"/reject", nil)

	r := gin.New()
	r.PUT("/admin/enrollments/:id/reject", withAuth(h.Reject))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// 非法 UUID 在 handler 层即按资源不存在返回，服务层留空，一旦调用即 panic 为 500
func TestHandlers_MalformedPathID(t *testing.T) {
	h := NewHandler(&service.Service{})

	r := gin.New()
	r.Use(gin.Recovery())
	r.PUT("/admin/enrollments/:id/approve", withAuth(h.Enrollment.Approve))
	r.PUT("/admin/enrollments/:id/reject", withAuth(h.Enrollment.Reject))
	r.GET("/admin/courses/:id/students", withAuth(h.Enrollment.ListCourseStudents))
	r.PUT("/admin/courses/:id", withAuth(h.Course.Update))
	r.POST("/admin/courses/:id/chapters", withAuth(h.Course.AddChapter))
	r.GET("/admin/courses/:id/chapters", withAuth(h.Course.ListChapters))
	r.GET("/admin/students/:id/progress", withAuth(h.User.StudentProgress))
	r.GET("/courses/:id", withAuth(h.Course.ViewCourse))
	r.GET("/chapters/:id", withAuth(h.Course.ViewChapter))
	r.POST("/progress/chapters/:id/complete", withAuth(h.Learning.CompleteChapter))
	r.GET("/learning/recommendations/:chapter_id", withAuth(h.Learning.Recommendations))
	r.GET("/learning/next-chapter/:course_id", withAuth(h.Learning.NextChapter))
	r.GET("/learning/report/:course_id", withAuth(h.Learning.Report))
	r.GET("/learning/study-plan/:course_id", withAuth(h.Learning.StudyPlan))
	r.GET("/certificates/:course_id", withAuth(h.Certificate.Download))
	r.PUT("/notifications/:id/read", withAuth(h.Notification.MarkRead))
	r.GET("/chat/history/:student_id", withAuth(h.Chat.History))

	tests := []struct {
		name     string
		method   string
		path     string
		wantCode int
	}{
		{"审批通过", "PUT", "/admin/enrollments/abc/approve", 13001},
		{"审批拒绝", "PUT", "/admin/enrollments/abc/reject", 13001},
		{"课程学生", "GET", "/admin/courses/abc/students", 13002},
		{"更新课程", "PUT", "/admin/courses/abc", 12001},
		{"新增章节", "POST", "/admin/courses/abc/chapters", 12001},
		{"章节列表", "GET", "/admin/courses/abc/chapters", 12001},
		{"学生进度", "GET", "/admin/students/abc/progress", 18001},
		{"查看课程", "GET", "/courses/abc", 12001},
		{"查看章节", "GET", "/chapters/abc", 12002},
		{"完成章节", "POST", "/progress/chapters/abc/complete", 14002},
		{"学习建议", "GET", "/learning/recommendations/abc", 14002},
		{"下一章节", "GET", "/learning/next-chapter/abc", 14001},
		{"学习报告", "GET", "/learning/report/abc", 14001},
		{"学习计划", "GET", "/learning/study-plan/abc.ics", 14001},
		{"结业证书", "GET", "/certificates/abc", 15002},
		{"通知已读", "PUT", "/notifications/abc/read", 16001},
		{"会话记录", "GET", "/chat/history/abc", 17002},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			if w.Code != http.StatusNotFound {
				t.Fatalf("expected 404, got %d", w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestEnrollmentHandler_List_Paginated(t *testing.T) {
	mock := &mockEnrollmentService{
		listResult: []dto.EnrollmentResponse{{ID: "enr-1"}, {ID: "enr-2"}},
		listTotal:  12,
	}
	h := NewEnrollmentHandler(mock)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/admin/enrollments?status=pending&page=2&page_size=5", nil)

	r := gin.New()
	r.GET("/admin/enrollments", withAuth(h.List))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.listReq == nil || mock.listReq.Status != model.EnrollmentPending || mock.listReq.GetPage() != 2 {
		t.Errorf("unexpected list request: %+v", mock.listReq)
	}

	var body struct {
		Data response.PageData `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Data.Pagination.Total != 12 || body.Data.Pagination.TotalPages != 3 {
		t.Errorf("unexpected pagination: %+v", body.Data.Pagination)
	}
}

func TestEnrollmentHandler_List_InvalidStatus(t *testing.T) {
	h := NewEnrollmentHandler(&mockEnrollmentService{})

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/admin/enrollments?status=unknown", nil)

	r := gin.New()
	r.GET("/admin/enrollments", withAuth(h.List))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// CertificateHandler Tests
// ═══════════════════════════════════════════════════════════

func TestCertificateHandler_Download_Success(t *testing.T) {
	h := NewCertificateHandler(&mockCertificateService{file: &service.CertificateFile{
		Filename:    "CourseHub-Certificate-Go-Alice.pdf",
		ContentType: "application/pdf",
		Content:     []byte("%PDF-1.3"),
	}})

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/certificates/"+testCourseID, nil)

	r := gin.New()
	r.GET("/certificates/:course_id", withAuth(h.Download))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("expected application/pdf, got %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "CourseHub-Certificate-Go-Alice.pdf") {
		t.Errorf("unexpected Content-Disposition: %s", cd)
	}
}

func TestCertificateHandler_Download_Incomplete(t *testing.T) {
	h := NewCertificateHandler(&mockCertificateService{err: service.ErrIncompleteCourse})

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/certificates/"+testCourseID, nil)

	r := gin.New()
	r.GET("/certificates/:course_id", withAuth(h.Download))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// NotificationHandler Tests
// ═══════════════════════════════════════════════════════════

func TestNotificationHandler_MarkRead_Forbidden(t *testing.T) {
	h := NewNotificationHandler(&mockNotificationService{markReadErr: service.ErrNotificationForbidden})

	_, _, w := setupGin()
	req := httptest.NewRequest("PUT", "/notifications/"+testNotificationID+"/read", nil)

	r := gin.New()
	r.PUT("/notifications/:id/read", withAuth(h.MarkRead))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestNotificationHandler_MarkAllRead(t *testing.T) {
	h := NewNotificationHandler(&mockNotificationService{updated: 3})

	_, _, w := setupGin()
	req := httptest.NewRequest("PUT", "/notifications/read-all", nil)

	r := gin.New()
	r.PUT("/notifications/read-all", withAuth(h.MarkAllRead))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Data struct {
			Updated int64 `json:"updated"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Data.Updated != 3 {
		t.Errorf("expected updated=3, got %d", body.Data.Updated)
	}
}

// ═══════════════════════════════════════════════════════════
// LearningHandler Tests
// ═══════════════════════════════════════════════════════════

func TestLearningHandler_StudyPlan_StripsExtension(t *testing.T) {
	plan := &mockStudyPlanService{}
	h := NewLearningHandler(nil, nil, plan)

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/learning/study-plan/"+testCourseID+".ics", nil)

	r := gin.New()
	r.GET("/learning/study-plan/:course_id", withAuth(h.StudyPlan))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if plan.courseID != testCourseID {
		t.Errorf("expected %s, got %q", testCourseID, plan.courseID)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("expected text/calendar, got %s", ct)
	}
}

func TestLearningHandler_StudyPlan_NotEnrolled(t *testing.T) {
	h := NewLearningHandler(nil, nil, &mockStudyPlanService{err: service.ErrNotEnrolled})

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/learning/study-plan/"+testCourseID, nil)

	r := gin.New()
	r.GET("/learning/study-plan/:course_id", withAuth(h.StudyPlan))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportEnrollments_Success(t *testing.T) {
	h := NewExportHandler(&mockExportService{
		buf:      bytes.NewBufferString("xlsx-bytes"),
		filename: "enrollments_all_20240301.xlsx",
	})

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/admin/enrollments/export", nil)

	r := gin.New()
	r.GET("/admin/enrollments/export", withAuth(h.ExportEnrollments))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("unexpected Content-Type: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "enrollments_all_20240301.xlsx") {
		t.Errorf("unexpected Content-Disposition: %s", cd)
	}
	if w.Body.String() != "xlsx-bytes" {
		t.Errorf("unexpected body: %q", w.Body.String())
	}
}

func TestExportHandler_ExportEnrollments_Failure(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrExportGenerateFail})

	_, _, w := setupGin()
	req := httptest.NewRequest("GET", "/admin/enrollments/export", nil)

	r := gin.New()
	r.GET("/admin/enrollments/export", withAuth(h.ExportEnrollments))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 19001 {
		t.Errorf("expected code 19001, got %d", resp.Code)
	}
}
