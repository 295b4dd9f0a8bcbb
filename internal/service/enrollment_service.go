package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/25Devmaker/coursehub/internal/dto"
	"github.com/25Devmaker/coursehub/internal/model"
	"github.com/25Devmaker/coursehub/internal/repository"
	pkgerrors "github.com/25Devmaker/coursehub/pkg/errors"
	"github.com/25Devmaker/coursehub/pkg/mailer"
	"github.com/25Devmaker/coursehub/pkg/metrics"
	"github.com/25Devmaker/coursehub/pkg/scheduler"
	"github.com/25Devmaker/coursehub/pkg/tracing"
)

// ── 选课模块业务错误 ──

var (
	ErrEnrollmentNotFound = errors.New("选课记录不存在")
	ErrAlreadyEnrolled    = errors.New("已提交过该课程的选课申请")
	ErrAlreadyProcessed   = errors.New("该选课申请已处理")
	ErrInvalidTransition  = errors.New("不支持的选课状态变更")
)

// timerActionTimeout 定时器回调内单次审批的超时
const timerActionTimeout = 30 * time.Second

// EnrollmentService 选课审批业务接口
//
// 状态机：pending → approved | rejected，两者均为终态。
// 管理员、进程内定时器与后台扫描三方可能同时尝试变更同一记录，
// 以数据库比较交换决定唯一胜者，其余返回 ErrAlreadyProcessed。
type EnrollmentService interface {
	// Create 学生提交选课申请，并登记自动审批定时器
	Create(ctx context.Context, studentID, courseID string) (*dto.EnrollmentResponse, error)
	// Approve 管理员通过
	Approve(ctx context.Context, id, adminID string) (*dto.EnrollmentResponse, error)
	// Reject 管理员拒绝
	Reject(ctx context.Context, id, adminID string) (*dto.EnrollmentResponse, error)
	// AutoApprove 系统自动通过（定时器与后台扫描共用）
	AutoApprove(ctx context.Context, id string) error
	// Transition 通用状态变更入口
	Transition(ctx context.Context, id, target, actor string, adminID *string) (*model.Enrollment, error)

	ListMine(ctx context.Context, studentID string) ([]dto.EnrollmentResponse, error)
	List(ctx context.Context, req *dto.EnrollmentListRequest) ([]dto.EnrollmentResponse, int64, error)
	ListCourseStudents(ctx context.Context, courseID string) ([]dto.EnrollmentResponse, error)
}

type enrollmentService struct {
	repo             *repository.Repository
	timers           scheduler.Scheduler
	clock            scheduler.Clock
	mailer           mailer.Mailer
	autoApproveAfter time.Duration
	logger           *zap.Logger
}

// NewEnrollmentService 创建 EnrollmentService 实例
func NewEnrollmentService(
	repo *repository.Repository,
	timers scheduler.Scheduler,
	clock scheduler.Clock,
	m mailer.Mailer,
	autoApproveAfter time.Duration,
	logger *zap.Logger,
) EnrollmentService {
	return &enrollmentService{
		repo:             repo,
		timers:           timers,
		clock:            clock,
		mailer:           m,
		autoApproveAfter: autoApproveAfter,
		logger:           logger,
	}
}

// ────────────────────── Create ──────────────────────

func (s *enrollmentService) Create(ctx context.Context, studentID, courseID string) (*dto.EnrollmentResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, storeUnavailable(err)
	}

	// 任意状态的历史记录均视为已选课
	exists, err := s.repo.Enrollment.ExistsForStudentCourse(ctx, studentID, courseID)
	if err != nil {
		s.logger.Error("查询选课记录失败", zap.Error(err))
		return nil, storeUnavailable(err)
	}
	if exists {
		return nil, ErrAlreadyEnrolled
	}

	e := &model.Enrollment{
		StudentID:  studentID,
		CourseID:   courseID,
		Status:     model.EnrollmentPending,
		EnrolledAt: s.clock.Now(),
	}
	if err := s.repo.Enrollment.Create(ctx, e); err != nil {
		// 并发提交由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyEnrolled
		}
		s.logger.Error("创建选课记录失败", zap.Error(err))
		return nil, storeUnavailable(err)
	}
	e.Course = course

	s.armTimer(e.EnrollmentID)

	s.logger.Info("选课申请已提交",
		zap.String("enrollment_id", e.EnrollmentID),
		zap.String("student_id", studentID),
		zap.String("course_id", courseID),
	)
	resp := toEnrollmentResponse(e)
	return &resp, nil
}

// ────────────────────── Approve / Reject ──────────────────────

func (s *enrollmentService) Approve(ctx context.Context, id, adminID string) (*dto.EnrollmentResponse, error) {
	e, err := s.Transition(ctx, id, model.EnrollmentApproved, model.ActorAdmin, &adminID)
	if err != nil {
		return nil, err
	}
	resp := toEnrollmentResponse(e)
	return &resp, nil
}

func (s *enrollmentService) Reject(ctx context.Context, id, adminID string) (*dto.EnrollmentResponse, error) {
	e, err := s.Transition(ctx, id, model.EnrollmentRejected, model.ActorAdmin, &adminID)
	if err != nil {
		return nil, err
	}
	resp := toEnrollmentResponse(e)
	return &resp, nil
}

func (s *enrollmentService) AutoApprove(ctx context.Context, id string) error {
	_, err := s.Transition(ctx, id, model.EnrollmentApproved, model.ActorSystem, nil)
	return err
}

// ────────────────────── Transition ──────────────────────

func (s *enrollmentService) Transition(ctx context.Context, id, target, actor string, adminID *string) (e *model.Enrollment, err error) {
	ctx, span := tracing.StartSpan(ctx, "enrollment.transition",
		attribute.String("enrollment.id", id),
		attribute.String("enrollment.target", target),
		attribute.String("enrollment.actor", actor),
	)
	defer func() {
		metrics.EnrollmentTransitions.WithLabelValues(target, actor, transitionResult(err)).Inc()
		if err != nil && !errors.Is(err, ErrAlreadyProcessed) {
			tracing.RecordError(span, err)
		}
		span.End()
	}()

	if target != model.EnrollmentApproved && target != model.EnrollmentRejected {
		return nil, ErrInvalidTransition
	}

	e, err = s.repo.Enrollment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		s.logger.Error("查询选课记录失败", zap.String("enrollment_id", id), zap.Error(err))
		return nil, storeUnavailable(err)
	}
	if !e.IsPending() {
		s.cancelTimer(id)
		return nil, ErrAlreadyProcessed
	}

	now := s.clock.Now()
	note := s.buildNotification(e, target, actor)

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Enrollment.Transition(ctx, id, target, now, adminID); err != nil {
			return err
		}
		return tx.Notification.Create(ctx, note)
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrStatusConflict) {
			s.cancelTimer(id)
			return nil, ErrAlreadyProcessed
		}
		s.logger.Error("选课状态变更失败",
			zap.String("enrollment_id", id),
			zap.String("target", target),
			zap.String("actor", actor),
			zap.Error(err),
		)
		return nil, storeUnavailable(err)
	}

	// 管理员先于定时器处理时取消定时器；定时器自身触发时登记项已摘除
	s.cancelTimer(id)

	e.Status = target
	e.DecidedAt = &now
	e.DecidedBy = adminID
	if target == model.EnrollmentApproved {
		e.ApprovedAt = &now
	}

	s.logger.Info("选课状态已变更",
		zap.String("enrollment_id", id),
		zap.String("status", target),
		zap.String("actor", actor),
	)

	s.sendDecisionEmail(e, note.Message)
	return e, nil
}

// ────────────────────── Listing ──────────────────────

func (s *enrollmentService) ListMine(ctx context.Context, studentID string) ([]dto.EnrollmentResponse, error) {
	list, err := s.repo.Enrollment.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("查询我的选课失败", zap.Error(err))
		return nil, err
	}
	return toEnrollmentResponses(list), nil
}

func (s *enrollmentService) List(ctx context.Context, req *dto.EnrollmentListRequest) ([]dto.EnrollmentResponse, int64, error) {
	list, total, err := s.repo.Enrollment.List(ctx, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询选课列表失败", zap.Error(err))
		return nil, 0, err
	}
	return toEnrollmentResponses(list), total, nil
}

func (s *enrollmentService) ListCourseStudents(ctx context.Context, courseID string) ([]dto.EnrollmentResponse, error) {
	if _, err := s.repo.Course.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}

	list, err := s.repo.Enrollment.ListApprovedByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("查询课程学员失败", zap.Error(err))
		return nil, err
	}
	return toEnrollmentResponses(list), nil
}

// ── 内部方法 ──

// armTimer 登记自动审批定时器；进程重启后丢失，由后台扫描兜底
func (s *enrollmentService) armTimer(id string) {
	if s.timers == nil {
		return
	}
	s.timers.Schedule(id, s.autoApproveAfter, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timerActionTimeout)
		defer cancel()

		metrics.PendingTimers.Set(float64(s.timers.Pending()))
		if err := s.AutoApprove(ctx, id); err != nil && !errors.Is(err, ErrAlreadyProcessed) {
			s.logger.Warn("定时自动审批失败，等待后台扫描重试",
				zap.String("enrollment_id", id), zap.Error(err))
		}
	})
	metrics.PendingTimers.Set(float64(s.timers.Pending()))
}

func (s *enrollmentService) cancelTimer(id string) {
	if s.timers == nil {
		return
	}
	if s.timers.Cancel(id) {
		metrics.PendingTimers.Set(float64(s.timers.Pending()))
	}
}

func (s *enrollmentService) buildNotification(e *model.Enrollment, target, actor string) *model.Notification {
	title := e.CourseID
	if e.Course != nil {
		title = e.Course.Title
	}

	n := &model.Notification{
		UserID:    e.StudentID,
		Type:      model.NotificationSuccess,
		CreatedAt: s.clock.Now(),
	}
	switch {
	case target == model.EnrollmentRejected:
		n.Type = model.NotificationError
		n.Message = fmt.Sprintf("Your enrollment for %s has been rejected. Please contact admin for more information.", title)
	case actor == model.ActorSystem:
		n.Message = fmt.Sprintf("Your enrollment for %s has been auto-approved! You can now start learning.", title)
	default:
		n.Message = fmt.Sprintf("Your enrollment for %s has been approved by admin! You can now start learning.", title)
	}

	relatedType := "enrollment"
	relatedID := e.EnrollmentID
	n.RelatedType = &relatedType
	n.RelatedID = &relatedID
	n.Metadata = map[string]interface{}{
		"enrollment_id": e.EnrollmentID,
		"course_id":     e.CourseID,
		"status":        target,
		"actor":         actor,
	}
	return n
}

// sendDecisionEmail 异步发送审批结果邮件，失败仅记录日志
func (s *enrollmentService) sendDecisionEmail(e *model.Enrollment, message string) {
	if s.mailer == nil || e.Student == nil || e.Student.Email == "" {
		return
	}
	to, name := e.Student.Email, e.Student.Name
	subject := "CourseHub enrollment update"
	body := fmt.Sprintf("<p>Hi %s,</p><p>%s</p>", name, message)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.mailer.Send(ctx, to, subject, body); err != nil {
			s.logger.Warn("发送选课结果邮件失败", zap.String("to", to), zap.Error(err))
		}
	}()
}

func transitionResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrAlreadyProcessed):
		return "already_processed"
	case errors.Is(err, ErrEnrollmentNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// storeUnavailable 将存储层错误包装为 ErrStoreUnavailable
func storeUnavailable(err error) error {
	return fmt.Errorf("%w: %v", pkgerrors.ErrStoreUnavailable, err)
}

func toEnrollmentResponse(e *model.Enrollment) dto.EnrollmentResponse {
	resp := dto.EnrollmentResponse{
		ID:         e.EnrollmentID,
		StudentID:  e.StudentID,
		CourseID:   e.CourseID,
		Status:     e.Status,
		EnrolledAt: e.EnrolledAt.Format(time.RFC3339),
	}
	if e.ApprovedAt != nil {
		v := e.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	if e.DecidedAt != nil {
		v := e.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &v
	}
	if e.Student != nil {
		resp.StudentName = e.Student.Name
		resp.StudentEmail = e.Student.Email
	}
	if e.Course != nil {
		resp.CourseTitle = e.Course.Title
	}
	return resp
}

func toEnrollmentResponses(list []model.Enrollment) []dto.EnrollmentResponse {
	result := make([]dto.EnrollmentResponse, 0, len(list))
	for i := range list {
		result = append(result, toEnrollmentResponse(&list[i]))
	}
	return result
}
