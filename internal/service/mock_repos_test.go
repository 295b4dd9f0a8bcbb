package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/25Devmaker/coursehub/internal/model"
	"github.com/25Devmaker/coursehub/internal/repository"
	pkgerrors "github.com/25Devmaker/coursehub/pkg/errors"
)

// ── Mock 聚合 ──

type mockRepos struct {
	users         *mockUserRepo
	courses       *mockCourseRepo
	chapters      *mockChapterRepo
	enrollments   *mockEnrollmentRepo
	progress      *mockProgressRepo
	notifications *mockNotificationRepo
	chats         *mockChatRepo
}

func newMockRepos() *mockRepos {
	users := newMockUserRepo()
	courses := newMockCourseRepo()
	return &mockRepos{
		users:         users,
		courses:       courses,
		chapters:      newMockChapterRepo(),
		enrollments:   newMockEnrollmentRepo(users, courses),
		progress:      newMockProgressRepo(),
		notifications: newMockNotificationRepo(),
		chats:         newMockChatRepo(users),
	}
}

func (m *mockRepos) repository() *repository.Repository {
	return &repository.Repository{
		User:         m.users,
		Course:       m.courses,
		Chapter:      m.chapters,
		Enrollment:   m.enrollments,
		Progress:     m.progress,
		Notification: m.notifications,
		Chat:         m.chats,
	}
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // key: user_id
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%d", m.seq)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUSN(_ context.Context, usn string) (*model.User, error) {
	for _, u := range m.users {
		if u.USN != nil && *u.USN == usn {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByRegNo(_ context.Context, regNo string) (*model.User, error) {
	for _, u := range m.users {
		if u.RegNo != nil && *u.RegNo == regNo {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListByRole(_ context.Context, role string) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if u.Role == role {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result, nil
}

func (m *mockUserRepo) CountByRole(ctx context.Context, role string) (int64, error) {
	list, _ := m.ListByRole(ctx, role)
	return int64(len(list)), nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	delete(m.users, id)
	return nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses map[string]*model.Course
	seq     int
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[string]*model.Course)}
}

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	if course.CourseID == "" {
		m.seq++
		course.CourseID = fmt.Sprintf("course-%d", m.seq)
	}
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) Update(_ context.Context, course *model.Course) error {
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) List(_ context.Context) ([]model.Course, error) {
	var result []model.Course
	for _, c := range m.courses {
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CourseID < result[j].CourseID })
	return result, nil
}

func (m *mockCourseRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.courses)), nil
}

// ── Mock ChapterRepository ──

type mockChapterRepo struct {
	chapters map[string]*model.Chapter
	seq      int
}

func newMockChapterRepo() *mockChapterRepo {
	return &mockChapterRepo{chapters: make(map[string]*model.Chapter)}
}

func (m *mockChapterRepo) Create(_ context.Context, chapter *model.Chapter) error {
	if chapter.ChapterID == "" {
		m.seq++
		chapter.ChapterID = fmt.Sprintf("chapter-%d", m.seq)
	}
	m.chapters[chapter.ChapterID] = chapter
	return nil
}

func (m *mockChapterRepo) GetByID(_ context.Context, id string) (*model.Chapter, error) {
	if c, ok := m.chapters[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockChapterRepo) ListByCourse(_ context.Context, courseID string) ([]model.Chapter, error) {
	var result []model.Chapter
	for _, c := range m.chapters {
		if c.CourseID == courseID {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ChapterNumber < result[j].ChapterNumber })
	return result, nil
}

func (m *mockChapterRepo) CountByCourse(ctx context.Context, courseID string) (int64, error) {
	list, _ := m.ListByCourse(ctx, courseID)
	return int64(len(list)), nil
}

func (m *mockChapterRepo) MaxChapterNumber(ctx context.Context, courseID string) (int, error) {
	n := 0
	list, _ := m.ListByCourse(ctx, courseID)
	for _, c := range list {
		if c.ChapterNumber > n {
			n = c.ChapterNumber
		}
	}
	return n, nil
}

// ── Mock EnrollmentRepository ──

// mockEnrollmentRepo 以互斥锁模拟数据库行级比较交换
type mockEnrollmentRepo struct {
	mu          sync.Mutex
	enrollments map[string]*model.Enrollment
	users       *mockUserRepo
	courses     *mockCourseRepo
	seq         int

	transitions   int   // Transition 成功次数
	transitionErr error // 非 nil 时 Transition 直接返回该错误
	listErr       error // 非 nil 时 ListStalePending 直接返回该错误
}

func newMockEnrollmentRepo(users *mockUserRepo, courses *mockCourseRepo) *mockEnrollmentRepo {
	return &mockEnrollmentRepo{
		enrollments: make(map[string]*model.Enrollment),
		users:       users,
		courses:     courses,
	}
}

// withRelations 返回带关联的副本，模拟 Preload
func (m *mockEnrollmentRepo) withRelations(e *model.Enrollment) model.Enrollment {
	cp := *e
	cp.Student = m.users.users[e.StudentID]
	cp.Course = m.courses.courses[e.CourseID]
	return cp
}

func (m *mockEnrollmentRepo) Create(_ context.Context, e *model.Enrollment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.enrollments {
		if x.StudentID == e.StudentID && x.CourseID == e.CourseID {
			return gorm.ErrDuplicatedKey
		}
	}
	if e.EnrollmentID == "" {
		m.seq++
		e.EnrollmentID = fmt.Sprintf("enr-%d", m.seq)
	}
	cp := *e
	m.enrollments[e.EnrollmentID] = &cp
	return nil
}

func (m *mockEnrollmentRepo) GetByID(_ context.Context, id string) (*model.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.enrollments[id]; ok {
		cp := m.withRelations(e)
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) GetByStudentCourse(_ context.Context, studentID, courseID string) (*model.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			cp := m.withRelations(e)
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) ExistsForStudentCourse(ctx context.Context, studentID, courseID string) (bool, error) {
	_, err := m.GetByStudentCourse(ctx, studentID, courseID)
	return err == nil, nil
}

func (m *mockEnrollmentRepo) Transition(_ context.Context, id, target string, at time.Time, decidedBy *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.transitionErr != nil {
		return m.transitionErr
	}
	e, ok := m.enrollments[id]
	if !ok || e.Status != model.EnrollmentPending {
		return pkgerrors.ErrStatusConflict
	}
	e.Status = target
	e.DecidedAt = &at
	e.DecidedBy = decidedBy
	if target == model.EnrollmentApproved {
		e.ApprovedAt = &at
	}
	m.transitions++
	return nil
}

func (m *mockEnrollmentRepo) ListStalePending(_ context.Context, cutoff time.Time, limit int) ([]model.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []model.Enrollment
	for _, e := range m.enrollments {
		if e.Status == model.EnrollmentPending && !e.EnrolledAt.After(cutoff) {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EnrolledAt.Before(result[j].EnrolledAt) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockEnrollmentRepo) filter(match func(e *model.Enrollment) bool) []model.Enrollment {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Enrollment
	for _, e := range m.enrollments {
		if match(e) {
			result = append(result, m.withRelations(e))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EnrollmentID < result[j].EnrollmentID })
	return result
}

func (m *mockEnrollmentRepo) ListByStudent(_ context.Context, studentID string) ([]model.Enrollment, error) {
	return m.filter(func(e *model.Enrollment) bool { return e.StudentID == studentID }), nil
}

func (m *mockEnrollmentRepo) List(ctx context.Context, status string, offset, limit int) ([]model.Enrollment, int64, error) {
	all, _ := m.ListAll(ctx, status)
	total := int64(len(all))
	if offset >= len(all) {
		return []model.Enrollment{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockEnrollmentRepo) ListAll(_ context.Context, status string) ([]model.Enrollment, error) {
	return m.filter(func(e *model.Enrollment) bool { return status == "" || e.Status == status }), nil
}

func (m *mockEnrollmentRepo) ListApprovedByCourse(_ context.Context, courseID string) ([]model.Enrollment, error) {
	return m.filter(func(e *model.Enrollment) bool {
		return e.CourseID == courseID && e.Status == model.EnrollmentApproved
	}), nil
}

func (m *mockEnrollmentRepo) Count(ctx context.Context, status string) (int64, error) {
	all, _ := m.ListAll(ctx, status)
	return int64(len(all)), nil
}

func (m *mockEnrollmentRepo) CountByMonth(ctx context.Context) ([]repository.MonthlyCount, error) {
	all, _ := m.ListAll(ctx, "")
	counts := make(map[string]int64)
	for _, e := range all {
		counts[e.EnrolledAt.Format("2006-01")]++
	}
	var result []repository.MonthlyCount
	for month, n := range counts {
		result = append(result, repository.MonthlyCount{Month: month, Count: n})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Month < result[j].Month })
	return result, nil
}

func (m *mockEnrollmentRepo) CountApprovedByCourse(ctx context.Context) ([]repository.CourseCount, error) {
	all, _ := m.ListAll(ctx, model.EnrollmentApproved)
	counts := make(map[string]int64)
	for _, e := range all {
		if e.Course != nil {
			counts[e.Course.Title]++
		}
	}
	var result []repository.CourseCount
	for title, n := range counts {
		result = append(result, repository.CourseCount{CourseTitle: title, Count: n})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CourseTitle < result[j].CourseTitle })
	return result, nil
}

func (m *mockEnrollmentRepo) status(id string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.enrollments[id]; ok {
		return e.Status
	}
	return ""
}

// backdate 将申请时间前移 d，模拟历史遗留的待审批记录
func (m *mockEnrollmentRepo) backdate(id string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.enrollments[id]; ok {
		e.EnrolledAt = e.EnrolledAt.Add(-d)
	}
}

// ── Mock ProgressRepository ──

type mockProgressRepo struct {
	rows map[string]*model.StudentProgress // key: student_id:chapter_id
}

func newMockProgressRepo() *mockProgressRepo {
	return &mockProgressRepo{rows: make(map[string]*model.StudentProgress)}
}

func progressKey(studentID, chapterID string) string {
	return studentID + ":" + chapterID
}

func (m *mockProgressRepo) row(studentID, courseID, chapterID string) *model.StudentProgress {
	key := progressKey(studentID, chapterID)
	p, ok := m.rows[key]
	if !ok {
		p = &model.StudentProgress{
			ProgressID: "prog-" + key,
			StudentID:  studentID,
			CourseID:   courseID,
			ChapterID:  chapterID,
		}
		m.rows[key] = p
	}
	return p
}

func (m *mockProgressRepo) GetByStudentChapter(_ context.Context, studentID, chapterID string) (*model.StudentProgress, error) {
	if p, ok := m.rows[progressKey(studentID, chapterID)]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProgressRepo) ListByStudentCourse(_ context.Context, studentID, courseID string) ([]model.StudentProgress, error) {
	var result []model.StudentProgress
	for _, p := range m.rows {
		if p.StudentID == studentID && p.CourseID == courseID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockProgressRepo) AddTime(_ context.Context, studentID, courseID, chapterID string, hours float64) error {
	m.row(studentID, courseID, chapterID).TimeSpent += hours
	return nil
}

func (m *mockProgressRepo) MarkComplete(_ context.Context, studentID, courseID, chapterID string, at time.Time) error {
	p := m.row(studentID, courseID, chapterID)
	p.Completed = true
	if p.CompletedAt == nil {
		p.CompletedAt = &at
	}
	return nil
}

func (m *mockProgressRepo) Stats(ctx context.Context, studentID, courseID string) (*model.ProgressStats, error) {
	list, _ := m.ListByStudentCourse(ctx, studentID, courseID)
	var stats model.ProgressStats
	for _, p := range list {
		stats.TotalTime += p.TimeSpent
		stats.TotalCount++
		if p.Completed {
			stats.CompletedCount++
		}
	}
	return &stats, nil
}

func (m *mockProgressRepo) CountCompleted(ctx context.Context, studentID, courseID string) (int64, error) {
	stats, _ := m.Stats(ctx, studentID, courseID)
	return int64(stats.CompletedCount), nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	mu            sync.Mutex
	notifications []*model.Notification
	seq           int
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	n.NotificationID = fmt.Sprintf("notif-%d", m.seq)
	cp := *n
	m.notifications = append(m.notifications, &cp)
	return nil
}

func (m *mockNotificationRepo) BatchCreate(ctx context.Context, list []model.Notification) error {
	for i := range list {
		if err := m.Create(ctx, &list[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockNotificationRepo) GetByID(_ context.Context, id string) (*model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.NotificationID == id {
			cp := *n
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) ListUnread(_ context.Context, userID string, limit int) ([]model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Notification
	for i := len(m.notifications) - 1; i >= 0; i-- {
		n := m.notifications[i]
		if n.UserID == userID && !n.IsRead {
			result = append(result, *n)
		}
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.NotificationID == id {
			n.IsRead = true
		}
	}
	return nil
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, x := range m.notifications {
		if x.UserID == userID && !x.IsRead {
			x.IsRead = true
			n++
		}
	}
	return n, nil
}

func (m *mockNotificationRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	list, _ := m.ListUnread(ctx, userID, 0)
	return int64(len(list)), nil
}

// forUser 某用户收到的全部通知
func (m *mockNotificationRepo) forUser(userID string) []model.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			result = append(result, *n)
		}
	}
	return result
}

// ── Mock ChatRepository ──

type mockChatRepo struct {
	messages []*model.ChatMessage
	users    *mockUserRepo
	seq      int
}

func newMockChatRepo(users *mockUserRepo) *mockChatRepo {
	return &mockChatRepo{users: users}
}

func (m *mockChatRepo) Create(_ context.Context, msg *model.ChatMessage) error {
	m.seq++
	msg.MessageID = fmt.Sprintf("msg-%d", m.seq)
	cp := *msg
	m.messages = append(m.messages, &cp)
	return nil
}

func (m *mockChatRepo) BatchCreate(ctx context.Context, list []model.ChatMessage) error {
	for i := range list {
		if err := m.Create(ctx, &list[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockChatRepo) ListByStudent(_ context.Context, studentID string) ([]model.ChatMessage, error) {
	var result []model.ChatMessage
	for _, msg := range m.messages {
		if msg.StudentID == studentID {
			result = append(result, *msg)
		}
	}
	return result, nil
}

func (m *mockChatRepo) ListAll(_ context.Context, sender string) ([]model.ChatMessage, error) {
	var result []model.ChatMessage
	for _, msg := range m.messages {
		if sender != "" && msg.Sender != sender {
			continue
		}
		cp := *msg
		cp.Student = m.users.users[msg.StudentID]
		result = append(result, cp)
	}
	return result, nil
}

func (m *mockChatRepo) ListThreads(_ context.Context) ([]repository.ChatThread, error) {
	byStudent := make(map[string]*repository.ChatThread)
	var order []string
	for _, msg := range m.messages {
		t, ok := byStudent[msg.StudentID]
		if !ok {
			t = &repository.ChatThread{StudentID: msg.StudentID}
			if u := m.users.users[msg.StudentID]; u != nil {
				t.StudentName = u.Name
			}
			byStudent[msg.StudentID] = t
			order = append(order, msg.StudentID)
		}
		t.LastMessage = msg.Message
		t.LastMessageAt = msg.CreatedAt
		t.MessageCount++
	}
	result := make([]repository.ChatThread, 0, len(order))
	for _, id := range order {
		result = append(result, *byStudent[id])
	}
	return result, nil
}

// ── 测试数据 ──

func seedStudent(m *mockRepos, name, email string) *model.User {
	usn := "USN-" + name
	u := &model.User{Name: name, Email: email, USN: &usn, Role: model.RoleStudent}
	_ = m.users.Create(context.Background(), u)
	return u
}

func seedAdmin(m *mockRepos, name, email string) *model.User {
	regNo := "REG-" + name
	u := &model.User{Name: name, Email: email, RegNo: &regNo, Role: model.RoleAdmin}
	_ = m.users.Create(context.Background(), u)
	return u
}

// seedCourse 创建含 n 个章节的课程
func seedCourse(m *mockRepos, title string, n int) (*model.Course, []*model.Chapter) {
	c := &model.Course{Title: title, TotalChapters: n}
	_ = m.courses.Create(context.Background(), c)
	chapters := make([]*model.Chapter, 0, n)
	for i := 1; i <= n; i++ {
		ch := &model.Chapter{CourseID: c.CourseID, ChapterNumber: i, Title: fmt.Sprintf("Chapter %d", i)}
		_ = m.chapters.Create(context.Background(), ch)
		chapters = append(chapters, ch)
	}
	return c, chapters
}

// seedApproved 直接写入一条已通过的选课记录
func seedApproved(m *mockRepos, studentID, courseID string, at time.Time) *model.Enrollment {
	e := &model.Enrollment{
		StudentID:  studentID,
		CourseID:   courseID,
		Status:     model.EnrollmentApproved,
		EnrolledAt: at,
		ApprovedAt: &at,
	}
	_ = m.enrollments.Create(context.Background(), e)
	return e
}
