package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/25Devmaker/coursehub/internal/dto"
	"github.com/25Devmaker/coursehub/internal/model"
	"github.com/25Devmaker/coursehub/internal/repository"
	"github.com/25Devmaker/coursehub/pkg/scheduler"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

const enrollmentSheet = "选课记录"

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置响应头后写入。
type ExportService interface {
	// ExportEnrollments 导出选课记录为 Excel，status 为空时导出全部
	ExportEnrollments(ctx context.Context, req *dto.EnrollmentListRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	clock  scheduler.Clock
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, clock scheduler.Clock, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, clock: clock, logger: logger}
}

// ────────────────────── ExportEnrollments ──────────────────────
//
// 表头：学生 | 邮箱 | USN | 课程 | 状态 | 申请时间 | 通过时间 | 审批方
// 末尾追加按状态的汇总行。

func (s *exportService) ExportEnrollments(ctx context.Context, req *dto.EnrollmentListRequest) (*bytes.Buffer, string, error) {
	list, err := s.repo.Enrollment.ListAll(ctx, req.Status)
	if err != nil {
		s.logger.Error("查询选课记录失败", zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(enrollmentSheet)
	if err != nil {
		s.logger.Error("创建工作表失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"学生", "邮箱", "USN", "课程", "状态", "申请时间", "通过时间", "审批方"}
	widths := []float64{18, 28, 14, 32, 10, 20, 20, 10}
	for i, h := range headers {
		col := colName(i)
		f.SetColWidth(enrollmentSheet, col, col, widths[i])
		f.SetCellValue(enrollmentSheet, cell(col, 1), h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	f.SetCellStyle(enrollmentSheet, "A1", cell(colName(len(headers)-1), 1), headerStyle)
	f.SetPanes(enrollmentSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	counts := make(map[string]int)
	row := 2
	for i := range list {
		e := &list[i]
		counts[e.Status]++

		values := enrollmentRow(e)
		for c, v := range values {
			f.SetCellValue(enrollmentSheet, cell(colName(c), row), v)
		}
		row++
	}

	// 汇总
	row++
	for _, st := range []string{model.EnrollmentPending, model.EnrollmentApproved, model.EnrollmentRejected} {
		f.SetCellValue(enrollmentSheet, cell("D", row), st)
		f.SetCellValue(enrollmentSheet, cell("E", row), counts[st])
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	suffix := req.Status
	if suffix == "" {
		suffix = "all"
	}
	filename := fmt.Sprintf("enrollments_%s_%s.xlsx", suffix, s.clock.Now().UTC().Format("20060102"))
	return buf, filename, nil
}

func enrollmentRow(e *model.Enrollment) []interface{} {
	var name, email, usn, title string
	if e.Student != nil {
		name = e.Student.Name
		email = e.Student.Email
		if e.Student.USN != nil {
			usn = *e.Student.USN
		}
	}
	if e.Course != nil {
		title = e.Course.Title
	}

	approvedAt := "-"
	if e.ApprovedAt != nil {
		approvedAt = e.ApprovedAt.UTC().Format(time.DateTime)
	}
	decidedBy := "-"
	switch {
	case e.IsPending():
	case e.DecidedBy != nil:
		decidedBy = model.ActorAdmin
	default:
		decidedBy = model.ActorSystem
	}

	return []interface{}{
		name, email, usn, title, e.Status,
		e.EnrolledAt.UTC().Format(time.DateTime), approvedAt, decidedBy,
	}
}

// colName 0 起始列号转 Excel 列名
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
