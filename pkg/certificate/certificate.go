package certificate

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/go-pdf/fpdf"
)

// Data 证书内容
type Data struct {
	StudentName string
	CourseTitle string
	IssuedAt    time.Time
}

// Renderer 将证书内容渲染为二进制文档
type Renderer interface {
	Render(d Data) ([]byte, error)
}

// PDFRenderer A4 单页证书
type PDFRenderer struct {
	issuer     string
	background string // 可选 PNG 背景，文件不存在时忽略
}

// NewPDFRenderer 创建证书渲染器
func NewPDFRenderer(issuer, background string) *PDFRenderer {
	if issuer == "" {
		issuer = "CourseHub"
	}
	return &PDFRenderer{issuer: issuer, background: background}
}

// ContentType 证书 MIME 类型
const ContentType = "application/pdf"

// Filename 证书下载文件名
func Filename(courseTitle, studentName string) string {
	return fmt.Sprintf("CourseHub-Certificate-%s-%s.pdf", courseTitle, studentName)
}

// Render 渲染证书
func (r *PDFRenderer) Render(d Data) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()

	if r.background != "" {
		if _, err := os.Stat(r.background); err == nil {
			pdf.ImageOptions(r.background, 0, 0, pageW, pageH, false,
				fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		}
	}

	// 内置字体为 cp1252 编码
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	centered := func(y, h float64, family, style string, size float64, text string) {
		pdf.SetFont(family, style, size)
		pdf.SetXY(0, y)
		pdf.CellFormat(pageW, h, tr(text), "", 0, "C", false, 0, "")
	}

	pdf.SetTextColor(209, 13, 13)
	centered(38, 12, "Helvetica", "B", 28, "CERTIFICATE OF COMPLETION")

	pdf.SetTextColor(40, 40, 40)
	centered(56, 8, "Helvetica", "", 14, "is presented to")
	centered(68, 12, "Helvetica", "B", 24, d.StudentName)
	centered(84, 8, "Helvetica", "", 14, "for successfully completing "+d.CourseTitle)
	centered(96, 8, "Helvetica", "I", 12, "Dated: "+d.IssuedAt.UTC().Format("02 January 2006")+" (UTC)")

	// 印章
	sealY := pageH - 50
	pdf.SetDrawColor(40, 40, 40)
	pdf.SetLineWidth(0.5)
	pdf.Circle(pageW/2, sealY, 10, "D")
	centered(sealY+12, 6, "Helvetica", "", 10, r.issuer)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("渲染证书失败: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("输出证书失败: %w", err)
	}
	return buf.Bytes(), nil
}
