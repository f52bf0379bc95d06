package resume

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"complan-go/internal/types"
)

// 页面布局常量（单位：毫米，Letter纸张）
const (
	pageMargin  = 15.0
	columnWidth = 88.0
	rightColX   = 112.0
	lineHeight  = 5.5
	sectionGap  = 6.0
)

// RenderPDF 将简历字段渲染为单个PDF文档：
// 头部为姓名+联系方式+分隔线，主体为两栏布局——
// 左栏 Education / Work Experience / Hobbies，
// 右栏 Skills / LeetCode Stats / Languages。
func RenderPDF(profile types.ResumeProfile, stats types.LeetCodeStats) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageWidth, _ := pdf.GetPageSize()

	// 头部：姓名居中
	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 12, tr(profile.Name), "", 1, "C", false, 0, "")

	// 联系方式一行居中
	contact := fmt.Sprintf("%s   |   %s   |   %s", profile.Email, profile.Phone, profile.Address)
	contact = strings.ReplaceAll(contact, "\n", ", ")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, tr(contact), "", 1, "C", false, 0, "")

	// 全宽分隔线
	y := pdf.GetY() + 2
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.4)
	pdf.Line(pageMargin, y, pageWidth-pageMargin, y)

	topY := y + 6

	// 左栏：Education, Work Experience, Hobbies
	leftY := topY
	leftY = renderSection(pdf, tr, pageMargin, leftY, "Education", profile.Education, false)
	leftY = renderSection(pdf, tr, pageMargin, leftY, "Work Experience", profile.Experience, false)
	renderSection(pdf, tr, pageMargin, leftY, "Hobbies", profile.Hobbies, true)

	// 右栏：Skills, LeetCode Stats, Languages
	rightY := topY
	rightY = renderSection(pdf, tr, rightColX, rightY, "Skills", profile.Skills, true)
	rightY = renderSection(pdf, tr, rightColX, rightY, "LeetCode Stats", statsLines(stats), false)
	renderSection(pdf, tr, rightColX, rightY, "Languages", profile.Languages, true)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("生成PDF失败: %w", err)
	}
	return buf.Bytes(), nil
}

// renderSection 在指定横坐标渲染一个章节（标题+短分隔线+条目），返回新的纵坐标
func renderSection(pdf *fpdf.Fpdf, tr func(string) string, x, y float64, title string, items []string, bullet bool) float64 {
	pdf.SetXY(x, y)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(columnWidth, 7, tr(title), "", 0, "L", false, 0, "")

	// 章节标题下的短分隔线（约40%栏宽）
	lineY := y + 8
	pdf.SetLineWidth(0.3)
	pdf.Line(x, lineY, x+columnWidth*0.4, lineY)

	y = lineY + 2
	pdf.SetFont("Helvetica", "", 11)
	for _, item := range items {
		text := item
		if bullet {
			text = "- " + item
		}
		pdf.SetXY(x, y)
		pdf.MultiCell(columnWidth, lineHeight, tr(text), "", "L", false)
		y = pdf.GetY() + 1
	}
	return y + sectionGap
}

// statsLines 将统计记录格式化为展示行，缺失的计数器显示为"N/A"
func statsLines(stats types.LeetCodeStats) []string {
	if !stats.Available {
		return []string{
			"Total Problems Solved: N/A",
			"Easy Problems Solved: N/A / N/A",
			"Medium Problems Solved: N/A / N/A",
			"Hard Problems Solved: N/A / N/A",
		}
	}
	return []string{
		"Total Problems Solved: " + strconv.Itoa(stats.TotalSolved),
		fmt.Sprintf("Easy Problems Solved: %d / %d", stats.EasySolved, stats.TotalEasy),
		fmt.Sprintf("Medium Problems Solved: %d / %d", stats.MediumSolved, stats.TotalMedium),
		fmt.Sprintf("Hard Problems Solved: %d / %d", stats.HardSolved, stats.TotalHard),
	}
}
