package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"college-schedule/backend/internal/dto"
	"college-schedule/backend/internal/model"
	"college-schedule/backend/internal/timetable"
	apperrors "college-schedule/backend/pkg/errors"
)

var (
	ErrUnsupportedFile    = fmt.Errorf("%w: يجب أن يكون الملف بصيغة xlsx", apperrors.ErrValidation)
	ErrEmptySpreadsheet   = fmt.Errorf("%w: الملف لا يحتوي على بيانات", apperrors.ErrValidation)
	ErrExportGenerateFail = errors.New("فشل إنشاء ملف Excel")
)

// 上传文件至少包含表头与一行数据
const minSpreadsheetRows = 2

// InspectSpreadsheet 转发前检查上传的课表文件
// 只确认文件可解析且首个工作表有数据，具体解析由后端完成；返回工作表名与数据行数
func InspectSpreadsheet(filename string, data []byte) (string, int, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
	default:
		return "", 0, ErrUnsupportedFile
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrUnsupportedFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", 0, ErrEmptySpreadsheet
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrUnsupportedFile, err)
	}
	nonEmpty := 0
	for _, r := range rows {
		if rowHasValue(r) {
			nonEmpty++
		}
	}
	if nonEmpty < minSpreadsheetRows {
		return sheet, 0, ErrEmptySpreadsheet
	}
	return sheet, nonEmpty - 1, nil
}

func rowHasValue(cols []string) bool {
	for _, c := range cols {
		if strings.TrimSpace(c) != "" {
			return true
		}
	}
	return false
}

// ExportService 课表导出业务接口
type ExportService interface {
	RoomMatrixXLSX(ctx context.Context, sess *model.Session, roomID model.ID, q *dto.MatrixQuery) (*bytes.Buffer, string, error)
	WeeklyMatrixXLSX(ctx context.Context, sess *model.Session, q *dto.WeeklyMatrixQuery) (*bytes.Buffer, string, error)
}

type exportService struct {
	schedules ScheduleService
	logger    *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(schedules ScheduleService, logger *zap.Logger) ExportService {
	return &exportService{schedules: schedules, logger: logger}
}

func (s *exportService) RoomMatrixXLSX(ctx context.Context, sess *model.Session, roomID model.ID, q *dto.MatrixQuery) (*bytes.Buffer, string, error) {
	resp, err := s.schedules.RoomMatrix(ctx, sess, roomID, q)
	if err != nil {
		return nil, "", err
	}
	title := string(roomID)
	if len(resp.Rooms) > 0 {
		title = resp.Rooms[0].Label()
	}

	buf, err := WriteMatrixXLSX(title, resp)
	if err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, fmt.Sprintf("جدول_%s.xlsx", sanitizeFilename(title)), nil
}

func (s *exportService) WeeklyMatrixXLSX(ctx context.Context, sess *model.Session, q *dto.WeeklyMatrixQuery) (*bytes.Buffer, string, error) {
	resp, err := s.schedules.WeeklyMatrix(ctx, sess, q)
	if err != nil {
		return nil, "", err
	}
	buf, err := WriteMatrixXLSX("الجدول الأسبوعي", resp)
	if err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, "الجدول_الأسبوعي.xlsx", nil
}

// WriteMatrixXLSX 将周课表写成工作表：行为时间段，列为展示日
func WriteMatrixXLSX(title string, resp *dto.MatrixResponse) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "الجدول"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	if err := f.SetSheetView(sheetName, 0, &excelize.ViewOptions{RightToLeft: boolPtr(true)}); err != nil {
		return nil, err
	}

	// 列宽
	_ = f.SetColWidth(sheetName, "A", "A", 14)
	lastCol := colName(len(resp.Days))
	if len(resp.Days) > 0 {
		_ = f.SetColWidth(sheetName, "B", lastCol, 30)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	cellStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "top", WrapText: true},
	})

	// 标题行
	_ = f.SetCellValue(sheetName, "A1", title)
	_ = f.MergeCell(sheetName, "A1", cell(lastCol, 1))
	_ = f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	row := 2
	_ = f.SetCellValue(sheetName, cell("A", row), "الوقت")
	for i, d := range resp.Days {
		_ = f.SetCellValue(sheetName, cell(colName(1+i), row), d.Label)
	}
	_ = f.SetCellStyle(sheetName, cell("A", row), cell(lastCol, row), headerStyle)

	// 数据行
	row = 3
	for _, slot := range resp.Slots {
		_ = f.SetCellValue(sheetName, cell("A", row), slot.Start+" - "+slot.End)
		for i, d := range resp.Days {
			text := "-"
			if recs := resp.Matrix.Cell(d.Day, slot.Key()); len(recs) > 0 {
				text = cellText(recs)
			}
			_ = f.SetCellValue(sheetName, cell(colName(1+i), row), text)
		}
		_ = f.SetCellStyle(sheetName, cell("B", row), cell(lastCol, row), cellStyle)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// cellText 单元格内每门课一段：科目、阶段、教师、教室
func cellText(recs []model.LectureRecord) string {
	parts := make([]string, 0, len(recs))
	for i := range recs {
		r := &recs[i]
		lines := []string{r.SubjectName, timetable.StageLabel(r.AcademicStage)}
		if _, name := r.PrimaryDoctor(); name != "" {
			lines = append(lines, name)
		}
		lines = append(lines, timetable.RoomLabel(r))
		parts = append(parts, strings.Join(lines, "\n"))
	}
	return strings.Join(parts, "\n\n")
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func boolPtr(b bool) *bool { return &b }

func sanitizeFilename(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, s)
}
