package service

import (
	"bytes"
	"context"
	"fmt"
	"math"

	"github.com/studycycle/internal/allocation"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const exportSheetName = "Ciclo"

// ExportService 将周期导出为 Excel (.xlsx)
//
// 表格格式：
//   - 第 1 行：周期名称、周学时与状态
//   - 第 3 行：表头
//   - 之后每个科目一行，最后一行为合计与整体进度
type ExportService struct {
	cycles *CycleManager
	log    *zap.Logger
}

// NewExportService 创建 ExportService
func NewExportService(cycles *CycleManager, log *zap.Logger) *ExportService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExportService{cycles: cycles, log: log}
}

// ExportCycle 导出指定周期，返回文件内容与建议文件名
func (s *ExportService) ExportCycle(ctx context.Context, userID, cycleID uint) (*bytes.Buffer, string, error) {
	detail, err := s.cycles.Detail(ctx, userID, cycleID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(exportSheetName)
	if err != nil {
		return nil, "", fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(exportSheetName, "A", "A", 28)
	f.SetColWidth(exportSheetName, "B", "C", 16)
	f.SetColWidth(exportSheetName, "D", "F", 14)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	cycle := detail.Cycle
	f.SetCellValue(exportSheetName, "A1", fmt.Sprintf("%s - %gh/semana (%s)", cycle.Name, cycle.WeeklyHours, cycle.Status))
	f.SetCellValue(exportSheetName, "E1", cycle.CreatedAt.Format("2006-01-02"))

	headers := []string{"Matéria", "Dificuldade", "Peso", "Horas previstas", "Horas feitas", "Progresso (%)"}
	for i, header := range headers {
		cellName, _ := excelize.CoordinatesToCellName(i+1, 3)
		f.SetCellValue(exportSheetName, cellName, header)
	}
	f.SetCellStyle(exportSheetName, "A3", "F3", headerStyle)

	row := 4
	for _, a := range detail.Assignments {
		f.SetCellValue(exportSheetName, cell("A", row), a.Subject.Name)
		f.SetCellValue(exportSheetName, cell("B", row), allocation.Difficulty(a.Subject.Difficulty).Label())
		f.SetCellValue(exportSheetName, cell("C", row), allocation.Weight(a.Subject.Weight).Label())
		f.SetCellValue(exportSheetName, cell("D", row), a.HoursAssigned)
		f.SetCellValue(exportSheetName, cell("E", row), a.HoursCompleted)
		f.SetCellValue(exportSheetName, cell("F", row), roundPercent(SubjectRatio(a)*100))
		row++
	}

	assigned, completed := Totals(detail.Assignments)
	f.SetCellValue(exportSheetName, cell("A", row), "Total")
	f.SetCellValue(exportSheetName, cell("D", row), assigned)
	f.SetCellValue(exportSheetName, cell("E", row), completed)
	f.SetCellValue(exportSheetName, cell("F", row), roundPercent(OverallProgress(detail.Assignments)))
	f.SetCellStyle(exportSheetName, cell("A", row), cell("F", row), headerStyle)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.log.Error("write cycle workbook failed", zap.Uint("cycle_id", cycleID), zap.Error(err))
		return nil, "", fmt.Errorf("write workbook: %w", err)
	}

	filename := fmt.Sprintf("ciclo-%d-%s.xlsx", cycle.ID, cycle.CreatedAt.Format("20060102"))
	return buf, filename, nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func roundPercent(v float64) float64 {
	return math.Round(v*10) / 10
}
