package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"attendance-backend/internal/model"
)

// Generator produces an attendance report file for an ended session and
// returns its path.
type Generator interface {
	Generate(session model.Session, records []model.Attendance) (string, error)
}

// ExcelGenerator writes xlsx reports into a directory.
type ExcelGenerator struct {
	dir string
}

// NewExcelGenerator creates a generator writing into dir, creating it if
// needed.
func NewExcelGenerator(dir string) (*ExcelGenerator, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	return &ExcelGenerator{dir: dir}, nil
}

// Generate writes one sheet with a row per attendance record.
func (g *ExcelGenerator) Generate(session model.Session, records []model.Attendance) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Attendance"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return "", fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Name", "Email", "Timestamp", "Verified", "Admin Override"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return "", fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, record := range records {
		values := []any{
			record.User.Name,
			record.User.Email,
			record.Timestamp.Format("2006-01-02 15:04:05"),
			record.Verified,
			record.AdminOverride,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return "", fmt.Errorf("failed to write record row: %w", err)
			}
		}
	}

	path := filepath.Join(g.dir, fmt.Sprintf("session-%s.xlsx", session.ID))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}
	return path, nil
}
