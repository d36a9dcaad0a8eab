package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spigell/resume-matcher/internal/scoring"
	"github.com/xuri/excelize/v2"
)

const resultsSheet = "Results"

var xlsxColumns = append(append([]string{}, columns...), "AI Reasoning", "ID")

// WriteXLSX saves results to a workbook with a single sheet. The .xlsx
// suffix is added when missing. It returns the final path.
func WriteXLSX(path string, results []*scoring.Result) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return "", fmt.Errorf("create header style: %w", err)
	}

	for i, title := range xlsxColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return "", err
		}
		if err := f.SetCellValue(resultsSheet, cell, title); err != nil {
			return "", fmt.Errorf("write header: %w", err)
		}
	}

	last, err := excelize.ColumnNumberToName(len(xlsxColumns))
	if err != nil {
		return "", err
	}
	if err := f.SetCellStyle(resultsSheet, "A1", last+"1", headerStyle); err != nil {
		return "", fmt.Errorf("style header: %w", err)
	}

	for i, r := range results {
		line := i + 2
		values := []any{
			candidateLabel(r),
			r.KeywordScore,
			nil,
			nil,
			strings.Join(r.ExactMatches, ", "),
			fuzzyLabel(r),
			strings.Join(r.MissingKeywords, ", "),
			r.AIReasoning,
			r.ID,
		}
		if r.AIScore != nil {
			values[2] = *r.AIScore
		}
		if r.AIGrade != nil {
			values[3] = *r.AIGrade
		}

		if err := f.SetSheetRow(resultsSheet, fmt.Sprintf("A%d", line), &values); err != nil {
			return "", fmt.Errorf("write row %d: %w", line, err)
		}
	}

	_ = f.SetColWidth(resultsSheet, "A", "A", 25)
	_ = f.SetColWidth(resultsSheet, "E", "G", 40)
	_ = f.SetColWidth(resultsSheet, "H", "H", 60)

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}

	return path, nil
}
