package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dejoyjm/shreds-platform/internal/services"
	"github.com/dejoyjm/shreds-platform/internal/utils"
	"github.com/xuri/excelize/v2"
)

// ExcelRenderer writes a score report workbook: a summary sheet with section
// and category breakdowns, and an audit sheet with every question's
// evaluation. It is the adapter toward the external report collaborator;
// failures are for the caller to log, never to act on.
type ExcelRenderer struct {
	outputDir string
	logger    utils.Logger
}

func NewExcelRenderer(outputDir string, logger utils.Logger) *ExcelRenderer {
	return &ExcelRenderer{outputDir: outputDir, logger: logger}
}

func (r *ExcelRenderer) Render(ctx context.Context, data *services.ScoreReportData) (string, error) {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := r.writeSummarySheet(f, data); err != nil {
		return "", err
	}
	if err := r.writeAuditSheet(f, data); err != nil {
		return "", err
	}

	// Attempt number in the name keeps re-renders from clobbering earlier
	// attempts of the same candidate.
	filename := fmt.Sprintf("score_report_c%d_t%d_a%d.xlsx",
		data.CandidateID, data.TestID, data.AttemptNumber)
	path := filepath.Join(r.outputDir, filename)

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save report workbook: %w", err)
	}

	r.logger.Info("Report workbook written",
		"path", path,
		"candidate_id", data.CandidateID,
		"test_id", data.TestID)
	return path, nil
}

func (r *ExcelRenderer) writeSummarySheet(f *excelize.File, data *services.ScoreReportData) error {
	sheetName := "Summary"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	overview := [][]interface{}{
		{"Candidate", data.CandidateName},
		{"Email", data.Email},
		{"Phone", data.Phone},
		{"Test", data.TestName},
		{"Attempt", data.AttemptNumber},
		{"Score", data.Score.InexactFloat64()},
		{"Max Score", data.MaxScore.InexactFloat64()},
		{"Percentage", data.Percentage.InexactFloat64()},
		{"Correct", data.TotalCorrect},
		{"Wrong", data.TotalWrong},
		{"Unattempted", data.TotalUnattempted},
	}
	for i, pair := range overview {
		for j, value := range pair {
			cell := fmt.Sprintf("%c%d", 'A'+j, i+1)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	headerRow := len(overview) + 2
	headers := []string{"Section", "Score", "Max Score", "Percentage", "Correct", "Wrong", "Unattempted"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c%d", 'A'+i, headerRow)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, section := range data.Sections {
		row := []interface{}{
			section.SectionName,
			section.Score.InexactFloat64(),
			section.MaxScore.InexactFloat64(),
			section.Percentage.InexactFloat64(),
			section.Correct,
			section.Wrong,
			section.Unattempted,
		}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, headerRow+1+rowIndex)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	return nil
}

func (r *ExcelRenderer) writeAuditSheet(f *excelize.File, data *services.ScoreReportData) error {
	sheetName := "Audit"

	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("failed to create audit sheet: %w", err)
	}

	headers := []string{
		"Question ID", "Section", "Question", "Answer", "Answer Choice",
		"Correct Answer", "Correct Choice", "Evaluation", "Marks",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, row := range data.Audit {
		values := []interface{}{
			row.QuestionID,
			row.SectionName,
			row.QuestionText,
			row.AnswerRaw,
			row.AnswerChoice,
			row.CorrectRaw,
			row.CorrectChoice,
			row.Evaluation,
			row.MarksAwarded.InexactFloat64(),
		}
		for colIndex, value := range values {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	return nil
}
