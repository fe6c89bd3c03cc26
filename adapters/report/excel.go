package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/seanwkelley/belief-sensitivity-explorer/domain/probe"
	"github.com/seanwkelley/belief-sensitivity-explorer/internal/errors"
)

const (
	questionsSheet = "Questions"
	summarySheet   = "Summary"
)

var questionHeaders = []string{
	"Question ID",
	"Question",
	"Probability",
	"Probes",
	"Successful",
	"SSR",
	"Asymmetry",
	"False Acceptance Rate",
	"Critical Path Premium",
	"Importance Correlation",
}

// ExportWorkbook writes the per-question rows and the corpus summary to an
// Excel workbook at path
func ExportWorkbook(path string, results []*probe.QuestionResult, summary CorpusSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", questionsSheet); err != nil {
		return errors.Wrap(err, "failed to rename default sheet")
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return errors.Wrap(err, "failed to create summary sheet")
	}

	for i, h := range questionHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(questionsSheet, cell, h); err != nil {
			return errors.Wrap(err, "failed to write header")
		}
	}

	for rowIdx, r := range results {
		m := r.AggregateMetrics
		row := []interface{}{
			r.QuestionID.String(),
			r.Question,
			r.Forecast.Probability,
			m.ProbeCount,
			m.SuccessfulProbes,
			cellValue(m.SSR),
			cellValue(m.AsymmetryIndex),
			cellValue(m.FalseAcceptanceRate),
			cellValue(m.CriticalPathPremium),
			cellValue(m.ImportanceSensitivityCorrelation),
		}
		for colIdx, v := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(questionsSheet, cell, v); err != nil {
				return errors.Wrap(err, "failed to write question row")
			}
		}
	}

	if err := writeSummary(f, summary); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrap(err, fmt.Sprintf("failed to save workbook to %s", path))
	}
	return nil
}

func writeSummary(f *excelize.File, summary CorpusSummary) error {
	rows := [][2]interface{}{
		{"Questions", summary.Questions},
		{"Probes", summary.ProbeCount},
		{"Successful Probes", summary.SuccessfulProbes},
		{"Mean SSR", cellValue(summary.MeanSSR)},
		{"Median SSR", cellValue(summary.MedianSSR)},
		{"Mean False Acceptance Rate", cellValue(summary.MeanFalseAcceptanceRate)},
		{"Mean Importance Correlation", cellValue(summary.MeanCorrelation)},
		{"Mean Critical Path Premium", cellValue(summary.MeanCriticalPathPremium)},
		{"Premium p-value (one-sided)", cellValue(summary.PremiumPValue)},
	}

	for i, row := range rows {
		labelCell, _ := excelize.CoordinatesToCellName(1, i+1)
		valueCell, _ := excelize.CoordinatesToCellName(2, i+1)
		if err := f.SetCellValue(summarySheet, labelCell, row[0]); err != nil {
			return errors.Wrap(err, "failed to write summary label")
		}
		if err := f.SetCellValue(summarySheet, valueCell, row[1]); err != nil {
			return errors.Wrap(err, "failed to write summary value")
		}
	}
	return nil
}

// cellValue renders undefined metrics as an empty cell instead of zero
func cellValue(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
