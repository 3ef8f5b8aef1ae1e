// Package report renders stored statistics history as an xlsx workbook.
package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kubev2v/task-scheduler/internal/models"
	"github.com/kubev2v/task-scheduler/internal/util"
)

const (
	HistorySheet = "History"
	SummarySheet = "Summary"
)

var historyHeader = []any{
	"Snapshot", "Taken at", "Pool", "Submitted", "Completed", "Failed",
	"Abandoned", "Rejected", "Total ms", "Average ms", "Success rate",
}

var summaryHeader = []any{
	"Pool", "Last snapshot", "Submitted", "Completed", "Failed", "Success rate", "Average ms", "Top task",
}

// Write renders records as two sheets: History with every row as given and
// Summary with the most recent record of each pool.
func Write(w io.Writer, records []models.StatisticsRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := f.SetSheetName("Sheet1", HistorySheet); err != nil {
		return err
	}
	if err := writeHistory(f, header, records); err != nil {
		return err
	}

	idx, err := f.NewSheet(SummarySheet)
	if err != nil {
		return err
	}
	if err := writeSummary(f, header, records); err != nil {
		return err
	}
	f.SetActiveSheet(idx)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeHistory(f *excelize.File, header int, records []models.StatisticsRecord) error {
	if err := writeHeader(f, HistorySheet, header, historyHeader); err != nil {
		return err
	}
	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			r.SnapshotID,
			r.TakenAt.UTC().Format(time.RFC3339),
			r.Pool,
			r.Submitted,
			r.Completed,
			r.Failed,
			r.Abandoned,
			r.Rejected,
			r.TotalExecutionTimeMs,
			util.Round(r.AverageExecutionTimeMs),
			util.Round(r.SuccessRate()),
		}
		if err := f.SetSheetRow(HistorySheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(HistorySheet, "A", "A", 38)
}

func writeSummary(f *excelize.File, header int, records []models.StatisticsRecord) error {
	if err := writeHeader(f, SummarySheet, header, summaryHeader); err != nil {
		return err
	}

	latest := Latest(records)
	for i, r := range latest {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			r.Pool,
			r.TakenAt.UTC().Format(time.RFC3339),
			r.Submitted,
			r.Completed,
			r.Failed,
			util.Round(r.SuccessRate()),
			util.Round(r.AverageExecutionTimeMs),
			topTask(r.CountsByTaskName),
		}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, style int, header []any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, style); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// Latest keeps the most recent record of every pool, ordered by pool name.
func Latest(records []models.StatisticsRecord) []models.StatisticsRecord {
	byPool := make(map[string]models.StatisticsRecord)
	for _, r := range records {
		if cur, ok := byPool[r.Pool]; !ok || r.TakenAt.After(cur.TakenAt) {
			byPool[r.Pool] = r
		}
	}

	out := make([]models.StatisticsRecord, 0, len(byPool))
	for _, r := range byPool {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pool < out[j].Pool })
	return out
}

// topTask is the task name with the highest count, ties broken by name.
func topTask(counts map[string]uint64) string {
	best := ""
	var bestCount uint64
	for name, n := range counts {
		if n > bestCount || (n == bestCount && name < best) {
			best, bestCount = name, n
		}
	}
	return best
}
