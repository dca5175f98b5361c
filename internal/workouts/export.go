package workouts

import (
	"fmt"
	"io"

	"github.com/2beens/gymbalance/pkg"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	entriesSheet = "Entries"
)

// WriteWorkbook writes an xlsx workbook with the summary on the first sheet and
// the given entries on the second one.
func WriteWorkbook(w io.Writer, summary *Summary, entries []Entry) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Warnf("close workbook: %s", err)
		}
	}()

	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(entriesSheet)

	if err := writeSummarySheet(f, summary); err != nil {
		return fmt.Errorf("write summary sheet: %w", err)
	}
	if err := writeEntriesSheet(f, entries); err != nil {
		return fmt.Errorf("write entries sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, summary *Summary) error {
	rows := [][]interface{}{
		{"From", summary.Start.Format(pkg.DateLayout)},
		{"To", summary.End.Format(pkg.DateLayout)},
		{"Entries in range", summary.EntriesInRange},
		{},
		{"Muscle group", "Total volume", "Neglected"},
	}

	neglected := make(map[MuscleGroup]bool, len(summary.Neglected))
	for _, g := range summary.Neglected {
		neglected[g] = true
	}
	for _, r := range summary.Rows {
		mark := ""
		if neglected[r.MuscleGroup] {
			mark = "yes"
		}
		rows = append(rows, []interface{}{string(r.MuscleGroup), r.TotalVolume, mark})
	}
	rows = append(rows, []interface{}{}, []interface{}{summary.Message})

	if err := setRows(f, summarySheet, rows); err != nil {
		return err
	}
	return f.SetColWidth(summarySheet, "A", "A", 20)
}

func writeEntriesSheet(f *excelize.File, entries []Entry) error {
	rows := make([][]interface{}, 0, len(entries)+1)
	header := make([]interface{}, 0, len(csvHeader))
	for _, h := range csvHeader {
		header = append(header, h)
	}
	rows = append(rows, header)
	for _, e := range entries {
		rows = append(rows, []interface{}{
			e.Date.Format(pkg.DateLayout),
			e.Exercise,
			string(e.MuscleGroup),
			e.Sets,
			e.Reps,
			e.Weight,
			e.Volume,
		})
	}

	if err := setRows(f, entriesSheet, rows); err != nil {
		return err
	}
	return f.SetColWidth(entriesSheet, "B", "B", 24)
}

func setRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return nil
}
