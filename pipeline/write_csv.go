package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

// summaryHeader builds the column header for one dimension's summary.
func summaryHeader(dimension string) []string {
	return []string{
		colMonth,
		dimension,
		colAttended,
		colDidNotAttend,
		colUnknown,
		"TOTAL_APPOINTMENTS",
		"ATTENDED_RATE",
		"DID_NOT_ATTEND_RATE",
	}
}

// writeSummaryCSV writes one dimension's monthly summary to
// <dir>/<dimension>_summary.csv.
func writeSummaryCSV(dir, dimension string, summaries []SummaryRecord) error {
	path := filepath.Join(dir, dimension+"_summary.csv")
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(summaryHeader(dimension)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	for i := range summaries {
		s := &summaries[i]
		record := []string{
			s.Month.Format("2006-01-02"),
			s.Groups[dimension],
			strconv.Itoa(s.Attended),
			strconv.Itoa(s.DidNotAttend),
			strconv.Itoa(s.Unknown),
			strconv.Itoa(s.Total),
			strconv.FormatFloat(s.AttendedRate, 'f', -1, 64),
			strconv.FormatFloat(s.DidNotAttendRate, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}

	log.Printf("Saved interim output to %s", path)
	return nil
}

// writeAllSummaryCSVs writes one summary file per dimension.
func writeAllSummaryCSVs(dir string, summaries map[string][]SummaryRecord) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	for dimension, rows := range summaries {
		if err := writeSummaryCSV(dir, dimension, rows); err != nil {
			return err
		}
	}
	return nil
}
