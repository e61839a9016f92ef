package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// SummaryParquetRow is the columnar form of a monthly summary row.
// Dimension values repeat heavily month over month, so dictionary +
// RLE encoding compresses them to near-zero; Zstd keeps the files
// small enough to ship alongside the CSVs.
type SummaryParquetRow struct {
	Month            string  `parquet:"appointment_month_start_date"`
	Dimension        string  `parquet:"dimension"`
	DimensionValue   string  `parquet:"dimension_value"`
	Attended         int64   `parquet:"attended"`
	DidNotAttend     int64   `parquet:"did_not_attend"`
	Unknown          int64   `parquet:"unknown"`
	Total            int64   `parquet:"total_appointments"`
	AttendedRate     float64 `parquet:"attended_rate"`
	DidNotAttendRate float64 `parquet:"did_not_attend_rate"`
}

// SummaryWriter writes SummaryParquetRow records to one Parquet file.
type SummaryWriter struct {
	file   *os.File
	writer *parquet.GenericWriter[SummaryParquetRow]
	count  int
}

// NewSummaryWriter creates a Parquet writer for monthly summaries.
func NewSummaryWriter(filename string) (*SummaryWriter, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create parquet file: %w", err)
	}

	writer := parquet.NewGenericWriter[SummaryParquetRow](file,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedDefault}),
		parquet.CreatedBy("gpappointments", "1.0", ""),
	)

	return &SummaryWriter{file: file, writer: writer}, nil
}

// Write writes a batch of rows.
func (w *SummaryWriter) Write(rows []SummaryParquetRow) (int, error) {
	n, err := w.writer.Write(rows)
	w.count += n
	if err != nil {
		return n, fmt.Errorf("write parquet rows: %w", err)
	}
	return n, nil
}

// Count returns the total number of rows written.
func (w *SummaryWriter) Count() int { return w.count }

// Close flushes the final row group and closes the file.
func (w *SummaryWriter) Close() error {
	if err := w.writer.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return w.file.Close()
}

// summaryParquetRows converts one dimension's summaries to their
// columnar form.
func summaryParquetRows(dimension string, summaries []SummaryRecord) []SummaryParquetRow {
	rows := make([]SummaryParquetRow, 0, len(summaries))
	for i := range summaries {
		s := &summaries[i]
		rows = append(rows, SummaryParquetRow{
			Month:            s.Month.Format("2006-01-02"),
			Dimension:        dimension,
			DimensionValue:   s.Groups[dimension],
			Attended:         int64(s.Attended),
			DidNotAttend:     int64(s.DidNotAttend),
			Unknown:          int64(s.Unknown),
			Total:            int64(s.Total),
			AttendedRate:     s.AttendedRate,
			DidNotAttendRate: s.DidNotAttendRate,
		})
	}
	return rows
}

// writeSummaryParquet writes one dimension's monthly summary to
// <dir>/<dimension>_summary.parquet.
func writeSummaryParquet(dir, dimension string, summaries []SummaryRecord) error {
	path := filepath.Join(dir, dimension+"_summary.parquet")
	w, err := NewSummaryWriter(path)
	if err != nil {
		return err
	}

	if _, err := w.Write(summaryParquetRows(dimension, summaries)); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	log.Printf("Saved %d summary rows to %s", len(summaries), path)
	return nil
}

// writeAllSummaryParquets writes one Parquet file per dimension.
func writeAllSummaryParquets(dir string, summaries map[string][]SummaryRecord) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	for dimension, rows := range summaries {
		if err := writeSummaryParquet(dir, dimension, rows); err != nil {
			return err
		}
	}
	return nil
}
