package main

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// openCSV opens a delimited file with the reader settings used across
// the pipeline: 256KB buffer, UTF-8 BOM skip, lazy quotes, variable
// field counts.
func openCSV(path string) (*os.File, *csv.Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}

	bufReader := bufio.NewReaderSize(file, 256*1024)

	bom, err := bufReader.Peek(3)
	if err == nil && len(bom) >= 3 && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		bufReader.Discard(3)
	}

	reader := csv.NewReader(bufReader)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	return file, reader, nil
}

// readHeader reads and normalizes the header row, returning the headers
// and a name → index lookup.
func readHeader(reader *csv.Reader, path string) ([]string, map[string]int, error) {
	headers, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\uFEFF")
	}

	colIdx := make(map[string]int, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		headers[i] = h
		colIdx[h] = i
	}
	return headers, colIdx, nil
}

// fieldAt returns the trimmed field at idx, or "" for short rows.
func fieldAt(row []string, idx int) string {
	if idx >= 0 && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

// readMappingData reads the practice → organisation lookup table.
// All eleven columns are required; extra columns are ignored.
func readMappingData(path string) ([]MappingRecord, error) {
	log.Printf("Reading mapping data from %s", path)

	file, reader, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	_, colIdx, err := readHeader(reader, path)
	if err != nil {
		return nil, err
	}
	for _, col := range requiredMappingColumns {
		if _, ok := colIdx[col]; !ok {
			return nil, &SchemaError{File: path, Column: col}
		}
	}

	var records []MappingRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if len(row) == 0 || (len(row) == 1 && row[0] == "") {
			continue
		}

		records = append(records, MappingRecord{
			GPCode:             fieldAt(row, colIdx[colGPCode]),
			GPName:             fieldAt(row, colIdx[colGPName]),
			Supplier:           fieldAt(row, colIdx[colSupplier]),
			PCNCode:            fieldAt(row, colIdx[colPCNCode]),
			PCNName:            fieldAt(row, colIdx[colPCNName]),
			SubICBLocationCode: fieldAt(row, colIdx[colSubICBLocationCode]),
			SubICBLocationName: fieldAt(row, colIdx[colSubICBLocationName]),
			ICBCode:            fieldAt(row, colIdx[colICBCode]),
			ICBName:            fieldAt(row, colIdx[colICBName]),
			RegionCode:         fieldAt(row, colIdx[colRegionCode]),
			RegionName:         fieldAt(row, colIdx[colRegionName]),
		})
	}

	return records, nil
}

// defaultCrosstabPrefix matches the published practice-level files.
const defaultCrosstabPrefix = "Practice_Level_Crosstab"

// readPracticeLevelData reads every `<prefix>*.csv` file in dir and
// concatenates them row-wise into a RawTable. The first file's header
// governs the column order; later files may order columns differently
// but must carry at least the first file's columns by name.
func readPracticeLevelData(dir, prefix string) (*RawTable, error) {
	pattern := prefix + "*.csv"
	paths, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	if len(paths) == 0 {
		return nil, &EmptyInputError{Dir: dir, Pattern: pattern}
	}
	sort.Strings(paths)

	table := &RawTable{}
	for _, path := range paths {
		log.Printf("Reading file %s", path)
		if err := appendCrosstabFile(table, path); err != nil {
			return nil, err
		}
	}

	log.Printf("Read %d rows from %d crosstab file(s)", len(table.Rows), len(table.Files))
	return table, nil
}

// appendCrosstabFile reads one crosstab file into the table, remapping
// its columns to the table's header order when necessary.
func appendCrosstabFile(table *RawTable, path string) error {
	file, reader, err := openCSV(path)
	if err != nil {
		return err
	}
	defer file.Close()

	headers, colIdx, err := readHeader(reader, path)
	if err != nil {
		return err
	}

	if table.Headers == nil {
		table.Headers = headers
		table.ColIdx = colIdx
	}

	// Map this file's columns onto the table's header order.
	remap := make([]int, len(table.Headers))
	identity := true
	for i, h := range table.Headers {
		idx, ok := colIdx[h]
		if !ok {
			return &SchemaError{File: path, Column: h}
		}
		remap[i] = idx
		if idx != i {
			identity = false
		}
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if len(row) == 0 || (len(row) == 1 && row[0] == "") {
			continue
		}

		if !identity || len(row) != len(table.Headers) {
			mapped := make([]string, len(table.Headers))
			for i, src := range remap {
				mapped[i] = fieldAt(row, src)
			}
			row = mapped
		}
		table.Rows = append(table.Rows, row)
	}

	table.Files = append(table.Files, path)
	return nil
}
