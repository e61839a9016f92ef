package main

import (
	"log"
	"sort"
	"strings"
)

// PivotOptions controls the reshape.
type PivotOptions struct {
	// IndexCols are the columns whose unique tuples identify an output
	// row. The month column is always part of the index. Nil means
	// month plus the ten standard dimension columns.
	IndexCols []string
	// RenameStatus maps source status labels to output column names.
	// Nil means the default three-label map. Labels absent from the map
	// keep their raw value as the column name.
	RenameStatus map[string]string
}

// pivotPracticeLevelData spreads APPT_STATUS values into one column per
// status, keyed by the index tuple, with COUNT_OF_APPOINTMENTS as the
// cell value. The reshape is strict: a second value for the same
// (index, status) cell is a DuplicateKeyError, never an implicit sum.
// Missing cells stay null; zero-filling belongs to aggregation.
func pivotPracticeLevelData(merged []MergedRecord, opts PivotOptions) (*PivotTable, error) {
	indexCols := opts.IndexCols
	if indexCols == nil {
		indexCols = append([]string{colMonth}, aggColumns...)
	}
	rename := opts.RenameStatus
	if rename == nil {
		rename = defaultStatusRename
	}

	// Dimension columns are everything in the index but the month.
	var dimCols []string
	for _, col := range indexCols {
		if col == colMonth {
			continue
		}
		if _, ok := dimGetters[col]; !ok {
			return nil, &SchemaError{Column: col}
		}
		dimCols = append(dimCols, col)
	}

	log.Printf("Pivoting practice level data (%d rows, %d index columns)", len(merged), 1+len(dimCols))

	table := &PivotTable{
		IndexCols: append([]string{colMonth}, dimCols...),
	}
	byKey := make(map[string]int, len(merged)) // index key → row offset
	statusSeen := make(map[string]bool)

	var key strings.Builder
	for i := range merged {
		r := &merged[i]

		key.Reset()
		key.WriteString(r.Month.Format("2006-01-02"))
		for _, col := range dimCols {
			key.WriteByte('\t')
			key.WriteString(dimGetters[col](r))
		}
		k := key.String()

		statusCol := r.ApptStatus
		if renamed, ok := rename[statusCol]; ok {
			statusCol = renamed
		}
		statusSeen[statusCol] = true

		n, ok := byKey[k]
		if !ok {
			dims := make(map[string]string, len(dimCols))
			for _, col := range dimCols {
				dims[col] = dimGetters[col](r)
			}
			n = len(table.Rows)
			table.Rows = append(table.Rows, PivotRecord{
				Month:  r.Month,
				Dims:   dims,
				Counts: make(map[string]int, len(rename)),
			})
			byKey[k] = n
		}

		if _, dup := table.Rows[n].Counts[statusCol]; dup {
			return nil, &DuplicateKeyError{IndexKey: k, Column: statusCol}
		}
		table.Rows[n].Counts[statusCol] = r.Count
	}

	table.StatusCols = make([]string, 0, len(statusSeen))
	for s := range statusSeen {
		table.StatusCols = append(table.StatusCols, s)
	}
	sort.Strings(table.StatusCols)

	return table, nil
}
