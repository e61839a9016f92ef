package main

import (
	"fmt"
	"log"
	"strconv"
	"time"
)

// TidyOptions controls tidy-stage policy.
type TidyOptions struct {
	// DropUnknownStatus discards rows whose APPT_STATUS is "Unknown".
	// The published data changed this behaviour between vintages, so it
	// is a policy switch rather than a fixed rule. Default keeps them.
	DropUnknownStatus bool
}

// tidyPracticeLevelData restricts the raw table to the 8-column
// contract and parses the month and count fields. Any unparseable
// value fails the whole stage; there is no partial output.
func tidyPracticeLevelData(raw *RawTable, opts TidyOptions) ([]PracticeRecord, error) {
	log.Printf("Tidying practice level data (%d rows)", len(raw.Rows))

	idx := make(map[string]int, len(requiredPracticeColumns))
	for _, col := range requiredPracticeColumns {
		i, ok := raw.ColIdx[col]
		if !ok {
			return nil, &SchemaError{Column: col}
		}
		idx[col] = i
	}

	records := make([]PracticeRecord, 0, len(raw.Rows))
	dropped := 0
	for n, row := range raw.Rows {
		status := fieldAt(row, idx[colApptStatus])
		if opts.DropUnknownStatus && status == rawStatusUnknown {
			dropped++
			continue
		}

		monthStr := fieldAt(row, idx[colMonth])
		month, err := time.Parse(monthLayout, monthStr)
		if err != nil {
			return nil, &ParseError{File: rowFile(raw, n), Row: n + 1, Column: colMonth, Value: monthStr, Err: err}
		}

		countStr := fieldAt(row, idx[colCount])
		count, err := strconv.Atoi(countStr)
		if err != nil {
			return nil, &ParseError{File: rowFile(raw, n), Row: n + 1, Column: colCount, Value: countStr, Err: err}
		}
		if count < 0 {
			return nil, &ParseError{File: rowFile(raw, n), Row: n + 1, Column: colCount, Value: countStr,
				Err: fmt.Errorf("appointment count must be non-negative")}
		}

		records = append(records, PracticeRecord{
			Month:                  month,
			GPCode:                 fieldAt(row, idx[colGPCode]),
			HCPType:                fieldAt(row, idx[colHCPType]),
			ApptMode:               fieldAt(row, idx[colApptMode]),
			NationalCategory:       fieldAt(row, idx[colNationalCategory]),
			TimeBetweenBookAndAppt: fieldAt(row, idx[colTimeBetweenBookAndAppt]),
			ApptStatus:             status,
			Count:                  count,
		})
	}

	if dropped > 0 {
		log.Printf("Dropped %d rows with %q status", dropped, rawStatusUnknown)
	}
	return records, nil
}

// rowFile names the source file of a concatenated row, when known.
// Row offsets per file are not tracked, so a multi-file table reports
// the file list instead.
func rowFile(raw *RawTable, _ int) string {
	if len(raw.Files) == 1 {
		return raw.Files[0]
	}
	if len(raw.Files) == 0 {
		return "<memory>"
	}
	return fmt.Sprintf("one of %d crosstab files", len(raw.Files))
}
