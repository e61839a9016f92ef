package main

import (
	"errors"
	"testing"
	"time"
)

func rawTableOf(t *testing.T, headers []string, rows ...[]string) *RawTable {
	t.Helper()
	colIdx := make(map[string]int, len(headers))
	for i, h := range headers {
		colIdx[h] = i
	}
	return &RawTable{Headers: headers, ColIdx: colIdx, Rows: rows}
}

var tidyHeaders = []string{
	colMonth, colGPCode, colHCPType, colApptMode, colNationalCategory,
	colTimeBetweenBookAndAppt, colCount, colApptStatus,
	// Extra columns beyond the contract are dropped by the tidy stage.
	colGPName,
}

func TestTidyPracticeLevelData(t *testing.T) {
	raw := rawTableOf(t, tidyHeaders,
		[]string{"01Sep2024", "A81001", "GP", "Face-to-Face", "General Consultation Routine", "Same Day", "10", "Attended", "The Densham Surgery"},
		[]string{"01Sep2024", "A81001", "GP", "Telephone", "General Consultation Routine", "1 Day", "4", "DNA", "The Densham Surgery"},
	)

	records, err := tidyPracticeLevelData(raw, TidyOptions{})
	if err != nil {
		t.Fatalf("tidyPracticeLevelData: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	want := time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC)
	if !records[0].Month.Equal(want) {
		t.Errorf("expected month %v, got %v", want, records[0].Month)
	}
	if records[0].Count != 10 {
		t.Errorf("expected count 10, got %d", records[0].Count)
	}
	if records[1].ApptStatus != "DNA" {
		t.Errorf("expected raw status DNA, got %q", records[1].ApptStatus)
	}
}

func TestTidyMissingColumn(t *testing.T) {
	raw := rawTableOf(t, []string{colMonth, colGPCode},
		[]string{"01Sep2024", "A81001"},
	)

	_, err := tidyPracticeLevelData(raw, TidyOptions{})
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}

func TestTidyBadMonth(t *testing.T) {
	raw := rawTableOf(t, tidyHeaders,
		[]string{"September 2024", "A81001", "GP", "Face-to-Face", "General Consultation Routine", "Same Day", "10", "Attended", ""},
	)

	_, err := tidyPracticeLevelData(raw, TidyOptions{})
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if parseErr.Column != colMonth {
		t.Errorf("expected column %s, got %s", colMonth, parseErr.Column)
	}
	if parseErr.Value != "September 2024" {
		t.Errorf("expected offending value in error, got %q", parseErr.Value)
	}
}

func TestTidyBadCount(t *testing.T) {
	for _, bad := range []string{"ten", "", "-3"} {
		raw := rawTableOf(t, tidyHeaders,
			[]string{"01Sep2024", "A81001", "GP", "Face-to-Face", "General Consultation Routine", "Same Day", bad, "Attended", ""},
		)
		_, err := tidyPracticeLevelData(raw, TidyOptions{})
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("count %q: expected ParseError, got %v", bad, err)
		}
		if parseErr.Column != colCount {
			t.Errorf("count %q: expected column %s, got %s", bad, colCount, parseErr.Column)
		}
	}
}

func TestTidyDropUnknownStatus(t *testing.T) {
	raw := rawTableOf(t, tidyHeaders,
		[]string{"01Sep2024", "A81001", "GP", "Face-to-Face", "General Consultation Routine", "Same Day", "10", "Attended", ""},
		[]string{"01Sep2024", "A81001", "GP", "Face-to-Face", "General Consultation Routine", "Same Day", "3", "Unknown", ""},
	)

	kept, err := tidyPracticeLevelData(raw, TidyOptions{})
	if err != nil {
		t.Fatalf("tidy (keep): %v", err)
	}
	if len(kept) != 2 {
		t.Fatalf("default policy must keep Unknown rows, got %d records", len(kept))
	}

	dropped, err := tidyPracticeLevelData(raw, TidyOptions{DropUnknownStatus: true})
	if err != nil {
		t.Fatalf("tidy (drop): %v", err)
	}
	if len(dropped) != 1 {
		t.Fatalf("expected 1 record after dropping Unknown, got %d", len(dropped))
	}
	if dropped[0].ApptStatus != "Attended" {
		t.Errorf("wrong row survived: %q", dropped[0].ApptStatus)
	}
}
