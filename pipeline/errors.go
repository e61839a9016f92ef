package main

import "fmt"

// SchemaError reports a required column missing from an input table.
type SchemaError struct {
	File   string // source file, empty for in-memory tables
	Column string
}

func (e *SchemaError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: required column %q missing", e.File, e.Column)
	}
	return fmt.Sprintf("required column %q missing", e.Column)
}

// ParseError reports a field that could not be parsed. Any single
// failure aborts the stage; there is no partial success.
type ParseError struct {
	File   string
	Row    int // 1-based data row number
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s row %d: parse %s %q: %v", e.File, e.Row, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// EmptyInputError reports that no crosstab files matched the expected
// naming pattern. Raised before any processing.
type EmptyInputError struct {
	Dir     string
	Pattern string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("no files in %s matching %q", e.Dir, e.Pattern)
}

// DuplicateKeyError reports a pivot (index, status) pair seen more than
// once. A strict reshape cannot resolve the ambiguity without an
// aggregation function, so this is fatal.
type DuplicateKeyError struct {
	IndexKey string // tab-joined index tuple
	Column   string // status column
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate pivot cell: index (%s) column %s", e.IndexKey, e.Column)
}

// JoinIntegrityWarning reports rows that matched only one side of the
// mapping merge. Non-fatal: the caller logs it and continues with the
// matched rows.
type JoinIntegrityWarning struct {
	Side  string // "left_only" or "right_only"
	Count int
}

func (w JoinIntegrityWarning) String() string {
	return fmt.Sprintf("there are %d %q rows in the merged data", w.Count, w.Side)
}
