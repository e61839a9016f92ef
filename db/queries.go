package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const insertPipelineRun = `
INSERT INTO pipeline_runs (
	id, source_url, raw_rows, merged_rows, pivot_rows, dimensions,
	run_tag, started_at, completed_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

type InsertPipelineRunParams struct {
	ID          pgtype.UUID
	SourceURL   pgtype.Text
	RawRows     int64
	MergedRows  int64
	PivotRows   int64
	Dimensions  int32
	RunTag      pgtype.Text
	StartedAt   pgtype.Timestamptz
	CompletedAt pgtype.Timestamptz
}

// InsertPipelineRun records one pipeline execution.
func (q *Queries) InsertPipelineRun(ctx context.Context, arg InsertPipelineRunParams) error {
	_, err := q.db.Exec(ctx, insertPipelineRun,
		arg.ID,
		arg.SourceURL,
		arg.RawRows,
		arg.MergedRows,
		arg.PivotRows,
		arg.Dimensions,
		arg.RunTag,
		arg.StartedAt,
		arg.CompletedAt,
	)
	return err
}

type InsertMonthlySummaryParams struct {
	RunID            pgtype.UUID
	Dimension        string
	DimensionValue   string
	Month            pgtype.Date
	Attended         int64
	DidNotAttend     int64
	Unknown          int64
	Total            int64
	AttendedRate     float64
	DidNotAttendRate float64
}

// InsertMonthlySummaries bulk-loads summary rows via COPY and returns
// the number of rows copied.
func (q *Queries) InsertMonthlySummaries(ctx context.Context, arg []InsertMonthlySummaryParams) (int64, error) {
	return q.db.CopyFrom(
		ctx,
		pgx.Identifier{"monthly_summaries"},
		[]string{
			"run_id", "dimension", "dimension_value", "month",
			"attended", "did_not_attend", "unknown", "total_appointments",
			"attended_rate", "did_not_attend_rate",
		},
		pgx.CopyFromSlice(len(arg), func(i int) ([]interface{}, error) {
			return []interface{}{
				arg[i].RunID,
				arg[i].Dimension,
				arg[i].DimensionValue,
				arg[i].Month,
				arg[i].Attended,
				arg[i].DidNotAttend,
				arg[i].Unknown,
				arg[i].Total,
				arg[i].AttendedRate,
				arg[i].DidNotAttendRate,
			}, nil
		}),
	)
}

const countSummariesForRun = `
SELECT COUNT(*) FROM monthly_summaries WHERE run_id = $1
`

// CountSummariesForRun returns the number of summary rows stored for a run.
func (q *Queries) CountSummariesForRun(ctx context.Context, runID pgtype.UUID) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countSummariesForRun, runID).Scan(&count)
	return count, err
}

const getMonthlySummary = `
SELECT run_id, dimension, dimension_value, month,
       attended, did_not_attend, unknown, total_appointments,
       attended_rate, did_not_attend_rate
FROM monthly_summaries
WHERE run_id = $1 AND dimension = $2 AND dimension_value = $3 AND month = $4
`

type MonthlySummaryRow struct {
	RunID            pgtype.UUID
	Dimension        string
	DimensionValue   string
	Month            pgtype.Date
	Attended         int64
	DidNotAttend     int64
	Unknown          int64
	Total            int64
	AttendedRate     float64
	DidNotAttendRate float64
}

// GetMonthlySummary fetches a single stored summary row.
func (q *Queries) GetMonthlySummary(ctx context.Context, runID pgtype.UUID, dimension, value string, month pgtype.Date) (MonthlySummaryRow, error) {
	var row MonthlySummaryRow
	err := q.db.QueryRow(ctx, getMonthlySummary, runID, dimension, value, month).Scan(
		&row.RunID,
		&row.Dimension,
		&row.DimensionValue,
		&row.Month,
		&row.Attended,
		&row.DidNotAttend,
		&row.Unknown,
		&row.Total,
		&row.AttendedRate,
		&row.DidNotAttendRate,
	)
	return row, err
}

const getPipelineRun = `
SELECT id, source_url, raw_rows, merged_rows, pivot_rows, dimensions,
       run_tag, started_at, completed_at
FROM pipeline_runs
WHERE id = $1
`

type PipelineRunRow struct {
	ID          pgtype.UUID
	SourceURL   pgtype.Text
	RawRows     int64
	MergedRows  int64
	PivotRows   int64
	Dimensions  int32
	RunTag      pgtype.Text
	StartedAt   pgtype.Timestamptz
	CompletedAt pgtype.Timestamptz
}

// GetPipelineRun fetches one stored run record.
func (q *Queries) GetPipelineRun(ctx context.Context, id pgtype.UUID) (PipelineRunRow, error) {
	var row PipelineRunRow
	err := q.db.QueryRow(ctx, getPipelineRun, id).Scan(
		&row.ID,
		&row.SourceURL,
		&row.RawRows,
		&row.MergedRows,
		&row.PivotRows,
		&row.Dimensions,
		&row.RunTag,
		&row.StartedAt,
		&row.CompletedAt,
	)
	return row, err
}
