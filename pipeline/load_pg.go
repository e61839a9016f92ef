package main

import (
	"context"
	_ "embed"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"gpappointments/db"
)

//go:embed sql/schema.sql
var schema string

// runStats describes one pipeline execution for the stored run record.
type runStats struct {
	SourceURL  string
	RawRows    int
	MergedRows int
	PivotRows  int
	RunTag     string
	StartedAt  time.Time
}

// connectPG opens a pool and verifies the connection.
func connectPG(ctx context.Context, connStr string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	poolConfig.MaxConns = 4

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// initializeSchema creates the pipeline tables if they do not exist.
func initializeSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}

// storeSummaries writes a run record plus every dimension's summary
// rows in a single transaction, bulk-loading the rows via COPY.
// Returns the new run id.
func storeSummaries(ctx context.Context, pool *pgxpool.Pool, stats runStats, summaries map[string][]SummaryRecord) (uuid.UUID, error) {
	runID := uuid.New()

	tx, err := pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	q := db.New(tx)

	err = q.InsertPipelineRun(ctx, db.InsertPipelineRunParams{
		ID:          uuidToPg(runID),
		SourceURL:   textOrNull(stats.SourceURL),
		RawRows:     int64(stats.RawRows),
		MergedRows:  int64(stats.MergedRows),
		PivotRows:   int64(stats.PivotRows),
		Dimensions:  int32(len(summaries)),
		RunTag:      textOrNull(stats.RunTag),
		StartedAt:   pgtype.Timestamptz{Time: stats.StartedAt, Valid: true},
		CompletedAt: pgtype.Timestamptz{Time: time.Now(), Valid: true},
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert pipeline run: %w", err)
	}

	var rows []db.InsertMonthlySummaryParams
	for dimension, records := range summaries {
		for i := range records {
			s := &records[i]
			rows = append(rows, db.InsertMonthlySummaryParams{
				RunID:            uuidToPg(runID),
				Dimension:        dimension,
				DimensionValue:   s.Groups[dimension],
				Month:            pgtype.Date{Time: s.Month, Valid: true},
				Attended:         int64(s.Attended),
				DidNotAttend:     int64(s.DidNotAttend),
				Unknown:          int64(s.Unknown),
				Total:            int64(s.Total),
				AttendedRate:     s.AttendedRate,
				DidNotAttendRate: s.DidNotAttendRate,
			})
		}
	}

	copied, err := q.InsertMonthlySummaries(ctx, rows)
	if err != nil {
		return uuid.Nil, fmt.Errorf("copy monthly summaries: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("commit: %w", err)
	}

	log.Printf("Stored %d summary rows across %d dimensions (run_id=%s)", copied, len(summaries), runID)
	return runID, nil
}

func uuidToPg(u uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: u, Valid: true}
}

func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}
