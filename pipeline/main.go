package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// defaultSourceURL is the published practice-level crosstab archive.
const defaultSourceURL = "https://files.digital.nhs.uk/A5/B4AB19/Practice_Level_Crosstab_Sep_24.zip"

type config struct {
	sourceURL    string
	skipDownload bool
	rawDir       string
	mappingPath  string
	prefix       string
	outDir       string
	figuresDir   string
	saveInterim  bool
	saveParquet  bool
	dropUnknown  bool
	noPlots      bool
	pgConn       string
	initSchema   bool
	runTag       string
}

func main() {
	cfg := config{}
	flag.StringVar(&cfg.sourceURL, "url", defaultSourceURL, "Source zip archive URL")
	flag.BoolVar(&cfg.skipDownload, "skip-download", false, "Use files already present in the raw data directory")
	flag.StringVar(&cfg.rawDir, "data", filepath.Join("data", "raw"), "Raw data directory")
	flag.StringVar(&cfg.mappingPath, "mapping", "", "Mapping CSV path (default <data>/Mapping.csv)")
	flag.StringVar(&cfg.prefix, "prefix", defaultCrosstabPrefix, "Crosstab filename prefix")
	flag.StringVar(&cfg.outDir, "out", "data", "Directory for interim summary artifacts")
	flag.StringVar(&cfg.figuresDir, "figures", filepath.Join("reports", "figures"), "Directory for rendered charts")
	flag.BoolVar(&cfg.saveInterim, "save-interim", false, "Write per-dimension summary CSVs")
	flag.BoolVar(&cfg.saveParquet, "parquet", false, "Write per-dimension summary Parquet files")
	flag.BoolVar(&cfg.dropUnknown, "drop-unknown", false, "Drop rows with Unknown appointment status during tidy")
	flag.BoolVar(&cfg.noPlots, "no-plots", false, "Skip chart rendering")
	flag.StringVar(&cfg.pgConn, "pg", "", "PostgreSQL connection string for the summary sink (or DATABASE_URL)")
	flag.BoolVar(&cfg.initSchema, "init", false, "Initialize database schema")
	flag.StringVar(&cfg.runTag, "tag", "", "Optional label for this pipeline run")
	flag.Parse()

	if cfg.mappingPath == "" {
		cfg.mappingPath = filepath.Join(cfg.rawDir, "Mapping.csv")
	}
	if cfg.pgConn == "" {
		cfg.pgConn = os.Getenv("DATABASE_URL")
	}

	if err := run(cfg); err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}
}

func run(cfg config) error {
	start := time.Now()
	log.Printf("Starting the GP Appointment Data Pipeline")

	if !cfg.skipDownload {
		if err := downloadAndExtractZip(cfg.sourceURL, cfg.rawDir); err != nil {
			return err
		}
	}

	mapping, err := readMappingData(cfg.mappingPath)
	if err != nil {
		return err
	}

	raw, err := readPracticeLevelData(cfg.rawDir, cfg.prefix)
	if err != nil {
		return err
	}

	practice, err := tidyPracticeLevelData(raw, TidyOptions{DropUnknownStatus: cfg.dropUnknown})
	if err != nil {
		return err
	}

	merged, warnings := mergeMappingData(practice, mapping)
	for _, w := range warnings {
		log.Printf("Warning: %s", w)
	}

	pivot, err := pivotPracticeLevelData(merged, PivotOptions{})
	if err != nil {
		return err
	}

	summaries, err := batchSummarizeMonthlyAggregateAppointments(pivot, nil, true)
	if err != nil {
		return err
	}

	if cfg.saveInterim {
		if err := writeAllSummaryCSVs(cfg.outDir, summaries); err != nil {
			return err
		}
	}
	if cfg.saveParquet {
		if err := writeAllSummaryParquets(cfg.outDir, summaries); err != nil {
			return err
		}
	}

	if cfg.pgConn != "" {
		if err := sinkToPostgres(cfg, runStats{
			SourceURL:  cfg.sourceURL,
			RawRows:    len(raw.Rows),
			MergedRows: len(merged),
			PivotRows:  len(pivot.Rows),
			RunTag:     cfg.runTag,
			StartedAt:  start,
		}, summaries); err != nil {
			return err
		}
	}

	if !cfg.noPlots {
		if err := batchPlotMonthlyAttendanceRate(cfg.figuresDir, summaries); err != nil {
			return err
		}
	}

	elapsed := time.Since(start)
	fmt.Println()
	fmt.Printf("GP Appointment Data Pipeline completed in %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("  Raw rows:     %d\n", len(raw.Rows))
	fmt.Printf("  Tidied rows:  %d\n", len(practice))
	fmt.Printf("  Merged rows:  %d\n", len(merged))
	fmt.Printf("  Pivot rows:   %d\n", len(pivot.Rows))
	fmt.Printf("  Dimensions:   %d\n", len(summaries))
	return nil
}

// sinkToPostgres connects, optionally initializes the schema, and
// stores the run with its summaries.
func sinkToPostgres(cfg config, stats runStats, summaries map[string][]SummaryRecord) error {
	ctx := context.Background()

	pool, err := connectPG(ctx, cfg.pgConn)
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Printf("Connected to PostgreSQL")

	if cfg.initSchema {
		if err := initializeSchema(ctx, pool); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}
		log.Printf("Schema initialized")
	}

	_, err = storeSummaries(ctx, pool, stats, summaries)
	return err
}
