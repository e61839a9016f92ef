package main

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wcharczuk/go-chart/v2"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func monthlyRates(value string, rates ...float64) []SummaryRecord {
	var rows []SummaryRecord
	for i, rate := range rates {
		rows = append(rows, SummaryRecord{
			Month:        time.Date(2024, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC),
			Groups:       map[string]string{colRegionName: value},
			AttendedRate: rate,
		})
	}
	return rows
}

func TestRenderMonthlyAttendanceChart(t *testing.T) {
	dir := t.TempDir()
	summaries := append(monthlyRates("REGION1", 0.9, 0.85, 0.88),
		monthlyRates("REGION2", 0.7, 0.75, 0.72)...)

	if err := renderMonthlyAttendanceChart(dir, colRegionName, summaries); err != nil {
		t.Fatalf("renderMonthlyAttendanceChart: %v", err)
	}

	path := filepath.Join(dir, "monthly_attendance_rate_by_"+colRegionName+".png")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read chart: %v", err)
	}
	if !bytes.HasPrefix(data, pngMagic) {
		t.Error("output is not a PNG file")
	}
}

func TestAttendanceSeriesSkipsNaN(t *testing.T) {
	// Three months, but the middle one is a zero-total row whose rate is
	// NaN, leaving two plottable points.
	summaries := monthlyRates("REGION1", 0.9, 0.0, 0.88)
	summaries[1].AttendedRate = math.NaN()

	series := attendanceSeries(colRegionName, summaries)
	if len(series) != 1 {
		t.Fatalf("expected 1 series, got %d", len(series))
	}
	ts, ok := series[0].(chart.TimeSeries)
	if !ok {
		t.Fatalf("expected a time series, got %T", series[0])
	}
	if len(ts.XValues) != 2 {
		t.Errorf("expected 2 plottable points, got %d", len(ts.XValues))
	}
}

func TestAttendanceSeriesBandsWideDimensions(t *testing.T) {
	var summaries []SummaryRecord
	for i := 0; i < maxChartSeries+5; i++ {
		summaries = append(summaries,
			monthlyRates(fmt.Sprintf("PRACTICE_%02d", i), 0.8, 0.82, 0.81)...)
	}

	series := attendanceSeries(colRegionName, summaries)
	if len(series) != 3 {
		t.Fatalf("expected min/mean/max band, got %d series", len(series))
	}
}

func TestRenderChartSkipsWhenNothingPlottable(t *testing.T) {
	dir := t.TempDir()
	// A single month per value gives fewer than two points per series.
	summaries := monthlyRates("REGION1", 0.9)[:1]

	if err := renderMonthlyAttendanceChart(dir, colRegionName, summaries); err != nil {
		t.Fatalf("expected silent skip, got %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no output files, found %d", len(entries))
	}
}
