package main

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/wcharczuk/go-chart/v2"
)

// maxChartSeries caps the number of per-value line series on one chart.
// Dimensions with more distinct values (practice names, PCNs) collapse
// to a min/mean/max band instead.
const maxChartSeries = 20

// renderMonthlyAttendanceChart renders one dimension's attended-rate
// chart to <figuresDir>/monthly_attendance_rate_by_<dimension>.png.
func renderMonthlyAttendanceChart(figuresDir, dimension string, summaries []SummaryRecord) error {
	series := attendanceSeries(dimension, summaries)
	if len(series) == 0 {
		log.Printf("No plottable attendance rates for %s, skipping chart", dimension)
		return nil
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("Monthly Attendance Rate by %s", dimension),
		Width:  1280,
		Height: 640,
		XAxis: chart.XAxis{
			Name:           "Month Start Date",
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: "Attendance Rate",
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	path := filepath.Join(figuresDir, fmt.Sprintf("monthly_attendance_rate_by_%s.png", dimension))
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	if err := graph.Render(chart.PNG, file); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}

	log.Printf("Saved plot to %s", path)
	return nil
}

// attendanceSeries builds the chart series for one dimension. NaN rates
// (zero-total groups) are not plottable and are left out.
func attendanceSeries(dimension string, summaries []SummaryRecord) []chart.Series {
	byValue := make(map[string][]SummaryRecord)
	var values []string
	for i := range summaries {
		v := summaries[i].Groups[dimension]
		if _, ok := byValue[v]; !ok {
			values = append(values, v)
		}
		byValue[v] = append(byValue[v], summaries[i])
	}
	sort.Strings(values)

	if len(values) <= maxChartSeries {
		var series []chart.Series
		for _, v := range values {
			xs, ys := ratePoints(byValue[v])
			if len(xs) < 2 {
				continue
			}
			series = append(series, chart.TimeSeries{Name: v, XValues: xs, YValues: ys})
		}
		return series
	}

	// Too many categories for one line each: show the monthly spread
	// across values instead.
	return rateBandSeries(summaries)
}

// ratePoints extracts the plottable (month, attended-rate) points of a
// single dimension value, in month order.
func ratePoints(rows []SummaryRecord) ([]time.Time, []float64) {
	var xs []time.Time
	var ys []float64
	for i := range rows {
		if math.IsNaN(rows[i].AttendedRate) {
			continue
		}
		xs = append(xs, rows[i].Month)
		ys = append(ys, rows[i].AttendedRate)
	}
	return xs, ys
}

// rateBandSeries computes min/mean/max attended rate per month across
// all dimension values.
func rateBandSeries(summaries []SummaryRecord) []chart.Series {
	type bucket struct {
		min, max, sum float64
		n             int
	}
	byMonth := make(map[time.Time]*bucket)
	var months []time.Time

	for i := range summaries {
		rate := summaries[i].AttendedRate
		if math.IsNaN(rate) {
			continue
		}
		m := summaries[i].Month
		b, ok := byMonth[m]
		if !ok {
			b = &bucket{min: rate, max: rate}
			byMonth[m] = b
			months = append(months, m)
		}
		if rate < b.min {
			b.min = rate
		}
		if rate > b.max {
			b.max = rate
		}
		b.sum += rate
		b.n++
	}
	if len(months) < 2 {
		return nil
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	mins := make([]float64, len(months))
	means := make([]float64, len(months))
	maxs := make([]float64, len(months))
	for i, m := range months {
		b := byMonth[m]
		mins[i] = b.min
		means[i] = b.sum / float64(b.n)
		maxs[i] = b.max
	}

	return []chart.Series{
		chart.TimeSeries{Name: "min", XValues: months, YValues: mins},
		chart.TimeSeries{Name: "mean", XValues: months, YValues: means},
		chart.TimeSeries{Name: "max", XValues: months, YValues: maxs},
	}
}

// batchPlotMonthlyAttendanceRate renders one chart per dimension.
func batchPlotMonthlyAttendanceRate(figuresDir string, summaries map[string][]SummaryRecord) error {
	if err := os.MkdirAll(figuresDir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", figuresDir, err)
	}
	log.Printf("Batch plotting monthly attendance rate by aggregation column")
	for dimension, rows := range summaries {
		if err := renderMonthlyAttendanceChart(figuresDir, dimension, rows); err != nil {
			return err
		}
	}
	return nil
}
