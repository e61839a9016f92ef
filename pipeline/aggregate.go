package main

import (
	"log"
	"sort"
	"strings"
)

// summarizeMonthlyAggregateAppointments groups the pivoted rows by
// month plus aggCols, summing the three canonical status columns with
// null cells counted as zero. aggCols may be empty for an overall
// monthly total. When addRateCols is set the rate pipeline appends the
// total and both rate columns.
func summarizeMonthlyAggregateAppointments(pivot *PivotTable, aggCols []string, addRateCols bool) ([]SummaryRecord, error) {
	indexed := make(map[string]bool, len(pivot.IndexCols))
	for _, col := range pivot.IndexCols {
		indexed[col] = true
	}
	for _, col := range aggCols {
		if !indexed[col] {
			return nil, &SchemaError{Column: col}
		}
	}

	byKey := make(map[string]int) // group key → summary offset
	var summaries []SummaryRecord

	var key strings.Builder
	for i := range pivot.Rows {
		row := &pivot.Rows[i]

		key.Reset()
		key.WriteString(row.Month.Format("2006-01-02"))
		for _, col := range aggCols {
			key.WriteByte('\t')
			key.WriteString(row.Dims[col])
		}
		k := key.String()

		n, ok := byKey[k]
		if !ok {
			groups := make(map[string]string, len(aggCols))
			for _, col := range aggCols {
				groups[col] = row.Dims[col]
			}
			n = len(summaries)
			summaries = append(summaries, SummaryRecord{Month: row.Month, Groups: groups})
			byKey[k] = n
		}

		// Absent status cells are nulls in the pivot; they sum as zero.
		summaries[n].Attended += row.Counts[colAttended]
		summaries[n].DidNotAttend += row.Counts[colDidNotAttend]
		summaries[n].Unknown += row.Counts[colUnknown]
	}

	sortSummaries(summaries, aggCols)

	if addRateCols {
		calculateAppointmentColumns(summaries)
	}
	return summaries, nil
}

// sortSummaries orders rows by month then grouping values. Row order
// carries no meaning downstream; this just keeps output deterministic.
func sortSummaries(summaries []SummaryRecord, aggCols []string) {
	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].Month.Equal(summaries[j].Month) {
			return summaries[i].Month.Before(summaries[j].Month)
		}
		for _, col := range aggCols {
			if summaries[i].Groups[col] != summaries[j].Groups[col] {
				return summaries[i].Groups[col] < summaries[j].Groups[col]
			}
		}
		return false
	})
}

// batchSummarizeMonthlyAggregateAppointments runs the monthly
// aggregation once per dimension, grouping by [month, dimension], and
// collects the results keyed by dimension name. Each dimension is
// independent of the others.
func batchSummarizeMonthlyAggregateAppointments(pivot *PivotTable, aggCols []string, addRateCols bool) (map[string][]SummaryRecord, error) {
	if aggCols == nil {
		aggCols = aggColumns
	}

	log.Printf("Batch summarizing monthly aggregate appointments")
	summaries := make(map[string][]SummaryRecord, len(aggCols))
	for i, col := range aggCols {
		log.Printf("Creating monthly appointment summaries for %s (%d/%d)", col, i+1, len(aggCols))
		summary, err := summarizeMonthlyAggregateAppointments(pivot, []string{col}, addRateCols)
		if err != nil {
			return nil, err
		}
		summaries[col] = summary
	}
	return summaries, nil
}

// summarizeMonthlyAppointmentStatus produces the long-format monthly
// status table: summed counts per (month, raw status label).
func summarizeMonthlyAppointmentStatus(practice []PracticeRecord) []MonthStatusCount {
	log.Printf("Summarizing monthly appointment status")

	byKey := make(map[string]int)
	var counts []MonthStatusCount

	for i := range practice {
		k := practice[i].Month.Format("2006-01-02") + "\t" + practice[i].ApptStatus
		n, ok := byKey[k]
		if !ok {
			n = len(counts)
			counts = append(counts, MonthStatusCount{Month: practice[i].Month, Status: practice[i].ApptStatus})
			byKey[k] = n
		}
		counts[n].Count += practice[i].Count
	}

	sort.Slice(counts, func(i, j int) bool {
		if !counts[i].Month.Equal(counts[j].Month) {
			return counts[i].Month.Before(counts[j].Month)
		}
		return counts[i].Status < counts[j].Status
	})
	return counts
}
