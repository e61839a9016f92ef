package main

// The rate pipeline mirrors the three-step derivation the summaries
// contract requires: total first, then the two rates. Each step
// consumes and returns the same rows with one more column filled in.
// A zero total makes both rates NaN (0/0): the undefined marker is
// propagated as-is rather than special-cased.

// calculateAppointmentColumns runs the full derivation in order.
func calculateAppointmentColumns(summaries []SummaryRecord) {
	calculateTotalAppointments(summaries)
	calculateAttendedRate(summaries)
	calculateDidNotAttendRate(summaries)
}

// calculateTotalAppointments sets Total = Attended + DidNotAttend +
// Unknown. Null status cells were already folded to zero during
// aggregation, so the sum is always defined.
func calculateTotalAppointments(summaries []SummaryRecord) {
	for i := range summaries {
		summaries[i].Total = summaries[i].Attended + summaries[i].DidNotAttend + summaries[i].Unknown
	}
}

// calculateAttendedRate sets AttendedRate = Attended / Total.
func calculateAttendedRate(summaries []SummaryRecord) {
	for i := range summaries {
		summaries[i].AttendedRate = float64(summaries[i].Attended) / float64(summaries[i].Total)
	}
}

// calculateDidNotAttendRate sets DidNotAttendRate = DidNotAttend / Total.
func calculateDidNotAttendRate(summaries []SummaryRecord) {
	for i := range summaries {
		summaries[i].DidNotAttendRate = float64(summaries[i].DidNotAttend) / float64(summaries[i].Total)
	}
}
