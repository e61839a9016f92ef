package main

import "time"

// Column names as they appear in the published crosstab and mapping files.
const (
	colMonth                  = "APPOINTMENT_MONTH_START_DATE"
	colGPCode                 = "GP_CODE"
	colGPName                 = "GP_NAME"
	colSupplier               = "SUPPLIER"
	colPCNCode                = "PCN_CODE"
	colPCNName                = "PCN_NAME"
	colSubICBLocationCode     = "SUB_ICB_LOCATION_CODE"
	colSubICBLocationName     = "SUB_ICB_LOCATION_NAME"
	colICBCode                = "ICB_CODE"
	colICBName                = "ICB_NAME"
	colRegionCode             = "REGION_CODE"
	colRegionName             = "REGION_NAME"
	colHCPType                = "HCP_TYPE"
	colApptMode               = "APPT_MODE"
	colNationalCategory       = "NATIONAL_CATEGORY"
	colTimeBetweenBookAndAppt = "TIME_BETWEEN_BOOK_AND_APPT"
	colCount                  = "COUNT_OF_APPOINTMENTS"
	colApptStatus             = "APPT_STATUS"
)

// Canonical wide status columns produced by the pivot.
const (
	colAttended     = "ATTENDED"
	colDidNotAttend = "DID_NOT_ATTEND"
	colUnknown      = "UNKNOWN"
)

// monthLayout is the compact date format used by the crosstab files,
// e.g. "01Sep2024".
const monthLayout = "02Jan2006"

// rawStatusUnknown is the source label for appointments with unknown
// outcome. Dropping these rows is a configurable policy, not a default.
const rawStatusUnknown = "Unknown"

// aggColumns are the ten standard dimension columns available for
// grouping after the mapping merge.
var aggColumns = []string{
	colGPName,
	colSupplier,
	colPCNName,
	colSubICBLocationName,
	colICBName,
	colRegionName,
	colHCPType,
	colApptMode,
	colNationalCategory,
	colTimeBetweenBookAndAppt,
}

// defaultStatusRename maps source APPT_STATUS labels to the canonical
// wide column names. Labels not in the map keep their raw value as the
// column name.
var defaultStatusRename = map[string]string{
	"Attended": colAttended,
	"DNA":      colDidNotAttend,
	"Unknown":  colUnknown,
}

// requiredPracticeColumns is the 8-column contract of the tidy stage.
var requiredPracticeColumns = []string{
	colMonth,
	colGPCode,
	colHCPType,
	colApptMode,
	colNationalCategory,
	colTimeBetweenBookAndAppt,
	colCount,
	colApptStatus,
}

// requiredMappingColumns is the header contract of the mapping file.
var requiredMappingColumns = []string{
	colGPCode,
	colGPName,
	colSupplier,
	colPCNCode,
	colPCNName,
	colSubICBLocationCode,
	colSubICBLocationName,
	colICBCode,
	colICBName,
	colRegionCode,
	colRegionName,
}

// RawTable holds concatenated crosstab rows exactly as read from disk.
// Columns beyond the 8-column contract are carried through untouched;
// the tidy stage decides what survives.
type RawTable struct {
	Headers []string
	ColIdx  map[string]int // header → column index
	Rows    [][]string
	Files   []string // source files, in read order
}

// MappingRecord is one row of the practice → organisation lookup table.
type MappingRecord struct {
	GPCode             string
	GPName             string
	Supplier           string
	PCNCode            string
	PCNName            string
	SubICBLocationCode string
	SubICBLocationName string
	ICBCode            string
	ICBName            string
	RegionCode         string
	RegionName         string
}

// PracticeRecord is a tidied appointment count row: the 8-column
// contract with the month parsed into a real date (first of month).
type PracticeRecord struct {
	Month                  time.Time
	GPCode                 string
	HCPType                string
	ApptMode               string
	NationalCategory       string
	TimeBetweenBookAndAppt string
	ApptStatus             string
	Count                  int
}

// MergedRecord is a PracticeRecord joined with its MappingRecord on
// GP_CODE. Flat so every dimension column is addressable by name.
type MergedRecord struct {
	PracticeRecord
	GPName             string
	Supplier           string
	PCNCode            string
	PCNName            string
	SubICBLocationCode string
	SubICBLocationName string
	ICBCode            string
	ICBName            string
	RegionCode         string
	RegionName         string
}

// dimGetters resolves a dimension column name to its MergedRecord field.
var dimGetters = map[string]func(*MergedRecord) string{
	colGPCode:                 func(r *MergedRecord) string { return r.GPCode },
	colGPName:                 func(r *MergedRecord) string { return r.GPName },
	colSupplier:               func(r *MergedRecord) string { return r.Supplier },
	colPCNCode:                func(r *MergedRecord) string { return r.PCNCode },
	colPCNName:                func(r *MergedRecord) string { return r.PCNName },
	colSubICBLocationCode:     func(r *MergedRecord) string { return r.SubICBLocationCode },
	colSubICBLocationName:     func(r *MergedRecord) string { return r.SubICBLocationName },
	colICBCode:                func(r *MergedRecord) string { return r.ICBCode },
	colICBName:                func(r *MergedRecord) string { return r.ICBName },
	colRegionCode:             func(r *MergedRecord) string { return r.RegionCode },
	colRegionName:             func(r *MergedRecord) string { return r.RegionName },
	colHCPType:                func(r *MergedRecord) string { return r.HCPType },
	colApptMode:               func(r *MergedRecord) string { return r.ApptMode },
	colNationalCategory:       func(r *MergedRecord) string { return r.NationalCategory },
	colTimeBetweenBookAndAppt: func(r *MergedRecord) string { return r.TimeBetweenBookAndAppt },
}

// PivotRecord is one row of the pivoted table: a unique
// (month, dimension-tuple) with one cell per observed status column.
// A status key absent from Counts is a null cell, not a zero.
type PivotRecord struct {
	Month  time.Time
	Dims   map[string]string // index column → value, month excluded
	Counts map[string]int    // status column → count
}

// PivotTable is the flattened pivot result.
type PivotTable struct {
	IndexCols  []string // month first, then dimension columns
	StatusCols []string // distinct status columns, sorted
	Rows       []PivotRecord
}

// SummaryRecord is one row of a monthly aggregate: summed status counts
// for a (month, grouping-values) pair, plus derived totals and rates.
// Rates are NaN when the group's total is zero.
type SummaryRecord struct {
	Month            time.Time
	Groups           map[string]string // grouping column → value, month excluded
	Attended         int
	DidNotAttend     int
	Unknown          int
	Total            int
	AttendedRate     float64
	DidNotAttendRate float64
}

// MonthStatusCount is one row of the long-format monthly status
// summary (month × raw status label).
type MonthStatusCount struct {
	Month  time.Time
	Status string
	Count  int
}
