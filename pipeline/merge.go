package main

import "log"

// mergeMappingData joins tidied practice records with the mapping table
// on GP_CODE. The result carries matched rows only (inner semantics),
// but both sides are tracked the way an indicator column would: rows
// present on one side only are counted and returned as warnings rather
// than failing the run. The indicator itself never appears in the
// output.
func mergeMappingData(practice []PracticeRecord, mapping []MappingRecord) ([]MergedRecord, []JoinIntegrityWarning) {
	log.Printf("Merging mapping data with practice data (%d rows, %d practices)", len(practice), len(mapping))

	byCode := make(map[string]*MappingRecord, len(mapping))
	for i := range mapping {
		code := mapping[i].GPCode
		if _, dup := byCode[code]; dup {
			// GP_CODE is unique by contract; a duplicate would fan out
			// the join, so only the first occurrence is used.
			log.Printf("Warning: duplicate GP_CODE %q in mapping data, keeping first", code)
			continue
		}
		byCode[code] = &mapping[i]
	}

	merged := make([]MergedRecord, 0, len(practice))
	matchedCodes := make(map[string]bool, len(byCode))
	leftOnly := 0

	for i := range practice {
		m, ok := byCode[practice[i].GPCode]
		if !ok {
			leftOnly++
			continue
		}
		matchedCodes[practice[i].GPCode] = true
		merged = append(merged, MergedRecord{
			PracticeRecord:     practice[i],
			GPName:             m.GPName,
			Supplier:           m.Supplier,
			PCNCode:            m.PCNCode,
			PCNName:            m.PCNName,
			SubICBLocationCode: m.SubICBLocationCode,
			SubICBLocationName: m.SubICBLocationName,
			ICBCode:            m.ICBCode,
			ICBName:            m.ICBName,
			RegionCode:         m.RegionCode,
			RegionName:         m.RegionName,
		})
	}

	rightOnly := 0
	for code := range byCode {
		if !matchedCodes[code] {
			rightOnly++
		}
	}

	var warnings []JoinIntegrityWarning
	if leftOnly > 0 {
		warnings = append(warnings, JoinIntegrityWarning{Side: "left_only", Count: leftOnly})
	}
	if rightOnly > 0 {
		warnings = append(warnings, JoinIntegrityWarning{Side: "right_only", Count: rightOnly})
	}
	if len(warnings) == 0 {
		log.Printf("The merge was healthy.")
	}

	return merged, warnings
}
