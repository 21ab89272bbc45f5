package census

import (
	"go.uber.org/zap"
)

// Apportion joins coverage percentages against the population table and
// returns one AgeGroupStat per requested cohort.
//
// Total is the citywide sum for the cohort over the entire table, not just
// the covered zones. WithinRadius accumulates each covered zone's cohort
// count weighted by its coverage fraction. Zones present in the coverage
// list but absent from the table contribute nothing; they cannot be
// weighted. Summation order is fixed (coverage order, then caller cohort
// order) so results are bit-identical across calls.
func Apportion(coverage []CoverageResult, table []PopulationRecord, cohorts []string) map[string]AgeGroupStat {
	wanted := make(map[string]bool, len(cohorts))
	for _, c := range cohorts {
		wanted[c] = true
	}

	// Index the table by canonical zone key. Rows whose key cannot be
	// normalized are dropped from the join.
	byZone := make(map[string]map[string]float64)
	totals := make(map[string]float64, len(cohorts))
	var unmatched int
	for _, rec := range table {
		if !wanted[rec.Cohort] {
			continue
		}
		totals[rec.Cohort] += rec.Count

		zone, err := NormalizeZoneKey(rec.Zone)
		if err != nil {
			unmatched++
			continue
		}
		if byZone[zone] == nil {
			byZone[zone] = make(map[string]float64)
		}
		byZone[zone][rec.Cohort] += rec.Count
	}
	if unmatched > 0 {
		zap.L().Warn("census: population rows excluded from join",
			zap.Int("unmatched_keys", unmatched),
		)
	}

	stats := make(map[string]AgeGroupStat, len(cohorts))
	for _, cohort := range cohorts {
		stat := AgeGroupStat{Cohort: cohort, Total: totals[cohort]}
		for _, cov := range coverage {
			zone, err := NormalizeZoneKey(cov.Zone)
			if err != nil {
				continue
			}
			stat.WithinRadius += byZone[zone][cohort] * cov.Percent / 100
		}
		stats[cohort] = stat
	}
	return stats
}
