package census

import (
	"math"
)

// StationSummary aggregates the population picture around one station.
type StationSummary struct {
	AffectedAreas     int                `json:"affected_areas"`
	TotalPopulation   float64            `json:"total_population"`
	PopulationDensity float64            `json:"population_density"` // residents per km² of buffer
	AgeDistribution   map[string]float64 `json:"age_distribution"`
	AgePercent        map[string]float64 `json:"age_percent"`
}

// Summarize computes headline statistics for a coverage query: how many
// areas are touched, the unweighted population living in them, the
// density over the buffer disc, and the age distribution of the affected
// zones with percentages.
func Summarize(coverage []CoverageResult, table []PopulationRecord, radiusMeters float64) StationSummary {
	covered := make(map[string]bool, len(coverage))
	for _, cov := range coverage {
		if zone, err := NormalizeZoneKey(cov.Zone); err == nil {
			covered[zone] = true
		}
	}

	s := StationSummary{
		AffectedAreas:   len(coverage),
		AgeDistribution: make(map[string]float64),
		AgePercent:      make(map[string]float64),
	}
	for _, rec := range table {
		zone, err := NormalizeZoneKey(rec.Zone)
		if err != nil || !covered[zone] {
			continue
		}
		s.TotalPopulation += rec.Count
		s.AgeDistribution[rec.Cohort] += rec.Count
	}

	if s.AffectedAreas > 0 && radiusMeters > 0 {
		bufferKM2 := math.Pi * (radiusMeters / 1000) * (radiusMeters / 1000)
		s.PopulationDensity = s.TotalPopulation / bufferKM2
	}
	if s.TotalPopulation > 0 {
		for cohort, count := range s.AgeDistribution {
			s.AgePercent[cohort] = count / s.TotalPopulation * 100
		}
	}
	return s
}
