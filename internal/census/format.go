package census

import (
	"fmt"
	"strings"
)

// FormatAffectedAreas renders a coverage list as a one-line summary,
// e.g. "Affected areas: 7 (84.2%), 12 (3.1%)".
func FormatAffectedAreas(coverage []CoverageResult) string {
	parts := make([]string, 0, len(coverage))
	for _, cov := range coverage {
		parts = append(parts, fmt.Sprintf("%s (%.1f%%)", cov.Zone, cov.Percent))
	}
	return "Affected areas: " + strings.Join(parts, ", ")
}

// FormatAgeGroupLines renders apportionment results as display lines, one
// per cohort in the given order, followed by a totals line.
func FormatAgeGroupLines(cohorts []string, stats map[string]AgeGroupStat) []string {
	lines := []string{"In the affected small areas, there are:"}

	var totalAll, withinAll float64
	for _, cohort := range cohorts {
		stat := stats[cohort]
		totalAll += stat.Total
		withinAll += stat.WithinRadius
		lines = append(lines, fmt.Sprintf("%d of age group %s ; %d is within the radius",
			int(stat.Total), displayCohort(cohort), int(stat.WithinRadius)))
	}
	lines = append(lines, fmt.Sprintf("%d total ; %d total within radius",
		int(totalAll), int(withinAll)))
	return lines
}

// displayCohort strips the Icelandic "ára" suffix for display, so
// "10-14 ára" renders as "10-14".
func displayCohort(cohort string) string {
	return strings.TrimSpace(strings.TrimSuffix(cohort, "ára"))
}
