// Package census holds the small-area and population data model and the
// join/aggregation logic between the two: zone-key normalization,
// coverage-weighted population apportionment, and summary statistics.
package census

import (
	"github.com/ctessum/geom"
)

// SmallArea is one census small-area (smásvæði): a simple polygon with a
// canonical zone key and a human-readable label. Collections of SmallArea
// are owned by the dataset session and treated as read-only by the engine.
type SmallArea struct {
	Zone  string // canonical zone key, see NormalizeZoneKey
	Label string // e.g. "Hlíðar - 0007"
	Geom  geom.Polygon
}

// Bounds returns the bounding box of the area's polygon.
func (a *SmallArea) Bounds() *geom.Bounds {
	return a.Geom.Bounds()
}

// PopulationRecord is one row of the population table: the number of
// residents of one age cohort in one zone for one year.
type PopulationRecord struct {
	Zone   string // zone key as it appears in the source (any padding)
	Cohort string // age cohort, e.g. "10-14 ára"
	Count  float64
	Year   int
}

// CoverageResult reports what fraction of one small-area falls inside a
// station's coverage radius.
type CoverageResult struct {
	Zone    string  `json:"zone_id"`
	Percent float64 `json:"coverage_percent"` // in [0, 100]
}

// AgeGroupStat holds the citywide total for one cohort alongside the
// portion attributable to a coverage query.
type AgeGroupStat struct {
	Cohort       string  `json:"cohort"`
	Total        float64 `json:"total"`
	WithinRadius float64 `json:"within_radius"`
}

// Station is one transit stop on a cityline.
type Station struct {
	Name string  `json:"name"`
	Line string  `json:"line"`
	Lng  float64 `json:"lng"`
	Lat  float64 `json:"lat"`
}

// School is one school location.
type School struct {
	Name string  `json:"name"`
	Lng  float64 `json:"lng"`
	Lat  float64 `json:"lat"`
}
