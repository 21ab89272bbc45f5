package coverage

import (
	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"go.uber.org/zap"

	"github.com/borgarlina/coverage-cli/internal/census"
)

// defaultCacheSize caps the (point, radius) memo cache.
const defaultCacheSize = 100

// Calculator computes per-zone coverage for station queries against a
// fixed collection of small areas. The collection is indexed once at
// construction; queries are pure functions of (point, radius).
type Calculator struct {
	areas []*census.SmallArea
	index *rtree.Rtree
	cache *resultCache
}

// indexedArea is the rtree entry for one small area. The embedded
// Polygonal satisfies geom.Geom; the pointer maps index hits back to the
// area.
type indexedArea struct {
	geom.Polygonal
	area *census.SmallArea
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithCacheSize overrides the memo cache capacity. Zero disables
// memoization.
func WithCacheSize(n int) Option {
	return func(c *Calculator) {
		if n <= 0 {
			c.cache = nil
			return
		}
		c.cache = newResultCache(n)
	}
}

// NewCalculator builds a Calculator over the given small areas. The slice
// is held by reference and must not be mutated for the Calculator's
// lifetime.
func NewCalculator(areas []*census.SmallArea, opts ...Option) *Calculator {
	c := &Calculator{
		areas: areas,
		index: rtree.NewTree(25, 50),
		cache: newResultCache(defaultCacheSize),
	}
	for _, a := range areas {
		c.index.Insert(&indexedArea{Polygonal: a.Geom, area: a})
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Coverage returns, for every small area intersecting the geodesic buffer
// of radiusMeters around the station point, the percentage of that area's
// surface falling inside the buffer. Results follow the input area order.
//
// Failures local to one polygon (unsupported geometry, failed repair) are
// logged and that area is skipped; only a malformed point or radius fails
// the whole query.
func (c *Calculator) Coverage(lng, lat, radiusMeters float64) ([]census.CoverageResult, error) {
	key := queryKey{lng: lng, lat: lat, radius: radiusMeters}
	if c.cache != nil {
		if cached, ok := c.cache.get(key); ok {
			return cached, nil
		}
	}

	buffer, err := GeodesicBuffer(lng, lat, radiusMeters)
	if err != nil {
		return nil, err
	}

	// Fast reject through the spatial index, then walk the input order so
	// result order stays deterministic.
	candidates := make(map[*census.SmallArea]bool)
	for _, hit := range c.index.SearchIntersect(buffer.Bounds()) {
		candidates[hit.(*indexedArea).area] = true
	}

	log := zap.L().With(zap.String("component", "coverage"))
	results := make([]census.CoverageResult, 0, len(candidates))
	var skipped int
	for _, area := range c.areas {
		if !candidates[area] {
			continue
		}
		percent, touched, err := c.coverArea(area, buffer, lat)
		if err != nil {
			skipped++
			log.Warn("skipping small area",
				zap.String("zone", area.Zone),
				zap.Error(err),
			)
			continue
		}
		if !touched {
			continue
		}
		results = append(results, census.CoverageResult{Zone: area.Zone, Percent: percent})
	}
	if skipped > 0 {
		log.Warn("coverage computed with skipped areas", zap.Int("skipped", skipped))
	}

	if c.cache != nil {
		c.cache.put(key, results)
	}
	return results, nil
}

// coverArea computes one zone's coverage percent. touched is false when
// the zone's geometry does not actually overlap the buffer (the bounding
// boxes may overlap while the shapes do not).
func (c *Calculator) coverArea(area *census.SmallArea, buffer geom.Polygon, referenceLat float64) (percent float64, touched bool, err error) {
	ring, err := Repair(area.Geom)
	if err != nil {
		return 0, false, err
	}

	intersection, total, err := IntersectionAndTotalArea(ring, buffer, referenceLat)
	if err != nil {
		return 0, false, err
	}
	if total <= 0 {
		// Degenerate but bbox-touching zone: reported, at zero percent.
		return 0, true, nil
	}
	if intersection <= 0 {
		return 0, false, nil
	}

	percent = intersection / total * 100
	if percent > 100 {
		percent = 100
	}
	return percent, true, nil
}

// LineMetrics aggregates coverage over every station of one line.
type LineMetrics struct {
	Line     string                  `json:"line"`
	Stations int                     `json:"stations"`
	Results  []census.CoverageResult `json:"results"`
}

// LineCoverage merges the coverage of all given stations. A zone touched
// by several stations is reported once with its maximum coverage percent,
// in first-seen order.
func (c *Calculator) LineCoverage(line string, stations []census.Station, radiusMeters float64) (LineMetrics, error) {
	metrics := LineMetrics{Line: line, Stations: len(stations)}

	best := make(map[string]int) // zone -> index into metrics.Results
	for _, st := range stations {
		results, err := c.Coverage(st.Lng, st.Lat, radiusMeters)
		if err != nil {
			return LineMetrics{}, err
		}
		for _, cov := range results {
			if i, seen := best[cov.Zone]; seen {
				if cov.Percent > metrics.Results[i].Percent {
					metrics.Results[i].Percent = cov.Percent
				}
				continue
			}
			best[cov.Zone] = len(metrics.Results)
			metrics.Results = append(metrics.Results, cov)
		}
	}
	return metrics, nil
}

// CachedQueries reports how many distinct queries are memoized.
func (c *Calculator) CachedQueries() int {
	if c.cache == nil {
		return 0
	}
	return c.cache.len()
}
