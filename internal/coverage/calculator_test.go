package coverage

import (
	"math"
	"testing"

	"github.com/ctessum/geom"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borgarlina/coverage-cli/internal/census"
)

func smallArea(t *testing.T, zone string, p geom.Polygon) *census.SmallArea {
	t.Helper()
	require.NotEmpty(t, p)
	return &census.SmallArea{Zone: zone, Label: "Svæði - " + zone, Geom: p}
}

func TestCoverage_BufferContainedInLargeZone(t *testing.T) {
	// A 10 km² zone with a 100 m buffer well inside it: the covered share
	// is the circle over the zone.
	half := math.Sqrt(10e6) / 2
	zone := smallArea(t, "7", geoSquare(t, stationLng, stationLat, half))

	calc := NewCalculator([]*census.SmallArea{zone})
	results, err := calc.Coverage(stationLng, stationLat, 100)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "7", results[0].Zone)
	expected := math.Pi * 100 * 100 / 10e6 * 100
	assert.InEpsilon(t, expected, results[0].Percent, 0.005)
}

func TestCoverage_ZoneFullyInsideBuffer(t *testing.T) {
	zone := smallArea(t, "12", geoSquare(t, stationLng, stationLat, 200))

	calc := NewCalculator([]*census.SmallArea{zone})
	results, err := calc.Coverage(stationLng, stationLat, 1000)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 100, results[0].Percent, 1e-6)
}

func TestCoverage_DisjointZoneExcluded(t *testing.T) {
	near := smallArea(t, "1", geoSquare(t, stationLng, stationLat, 300))
	// Roughly 48 km east at this latitude.
	far := smallArea(t, "2", geoSquare(t, stationLng+1, stationLat, 300))

	calc := NewCalculator([]*census.SmallArea{near, far})
	results, err := calc.Coverage(stationLng, stationLat, 400)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "1", results[0].Zone)
}

func TestCoverage_IndexMapsHitsToAreas(t *testing.T) {
	// A grid of disjoint zones around the station; the index must hand
	// back exactly the areas whose geometry the buffer reaches.
	var zones []*census.SmallArea
	for i := -2; i <= 2; i++ {
		for j := -2; j <= 2; j++ {
			zone := string(rune('a'+i+2)) + string(rune('a'+j+2))
			zones = append(zones, smallArea(t, zone,
				geoSquare(t, stationLng+float64(i)*0.02, stationLat+float64(j)*0.01, 300)))
		}
	}

	calc := NewCalculator(zones)
	results, err := calc.Coverage(stationLng, stationLat, 400)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "cc", results[0].Zone)

	// A radius reaching the whole grid returns every zone.
	results, err = calc.Coverage(stationLng, stationLat, 5000)
	require.NoError(t, err)
	assert.Len(t, results, len(zones))
}

func TestCoverage_BrokenZoneSkipped(t *testing.T) {
	outer := geoSquare(t, stationLng, stationLat, 600)
	hole := geoSquare(t, stationLng, stationLat, 100)
	holed := smallArea(t, "9", geom.Polygon{outer[0], hole[0]})
	good := smallArea(t, "3", geoSquare(t, stationLng, stationLat, 300))

	calc := NewCalculator([]*census.SmallArea{holed, good})
	results, err := calc.Coverage(stationLng, stationLat, 400)
	require.NoError(t, err)

	// The holed zone is dropped; the valid one still comes through.
	require.Len(t, results, 1)
	assert.Equal(t, "3", results[0].Zone)
}

func TestCoverage_ResultsFollowInputOrder(t *testing.T) {
	zones := []*census.SmallArea{
		smallArea(t, "30", geoSquare(t, stationLng, stationLat+0.002, 300)),
		smallArea(t, "4", geoSquare(t, stationLng, stationLat, 300)),
		smallArea(t, "18", geoSquare(t, stationLng, stationLat-0.002, 300)),
	}

	calc := NewCalculator(zones)
	results, err := calc.Coverage(stationLng, stationLat, 800)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "30", results[0].Zone)
	assert.Equal(t, "4", results[1].Zone)
	assert.Equal(t, "18", results[2].Zone)
}

func TestCoverage_PercentAlwaysInRange(t *testing.T) {
	zones := []*census.SmallArea{
		smallArea(t, "1", geoSquare(t, stationLng, stationLat, 50)),
		smallArea(t, "2", geoSquare(t, stationLng+0.005, stationLat, 700)),
		smallArea(t, "3", geoSquare(t, stationLng, stationLat+0.004, 1500)),
	}
	calc := NewCalculator(zones)

	for _, radius := range []float64{60, 400, 2000, 10000} {
		results, err := calc.Coverage(stationLng, stationLat, radius)
		require.NoError(t, err)
		for _, cov := range results {
			assert.GreaterOrEqual(t, cov.Percent, 0.0)
			assert.LessOrEqual(t, cov.Percent, 100.0)
		}
	}
}

func TestCoverage_InvalidQueryFails(t *testing.T) {
	calc := NewCalculator(nil)

	_, err := calc.Coverage(stationLng, stationLat, -5)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrInvalidInput))

	_, err = calc.Coverage(stationLng, 123, 400)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrInvalidInput))
}

func TestCoverage_Memoized(t *testing.T) {
	zone := smallArea(t, "5", geoSquare(t, stationLng, stationLat, 400))
	calc := NewCalculator([]*census.SmallArea{zone})

	first, err := calc.Coverage(stationLng, stationLat, 400)
	require.NoError(t, err)
	assert.Equal(t, 1, calc.CachedQueries())

	second, err := calc.Coverage(stationLng, stationLat, 400)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calc.CachedQueries())

	// Callers may mutate their slice without poisoning the cache.
	second[0].Percent = -1
	third, err := calc.Coverage(stationLng, stationLat, 400)
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestCoverage_CacheDisabled(t *testing.T) {
	zone := smallArea(t, "5", geoSquare(t, stationLng, stationLat, 400))
	calc := NewCalculator([]*census.SmallArea{zone}, WithCacheSize(0))

	_, err := calc.Coverage(stationLng, stationLat, 400)
	require.NoError(t, err)
	assert.Zero(t, calc.CachedQueries())
}

func TestLineCoverage_MergesStationsByMaxPercent(t *testing.T) {
	shared := smallArea(t, "20", geoSquare(t, stationLng, stationLat, 2000))
	calc := NewCalculator([]*census.SmallArea{shared})

	stations := []census.Station{
		{Name: "Hlemmur", Line: "red", Lng: stationLng, Lat: stationLat},
		// Near the zone's eastern edge, so its buffer spills outside and
		// covers less than the centered station's buffer.
		{Name: "Laugardalur", Line: "red", Lng: stationLng + 0.04, Lat: stationLat},
	}

	single, err := calc.Coverage(stations[0].Lng, stations[0].Lat, 400)
	require.NoError(t, err)
	require.Len(t, single, 1)

	metrics, err := calc.LineCoverage("red", stations, 400)
	require.NoError(t, err)
	assert.Equal(t, "red", metrics.Line)
	assert.Equal(t, 2, metrics.Stations)
	require.Len(t, metrics.Results, 1)

	// Merging keeps the per-zone maximum, not a sum.
	assert.InDelta(t, single[0].Percent, metrics.Results[0].Percent, 1e-9)
}

func TestLineCoverage_PropagatesQueryError(t *testing.T) {
	calc := NewCalculator(nil)
	stations := []census.Station{{Name: "Hlemmur", Line: "red", Lng: stationLng, Lat: stationLat}}

	_, err := calc.LineCoverage("red", stations, 0)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrInvalidInput))
}
