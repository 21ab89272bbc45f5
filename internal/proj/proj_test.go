package proj

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Reykjavík city center, roughly Hlemmur.
const (
	rvkLng = -21.9107
	rvkLat = 64.1436
)

func TestAzimuthalEquidistant_CenterMapsToOrigin(t *testing.T) {
	p, err := NewAzimuthalEquidistant(rvkLng, rvkLat)
	require.NoError(t, err)

	x, y := p.Forward(rvkLng, rvkLat)
	assert.InDelta(t, 0, x, 1e-6)
	assert.InDelta(t, 0, y, 1e-6)
}

func TestAzimuthalEquidistant_PreservesDistanceFromCenter(t *testing.T) {
	p, err := NewAzimuthalEquidistant(rvkLng, rvkLat)
	require.NoError(t, err)

	// A point ~2km east of the center.
	lng, lat := rvkLng+0.04, rvkLat+0.005
	x, y := p.Forward(lng, lat)

	planar := math.Hypot(x, y)
	geodesic := Haversine(rvkLng, rvkLat, lng, lat)
	assert.InDelta(t, geodesic, planar, 0.01)
}

func TestAzimuthalEquidistant_RoundTrip(t *testing.T) {
	p, err := NewAzimuthalEquidistant(rvkLng, rvkLat)
	require.NoError(t, err)

	cases := [][2]float64{
		{rvkLng, rvkLat},
		{rvkLng + 0.1, rvkLat - 0.05},
		{rvkLng - 0.3, rvkLat + 0.1},
		{-22.5, 63.8},
	}
	for _, c := range cases {
		x, y := p.Forward(c[0], c[1])
		lng, lat := p.Inverse(x, y)
		assert.InDelta(t, c[0], lng, 1e-9)
		assert.InDelta(t, c[1], lat, 1e-9)
	}
}

func TestAzimuthalEquidistant_InverseOfOrigin(t *testing.T) {
	p, err := NewAzimuthalEquidistant(rvkLng, rvkLat)
	require.NoError(t, err)

	lng, lat := p.Inverse(0, 0)
	assert.InDelta(t, rvkLng, lng, 1e-9)
	assert.InDelta(t, rvkLat, lat, 1e-9)
}

func TestLambertEqualArea_RoundTrip(t *testing.T) {
	p, err := NewLambertEqualArea(rvkLng, rvkLat)
	require.NoError(t, err)

	cases := [][2]float64{
		{rvkLng, rvkLat},
		{rvkLng + 0.05, rvkLat + 0.02},
		{rvkLng - 0.2, rvkLat - 0.1},
	}
	for _, c := range cases {
		x, y := p.Forward(c[0], c[1])
		lng, lat := p.Inverse(x, y)
		assert.InDelta(t, c[0], lng, 1e-9)
		assert.InDelta(t, c[1], lat, 1e-9)
	}
}

// A small quadrilateral projected through laea should have very nearly the
// same area as the spherical quadrilateral it came from. Compare against
// the equidistant projection's figure, which at this scale is itself
// accurate to well under a tenth of a percent.
func TestLambertEqualArea_AreaAgreesWithEquidistant(t *testing.T) {
	laea, err := NewLambertEqualArea(rvkLng, rvkLat)
	require.NoError(t, err)
	aeqd, err := NewAzimuthalEquidistant(rvkLng, rvkLat)
	require.NoError(t, err)

	// ~1km x ~1km box near the center.
	ring := [][2]float64{
		{rvkLng, rvkLat},
		{rvkLng + 0.0205, rvkLat},
		{rvkLng + 0.0205, rvkLat + 0.009},
		{rvkLng, rvkLat + 0.009},
	}

	assert.InEpsilon(t, shoelace(ring, aeqd.Forward), shoelace(ring, laea.Forward), 1e-3)
}

func TestHaversine_KnownDistance(t *testing.T) {
	// One degree of latitude is ~111.2km regardless of longitude.
	d := Haversine(rvkLng, 64, rvkLng, 65)
	assert.InEpsilon(t, 111195, d, 1e-3)
}

func TestHaversine_ZeroForSamePoint(t *testing.T) {
	assert.Equal(t, 0.0, Haversine(rvkLng, rvkLat, rvkLng, rvkLat))
}

func TestValidateCenter_Errors(t *testing.T) {
	_, err := NewAzimuthalEquidistant(rvkLng, 91)
	assert.Error(t, err)
	_, err = NewAzimuthalEquidistant(-181, rvkLat)
	assert.Error(t, err)
	_, err = NewLambertEqualArea(math.NaN(), rvkLat)
	assert.Error(t, err)
}

func shoelace(ring [][2]float64, forward func(lng, lat float64) (float64, float64)) float64 {
	area := 0.0
	n := len(ring)
	for i := 0; i < n; i++ {
		x1, y1 := forward(ring[i][0], ring[i][1])
		x2, y2 := forward(ring[(i+1)%n][0], ring[(i+1)%n][1])
		area += x1*y2 - x2*y1
	}
	return math.Abs(area / 2)
}
