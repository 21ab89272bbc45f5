// Package coverage implements the station-coverage engine: geodesic
// buffers around station points, locally projected area measurement, and
// per-zone coverage percentages over the census small-areas.
package coverage

import (
	"math"

	"github.com/ctessum/geom"
	"github.com/rotisserie/eris"

	"github.com/borgarlina/coverage-cli/internal/proj"
)

// BufferSegments is the number of vertices used to approximate the
// circular buffer. The chord error of a regular n-gon shrinks with 1/n².
const BufferSegments = 64

// GeodesicBuffer returns a polygon approximating a true circle of
// radiusMeters around the given geographic point. The circle is built in
// an azimuthal equidistant projection centered on the point, so every
// vertex sits at the true geodesic distance radiusMeters from the center
// regardless of latitude. A naive degree-radius circle would be badly
// squashed this far north.
func GeodesicBuffer(lng, lat, radiusMeters float64) (geom.Polygon, error) {
	if math.IsNaN(radiusMeters) || radiusMeters <= 0 {
		return nil, eris.Wrapf(ErrInvalidInput, "radius must be positive, got %v", radiusMeters)
	}
	p, err := proj.NewAzimuthalEquidistant(lng, lat)
	if err != nil {
		return nil, eris.Wrapf(ErrInvalidInput, "station point (%v, %v): %v", lng, lat, err)
	}

	ring := make([]geom.Point, BufferSegments)
	for i := 0; i < BufferSegments; i++ {
		angle := 2 * math.Pi * float64(i) / BufferSegments
		x := radiusMeters * math.Cos(angle)
		y := radiusMeters * math.Sin(angle)
		blng, blat := p.Inverse(x, y)
		ring[i] = geom.Point{X: blng, Y: blat}
	}
	return geom.Polygon{ring}, nil
}
