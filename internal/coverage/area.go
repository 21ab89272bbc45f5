package coverage

import (
	"math"

	"github.com/ctessum/geom"
	"github.com/rotisserie/eris"

	"github.com/borgarlina/coverage-cli/internal/proj"
)

// IntersectionAndTotalArea projects subject and clip into a Lambert
// azimuthal equal-area projection centered at (subject centroid longitude,
// referenceLat) and returns the planar intersection area and the subject's
// own total area, both in square meters. The local projection keeps area
// distortion negligible for the specific location, which a single global
// projection would not.
//
// Only simple single-ring polygons are supported; polygons with interior
// rings fail with ErrUnsupportedGeometry rather than silently
// approximating.
func IntersectionAndTotalArea(subject, clip geom.Polygon, referenceLat float64) (intersectionM2, totalM2 float64, err error) {
	if err := checkSimpleRing(subject); err != nil {
		return 0, 0, err
	}
	if err := checkSimpleRing(clip); err != nil {
		return 0, 0, err
	}

	center := subject.Centroid()
	laea, err := proj.NewLambertEqualArea(center.X, referenceLat)
	if err != nil {
		return 0, 0, eris.Wrapf(ErrInvalidInput, "reference latitude %v: %v", referenceLat, err)
	}

	subjProj := projectPolygon(subject, laea)
	clipProj := projectPolygon(clip, laea)

	totalM2 = math.Abs(subjProj.Area())
	if isect := subjProj.Intersection(clipProj); isect != nil {
		intersectionM2 = math.Abs(isect.Area())
	}
	return intersectionM2, totalM2, nil
}

// checkSimpleRing verifies that a polygon is one simple outer ring.
func checkSimpleRing(p geom.Polygon) error {
	if len(p) == 0 || len(p[0]) < 3 {
		return eris.Wrap(ErrUnsupportedGeometry, "empty or degenerate polygon")
	}
	if len(p) > 1 {
		return eris.Wrapf(ErrUnsupportedGeometry, "polygon has %d interior rings", len(p)-1)
	}
	return nil
}

// projectPolygon maps every vertex through the projection's forward
// transform, producing a planar polygon in meters.
func projectPolygon(p geom.Polygon, laea *proj.LambertEqualArea) geom.Polygon {
	out := make(geom.Polygon, len(p))
	for i, ring := range p {
		r := make([]geom.Point, len(ring))
		for j, pt := range ring {
			x, y := laea.Forward(pt.X, pt.Y)
			r[j] = geom.Point{X: x, Y: y}
		}
		out[i] = r
	}
	return out
}
