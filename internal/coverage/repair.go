package coverage

import (
	"github.com/ctessum/geom"
	"github.com/rotisserie/eris"
)

// Repair attempts to make a small-area ring usable for area computation.
// Consecutive duplicate vertices and an explicit closing vertex are
// dropped, then the ring is passed through a boolean clip against its own
// bounding box, which resolves self-intersections in the clipping backend.
// Returns ErrGeometryRepair when nothing usable remains.
func Repair(p geom.Polygon) (geom.Polygon, error) {
	if len(p) == 0 {
		return nil, eris.Wrap(ErrGeometryRepair, "no rings")
	}
	if len(p) > 1 {
		return nil, eris.Wrapf(ErrUnsupportedGeometry, "polygon has %d interior rings", len(p)-1)
	}

	ring := dedupeRing(p[0])
	if len(ring) < 3 {
		return nil, eris.Wrapf(ErrGeometryRepair, "ring collapsed to %d points", len(ring))
	}
	clean := geom.Polygon{ring}

	var out geom.Polygon
	switch fixed := clean.Intersection(clean.Bounds()).(type) {
	case geom.Polygon:
		out = fixed
	case geom.MultiPolygon:
		// A self-intersecting ring can split into several parts; keep the
		// largest and drop the slivers.
		for _, part := range fixed {
			if out == nil || part.Area() > out.Area() {
				out = part
			}
		}
	}
	if len(out) == 0 || out.Area() == 0 {
		return nil, eris.Wrap(ErrGeometryRepair, "self-intersection removal produced empty geometry")
	}
	return out, nil
}

// dedupeRing removes consecutive duplicate vertices and a trailing vertex
// equal to the first.
func dedupeRing(ring []geom.Point) []geom.Point {
	out := make([]geom.Point, 0, len(ring))
	for _, pt := range ring {
		if len(out) > 0 && pt == out[len(out)-1] {
			continue
		}
		out = append(out, pt)
	}
	if len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}
