// Package dataset loads the raw planning datasets (small-area census
// polygons, population tables, cityline stations, schools) into the
// engine's in-memory model.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ctessum/geom"
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	tgeom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/borgarlina/coverage-cli/internal/census"
)

// LoadSmallAreas reads a small-areas GeoJSON file (WGS84) and returns one
// SmallArea per feature. The zone id comes from the smsv property and the
// display label from smsv_label. Features without a usable polygon or
// zone id are logged and skipped.
func LoadSmallAreas(path string) ([]*census.SmallArea, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: read small areas file")
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrap(err, "dataset: decode small areas geojson")
	}

	log := zap.L().With(zap.String("component", "dataset"))
	areas := make([]*census.SmallArea, 0, len(fc.Features))
	var skipped int
	for i, feat := range fc.Features {
		zone := propString(feat.Properties, "smsv")
		if zone == "" {
			skipped++
			log.Warn("small area feature without smsv id", zap.Int("feature", i))
			continue
		}

		ring, ok := outerRing(feat.Geometry)
		if !ok {
			skipped++
			log.Warn("small area feature without polygon geometry",
				zap.Int("feature", i),
				zap.String("zone", zone),
			)
			continue
		}

		areas = append(areas, &census.SmallArea{
			Zone:  zone,
			Label: propString(feat.Properties, "smsv_label"),
			Geom:  geom.Polygon{ring},
		})
	}

	log.Info("small areas loaded",
		zap.String("path", path),
		zap.Int("areas", len(areas)),
		zap.Int("skipped", skipped),
	)
	return areas, nil
}

// LoadSmallAreasShapefile reads small areas from a shapefile with SMSV
// and SMSV_LABEL attribute fields. Census zones are also distributed in
// this form.
func LoadSmallAreasShapefile(path string) ([]*census.SmallArea, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: open small areas shapefile")
	}
	defer func() { _ = reader.Close() }()

	zoneIdx := fieldIndex(reader, "smsv")
	labelIdx := fieldIndex(reader, "smsv_label")
	if zoneIdx < 0 {
		return nil, eris.New("dataset: shapefile has no smsv field")
	}

	log := zap.L().With(zap.String("component", "dataset"))
	var areas []*census.SmallArea
	var skipped int
	for reader.Next() {
		n, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok || poly.NumParts == 0 || len(poly.Points) == 0 {
			skipped++
			log.Warn("skipping non-polygon shapefile record", zap.Int("record", n))
			continue
		}

		zone := strings.TrimSpace(reader.Attribute(zoneIdx))
		if zone == "" {
			skipped++
			continue
		}
		var label string
		if labelIdx >= 0 {
			label = strings.TrimSpace(reader.Attribute(labelIdx))
		}

		areas = append(areas, &census.SmallArea{
			Zone:  zone,
			Label: label,
			Geom:  geom.Polygon{shapeOuterRing(poly)},
		})
	}

	log.Info("small areas loaded from shapefile",
		zap.String("path", path),
		zap.Int("areas", len(areas)),
		zap.Int("skipped", skipped),
	)
	return areas, nil
}

// outerRing extracts the outer ring of a polygon geometry. MultiPolygons
// contribute their largest component; interior rings are not carried
// (census zones have none).
func outerRing(g tgeom.T) ([]geom.Point, bool) {
	switch p := g.(type) {
	case *tgeom.Polygon:
		coords := p.Coords()
		if len(coords) == 0 || len(coords[0]) < 3 {
			return nil, false
		}
		return coordsToRing(coords[0]), true

	case *tgeom.MultiPolygon:
		var best [][]tgeom.Coord
		var bestArea float64
		for _, poly := range p.Coords() {
			if len(poly) == 0 || len(poly[0]) < 3 {
				continue
			}
			if a := ringArea(poly[0]); best == nil || a > bestArea {
				best, bestArea = poly, a
			}
		}
		if best == nil {
			return nil, false
		}
		return coordsToRing(best[0]), true

	default:
		return nil, false
	}
}

func coordsToRing(coords []tgeom.Coord) []geom.Point {
	ring := make([]geom.Point, len(coords))
	for i, c := range coords {
		ring[i] = geom.Point{X: c[0], Y: c[1]}
	}
	return ring
}

// ringArea is the absolute shoelace area in squared degrees, used only to
// rank components of a MultiPolygon.
func ringArea(coords []tgeom.Coord) float64 {
	var sum float64
	for i := range coords {
		j := (i + 1) % len(coords)
		sum += coords[i][0]*coords[j][1] - coords[j][0]*coords[i][1]
	}
	if sum < 0 {
		sum = -sum
	}
	return sum / 2
}

// shapeOuterRing returns the largest ring of a shapefile polygon.
func shapeOuterRing(p *shp.Polygon) []geom.Point {
	var best []geom.Point
	var bestArea float64
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}

		ring := make([]geom.Point, 0, end-start)
		coords := make([]tgeom.Coord, 0, end-start)
		for j := start; j < end; j++ {
			ring = append(ring, geom.Point{X: p.Points[j].X, Y: p.Points[j].Y})
			coords = append(coords, tgeom.Coord{p.Points[j].X, p.Points[j].Y})
		}
		if a := ringArea(coords); best == nil || a > bestArea {
			best, bestArea = ring, a
		}
	}
	return best
}

// fieldIndex returns the index of a named attribute field, or -1.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}

// propString reads a GeoJSON property as a string, tolerating numeric
// encodings of zone ids.
func propString(props map[string]interface{}, key string) string {
	switch v := props[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return ""
	}
}
