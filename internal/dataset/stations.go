package dataset

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	tgeom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/borgarlina/coverage-cli/internal/census"
)

// LoadStations reads a cityline GeoJSON file and returns its station
// points. Line-geometry features in the same file (the route polylines)
// are ignored; only Point features with a name are stations.
func LoadStations(path string) ([]census.Station, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: read cityline file")
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrap(err, "dataset: decode cityline geojson")
	}

	log := zap.L().With(zap.String("component", "dataset"))
	var stations []census.Station
	for i, feat := range fc.Features {
		pt, ok := feat.Geometry.(*tgeom.Point)
		if !ok {
			continue
		}

		name := propString(feat.Properties, "name")
		if name == "" {
			log.Warn("station feature without name", zap.Int("feature", i))
			continue
		}

		stations = append(stations, census.Station{
			Name: name,
			Line: propString(feat.Properties, "line"),
			Lng:  pt.X(),
			Lat:  pt.Y(),
		})
	}

	log.Info("stations loaded", zap.String("path", path), zap.Int("stations", len(stations)))
	return stations, nil
}
