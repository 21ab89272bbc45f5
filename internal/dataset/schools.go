package dataset

import (
	"context"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/borgarlina/coverage-cli/internal/census"
	"github.com/borgarlina/coverage-cli/internal/fetcher"
)

// LoadSchools reads the schools CSV. The source export is ISO 8859-1
// encoded (Icelandic names), with Name, "Location Lat" and "Location Lng"
// columns.
func LoadSchools(ctx context.Context, path string) ([]census.School, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: open schools file")
	}
	defer f.Close() //nolint:errcheck

	header, rows, err := fetcher.ReadCSV(ctx, f, fetcher.CSVOptions{
		HasHeader: true,
		TrimSpace: true,
		Latin1:    true,
	})
	if err != nil {
		return nil, eris.Wrap(err, "dataset: read schools csv")
	}

	nameIdx := columnIndex(header, "Name")
	latIdx := columnIndex(header, "Location Lat")
	lngIdx := columnIndex(header, "Location Lng")
	if nameIdx < 0 || latIdx < 0 || lngIdx < 0 {
		return nil, eris.Errorf("dataset: schools table missing required columns (have %v)", header)
	}

	log := zap.L().With(zap.String("component", "dataset"))
	schools := make([]census.School, 0, len(rows))
	var skipped int
	for i, row := range rows {
		if len(row) <= nameIdx || len(row) <= latIdx || len(row) <= lngIdx || row[nameIdx] == "" {
			skipped++
			continue
		}

		lat, latErr := strconv.ParseFloat(row[latIdx], 64)
		lng, lngErr := strconv.ParseFloat(row[lngIdx], 64)
		if latErr != nil || lngErr != nil {
			skipped++
			log.Warn("unparsable school coordinates",
				zap.Int("row", i+1),
				zap.String("name", row[nameIdx]),
			)
			continue
		}

		schools = append(schools, census.School{
			Name: row[nameIdx],
			Lng:  lng,
			Lat:  lat,
		})
	}

	log.Info("schools loaded",
		zap.String("path", path),
		zap.Int("schools", len(schools)),
		zap.Int("skipped", skipped),
	)
	return schools, nil
}
