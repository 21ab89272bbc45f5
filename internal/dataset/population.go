package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/borgarlina/coverage-cli/internal/census"
	"github.com/borgarlina/coverage-cli/internal/fetcher"
)

// LoadPopulation reads the population table from a CSV or XLSX file with
// smasvaedi, aldursflokkur, fjoldi and ar columns. When several years are
// present only the most recent one is kept, matching how the planning
// tool always works against the latest census.
func LoadPopulation(ctx context.Context, path string) ([]census.PopulationRecord, error) {
	var header []string
	var rows [][]string

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		all, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{})
		if err != nil {
			return nil, eris.Wrap(err, "dataset: read population workbook")
		}
		if len(all) == 0 {
			return nil, eris.New("dataset: population workbook is empty")
		}
		header, rows = all[0], all[1:]

	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "dataset: open population file")
		}
		defer f.Close() //nolint:errcheck

		header, rows, err = fetcher.ReadCSV(ctx, f, fetcher.CSVOptions{HasHeader: true, TrimSpace: true})
		if err != nil {
			return nil, eris.Wrap(err, "dataset: read population csv")
		}
	}

	return parsePopulationRows(header, rows)
}

func parsePopulationRows(header []string, rows [][]string) ([]census.PopulationRecord, error) {
	zoneIdx := columnIndex(header, "smasvaedi")
	cohortIdx := columnIndex(header, "aldursflokkur")
	countIdx := columnIndex(header, "fjoldi")
	yearIdx := columnIndex(header, "ar")
	if zoneIdx < 0 || cohortIdx < 0 || countIdx < 0 {
		return nil, eris.Errorf("dataset: population table missing required columns (have %v)", header)
	}

	log := zap.L().With(zap.String("component", "dataset"))
	records := make([]census.PopulationRecord, 0, len(rows))
	var skipped int
	maxYear := 0
	for i, row := range rows {
		if len(row) <= zoneIdx || len(row) <= cohortIdx || len(row) <= countIdx {
			skipped++
			continue
		}

		count, err := strconv.ParseFloat(row[countIdx], 64)
		if err != nil {
			skipped++
			log.Warn("unparsable population count",
				zap.Int("row", i+1),
				zap.String("fjoldi", row[countIdx]),
			)
			continue
		}

		year := 0
		if yearIdx >= 0 && len(row) > yearIdx {
			year, err = strconv.Atoi(row[yearIdx])
			if err != nil {
				skipped++
				log.Warn("unparsable population year",
					zap.Int("row", i+1),
					zap.String("ar", row[yearIdx]),
				)
				continue
			}
		}
		if year > maxYear {
			maxYear = year
		}

		records = append(records, census.PopulationRecord{
			Zone:   row[zoneIdx],
			Cohort: row[cohortIdx],
			Count:  count,
			Year:   year,
		})
	}

	// Keep the latest census year only.
	recent := records[:0]
	for _, rec := range records {
		if rec.Year == maxYear {
			recent = append(recent, rec)
		}
	}

	log.Info("population table loaded",
		zap.Int("records", len(recent)),
		zap.Int("year", maxYear),
		zap.Int("skipped", skipped),
	)
	return recent, nil
}

func columnIndex(header []string, name string) int {
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), name) {
			return i
		}
	}
	return -1
}
