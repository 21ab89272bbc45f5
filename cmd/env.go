package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/borgarlina/coverage-cli/internal/census"
	"github.com/borgarlina/coverage-cli/internal/coverage"
	"github.com/borgarlina/coverage-cli/internal/dataset"
	"github.com/borgarlina/coverage-cli/internal/store"
)

// initSession validates the config for the given mode, loads every
// dataset, and builds the coverage calculator over the loaded zones.
func initSession(ctx context.Context, mode string) (*dataset.Session, *coverage.Calculator, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, nil, err
	}

	session := dataset.NewSession(dataset.Paths{
		SmallAreas: cfg.Data.SmallAreas,
		Population: cfg.Data.Population,
		Stations:   cfg.Data.Stations,
		Schools:    cfg.Data.Schools,
	}, dataset.WithCacheDir(cfg.Data.CacheDir))

	if err := session.Reload(ctx); err != nil {
		return nil, nil, err
	}

	calc := coverage.NewCalculator(session.SmallAreas(),
		coverage.WithCacheSize(cfg.Coverage.CacheSize))
	return session, calc, nil
}

// initStore opens the query-history database and applies migrations.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// coverageReport is the full answer to one point query.
type coverageReport struct {
	Station      string                         `json:"station,omitempty"`
	Line         string                         `json:"line,omitempty"`
	Lng          float64                        `json:"lng"`
	Lat          float64                        `json:"lat"`
	RadiusMeters float64                        `json:"radius_meters"`
	Results      []census.CoverageResult        `json:"results"`
	AgeGroups    map[string]census.AgeGroupStat `json:"age_groups"`
	Summary      census.StationSummary          `json:"summary"`
	Schools      []census.School                `json:"schools,omitempty"`
}

// analyzePoint runs the coverage engine for one point and apportions the
// population table over the result.
func analyzePoint(calc *coverage.Calculator, session *dataset.Session, lng, lat, radius float64) (*coverageReport, error) {
	results, err := calc.Coverage(lng, lat, radius)
	if err != nil {
		return nil, err
	}

	table := session.Population()
	return &coverageReport{
		Lng:          lng,
		Lat:          lat,
		RadiusMeters: radius,
		Results:      results,
		AgeGroups:    census.Apportion(results, table, cfg.Coverage.Cohorts),
		Summary:      census.Summarize(results, table, radius),
		Schools:      session.SchoolsNear(lng, lat, radius),
	}, nil
}

// withinRadiusTotal sums the coverage-weighted cohort counts of a report.
func withinRadiusTotal(stats map[string]census.AgeGroupStat) float64 {
	var total float64
	for _, stat := range stats {
		total += stat.WithinRadius
	}
	return total
}

// recordQuery persists one answered query; failures are reported by the
// caller's logger, never fatal.
func recordQuery(ctx context.Context, st store.Store, rep *coverageReport) error {
	if st == nil {
		return nil
	}
	_, err := st.SaveQuery(ctx, store.QueryRecord{
		Station:         rep.Station,
		Line:            rep.Line,
		Lng:             rep.Lng,
		Lat:             rep.Lat,
		RadiusMeters:    rep.RadiusMeters,
		AffectedAreas:   len(rep.Results),
		TotalPopulation: rep.Summary.TotalPopulation,
		WithinRadius:    withinRadiusTotal(rep.AgeGroups),
	})
	return err
}
