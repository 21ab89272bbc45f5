package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/borgarlina/coverage-cli/internal/census"
)

var (
	coverageStation string
	coverageLng     float64
	coverageLat     float64
	coverageRadius  float64
	coverageJSON    bool
	coverageRecord  bool
)

var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Coverage and population statistics for one station or point",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		session, calc, err := initSession(ctx, "query")
		if err != nil {
			return err
		}

		lng, lat := coverageLng, coverageLat
		var line string
		if coverageStation != "" {
			st, ok := session.FindStation(coverageStation)
			if !ok {
				return eris.Errorf("station %q not found", coverageStation)
			}
			lng, lat, line = st.Lng, st.Lat, st.Line
		} else if !cmd.Flags().Changed("lng") || !cmd.Flags().Changed("lat") {
			return eris.New("either --station or both --lng and --lat are required")
		}

		radius := coverageRadius
		if radius == 0 {
			radius = cfg.Coverage.RadiusMeters
		}

		rep, err := analyzePoint(calc, session, lng, lat, radius)
		if err != nil {
			return err
		}
		rep.Station = coverageStation
		rep.Line = line

		if coverageRecord {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := recordQuery(ctx, st, rep); err != nil {
				zap.L().Warn("failed to record query", zap.Error(err))
			}
		}

		if coverageJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		}

		fmt.Println(census.FormatAffectedAreas(rep.Results))
		for _, l := range census.FormatAgeGroupLines(cfg.Coverage.Cohorts, rep.AgeGroups) {
			fmt.Println(l)
		}
		fmt.Printf("Total population in affected areas: %d\n", int(rep.Summary.TotalPopulation))
		fmt.Printf("Population density: %.1f per km²\n", rep.Summary.PopulationDensity)
		for _, sc := range rep.Schools {
			fmt.Printf("School within radius: %s\n", sc.Name)
		}
		return nil
	},
}

func init() {
	coverageCmd.Flags().StringVar(&coverageStation, "station", "", "station name (looked up in the cityline dataset)")
	coverageCmd.Flags().Float64Var(&coverageLng, "lng", 0, "longitude of the query point")
	coverageCmd.Flags().Float64Var(&coverageLat, "lat", 0, "latitude of the query point")
	coverageCmd.Flags().Float64Var(&coverageRadius, "radius", 0, "walking radius in meters (default from config)")
	coverageCmd.Flags().BoolVar(&coverageJSON, "json", false, "print the full report as JSON")
	coverageCmd.Flags().BoolVar(&coverageRecord, "record", false, "persist this query to the history store")
	rootCmd.AddCommand(coverageCmd)
}
