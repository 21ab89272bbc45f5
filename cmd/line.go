package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/borgarlina/coverage-cli/internal/census"
	"github.com/borgarlina/coverage-cli/internal/coverage"
)

var (
	lineRadius float64
	lineJSON   bool
)

// lineReport aggregates the coverage picture over a whole line.
type lineReport struct {
	coverage.LineMetrics
	AgeGroups map[string]census.AgeGroupStat `json:"age_groups"`
	Summary   census.StationSummary          `json:"summary"`
}

var lineCmd = &cobra.Command{
	Use:   "line <name>",
	Short: "Aggregate coverage over every station of a line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		session, calc, err := initSession(cmd.Context(), "query")
		if err != nil {
			return err
		}

		stations := session.StationsOnLine(name)
		if len(stations) == 0 {
			return eris.Errorf("line %q has no stations", name)
		}

		radius := lineRadius
		if radius == 0 {
			radius = cfg.Coverage.RadiusMeters
		}

		metrics, err := calc.LineCoverage(name, stations, radius)
		if err != nil {
			return err
		}

		table := session.Population()
		rep := lineReport{
			LineMetrics: metrics,
			AgeGroups:   census.Apportion(metrics.Results, table, cfg.Coverage.Cohorts),
			Summary:     census.Summarize(metrics.Results, table, radius),
		}

		if lineJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		}

		fmt.Printf("Line %s: %d stations, %d affected areas\n", rep.Line, rep.Stations, len(rep.Results))
		fmt.Println(census.FormatAffectedAreas(rep.Results))
		for _, l := range census.FormatAgeGroupLines(cfg.Coverage.Cohorts, rep.AgeGroups) {
			fmt.Println(l)
		}
		fmt.Printf("Total population in affected areas: %d\n", int(rep.Summary.TotalPopulation))
		return nil
	},
}

func init() {
	lineCmd.Flags().Float64Var(&lineRadius, "radius", 0, "walking radius in meters (default from config)")
	lineCmd.Flags().BoolVar(&lineJSON, "json", false, "print the full report as JSON")
	rootCmd.AddCommand(lineCmd)
}
