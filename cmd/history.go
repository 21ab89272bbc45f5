package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/borgarlina/coverage-cli/internal/store"
)

var (
	historyStation string
	historyLine    string
	historyLimit   int
	historyJSON    bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded coverage queries",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		records, err := st.ListQueries(ctx, store.QueryFilter{
			Station: historyStation,
			Line:    historyLine,
			Limit:   historyLimit,
		})
		if err != nil {
			return err
		}

		if historyJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}

		for _, rec := range records {
			label := rec.Station
			if label == "" {
				label = fmt.Sprintf("(%.4f, %.4f)", rec.Lng, rec.Lat)
			}
			fmt.Printf("%s  %-24s r=%-6.0f areas=%-3d pop=%-7.0f within=%.0f\n",
				rec.CreatedAt.Format("2006-01-02 15:04"),
				label, rec.RadiusMeters, rec.AffectedAreas, rec.TotalPopulation, rec.WithinRadius)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyStation, "station", "", "only queries for this station")
	historyCmd.Flags().StringVar(&historyLine, "line", "", "only queries for this line")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "maximum rows to show")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print as JSON")
	rootCmd.AddCommand(historyCmd)
}
