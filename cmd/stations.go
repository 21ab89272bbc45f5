package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	stationsLine string
	stationsJSON bool
)

var stationsCmd = &cobra.Command{
	Use:   "stations",
	Short: "List the loaded cityline stations",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, _, err := initSession(cmd.Context(), "query")
		if err != nil {
			return err
		}

		stations := session.Stations()
		if stationsLine != "" {
			stations = session.StationsOnLine(stationsLine)
		}

		if stationsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(stations)
		}

		for _, st := range stations {
			fmt.Printf("%-24s %-8s %9.4f %8.4f\n", st.Name, st.Line, st.Lng, st.Lat)
		}
		return nil
	},
}

func init() {
	stationsCmd.Flags().StringVar(&stationsLine, "line", "", "only stations of this line")
	stationsCmd.Flags().BoolVar(&stationsJSON, "json", false, "print as JSON")
	rootCmd.AddCommand(stationsCmd)
}
