package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(locationsCmd)
}

var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "Prints the dining locations listed on the landing page.",
	RunE: func(cmd *cobra.Command, args []string) error {
		scraper, err := newScraper()
		if err != nil {
			return err
		}
		locs, err := scraper.Locations(cmd.Context())
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"ID", "Name", "URL"})
		for _, loc := range locs {
			t.AppendRow(table.Row{loc.Meta.ID, loc.Meta.Name, loc.Meta.URL})
		}
		t.Render()
		return nil
	},
}
