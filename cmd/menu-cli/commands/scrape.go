package commands

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/zphrs/ucsc-menu/internal/cache"
	"github.com/zphrs/ucsc-menu/internal/menu"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	scrapeOut      string
	scrapeLocation string
)

func init() {
	scrapeCmd.Flags().StringVar(&scrapeOut, "out", "menu.json", "The snapshot file to write.")
	scrapeCmd.Flags().StringVar(&scrapeLocation, "location", "", "Only scrape the location with this id.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--out <path/to/menu.json>] [--location <id>]",
	Short: "Scrapes the dining site once and writes a snapshot file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		scraper, err := newScraper()
		if err != nil {
			return err
		}

		start := time.Now()
		var locs menu.Locations
		if scrapeLocation == "" {
			locs, err = scraper.Scrape(ctx)
			if err != nil {
				return err
			}
		} else {
			directory, err := scraper.Locations(ctx)
			if err != nil {
				return err
			}
			target := directory.ByID(scrapeLocation)
			if target == nil {
				return fmt.Errorf("no location with id %q", scrapeLocation)
			}
			loc, err := scraper.ScrapeLocation(ctx, target.Meta, nil)
			if err != nil {
				return err
			}
			locs = menu.Locations{loc}
		}
		slog.Info("scraping time", "seconds", time.Since(start).Seconds())

		store, err := cache.NewFileStore(scrapeOut)
		if err != nil {
			return err
		}
		err = store.Save(ctx, &cache.Snapshot{CachedAt: time.Now().UTC(), Locations: locs})
		if err != nil {
			return err
		}
		slog.Info("wrote snapshot", "path", store.Path())

		t := newTable()
		t.AppendHeader(table.Row{"ID", "Name", "Days", "Meals", "Items"})
		for _, loc := range locs {
			meals, items := 0, 0
			for _, daily := range loc.Menus.All() {
				meals += len(daily.Meals)
				for _, meal := range daily.Meals {
					for _, section := range meal.Sections {
						items += len(section.FoodItems)
					}
				}
			}
			t.AppendRow(table.Row{loc.Meta.ID, loc.Meta.Name, loc.Menus.Len(), meals, items})
		}
		t.Render()
		return nil
	},
}
