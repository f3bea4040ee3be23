package commands

import (
	"fmt"
	"strings"

	"github.com/zphrs/ucsc-menu/internal/cache"
	"github.com/zphrs/ucsc-menu/internal/menu"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	showLocation string
	showName     string
	showSimilar  string
	showMeal     string
	showDate     string
	showExclude  []string
)

func init() {
	flags := showCmd.Flags()
	flags.StringVar(&showLocation, "location", "", "Only show the location with this id.")
	flags.StringVar(&showName, "name", "", "Only show items whose name contains this.")
	flags.StringVar(&showSimilar, "similar", "", "Only show items whose name is close to this.")
	flags.StringVar(&showMeal, "meal", "", "Only show this meal, ex. breakfast or late_night.")
	flags.StringVar(&showDate, "date", "", "Only show this date (YYYY-MM-DD).")
	flags.StringSliceVar(&showExclude, "exclude", nil, "Hide items tagged with any of these allergens.")
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <path/to/menu.json> [--location <id>] [--name <substring>]",
	Short: "Prints the items of a snapshot file.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := cache.NewFileStore(args[0])
		if err != nil {
			return err
		}
		snapshot, err := store.Load(cmd.Context())
		if err != nil {
			return err
		}
		if snapshot == nil {
			return fmt.Errorf("%s does not exist", args[0])
		}

		q, err := showQuery()
		if err != nil {
			return err
		}

		t := newTable()
		t.SetTitle("cached at %s", snapshot.CachedAt.Local().Format("Jan 2 15:04"))
		t.AppendHeader(table.Row{"Location", "Date", "Meal", "Section", "Item", "Allergens", "Price"})
		for _, loc := range menu.Select(snapshot.Locations, q) {
			for _, daily := range loc.Menus.All() {
				for _, meal := range daily.Meals {
					for _, section := range meal.Sections {
						for _, item := range section.FoodItems {
							price := ""
							if item.Price != nil {
								price = item.Price.String()
							}
							t.AppendRow(table.Row{
								loc.Meta.Name,
								daily.Date,
								meal.Type.Label(),
								section.Name,
								item.Name,
								strings.Join(item.Allergens.Names(), ", "),
								price,
							})
						}
					}
				}
			}
		}
		t.Render()
		return nil
	},
}

func showQuery() (menu.Query, error) {
	q := menu.Query{
		Food: menu.FoodFilter{
			NameContains:  showName,
			NameSimilarTo: showSimilar,
		},
	}
	if showLocation != "" {
		q.IDs = []string{showLocation}
	}
	if showMeal != "" {
		mealType, ok := menu.ParseMealType(showMeal)
		if !ok {
			return menu.Query{}, fmt.Errorf("unknown meal %q", showMeal)
		}
		q.MealType = mealType
	}
	if showDate != "" {
		date, err := menu.ParseDate(menu.DateLayout, showDate)
		if err != nil {
			return menu.Query{}, err
		}
		q.Start = &date
		q.End = &date
	}
	excluded, err := menu.ParseAllergens(showExclude)
	if err != nil {
		return menu.Query{}, err
	}
	q.Food.ExcludesAll = excluded
	return q, nil
}
