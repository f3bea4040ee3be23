package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/zphrs/ucsc-menu/internal/scrapers/nutrition"
	"github.com/zphrs/ucsc-menu/internal/telemetry"
	"github.com/zphrs/ucsc-menu/lib/restyutil"
	libtelemetry "github.com/zphrs/ucsc-menu/lib/telemetry"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	verbose           bool
	baseURL           string
	requestsPerSecond float64
	days              int
	dumpDir           string
)

var rootCmd = &cobra.Command{
	Use:   "menu-cli",
	Short: "menu-cli scrapes and inspects the UCSC dining menus.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		libtelemetry.InitSlog(verbose)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging.")
	flags.StringVar(&baseURL, "base-url", nutrition.DefaultBaseURL, "The dining site to scrape.")
	flags.Float64Var(&requestsPerSecond, "rps", 20, "The maximum requests per second sent to the dining site.")
	flags.IntVar(&days, "days", 10, "The number of days to scrape starting yesterday.")
	flags.StringVar(&dumpDir, "dump", "", "Write every http exchange to this directory.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newScraper() (*nutrition.Scraper, error) {
	opts := nutrition.DefaultClientOptions()
	opts.BaseURL = baseURL
	opts.RequestsPerSecond = requestsPerSecond
	if dumpDir != "" {
		output, err := restyutil.NewFilesystemOutput(dumpDir)
		if err != nil {
			return nil, err
		}
		opts.Dump = output
	}

	tel := telemetry.SlogAPI{}
	client, err := nutrition.NewClient(opts, tel)
	if err != nil {
		return nil, err
	}
	return nutrition.NewScraper(client, nutrition.ScraperOptions{Days: days}, tel), nil
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
