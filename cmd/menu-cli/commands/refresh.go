package commands

import (
	"net/http"
	"os"

	"github.com/zphrs/ucsc-menu/internal/service"
	"github.com/zphrs/ucsc-menu/lib/serviceutil"

	"connectrpc.com/connect"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	refreshServer string
	refreshToken  string
)

func init() {
	refreshCmd.Flags().StringVar(&refreshServer, "server", "http://localhost:8000", "The menu-server to refresh.")
	refreshCmd.Flags().StringVar(&refreshToken, "token", os.Getenv("MENU_ACCESS_TOKEN"), "The server's access token, defaults to $MENU_ACCESS_TOKEN.")
	rootCmd.AddCommand(refreshCmd)
}

var refreshCmd = &cobra.Command{
	Use:   "refresh [--server <url>] [--token <token>]",
	Short: "Asks a running menu-server to scrape right away.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts []connect.ClientOption
		if refreshToken != "" {
			opts = append(opts, connect.WithInterceptors(serviceutil.ProvideAccessTokenInterceptor(refreshToken)))
		}
		client := service.NewClient(http.DefaultClient, refreshServer, opts...)

		res, err := client.RequestRefresh(cmd.Context())
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Refreshed", "Cached At"})
		t.AppendRow(table.Row{res.Refreshed, res.CachedAt.Local().Format("Jan 2 15:04:05")})
		t.Render()
		return nil
	},
}
