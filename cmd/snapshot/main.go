package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"github.com/yungbote/gdelt-dashboard/internal/app"
	httpH "github.com/yungbote/gdelt-dashboard/internal/http/handlers"
	"github.com/yungbote/gdelt-dashboard/internal/platform/shutdown"
)

var (
	dateFlag string

	// Set by PersistentPreRunE, released in main.
	application *app.App
)

var rootCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Fetch one day of GDELT events and write it to the snapshot bucket",
	Long: `Fetch one day of enriched GDELT events with the same wiring as the API
server and write them to SNAPSHOT_GCS_BUCKET as NDJSON.

Subcommands:
  summaries  - print the day's events as markdown blocks
  prune-runs - delete old rows from the query audit log`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(cmd.Context())
		if err != nil {
			return fmt.Errorf("init app: %w", err)
		}
		application = a
		return nil
	},
	RunE: runUpload,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dateFlag, "date", "", "event date YYYY-MM-DD (default: yesterday UTC)")
	rootCmd.AddCommand(summariesCmd, pruneRunsCmd)
}

func main() {
	ctx, stop := shutdown.NotifyContext(context.Background())
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if application != nil {
		if err != nil {
			application.Log.Error("snapshot command failed", "error", err)
		}
		application.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func selectedDate() (civil.Date, error) {
	raw := strings.TrimSpace(dateFlag)
	if raw == "" {
		return httpH.DefaultDate(time.Now()), nil
	}
	d, err := civil.ParseDate(raw)
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", dateFlag)
	}
	return d, nil
}
