package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/gdelt-dashboard/internal/modules/events"
	"github.com/yungbote/gdelt-dashboard/internal/pkg/dbctx"
)

var (
	filterCountry   string
	filterCategory  string
	filterEventType string
	pruneDays       int
)

var summariesCmd = &cobra.Command{
	Use:   "summaries",
	Short: "Print markdown summaries of the day's events",
	RunE:  runSummaries,
}

var pruneRunsCmd = &cobra.Command{
	Use:   "prune-runs",
	Short: "Delete query audit rows older than --days",
	RunE:  runPruneRuns,
}

func init() {
	summariesCmd.Flags().StringVar(&filterCountry, "country", "", "country code or \"Name (CODE)\"")
	summariesCmd.Flags().StringVar(&filterCategory, "category", "", "quad class label")
	summariesCmd.Flags().StringVar(&filterEventType, "event-type", "", "event root label")
	pruneRunsCmd.Flags().IntVar(&pruneDays, "days", 30, "retention in days")
}

func runUpload(cmd *cobra.Command, _ []string) error {
	date, err := selectedDate()
	if err != nil {
		return err
	}
	if !application.Events.SnapshotsEnabled() {
		return fmt.Errorf("snapshot storage is not configured (set SNAPSHOT_GCS_BUCKET)")
	}
	uri, rows, err := application.Events.Snapshot(cmd.Context(), date)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d events for %s to %s\n", rows, date, uri)
	return nil
}

func runSummaries(cmd *cobra.Command, _ []string) error {
	date, err := selectedDate()
	if err != nil {
		return err
	}
	report, err := application.Events.Summaries(cmd.Context(), events.DashboardRequest{
		Date: date,
		Filters: events.Filters{
			Country:   filterCountry,
			Category:  filterCategory,
			EventType: filterEventType,
		},
	})
	if err != nil {
		return err
	}
	switch {
	case report.Status == events.StatusError:
		return errors.New(report.Message)
	case len(report.Blocks) == 0:
		fmt.Fprintln(cmd.OutOrStdout(), events.MessageNoData)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(report.Blocks, "\n"))
	return nil
}

func runPruneRuns(cmd *cobra.Command, _ []string) error {
	if pruneDays <= 0 {
		return fmt.Errorf("--days must be positive")
	}
	if application.Clients.Runs == nil {
		return fmt.Errorf("query log disabled (QUERY_LOG_DRIVER=none)")
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -pruneDays)
	n, err := application.Clients.Runs.DeleteOlderThan(dbctx.Context{Ctx: cmd.Context()}, cutoff)
	if err != nil {
		return fmt.Errorf("prune query runs: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %d query runs older than %s\n", n, cutoff.Format(time.RFC3339))
	return nil
}
