// Package cmd — jobs and init-db commands.
// Inspect and manage the document status store.
package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/pagemerge/jobs"
)

var (
	flagStatus string
	flagDrop   bool
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List tracked documents",
	Long: `Jobs lists the documents recorded in the status store, newest first.

Examples:
  pagemerge jobs
  pagemerge jobs --status failed`,
	Args: cobra.NoArgs,
	RunE: runJobs,
}

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the document status table",
	Long: `Init-db creates the status table in $PAGEMERGE_DB. With --drop, existing
records are discarded first.`,
	Args: cobra.NoArgs,
	RunE: runInitDB,
}

func init() {
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(initDBCmd)

	jobsCmd.Flags().StringVar(&flagStatus, "status", "", "Only list jobs in this state (processing, completed, failed)")
	initDBCmd.Flags().BoolVar(&flagDrop, "drop", false, "Drop existing records before creating the table")
}

func runJobs(cmd *cobra.Command, args []string) error {
	status := strings.ToLower(flagStatus)
	if status != "" && !jobs.ValidStatus(status) {
		return fmt.Errorf("unknown status %q", flagStatus)
	}

	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	list, err := store.List(ctx, status)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No jobs recorded.")
		return nil
	}
	writeJobsTable(cmd.OutOrStdout(), list)
	return nil
}

// writeJobsTable renders jobs as an ASCII table.
func writeJobsTable(w io.Writer, list []jobs.Job) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Name", "Status", "Pages", "Created", "Processed", "Error"})
	table.SetAutoWrapText(false)

	for _, j := range list {
		processed := "-"
		if j.ProcessedAt != nil {
			processed = humanize.Time(*j.ProcessedAt)
		}
		table.Append([]string{
			shortID(j.ID),
			j.Name,
			j.Status,
			strconv.Itoa(j.Pages),
			humanize.Time(j.CreatedAt),
			processed,
			truncate(j.Error, 60),
		})
	}
	table.Render()
}

func runInitDB(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := jobs.Open(ctx, cfg.DBPath, logger)
	if err != nil {
		return fmt.Errorf("opening job store: %w", err)
	}
	defer store.Close()

	if err := store.Init(ctx, flagDrop); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Initialized job store: %s\n", cfg.DBPath)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
