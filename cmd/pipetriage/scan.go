package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/pipetriage/internal/adf"
)

var testConnectionCmd = &cobra.Command{
	Use:   "test-connection",
	Short: "Verify Azure Data Factory connectivity",
	Long: `Acquire a service-principal token and query the factory to confirm
the configured credentials work.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		client, err := a.adfClient()
		if err != nil {
			return err
		}
		if err := client.TestConnection(cmd.Context()); err != nil {
			return fmt.Errorf("connection test failed: %w", err)
		}

		fmt.Printf("Connected to data factory %q (resource group %s)\n",
			a.cfg.Azure.FactoryName, a.cfg.Azure.ResourceGroup)
		return nil
	},
}

var failuresHours int

var failuresCmd = &cobra.Command{
	Use:   "failures",
	Short: "List failed pipeline runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		client, err := a.adfClient()
		if err != nil {
			return err
		}

		hours := failuresHours
		if hours <= 0 {
			hours = a.cfg.Scan.LookbackHours
		}

		runs, err := client.FailedRuns(cmd.Context(), time.Duration(hours)*time.Hour)
		if err != nil {
			return fmt.Errorf("querying failed runs: %w", err)
		}

		if len(runs) == 0 {
			fmt.Printf("No failed runs in the last %d hours.\n", hours)
			return nil
		}

		fmt.Printf("%d failed run(s) in the last %d hours:\n\n", len(runs), hours)
		for _, run := range runs {
			printRunLine(&run)
		}
		fmt.Printf("\nRun \"pipetriage debug <run-id>\" to analyze a failure.\n")
		return nil
	},
}

var historyDays int

var historyCmd = &cobra.Command{
	Use:   "history <pipeline-name>",
	Short: "Show recent run history for one pipeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		client, err := a.adfClient()
		if err != nil {
			return err
		}

		runs, err := client.History(cmd.Context(), args[0], historyDays)
		if err != nil {
			return fmt.Errorf("querying run history: %w", err)
		}

		if len(runs) == 0 {
			fmt.Printf("No runs for pipeline %q in the last %d days.\n", args[0], historyDays)
			return nil
		}

		var failed int
		for _, run := range runs {
			if run.Status == "Failed" {
				failed++
			}
		}
		fmt.Printf("%d run(s) for %q in the last %d days (%d failed):\n\n",
			len(runs), args[0], historyDays, failed)
		for _, run := range runs {
			printRunLine(&run)
		}
		return nil
	},
}

func init() {
	failuresCmd.Flags().IntVar(&failuresHours, "hours", 0, "lookback window in hours (default from config)")
	historyCmd.Flags().IntVar(&historyDays, "days", 7, "lookback window in days")
}

func printRunLine(run *adf.PipelineRun) {
	start := "unknown"
	if run.RunStart != nil {
		start = run.RunStart.Format(time.RFC3339)
	}
	fmt.Printf("  %-8s %s  %s  (run %s)\n", run.Status, start, run.PipelineName, run.RunID)
	if run.Message != "" {
		fmt.Printf("           %s\n", truncate(run.Message, 120))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
