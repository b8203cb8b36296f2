package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/pipetriage/internal/adf"
	"github.com/fyrsmithlabs/pipetriage/internal/analyzer"
	"github.com/fyrsmithlabs/pipetriage/internal/notify"
	"github.com/fyrsmithlabs/pipetriage/internal/quality"
)

var (
	debugSendEmail bool
	debugForce     bool
	debugSaveHTML  string
	debugJSON      bool
)

var debugCmd = &cobra.Command{
	Use:   "debug <run-id>",
	Short: "Analyze one failed pipeline run end to end",
	Long: `Fetch the failure details for a run, assess run quality, match the
error against the knowledge base, synthesize a diagnostic report and
optionally email it.`,
	Args: cobra.ExactArgs(1),
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

		runID := args[0]
		run, err := client.PipelineRun(cmd.Context(), runID)
		if err != nil {
			return fmt.Errorf("fetching run %s: %w", runID, err)
		}
		activities, err := client.ActivityRuns(cmd.Context(), run)
		if err != nil {
			return fmt.Errorf("fetching activity runs: %w", err)
		}

		record := adf.RecordFromRun(run, activities)
		if record.ErrorMessage == "" {
			return fmt.Errorf("run %s has no error details to analyze", runID)
		}

		assessment := quality.NewAnalyzer(a.logger).Assess(record, activities)
		rep, err := a.triager.Analyze(cmd.Context(), record)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}

		if debugJSON {
			printJSON(rep)
		} else {
			printReport(rep)
			printAssessment(&assessment)
		}

		if debugSaveHTML != "" {
			if err := saveHTML(a, rep, debugSaveHTML); err != nil {
				return err
			}
			fmt.Printf("\nHTML report written to %s\n", debugSaveHTML)
		}

		if debugSendEmail {
			return emailReport(a, rep, debugForce)
		}
		return nil
	},
}

var analyzePipeline string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <error-message>",
	Short: "Analyze an error message without querying Azure",
	Long: `Run the triage pipeline on a raw error message. Useful for errors
pasted from logs or for testing knowledge-base coverage.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		rep, err := a.triager.QuickAnalyze(cmd.Context(), args[0], analyzePipeline)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}
		printReport(rep)
		return nil
	},
}

var sendTestEmailCmd = &cobra.Command{
	Use:   "send-test-email",
	Short: "Send a test email to verify SMTP settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.mailer().SendTest(); err != nil {
			return fmt.Errorf("sending test email: %w", err)
		}
		fmt.Printf("Test email sent to %s\n", strings.Join(a.cfg.SMTP.To, ", "))
		return nil
	},
}

func init() {
	debugCmd.Flags().BoolVar(&debugSendEmail, "send-email", false, "email the report when confidence allows")
	debugCmd.Flags().BoolVar(&debugForce, "force", false, "email the report even below the confidence threshold")
	debugCmd.Flags().StringVar(&debugSaveHTML, "save-html", "", "write the HTML report to this file")
	debugCmd.Flags().BoolVar(&debugJSON, "json", false, "print the raw report JSON")
	analyzeCmd.Flags().StringVar(&analyzePipeline, "pipeline", "", "pipeline name for context (default ad-hoc)")
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshaling report: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printReport(rep *analyzer.DiagnosticReport) {
	fmt.Printf("Pipeline:   %s (run %s)\n", rep.PipelineName, rep.RunID)
	if rep.FailingActivity != "" {
		fmt.Printf("Activity:   %s (%s)\n", rep.FailingActivity, rep.ActivityType)
	}
	fmt.Printf("Category:   %s\n", rep.Category)
	fmt.Printf("Severity:   %s\n", rep.Severity)
	fmt.Printf("Confidence: %.0f%% (%s, source %s)\n",
		rep.ConfidenceScore*100, rep.ConfidenceLevel, rep.AnalysisSource)

	fmt.Printf("\nWhat happened:\n  %s\n", rep.PlainEnglishError)
	fmt.Printf("\nRoot cause:\n  %s\n", rep.RootCause)

	if len(rep.Solutions) > 0 {
		fmt.Printf("\nSolutions:\n")
		for i, sol := range rep.Solutions {
			fmt.Printf("  %d. %s", i+1, sol.Title)
			if sol.Likelihood != "" {
				fmt.Printf(" (likelihood: %s)", sol.Likelihood)
			}
			fmt.Println()
			for _, step := range sol.Steps {
				fmt.Printf("     - %s\n", step)
			}
		}
	}

	if rep.KBPatternMatched {
		fmt.Printf("\nKnowledge base: matched %s", rep.KBErrorID)
		if rep.EstimatedFixTime != "" {
			fmt.Printf(" (typical fix time %s)", rep.EstimatedFixTime)
		}
		fmt.Println()
	}
	for _, sim := range rep.SimilarErrors {
		fmt.Printf("  similar: %s (%.0f%%)\n", sim.Title, sim.Similarity*100)
	}

	if rep.ShouldSendEmail {
		fmt.Printf("\nConfidence meets the email threshold.\n")
	} else {
		fmt.Printf("\nConfidence below the email threshold; report held back.\n")
	}
}

func printAssessment(assessment *quality.Assessment) {
	if len(assessment.Findings) == 0 {
		return
	}
	fmt.Printf("\nRun quality:\n")
	for _, f := range assessment.Findings {
		fmt.Printf("  [%s] %s: %s\n", f.Severity, f.Check, f.Message)
	}
	for _, rec := range assessment.Recommendations {
		fmt.Printf("  recommend: %s\n", rec)
	}
	if assessment.LikelyTransient {
		fmt.Printf("  The failure looks transient; a retry may succeed.\n")
	}
}

func saveHTML(a *app, rep *analyzer.DiagnosticReport, path string) error {
	builder, err := a.reportBuilder()
	if err != nil {
		return err
	}
	html, err := builder.HTML(rep)
	if err != nil {
		return fmt.Errorf("rendering HTML report: %w", err)
	}
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func emailReport(a *app, rep *analyzer.DiagnosticReport, force bool) error {
	if !rep.ShouldSendEmail && !force {
		fmt.Printf("Not sending: confidence %.2f is below the threshold (use --force to override).\n",
			rep.ConfidenceScore)
		return nil
	}

	builder, err := a.reportBuilder()
	if err != nil {
		return err
	}
	html, err := builder.HTML(rep)
	if err != nil {
		return fmt.Errorf("rendering HTML report: %w", err)
	}

	msg := notify.Message{
		Subject:  builder.Subject(rep),
		Text:     builder.Text(rep),
		HTML:     html,
		Severity: rep.Severity,
	}
	if err := a.mailer().Send(msg); err != nil {
		return fmt.Errorf("sending report: %w", err)
	}
	fmt.Printf("Report emailed to %s\n", strings.Join(a.cfg.SMTP.To, ", "))
	return nil
}
