// Package main implements the pipetriage CLI for triaging failed Azure
// Data Factory pipeline runs.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/pipetriage/internal/config"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// configPath is the --config flag value; empty means the default
// location under ~/.config/pipetriage.
var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pipetriage",
	Short: "AI-assisted triage for failed Azure Data Factory pipeline runs",
	Long: `pipetriage inspects failed Azure Data Factory pipeline runs, matches
their errors against a curated knowledge base (regex and semantic
search), synthesizes a diagnostic report and optionally emails it to
the on-call rotation.

Configuration is read from ~/.config/pipetriage/config.yaml and
PIPETRIAGE_* environment variables.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.config/pipetriage/config.yaml)")

	rootCmd.AddCommand(testConnectionCmd)
	rootCmd.AddCommand(failuresCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(kbCmd)
	rootCmd.AddCommand(sendTestEmailCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pipetriage\n")
		fmt.Printf("Version:    %s\n", version)
		fmt.Printf("Commit:     %s\n", gitCommit)
		fmt.Printf("Build Date: %s\n", buildDate)
	},
}

// resolveConfigPath applies the --config flag or the default location.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultPath()
}
