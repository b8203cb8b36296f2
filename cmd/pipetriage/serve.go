package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pipetriage/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the triage dashboard API server",
	Long: `Start the HTTP server exposing failure listing, analysis, knowledge
base browsing and report delivery, plus Prometheus metrics on
/metrics. Shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		builder, err := a.reportBuilder()
		if err != nil {
			return err
		}

		// The ADF client and mailer are optional for the server; their
		// endpoints return 503 when unconfigured.
		var source server.FailureSource
		if a.cfg.Azure.Configured() {
			client, err := a.adfClient()
			if err != nil {
				return err
			}
			source = client
		} else {
			a.logger.Warn("azure not configured, failure endpoints disabled")
		}

		var mailer server.Mailer
		if a.cfg.SMTP.Host != "" && len(a.cfg.SMTP.To) > 0 {
			mailer = a.mailer()
		} else {
			a.logger.Warn("smtp not configured, email endpoints disabled")
		}

		var searcher server.Searcher
		if a.semantic != nil {
			searcher = a.semantic
		}

		srv, err := server.NewServer(server.Config{
			Host:          a.cfg.Server.Host,
			Port:          a.cfg.Server.Port,
			LookbackHours: a.cfg.Scan.LookbackHours,
		}, a.triager, source, searcher, mailer, a.catalog, builder, a.logger)
		if err != nil {
			return fmt.Errorf("building server: %w", err)
		}

		a.logger.Info("serving dashboard", zap.String("addr", a.cfg.Server.Address()))
		return srv.Start(ctx)
	},
}
