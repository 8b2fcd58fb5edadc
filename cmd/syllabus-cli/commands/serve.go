package commands

import (
	"creditcounter/internal/cache"
	"creditcounter/internal/components/chrono"
	tel "creditcounter/internal/components/telemetry"
	"creditcounter/internal/server"
	"creditcounter/lib/serviceutil"
	"creditcounter/lib/telemetry"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
)

var servePort *int

func init() {
	servePort = serveCmd.Flags().IntP("port", "p", 0, "The port to listen on, overrides the config.")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves department catalogs as json.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		port := cfg.Port
		if *servePort > 0 {
			port = *servePort
		}

		runner, err := newRunner()
		if err != nil {
			return err
		}
		srv := server.NewServer(
			runner,
			cache.NewTTL[server.Payload](time.Duration(cfg.CacheTTLMinutes)*time.Minute, clock),
			clock,
			server.Options{
				Departments: cfg.Departments,
				DefaultYear: cfg.DefaultYear,
				CSVDir:      cfg.CSVDir,
				Tokens:      cfg.Tokens,
			},
			tel.SlogAPI{},
		)

		err = srv.WatchCSVDir(ctx)
		if err != nil {
			return err
		}

		if cfg.RefreshCron != "" {
			cron := chrono.NewStandardCron(tel.SlogAPI{}, clock.Location())
			defer cron.Stop()
			err = cron.Cron(cfg.RefreshCron, func() {
				err := srv.Refresh(ctx, "")
				if err != nil {
					slog.Warn("refresh finished with errors", "err", err)
				}
			})
			if err != nil {
				return fmt.Errorf("invalid refresh_cron %q: %w", cfg.RefreshCron, err)
			}
		}

		telemetry.InstrumentPerfStats(ctx, 30*time.Second)

		return serviceutil.StartHttpServer(ctx, serviceutil.NewHttpServer(port, srv.Handler()))
	},
}
