package commands

import (
	"context"
	"creditcounter/internal/catalog"
	"creditcounter/internal/components/chrono"
	tel "creditcounter/internal/components/telemetry"
	"creditcounter/internal/scrapers/kosen"
	"creditcounter/lib/restyutil"
	"creditcounter/lib/serviceutil"
	"creditcounter/lib/telemetry"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath *string
	verbose    *bool
)

// set up by the root command before any subcommand runs
var (
	cfg       Config
	clock     chrono.API
	otelSetup telemetry.Telemetry
)

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "config.json5", "The config file, <name>.local.json5 is merged over it.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging.")
}

var rootCmd = &cobra.Command{
	Use:           "syllabus-cli",
	Short:         "syllabus-cli extracts course catalogs from the KOSEN public syllabus.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(*verbose)

		// secrets (database token, bucket keys) can be kept out of the config in a .env file
		err := godotenv.Load()
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}

		standard, err := chrono.NewStandardImpl()
		if err != nil {
			return fmt.Errorf("load timezone: %w", err)
		}
		clock = standard

		cfg, err = LoadConfig(*configPath, clock)
		if err != nil {
			return err
		}

		otelSetup, err = setupTelemetry(cmd.Context())
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return otelSetup.Shutdown(context.Background())
	},
}

func ExecuteContext(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		serviceutil.Fatal("command failed", err)
	}
}

// setupTelemetry uses the telemetry section of the config, or a telemetry.json5 found
// somewhere up from the working directory when the section is empty.
func setupTelemetry(ctx context.Context) (telemetry.Telemetry, error) {
	if cfg.Telemetry.Enabled() {
		return telemetry.Setup(ctx, "syllabus-cli", cfg.Telemetry)
	}
	otel, err := telemetry.SetupFromEnv(ctx, "syllabus-cli")
	if errors.Is(err, os.ErrNotExist) {
		return otel, nil
	}
	return otel, err
}

func newClient() (kosen.Client, error) {
	opts := cfg.ClientOptions()
	if cfg.DumpHttpDir != "" {
		output, err := restyutil.NewFilesystemOutput(cfg.DumpHttpDir)
		if err != nil {
			return kosen.Client{}, err
		}
		opts.Output = output
		slog.Info("dumping http messages", "dir", cfg.DumpHttpDir)
	}
	return kosen.NewClient(opts, tel.SlogAPI{})
}

func newRunner() (catalog.Runner, error) {
	client, err := newClient()
	if err != nil {
		return catalog.Runner{}, err
	}
	return catalog.NewRunner(client, cfg.CatalogOptions(), clock, tel.SlogAPI{}), nil
}
