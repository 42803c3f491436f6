package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dashplatform/config"
	"dashplatform/drive"
	"dashplatform/observability/logging"
	"dashplatform/observability/otel"
	"dashplatform/store"
)

var (
	configPath   string
	cfg          *config.Config
	telemetryOff func()
)

var rootCmd = &cobra.Command{
	Use:   "drivectl",
	Short: "Operator tooling for the platform chain store",
	Long: `drivectl initialises and inspects the chain state the block
execution engine runs against. Commands open the configured storage
backend directly; stop the node before pointing drivectl at a live
data directory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		log := logging.SetupWithOptions(cfg.Log.Service, cfg.Log.Environment, logging.Options{
			Level:      cfg.Log.Level,
			File:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
		})
		if cfg.Telemetry.Enabled {
			shutdown, err := otel.Init(cmd.Context(), otel.Config{
				ServiceName: cfg.Log.Service,
				Environment: cfg.Log.Environment,
				Endpoint:    cfg.Telemetry.Endpoint,
				Insecure:    cfg.Telemetry.Insecure,
				Headers:     otel.ParseHeaders(cfg.Telemetry.Headers),
				Metrics:     cfg.Telemetry.Metrics,
				Traces:      cfg.Telemetry.Traces,
			})
			if err != nil {
				return fmt.Errorf("init telemetry: %w", err)
			}
			ctx := cmd.Context()
			telemetryOff = func() {
				if err := shutdown(ctx); err != nil {
					log.Warn("telemetry shutdown", "error", err)
				}
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if telemetryOff != nil {
			telemetryOff()
		}
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./config.toml", "Path to the node config file")
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(epochCmd)
}

// openDrive opens the configured backend and wraps it in a drive
// handle. The returned func closes the backend.
func openDrive() (*drive.Drive, func(), error) {
	db, err := cfg.OpenDatabase()
	if err != nil {
		return nil, nil, err
	}
	st, err := store.New(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return drive.New(st), db.Close, nil
}
